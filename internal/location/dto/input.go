package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScanRecord is one raw scan as submitted by a scanner or the bulk importer.
// Pointer fields distinguish a missing field from a zero value.
type ScanRecord struct {
	Code         *string `json:"code" validate:"required,pgtext"`
	ShelfID      *string `json:"shelf_id" validate:"required,pgtext"`
	ShelfRow     *string `json:"shelf_row" validate:"required,pgtext"`
	ItemPosition *int    `json:"item_position" validate:"required,gte=0,lte=2147483647"`
}

// UnmarshalJSON accepts the legacy "upc" key for the code and numeric shelf
// ids, rows and positions as sent by spreadsheet exports.
func (r *ScanRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	codeRaw, ok := raw["code"]
	if !ok || isNull(codeRaw) {
		codeRaw = raw["upc"]
	}

	var err error
	var out ScanRecord
	if out.Code, err = flexString(codeRaw); err != nil {
		return fmt.Errorf("code: %w", err)
	}
	if out.ShelfID, err = flexString(raw["shelf_id"]); err != nil {
		return fmt.Errorf("shelf_id: %w", err)
	}
	if out.ShelfRow, err = flexString(raw["shelf_row"]); err != nil {
		return fmt.Errorf("shelf_row: %w", err)
	}
	if out.ItemPosition, err = flexInt(raw["item_position"]); err != nil {
		return fmt.Errorf("item_position: %w", err)
	}
	*r = out
	return nil
}

// DecodeScanPayload decodes a single scan object or an array of them. A
// record that cannot be decoded is kept as an empty ScanRecord so it is
// counted as invalid instead of failing the whole batch.
func DecodeScanPayload(body []byte) ([]ScanRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	var items []json.RawMessage
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
	case '{':
		items = []json.RawMessage{body}
	default:
		return nil, fmt.Errorf("expected object or array")
	}

	records := make([]ScanRecord, len(items))
	for i, item := range items {
		var rec ScanRecord
		if err := json.Unmarshal(item, &rec); err == nil {
			records[i] = rec
		}
	}
	return records, nil
}

// AssignInput places a product by canonical id. SystemID comes from the URL.
type AssignInput struct {
	SystemID     string `json:"-" validate:"required,pgtext"`
	ShelfID      string `json:"shelf_id" validate:"required,pgtext"`
	ShelfRow     string `json:"shelf_row" validate:"required,pgtext"`
	ItemPosition *int   `json:"item_position" validate:"required,gte=0,lte=2147483647"`
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func flexString(raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	s = n.String()
	return &s, nil
}

func flexInt(raw json.RawMessage) (*int, error) {
	if isNull(raw) {
		return nil, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &n, nil
}
