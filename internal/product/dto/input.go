package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ProductRecord is one catalog row from the bulk product import. Identifier
// fields are trimmed and blank values become nil.
type ProductRecord struct {
	SystemID       string
	UPCID          *string
	CustomSKU      *string
	EAN            *string
	ManufactureSKU *string
	Description    *string
	Price          *float64
	Category       *string
	Subcat1        *string
	Subcat2        *string
	Subcat3        *string
	Brand          *string
}

type productRecordJSON struct {
	SystemID       json.RawMessage `json:"system_id"`
	UPC            json.RawMessage `json:"upc"`
	UPCID          json.RawMessage `json:"upc_id"`
	CustomSKU      json.RawMessage `json:"custom_sku"`
	EAN            json.RawMessage `json:"ean"`
	ManufactureSKU json.RawMessage `json:"manufacture_sku"`
	Description    *string         `json:"description"`
	Price          json.RawMessage `json:"price"`
	Category       *string         `json:"category"`
	Subcat1        *string         `json:"subcat_1"`
	Subcat2        *string         `json:"subcat_2"`
	Subcat3        *string         `json:"subcat_3"`
	Brand          *string         `json:"brand"`
}

// UnmarshalJSON accepts spreadsheet-style rows: identifiers may arrive as
// numbers, "upc" is an alias for "upc_id" and price may be a string.
func (p *ProductRecord) UnmarshalJSON(data []byte) error {
	var raw productRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	var out ProductRecord
	systemID, err := identifier(raw.SystemID)
	if err != nil {
		return fmt.Errorf("system_id: %w", err)
	}
	if systemID != nil {
		out.SystemID = *systemID
	}

	upc := raw.UPCID
	if len(upc) == 0 || string(upc) == "null" {
		upc = raw.UPC
	}
	if out.UPCID, err = identifier(upc); err != nil {
		return fmt.Errorf("upc_id: %w", err)
	}
	if out.CustomSKU, err = identifier(raw.CustomSKU); err != nil {
		return fmt.Errorf("custom_sku: %w", err)
	}
	if out.EAN, err = identifier(raw.EAN); err != nil {
		return fmt.Errorf("ean: %w", err)
	}
	if out.ManufactureSKU, err = identifier(raw.ManufactureSKU); err != nil {
		return fmt.Errorf("manufacture_sku: %w", err)
	}
	if out.Price, err = price(raw.Price); err != nil {
		return fmt.Errorf("price: %w", err)
	}

	out.Description = raw.Description
	out.Category = raw.Category
	out.Subcat1 = raw.Subcat1
	out.Subcat2 = raw.Subcat2
	out.Subcat3 = raw.Subcat3
	out.Brand = raw.Brand
	*p = out
	return nil
}

func identifier(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		s = n.String()
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func price(raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
