package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatorRejectsUnstorableScans(t *testing.T) {
	v := NewValidator()
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }

	valid := ScanRecord{Code: str("012345678905"), ShelfID: str("S1"), ShelfRow: str("1"), ItemPosition: num(2147483647)}
	assert.NoError(t, v.Struct(valid))

	cases := map[string]ScanRecord{
		"position overflows int4": {Code: str("1"), ShelfID: str("S1"), ShelfRow: str("1"), ItemPosition: num(5000000000)},
		"negative position":       {Code: str("1"), ShelfID: str("S1"), ShelfRow: str("1"), ItemPosition: num(-1)},
		"nul in shelf id":         {Code: str("1"), ShelfID: str("S\x00"), ShelfRow: str("1"), ItemPosition: num(1)},
		"invalid utf8 code":       {Code: str("ab\xc3"), ShelfID: str("S1"), ShelfRow: str("1"), ItemPosition: num(1)},
		"nul in shelf row":        {Code: str("1"), ShelfID: str("S1"), ShelfRow: str("\x00"), ItemPosition: num(1)},
	}
	for name, rec := range cases {
		assert.Error(t, v.Struct(rec), name)
	}
}

func TestValidatorRejectsUnstorableAssign(t *testing.T) {
	v := NewValidator()
	pos := 1
	big := 5000000000

	assert.NoError(t, v.Struct(&AssignInput{SystemID: "1", ShelfID: "A", ShelfRow: "1", ItemPosition: &pos}))
	assert.Error(t, v.Struct(&AssignInput{SystemID: "1", ShelfID: "A", ShelfRow: "1", ItemPosition: &big}))
	assert.Error(t, v.Struct(&AssignInput{SystemID: "1\x00", ShelfID: "A", ShelfRow: "1", ItemPosition: &pos}))
	assert.Error(t, v.Struct(&AssignInput{SystemID: "1", ShelfID: "A\xff", ShelfRow: "1", ItemPosition: &pos}))
}
