// Package identifier turns raw scanned or typed codes into the comparison keys
// used to match catalog rows.
package identifier

import "strings"

// SystemIDLength is the width of a canonical system id. Longer scans are
// treated as scanner over-reads of a system id.
const SystemIDLength = 12

type Path int

const (
	PathLookup Path = iota
	PathImport
)

func (p Path) String() string {
	if p == PathImport {
		return "import"
	}
	return "lookup"
}

var (
	importFields = []string{"upc_id", "custom_sku", "manufacture_sku"}
	lookupFields = []string{"upc_id", "custom_sku", "ean", "manufacture_sku", "description", "brand"}
)

// Fields lists the product columns compared against the substring pattern.
func (p Path) Fields() []string {
	if p == PathImport {
		return importFields
	}
	return lookupFields
}

// Keys are the comparison keys derived from one code.
type Keys struct {
	Path     Path
	Code     string
	Exact    string
	HasExact bool
	Stripped string
	Pattern  string
}

// HasSubstring is false for all-zero codes, which would otherwise match every row.
func (k Keys) HasSubstring() bool {
	return k.Stripped != ""
}

func Normalize(code string, path Path) Keys {
	code = strings.TrimSpace(code)
	exact, ok := ExactCandidate(code, path)
	return Keys{
		Path:     path,
		Code:     code,
		Exact:    exact,
		HasExact: ok,
		Stripped: strings.TrimLeft(code, "0"),
		Pattern:  SubstringPattern(code),
	}
}

// ExactCandidate returns the key compared for equality with system_id. The
// import path only trusts the 12-character truncation and reports false for
// shorter codes. Length and truncation count characters, not bytes.
func ExactCandidate(code string, path Path) (string, bool) {
	if runes := []rune(code); len(runes) >= SystemIDLength {
		return string(runes[:SystemIDLength]), true
	}
	if path == PathImport {
		return "", false
	}
	return code, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SubstringPattern strips leading zeros and wraps the rest as an ILIKE
// "contains" pattern.
func SubstringPattern(code string) string {
	return "%" + likeEscaper.Replace(strings.TrimLeft(code, "0")) + "%"
}
