package schema

import (
	_ "embed"
	"strings"
)

//go:embed template/tables.txt
var tablesRaw string

// Describe returns the analytics store schema as prompt text: the three
// tables, their columns and types, key edges, and known value domains.
// The rendering is byte-stable for the lifetime of the process so the
// translation prompt stays cacheable.
func Describe() string {
	return strings.TrimSpace(tablesRaw)
}
