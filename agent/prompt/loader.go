package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/analyst.txt
var analystRaw string

// LoadAnalyst returns the trimmed system prompt for the analyst loop.
// The embed is compile-time, so this is safe to call concurrently.
func LoadAnalyst() string {
	return strings.TrimSpace(analystRaw)
}
