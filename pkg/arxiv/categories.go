package arxiv

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed categories.json
var categoriesJSON []byte

// categoryNames maps arXiv category codes to display names. Loaded once at
// init and never mutated afterwards.
var categoryNames map[string]string

func init() {
	if err := json.Unmarshal(categoriesJSON, &categoryNames); err != nil {
		panic(fmt.Sprintf("arxiv: invalid embedded categories.json: %v", err))
	}
}

// FormatCategory returns the display name for an arXiv category code. An
// unknown code falls back to its upper-cased archive prefix.
func FormatCategory(code string) string {
	if name, ok := categoryNames[code]; ok {
		return name
	}

	prefix, _, _ := strings.Cut(code, ".")
	return strings.ToUpper(prefix)
}
