package memstore

import (
	"strings"

	"recall/internal/domain"
)

// Project flattens a summary into its search string. Each field renders as
// "<key>: <value>", lists and maps as compact JSON, joined by single spaces.
func Project(summary domain.Mapping) string {
	parts := make([]string, 0, len(summary))
	for _, f := range summary {
		if f.Value.IsComposite() {
			parts = append(parts, f.Key+": "+f.Value.CompactJSON())
			continue
		}
		parts = append(parts, f.Key+": "+f.Value.Text())
	}
	return strings.Join(parts, " ")
}
