package catalog

import (
	"strings"

	"github.com/litescript/ls-skyplan/internal/astro"
)

// TypeAll disables the object type filter.
const TypeAll = "all"

// FilterOptions selects entries for display. The Include gates add
// statuses to the result; visible entries are always kept.
type FilterOptions struct {
	Type              string // exact object type, or TypeAll / ""
	Keyword           string // case-insensitive substring of name or description
	IncludeNonVisible bool
	IncludeMasked     bool
	IncludePartial    bool
}

// Filter returns the entries matching opts in their original order.
// Entries keep their catalog Index.
func Filter(entries []Enriched, opts FilterOptions) []Enriched {
	keyword := strings.ToLower(strings.TrimSpace(opts.Keyword))

	out := make([]Enriched, 0, len(entries))
	for _, e := range entries {
		if opts.Type != "" && opts.Type != TypeAll && e.ObjectType != opts.Type {
			continue
		}
		if keyword != "" && !matchesKeyword(e, keyword) {
			continue
		}
		if !opts.admits(e.Status) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesKeyword(e Enriched, keyword string) bool {
	return strings.Contains(strings.ToLower(e.Name), keyword) ||
		strings.Contains(strings.ToLower(e.Description), keyword)
}

// admits applies the status gates. Unenriched entries carry no status and
// pass.
func (o FilterOptions) admits(s astro.Status) bool {
	switch s {
	case astro.StatusNonVisible:
		return o.IncludeNonVisible
	case astro.StatusMasked:
		return o.IncludeMasked
	case astro.StatusPartiallyVisible:
		return o.IncludePartial
	default:
		return true
	}
}

// ObjectTypes returns the distinct object types in catalog order.
func ObjectTypes(entries []Enriched) []string {
	seen := make(map[string]bool)
	var types []string
	for _, e := range entries {
		if e.ObjectType == "" || seen[e.ObjectType] {
			continue
		}
		seen[e.ObjectType] = true
		types = append(types, e.ObjectType)
	}
	return types
}
