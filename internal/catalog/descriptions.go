package catalog

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Descriptions maps object names to localized description text.
type Descriptions map[string]string

// Lookup returns the description for name, or "" if there is none.
// A nil Descriptions is valid and always misses.
func (d Descriptions) Lookup(name string) string {
	return d[name]
}

// LoadDescriptions decodes a JSON object keyed by object name. Values that
// are not strings are skipped.
func LoadDescriptions(r io.Reader) (Descriptions, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode descriptions: %w", err)
	}

	d := make(Descriptions, len(raw))
	for name, msg := range raw {
		var text string
		if err := json.Unmarshal(msg, &text); err != nil {
			continue
		}
		d[name] = text
	}
	return d, nil
}
