package catalog

import (
	"strings"
	"testing"
)

func TestLoadDescriptions(t *testing.T) {
	input := `{
		"M31": "The Andromeda Galaxy, nearest large spiral.",
		"Moon": "Earth's only natural satellite.",
		"broken": 42
	}`

	d, err := LoadDescriptions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadDescriptions failed: %v", err)
	}

	if got := d.Lookup("M31"); !strings.HasPrefix(got, "The Andromeda") {
		t.Errorf("Lookup(M31) = %q", got)
	}
	if got := d.Lookup("M42"); got != "" {
		t.Errorf("Lookup(missing) = %q, want empty", got)
	}
	if _, ok := d["broken"]; ok {
		t.Error("non-string value should be skipped")
	}
}

func TestLoadDescriptions_Invalid(t *testing.T) {
	if _, err := LoadDescriptions(strings.NewReader(`["not", "an", "object"]`)); err == nil {
		t.Error("expected error for non-object JSON")
	}
}

func TestDescriptions_NilLookup(t *testing.T) {
	var d Descriptions
	if got := d.Lookup("anything"); got != "" {
		t.Errorf("nil Lookup = %q", got)
	}
}
