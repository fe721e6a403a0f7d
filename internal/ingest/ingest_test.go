package ingest

import (
	"strings"
	"testing"
)

func TestParseMalformedJSON(t *testing.T) {
	preview, res := Parse([]byte(`{"questions": [`))
	if res.Valid {
		t.Fatal("want invalid result for malformed JSON")
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], "Error parsing JSON: ") {
		t.Fatalf("errors = %v", res.Errors)
	}
	if preview.Object != nil {
		t.Fatal("partial preview kept after parse failure")
	}
}

func TestParseDefaultsMetadata(t *testing.T) {
	preview, res := Parse([]byte(`{"questions":[{"q":"___ is a word.","a1":"cat"}]}`))
	if !res.Valid {
		t.Fatalf("want valid, got %v", res.Errors)
	}
	for _, f := range []string{"notebook", "section", "part", "title"} {
		if v, ok := preview.Object[f].(string); !ok || v != "" {
			t.Errorf("%s = %v, want defaulted empty string", f, preview.Object[f])
		}
	}
	if len(preview.Raw) == 0 {
		t.Error("raw bytes not retained")
	}
}

func TestParseNonObjectRoot(t *testing.T) {
	_, res := Parse([]byte(`["not", "an", "object"]`))
	if res.Valid {
		t.Fatal("want invalid")
	}
	if res.Errors[0] != "Root must be an object." {
		t.Fatalf("errors = %v", res.Errors)
	}
}

func TestParseCollectsSchemaErrors(t *testing.T) {
	_, res := Parse([]byte(`{"title":"t","questions":[{"q":"no answers here"}]}`))
	if res.Valid {
		t.Fatal("want invalid")
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "at least one answer") {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v", res.Errors)
	}
}
