// Package ingest parses raw pasted or uploaded text into a quiz preview.
// It is the single entry point untrusted content passes through before
// validation; a malformed payload becomes a validation-failure result, not
// an error that escapes to the caller.
package ingest

import (
	"encoding/json"

	"github.com/quizvault/quizvault/internal/quiz"
)

// Preview is a parsed-but-not-yet-saved quiz candidate. Raw keeps the
// original bytes so they can be retained alongside the saved record.
type Preview struct {
	Object map[string]any
	Raw    []byte
}

// Parse attempts a JSON decode of raw. On parse failure the returned
// Result carries the parse error as its single message and the Preview is
// zero; nothing partial is kept. On success absent metadata fields are
// defaulted to empty strings before validation so the validator always
// sees strings.
func Parse(raw []byte) (Preview, quiz.Result) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Preview{}, quiz.Result{
			Valid:  false,
			Errors: []string{"Error parsing JSON: " + err.Error()},
		}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return Preview{}, quiz.Validate(decoded)
	}

	quiz.DefaultMetadata(obj)
	return Preview{Object: obj, Raw: raw}, quiz.Validate(obj)
}
