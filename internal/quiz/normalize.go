package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases, collapses runs of non [a-z0-9] to a single hyphen
// and trims leading/trailing hyphens.
func Slugify(s string) string {
	s = slugRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// Fingerprint is a short, non-cryptographic change fingerprint of the
// pre-save content: FNV-64a over the canonical JSON serialization, hex
// encoded to 16 chars. Any field change alters it; collisions are
// acceptable. It exists for dedup hinting and debugging, never for
// integrity.
func Fingerprint(content any) string {
	buf, err := json.Marshal(content)
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	_, _ = h.Write(buf)
	return fmt.Sprintf("%016x", h.Sum64())
}

// CheckSaveGate enforces the stricter save-time requirements on the
// user-confirmed metadata: trimmed, non-empty notebook/section/part of at
// most 100 chars in the hierarchy charset, and a trimmed, non-empty title
// of at most 120 chars. The schema itself (Validate) permits empty values;
// the two gates are independent and both must pass before a record is
// created.
func CheckSaveGate(meta Meta) error {
	m := meta.trimmed()
	for field, v := range map[string]string{
		"notebook": m.Notebook,
		"section":  m.Section,
		"part":     m.Part,
	} {
		if v == "" || utf8.RuneCountInString(v) > 100 || !hierarchyRe.MatchString(v) {
			return fmt.Errorf("%s: non-empty value of at most 100 chars (A-Z a-z 0-9 _ - space) required", field)
		}
	}
	if m.Title == "" || utf8.RuneCountInString(m.Title) > 120 {
		return errors.New("title: non-empty value of at most 120 chars required")
	}
	return nil
}

// Normalize turns a validated preview object plus user-confirmed metadata
// into the record to persist: metadata applied, id derived from the title
// slug and save timestamp, content fingerprint computed and sequential
// q1.. ids assigned in array order.
//
// Callers must have checked Validate(preview).Valid first; Normalize only
// asserts the parts it depends on rather than re-validating.
func Normalize(preview map[string]any, meta Meta, now time.Time) (Quiz, error) {
	rawQuestions, _ := preview["questions"].([]any)
	if len(rawQuestions) == 0 {
		return Quiz{}, errors.New("normalize: preview has no questions; validate before normalizing")
	}

	questions := make([]Question, 0, len(rawQuestions))
	for idx, item := range rawQuestions {
		obj, ok := item.(map[string]any)
		if !ok {
			return Quiz{}, fmt.Errorf("normalize: questions[%d] is not an object; validate before normalizing", idx)
		}
		q := QuestionFromObject(obj)
		q.ID = "q" + strconv.Itoa(idx+1)
		questions = append(questions, q)
	}

	z := Quiz{
		Notebook:  pickString(meta.Notebook, preview["notebook"]),
		Section:   pickString(meta.Section, preview["section"]),
		Part:      pickString(meta.Part, preview["part"]),
		Title:     pickString(meta.Title, preview["title"]),
		Questions: questions,
	}
	millis := now.UnixMilli()
	z.ID = Slugify(z.Title) + "-" + strconv.FormatInt(millis, 10)
	z.CreatedAt = millis
	z.UpdatedAt = millis
	z.SourceHash = Fingerprint(preview)
	return z, nil
}

// NormalizeCode builds the persisted record for a code-practice quiz from
// already-transformed questions. An empty title falls back to a default so
// the derived id always has a slug.
func NormalizeCode(questions []Question, meta Meta, now time.Time) (Quiz, error) {
	if len(questions) == 0 {
		return Quiz{}, errors.New("normalize: code quiz has no questions")
	}
	if meta.Title == "" {
		meta.Title = "Code Practice Quiz"
	}

	qs := make([]Question, len(questions))
	copy(qs, questions)
	for i := range qs {
		qs[i].ID = "q" + strconv.Itoa(i+1)
	}

	z := Quiz{
		Notebook:   meta.Notebook,
		Section:    meta.Section,
		Part:       meta.Part,
		Title:      meta.Title,
		Questions:  qs,
		IsCodeQuiz: true,
	}
	millis := now.UnixMilli()
	z.ID = Slugify(z.Title) + "-" + strconv.FormatInt(millis, 10)
	z.CreatedAt = millis
	z.UpdatedAt = millis
	z.SourceHash = Fingerprint(qs)
	return z, nil
}

// DefaultMetadata fills absent or non-string metadata fields with the
// empty string so Validate always sees strings. The input object is
// modified in place and returned.
func DefaultMetadata(obj map[string]any) map[string]any {
	for _, field := range []string{"notebook", "section", "part", "title"} {
		if _, ok := obj[field].(string); !ok {
			obj[field] = ""
		}
	}
	return obj
}

func pickString(primary string, fallback any) string {
	if primary != "" {
		return primary
	}
	if s, ok := fallback.(string); ok {
		return s
	}
	return ""
}
