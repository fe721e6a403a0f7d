package quiz

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const maxQuestions = 300

var (
	hierarchyRe = regexp.MustCompile(`^[A-Za-z0-9_\- ]*$`)
)

// Result is the outcome of validating one candidate quiz object. Errors
// holds every violated rule, in a stable order: title, notebook, section,
// part, then questions and per-question checks in index order.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks a decoded JSON value against the quiz schema. It is pure
// and exhaustive: every violation is collected, nothing is thrown. The only
// short-circuit is a non-object root.
//
// Note the schema permits empty title/notebook/section/part; the stricter
// non-empty requirement lives in CheckSaveGate and is enforced separately
// at save time.
func Validate(candidate any) Result {
	var errs []string

	obj, ok := candidate.(map[string]any)
	if !ok || obj == nil {
		return Result{Valid: false, Errors: []string{"Root must be an object."}}
	}

	if s, ok := obj["title"].(string); !ok || utf8.RuneCountInString(s) > 120 {
		errs = append(errs, "title: string (0-120 chars) required.")
	}
	for _, field := range []string{"notebook", "section", "part"} {
		s, ok := obj[field].(string)
		if !ok || utf8.RuneCountInString(s) > 100 || !hierarchyRe.MatchString(s) {
			errs = append(errs, fmt.Sprintf("%s: string (0-100 chars, A-Z a-z 0-9 _ - space) required.", field))
		}
	}

	questions, ok := obj["questions"].([]any)
	switch {
	case !ok || len(questions) == 0:
		errs = append(errs, "questions: non-empty array required.")
	case len(questions) > maxQuestions:
		errs = append(errs, fmt.Sprintf("questions: max %d allowed.", maxQuestions))
	default:
		for idx, item := range questions {
			errs = append(errs, validateQuestion(idx, item)...)
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func validateQuestion(idx int, item any) []string {
	var errs []string

	qObj, isObj := item.(map[string]any)
	qText, isStr := "", false
	if isObj {
		qText, isStr = qObj["q"].(string)
	}
	if !isObj || !isStr || !textLenOK(qText) {
		errs = append(errs, fmt.Sprintf("questions[%d]: q must be a string (1-500 chars).", idx))
	}
	if !isObj {
		return errs
	}

	answerKeys := sortedAnswerKeys(qObj)
	if len(answerKeys) == 0 {
		errs = append(errs, fmt.Sprintf("questions[%d]: at least one answer (a1, a2, ...) required.", idx))
	}
	for _, key := range answerKeys {
		if s, ok := qObj[key].(string); !ok || !textLenOK(s) {
			errs = append(errs, fmt.Sprintf("questions[%d]: %s must be a string (1-500 chars).", idx, key))
		}
	}
	return errs
}

func textLenOK(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= 500
}

// sortedAnswerKeys lists every aN key on the object in numeric order, so
// error output is deterministic regardless of map iteration.
func sortedAnswerKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if answerKeyRe.MatchString(k) {
			keys = append(keys, k)
		}
	}
	sortAnswerKeys(keys)
	return keys
}
