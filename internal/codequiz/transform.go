// Package codequiz turns pasted source code into a typing-practice quiz:
// every non-comment line becomes a question whose answer is the exact line
// text, with comments surfaced as hints on the next code line.
package codequiz

import (
	"errors"
	"strings"

	"github.com/quizvault/quizvault/internal/quiz"
)

// ErrNoCodeLines is reported when the input contains no code at all
// (empty, or comments and blank lines only). It is recoverable: nothing
// partial is produced.
var ErrNoCodeLines = errors.New("no code lines detected")

const commentMarker = "#"

// Transform scans source line by line, single pass. Blank lines are
// skipped. A comment-only line contributes its text (marker stripped,
// trimmed) to a pending-comments accumulator. A code line emits one
// question: the code part with any inline comment and trailing whitespace
// stripped, and a hint built from the pending comments joined with " | ",
// then the inline comment if present.
func Transform(source string) ([]quiz.Question, error) {
	var (
		questions []quiz.Question
		pending   []string
	)

	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, commentMarker) {
			pending = append(pending, strings.TrimSpace(strings.TrimPrefix(trimmed, commentMarker)))
			continue
		}

		codePart := line
		inline := ""
		if i := strings.Index(line, commentMarker); i >= 0 {
			codePart = line[:i]
			inline = strings.TrimSpace(line[i+len(commentMarker):])
		}
		codePart = strings.TrimRight(codePart, " \t")

		hint := strings.Join(pending, " | ")
		pending = pending[:0]
		if inline != "" {
			if hint != "" {
				hint += " | " + inline
			} else {
				hint = inline
			}
		}

		if strings.TrimSpace(codePart) != "" {
			questions = append(questions, quiz.Question{Q: codePart, Hint: hint, Answer: codePart})
		}
	}

	if len(questions) == 0 {
		return nil, ErrNoCodeLines
	}
	return questions, nil
}
