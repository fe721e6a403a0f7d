// Package collection derives the notebook/section/part hierarchy from the
// stored quiz set and filters it by the active selection and a free-text
// search. It is a thin, pure layer over data the store already returns.
package collection

import (
	"sort"
	"strings"

	"github.com/quizvault/quizvault/internal/quiz"
)

// Selection is the active (notebook, section, part) triple. Empty fields
// are wildcards.
type Selection struct {
	Notebook string `json:"notebook"`
	Section  string `json:"section"`
	Part     string `json:"part"`
}

// Notebooks lists the distinct notebooks across all quizzes, sorted,
// empties dropped.
func Notebooks(quizzes []quiz.Quiz) []string {
	return distinct(quizzes, func(quiz.Quiz) bool { return true }, func(z quiz.Quiz) string { return z.Notebook })
}

// Sections lists the distinct sections within one notebook.
func Sections(quizzes []quiz.Quiz, notebook string) []string {
	return distinct(quizzes,
		func(z quiz.Quiz) bool { return z.Notebook == notebook },
		func(z quiz.Quiz) string { return z.Section })
}

// Parts lists the distinct parts within one notebook/section pair.
func Parts(quizzes []quiz.Quiz, notebook, section string) []string {
	return distinct(quizzes,
		func(z quiz.Quiz) bool { return z.Notebook == notebook && z.Section == section },
		func(z quiz.Quiz) string { return z.Part })
}

// Filter returns the quizzes matching the selection's set fields exactly
// and, when search is non-empty, containing it (case-insensitive) in the
// title or any hierarchy field.
func Filter(quizzes []quiz.Quiz, sel Selection, search string) []quiz.Quiz {
	needle := strings.ToLower(search)
	out := make([]quiz.Quiz, 0, len(quizzes))
	for _, z := range quizzes {
		if sel.Notebook != "" && z.Notebook != sel.Notebook {
			continue
		}
		if sel.Section != "" && z.Section != sel.Section {
			continue
		}
		if sel.Part != "" && z.Part != sel.Part {
			continue
		}
		if needle != "" && !matchesSearch(z, needle) {
			continue
		}
		out = append(out, z)
	}
	return out
}

func matchesSearch(z quiz.Quiz, needle string) bool {
	for _, field := range []string{z.Title, z.Notebook, z.Section, z.Part} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func distinct(quizzes []quiz.Quiz, keep func(quiz.Quiz) bool, field func(quiz.Quiz) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, z := range quizzes {
		if !keep(z) {
			continue
		}
		v := field(z)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
