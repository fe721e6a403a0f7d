package quiz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// answerKeyRe matches the sparse answer-field convention: a1, a2, ...
var answerKeyRe = regexp.MustCompile(`^a\d+$`)

// BlankRe matches one blank marker in question text: a run of three or
// more underscores.
var BlankRe = regexp.MustCompile(`___+`)

// Question is one entry in a quiz. FITB questions carry Answers keyed
// a1..aN; code-practice questions carry Answer (the exact line to type)
// and an optional Hint assembled from comments.
type Question struct {
	ID      string
	Q       string
	Hint    string
	Answer  string
	Answers map[string]string
}

// AnswerKeys returns the question's answer keys sorted by numeric index.
func (q Question) AnswerKeys() []string {
	keys := make([]string, 0, len(q.Answers))
	for k := range q.Answers {
		keys = append(keys, k)
	}
	sortAnswerKeys(keys)
	return keys
}

func sortAnswerKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i][1:])
		b, _ := strconv.Atoi(keys[j][1:])
		return a < b
	})
}

// Blanks returns the contiguous run of answer keys a1, a2, ... stopping at
// the first missing index. A sparse key set (a1, a3) therefore yields only
// a1; that matches how the rest of the system reads questions.
func (q Question) Blanks() []string {
	var blanks []string
	for i := 1; ; i++ {
		k := "a" + strconv.Itoa(i)
		if _, ok := q.Answers[k]; !ok {
			break
		}
		blanks = append(blanks, k)
	}
	return blanks
}

// Segments splits the question text on blank markers. A question with N
// markers yields N+1 literal segments; segment i is followed by blank i.
func (q Question) Segments() []string {
	return BlankRe.Split(q.Q, -1)
}

// BlankMarkerCount counts blank markers in s.
func BlankMarkerCount(s string) int {
	return len(BlankRe.FindAllString(s, -1))
}

// MarshalJSON flattens Answers into top-level a1..aN keys so the persisted
// shape matches the wire format.
func (q Question) MarshalJSON() ([]byte, error) {
	obj := map[string]any{"q": q.Q}
	if q.ID != "" {
		obj["id"] = q.ID
	}
	if q.Hint != "" {
		obj["hint"] = q.Hint
	}
	if q.Answer != "" {
		obj["answer"] = q.Answer
	}
	for k, v := range q.Answers {
		obj[k] = v
	}
	return json.Marshal(obj)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	fromObject(obj, q)
	return nil
}

// fromObject fills q from a decoded JSON object, ignoring non-string values
// for known fields. Callers that need strictness run Validate first.
func fromObject(obj map[string]any, q *Question) {
	if s, ok := obj["id"].(string); ok {
		q.ID = s
	}
	if s, ok := obj["q"].(string); ok {
		q.Q = s
	}
	if s, ok := obj["hint"].(string); ok {
		q.Hint = s
	}
	if s, ok := obj["answer"].(string); ok {
		q.Answer = s
	}
	for k, v := range obj {
		if !answerKeyRe.MatchString(k) {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if q.Answers == nil {
			q.Answers = map[string]string{}
		}
		q.Answers[k] = s
	}
}

// QuestionFromObject converts one decoded JSON object into a Question.
func QuestionFromObject(obj map[string]any) Question {
	var q Question
	fromObject(obj, &q)
	return q
}

// Quiz is the persisted record: hierarchy placement plus an ordered
// question list. CreatedAt/UpdatedAt are epoch milliseconds.
type Quiz struct {
	ID         string     `json:"id"`
	Notebook   string     `json:"notebook"`
	Section    string     `json:"section"`
	Part       string     `json:"part"`
	Title      string     `json:"title"`
	Questions  []Question `json:"questions"`
	CreatedAt  int64      `json:"createdAt"`
	UpdatedAt  int64      `json:"updatedAt"`
	SourceHash string     `json:"sourceHash"`
	IsCodeQuiz bool       `json:"isCodeQuiz,omitempty"`
}

func (z Quiz) String() string {
	return fmt.Sprintf("%s (%s/%s/%s, %d questions)",
		z.Title, z.Notebook, z.Section, z.Part, len(z.Questions))
}

// Meta is the user-confirmed placement entered at save time.
type Meta struct {
	Notebook string `json:"notebook"`
	Section  string `json:"section"`
	Part     string `json:"part"`
	Title    string `json:"title"`
}

func (m Meta) trimmed() Meta {
	return Meta{
		Notebook: strings.TrimSpace(m.Notebook),
		Section:  strings.TrimSpace(m.Section),
		Part:     strings.TrimSpace(m.Part),
		Title:    strings.TrimSpace(m.Title),
	}
}
