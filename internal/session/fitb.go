// Package session holds the interactive practice state machines: the
// fill-in-the-blank answering/grading session and the per-character typing
// practice grid. Sessions are transient; nothing here is persisted except
// an explicitly committed question edit, which goes back out through the
// injected saver.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quizvault/quizvault/internal/quiz"
)

type FITBState string

const (
	FITBNotStarted FITBState = "not_started"
	FITBInProgress FITBState = "in_progress"
	FITBSubmitted  FITBState = "submitted"
)

// Saver hands an edited quiz to the persistence collaborator.
type Saver func(ctx context.Context, z quiz.Quiz) error

// blankRef addresses one blank: question index plus answer key.
type blankRef struct {
	question int
	key      string
}

// FITBSession runs one quiz attempt. The mutex makes every method safe
// for concurrent handlers; the UI may have several requests for the same
// session in flight.
type FITBSession struct {
	mu      sync.Mutex
	quiz    quiz.Quiz
	state   FITBState
	answers map[blankRef]string
	editing map[int]bool
	save    Saver
	now     func() time.Time
	gen     uint64
}

// NewFITB builds a session over a stored quiz. The saver receives the
// updated quiz when a question edit is committed; it may be nil for
// read-only practice.
func NewFITB(z quiz.Quiz, save Saver) (*FITBSession, error) {
	if len(z.Questions) == 0 {
		return nil, errors.New("quiz has no questions")
	}
	return &FITBSession{
		quiz:    z,
		state:   FITBNotStarted,
		answers: map[blankRef]string{},
		editing: map[int]bool{},
		save:    save,
		now:     time.Now,
	}, nil
}

func (s *FITBSession) State() FITBState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Quiz returns a snapshot; the question slice is copied so a later edit
// cannot mutate it under the caller.
func (s *FITBSession) Quiz() quiz.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotQuiz()
}

func (s *FITBSession) snapshotQuiz() quiz.Quiz {
	z := s.quiz
	z.Questions = append([]quiz.Question(nil), s.quiz.Questions...)
	return z
}

// Generation increments on every mutation; a UI holding a snapshot can
// discard results produced against an older generation.
func (s *FITBSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *FITBSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != FITBNotStarted {
		return fmt.Errorf("cannot start from state %s", s.state)
	}
	s.state = FITBInProgress
	s.gen++
	return nil
}

// SetAnswer captures the user's input for one blank.
func (s *FITBSession) SetAnswer(question int, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != FITBInProgress {
		return fmt.Errorf("cannot answer in state %s", s.state)
	}
	if question < 0 || question >= len(s.quiz.Questions) {
		return fmt.Errorf("question %d out of range", question)
	}
	if !containsKey(s.quiz.Questions[question].Blanks(), key) {
		return fmt.Errorf("question %d has no blank %q", question, key)
	}
	s.answers[blankRef{question, key}] = value
	s.gen++
	return nil
}

func (s *FITBSession) Answer(question int, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers[blankRef{question, key}]
}

// BlankGrade is the graded outcome of one blank.
type BlankGrade struct {
	Key     string `json:"key"`
	Given   string `json:"given"`
	Want    string `json:"want"`
	Correct bool   `json:"correct"`
}

// QuestionGrade groups the blank grades of one question.
type QuestionGrade struct {
	QuestionID string       `json:"question_id"`
	Blanks     []BlankGrade `json:"blanks"`
}

// Report is the result of submitting a session.
type Report struct {
	Questions []QuestionGrade `json:"questions"`
	Total     int             `json:"total"`
	Correct   int             `json:"correct"`
}

// Submit grades every blank and moves the session to Submitted. A blank is
// correct when the trimmed, lower-cased input equals the trimmed,
// lower-cased stored answer; exact equality only, no partial credit.
func (s *FITBSession) Submit() (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != FITBInProgress {
		return Report{}, fmt.Errorf("cannot submit in state %s", s.state)
	}
	for idx, on := range s.editing {
		if on {
			return Report{}, fmt.Errorf("question %d is still being edited", idx)
		}
	}

	var rep Report
	for qi, q := range s.quiz.Questions {
		qg := QuestionGrade{QuestionID: q.ID}
		for _, key := range q.Blanks() {
			given := s.answers[blankRef{qi, key}]
			want := q.Answers[key]
			g := BlankGrade{
				Key:     key,
				Given:   given,
				Want:    want,
				Correct: gradeBlank(given, want),
			}
			qg.Blanks = append(qg.Blanks, g)
			rep.Total++
			if g.Correct {
				rep.Correct++
			}
		}
		rep.Questions = append(rep.Questions, qg)
	}
	s.state = FITBSubmitted
	s.gen++
	return rep, nil
}

func gradeBlank(given, want string) bool {
	return strings.ToLower(strings.TrimSpace(given)) == strings.ToLower(strings.TrimSpace(want))
}

// BeginEdit puts one question into its editing sub-state. Only valid while
// the session is in progress.
func (s *FITBSession) BeginEdit(question int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != FITBInProgress {
		return fmt.Errorf("cannot edit in state %s", s.state)
	}
	if question < 0 || question >= len(s.quiz.Questions) {
		return fmt.Errorf("question %d out of range", question)
	}
	s.editing[question] = true
	s.gen++
	return nil
}

func (s *FITBSession) CancelEdit(question int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.editing, question)
	s.gen++
}

func (s *FITBSession) Editing(question int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing[question]
}

// SaveEdit commits a question edit: replacement text plus the full ordered
// answer list. The number of blank markers in the new text must equal the
// number of answers; otherwise the edit is rejected, the question keeps
// its prior content and the editing sub-state stays active. On success the
// answers are renumbered a1..aN from the given order, so a removal can
// never leave a non-contiguous key set behind, the parent quiz's UpdatedAt
// is refreshed and the whole quiz is handed to the saver.
func (s *FITBSession) SaveEdit(ctx context.Context, question int, newText string, answers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing[question] {
		return fmt.Errorf("question %d is not being edited", question)
	}
	markers := quiz.BlankMarkerCount(newText)
	if markers != len(answers) {
		return fmt.Errorf("blank count mismatch: %d markers in text, %d answers provided", markers, len(answers))
	}

	q := &s.quiz.Questions[question]
	q.Q = newText
	q.Answers = map[string]string{}
	for i, a := range answers {
		q.Answers["a"+strconv.Itoa(i+1)] = a
	}
	s.quiz.UpdatedAt = s.now().UnixMilli()

	if s.save != nil {
		if err := s.save(ctx, s.snapshotQuiz()); err != nil {
			return fmt.Errorf("persist edited quiz: %w", err)
		}
	}

	// Stale inputs for this question are dropped; its blank set changed.
	for ref := range s.answers {
		if ref.question == question {
			delete(s.answers, ref)
		}
	}
	delete(s.editing, question)
	s.gen++
	return nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
