package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/quizvault/quizvault/internal/quiz"
)

// CellState classifies one character cell of the typing grid.
type CellState string

const (
	CellEmpty     CellState = "empty"
	CellCorrect   CellState = "correct"
	CellIncorrect CellState = "incorrect"
	CellRevealed  CellState = "revealed"
)

type cell struct {
	target   rune
	input    rune
	hasInput bool
	revealed bool
}

type typingLine struct {
	hint  string
	cells []cell
}

// selection is a contiguous cell range within one line. start is the
// anchor set by a plain click; end moves on shift-click and may be on
// either side of the anchor.
type selection struct {
	line, start, end int
}

// TypingSession is the character-grid state machine for code-practice
// quizzes. Each cell holds at most one typed character plus a revealed
// flag; the grid is fixed-size, addressed by (line, column). The mutex
// makes every method safe for concurrent handlers; a fast typist's UI
// can have several keystroke requests in flight at once.
type TypingSession struct {
	mu    sync.Mutex
	lines []typingLine
	focus struct{ line, pos int }
	sel   *selection
	gen   uint64
}

// NewTyping builds a session from a code-practice quiz. Questions with an
// empty or whitespace-only answer are excluded up front.
func NewTyping(z quiz.Quiz) (*TypingSession, error) {
	if !z.IsCodeQuiz {
		return nil, errors.New("not a code-practice quiz")
	}
	s := &TypingSession{}
	for _, q := range z.Questions {
		if strings.TrimSpace(q.Answer) == "" {
			continue
		}
		line := typingLine{hint: q.Hint}
		for _, r := range q.Answer {
			line.cells = append(line.cells, cell{target: r})
		}
		s.lines = append(s.lines, line)
	}
	if len(s.lines) == 0 {
		return nil, errors.New("quiz has no typeable lines")
	}
	return s, nil
}

func (s *TypingSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Focus reports the cell that currently holds input focus.
func (s *TypingSession) Focus() (line, pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus.line, s.focus.pos
}

// LineCount and LineLen describe the grid shape, which never changes after
// construction.
func (s *TypingSession) LineCount() int       { return len(s.lines) }
func (s *TypingSession) LineLen(line int) int { return len(s.lines[line].cells) }
func (s *TypingSession) Hint(line int) string { return s.lines[line].hint }

func (s *TypingSession) checkCell(line, pos int) error {
	if line < 0 || line >= len(s.lines) {
		return fmt.Errorf("line %d out of range", line)
	}
	if pos < 0 || pos >= len(s.lines[line].cells) {
		return fmt.Errorf("cell %d out of range on line %d", pos, line)
	}
	return nil
}

// Input types one character into a cell. Focus moves to that cell, and if
// the character matches the target and a next cell exists on the same
// line, focus auto-advances to it. Advancing never crosses the line end;
// that takes an explicit Enter.
func (s *TypingSession) Input(line, pos int, r rune) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCell(line, pos); err != nil {
		return err
	}
	c := &s.lines[line].cells[pos]
	c.input = r
	c.hasInput = true
	s.focus.line, s.focus.pos = line, pos
	if r == c.target && pos+1 < len(s.lines[line].cells) {
		s.focus.pos = pos + 1
	}
	s.gen++
	return nil
}

// Enter moves focus to the first cell of the next line, if there is one.
func (s *TypingSession) Enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focus.line+1 < len(s.lines) {
		s.focus.line++
		s.focus.pos = 0
		s.gen++
	}
}

// Backspace clears backwards from the focused cell. A cell holding input
// is cleared in place. An empty cell at column 0 of a later line clears
// the last cell of the previous line and moves focus there; an empty cell
// elsewhere clears its left neighbour and moves focus left.
func (s *TypingSession) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, pos := s.focus.line, s.focus.pos
	c := &s.lines[line].cells[pos]
	switch {
	case c.hasInput:
		c.input = 0
		c.hasInput = false
	case pos > 0:
		prev := &s.lines[line].cells[pos-1]
		prev.input = 0
		prev.hasInput = false
		s.focus.pos = pos - 1
	case line > 0:
		lastPos := len(s.lines[line-1].cells) - 1
		prev := &s.lines[line-1].cells[lastPos]
		prev.input = 0
		prev.hasInput = false
		s.focus.line, s.focus.pos = line-1, lastPos
	default:
		return
	}
	s.gen++
}

// Click focuses a cell and starts a single-cell selection there.
func (s *TypingSession) Click(line, pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.click(line, pos)
}

func (s *TypingSession) click(line, pos int) error {
	if err := s.checkCell(line, pos); err != nil {
		return err
	}
	s.focus.line, s.focus.pos = line, pos
	s.sel = &selection{line: line, start: pos, end: pos}
	s.gen++
	return nil
}

// ShiftClick extends the active selection's end within the same line. With
// no selection, or on a different line, it behaves like a plain click.
func (s *TypingSession) ShiftClick(line, pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCell(line, pos); err != nil {
		return err
	}
	if s.sel == nil || s.sel.line != line {
		return s.click(line, pos)
	}
	s.sel.end = pos
	s.gen++
	return nil
}

// ClearSelection drops the active selection (the blur case).
func (s *TypingSession) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel != nil {
		s.sel = nil
		s.gen++
	}
}

// Selection reports the active range, if any.
func (s *TypingSession) Selection() (line, start, end int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel == nil {
		return 0, 0, 0, false
	}
	return s.sel.line, s.sel.start, s.sel.end, true
}

// ToggleReveal flips the revealed state of the selected range. Revealing
// marks every cell in range revealed and pre-fills it with its target
// character; un-revealing (when the selection anchor is already revealed)
// clears the revealed flag but leaves any typed input as-is.
func (s *TypingSession) ToggleReveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel == nil {
		return errors.New("no active selection")
	}
	lo, hi := s.sel.start, s.sel.end
	if hi < lo {
		lo, hi = hi, lo
	}
	cells := s.lines[s.sel.line].cells
	unreveal := cells[s.sel.start].revealed
	for i := lo; i <= hi; i++ {
		c := &cells[i]
		if unreveal {
			c.revealed = false
		} else {
			c.revealed = true
			c.input = c.target
			c.hasInput = true
		}
	}
	s.gen++
	return nil
}

// CellStateAt classifies one cell for rendering.
func (s *TypingSession) CellStateAt(line, pos int) CellState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cellState(line, pos)
}

func (s *TypingSession) cellState(line, pos int) CellState {
	c := s.lines[line].cells[pos]
	switch {
	case c.revealed:
		return CellRevealed
	case !c.hasInput:
		return CellEmpty
	case c.input == c.target:
		return CellCorrect
	default:
		return CellIncorrect
	}
}

// LineSnapshot is a render-ready view of one line.
type LineSnapshot struct {
	Hint   string      `json:"hint,omitempty"`
	Target string      `json:"target"`
	Input  []string    `json:"input"`
	States []CellState `json:"states"`
}

// Snapshot exports the whole grid plus focus for the UI.
func (s *TypingSession) Snapshot() ([]LineSnapshot, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineSnapshot, len(s.lines))
	for li, ln := range s.lines {
		snap := LineSnapshot{Hint: ln.hint}
		var target strings.Builder
		for pos, c := range ln.cells {
			target.WriteRune(c.target)
			in := ""
			if c.hasInput {
				in = string(c.input)
			}
			snap.Input = append(snap.Input, in)
			snap.States = append(snap.States, s.cellState(li, pos))
		}
		snap.Target = target.String()
		out[li] = snap
	}
	return out, s.focus.line, s.focus.pos
}
