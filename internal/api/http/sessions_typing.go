package http

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/quizvault/quizvault/internal/session"
	"github.com/quizvault/quizvault/internal/store"
)

type typingSessionView struct {
	SessionID  string                 `json:"session_id"`
	Lines      []session.LineSnapshot `json:"lines"`
	FocusLine  int                    `json:"focus_line"`
	FocusPos   int                    `json:"focus_pos"`
	Generation uint64                 `json:"generation"`
}

func viewTyping(id string, s *session.TypingSession) typingSessionView {
	lines, fl, fp := s.Snapshot()
	return typingSessionView{
		SessionID:  id,
		Lines:      lines,
		FocusLine:  fl,
		FocusPos:   fp,
		Generation: s.Generation(),
	}
}

func CreateTypingSessionHandler(st store.Store, reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuizID string `json:"quiz_id"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		z, err := st.Get(r.Context(), req.QuizID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			httpError(w, status, err.Error())
			return
		}
		s, err := session.NewTyping(z)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		id := reg.AddTyping(s)
		writeJSON(w, http.StatusCreated, viewTyping(id, s))
	}
}

func typingFromRequest(w http.ResponseWriter, r *http.Request, reg *session.Registry) (string, *session.TypingSession, bool) {
	id := chi.URLParam(r, "sessionID")
	s, err := reg.Typing(id)
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return "", nil, false
	}
	return id, s, true
}

func GetTypingSessionHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := typingFromRequest(w, r, reg)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, viewTyping(id, s))
	}
}

// TypingKeyHandler applies one keystroke. "char" keys address a cell
// explicitly (the UI knows which box the user typed into); Enter and
// Backspace act on the current focus, mirroring how the grid behaves.
func TypingKeyHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := typingFromRequest(w, r, reg)
		if !ok {
			return
		}
		var req struct {
			Key  string `json:"key"` // "char" | "enter" | "backspace"
			Line int    `json:"line"`
			Pos  int    `json:"pos"`
			Char string `json:"char"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		switch req.Key {
		case "char":
			if utf8.RuneCountInString(req.Char) != 1 {
				httpError(w, http.StatusBadRequest, "char must be a single character")
				return
			}
			ch, _ := utf8.DecodeRuneInString(req.Char)
			if err := s.Input(req.Line, req.Pos, ch); err != nil {
				httpError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
		case "enter":
			s.Enter()
		case "backspace":
			s.Backspace()
		default:
			httpError(w, http.StatusBadRequest, "unknown key")
			return
		}
		writeJSON(w, http.StatusOK, viewTyping(id, s))
	}
}

// TypingSelectHandler records a click or shift-click on a cell; DELETE
// clears the selection (blur).
func TypingSelectHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := typingFromRequest(w, r, reg)
		if !ok {
			return
		}
		var req struct {
			Line  int  `json:"line"`
			Pos   int  `json:"pos"`
			Shift bool `json:"shift"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		var err error
		if req.Shift {
			err = s.ShiftClick(req.Line, req.Pos)
		} else {
			err = s.Click(req.Line, req.Pos)
		}
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewTyping(id, s))
	}
}

func TypingClearSelectionHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := typingFromRequest(w, r, reg)
		if !ok {
			return
		}
		s.ClearSelection()
		writeJSON(w, http.StatusOK, viewTyping(id, s))
	}
}

func TypingRevealHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := typingFromRequest(w, r, reg)
		if !ok {
			return
		}
		if err := s.ToggleReveal(); err != nil {
			httpError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewTyping(id, s))
	}
}

// DropSessionHandler discards a session of either kind.
func DropSessionHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg.Drop(chi.URLParam(r, "sessionID"))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
