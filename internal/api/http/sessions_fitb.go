package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quizvault/quizvault/internal/quiz"
	"github.com/quizvault/quizvault/internal/session"
	"github.com/quizvault/quizvault/internal/store"
)

type fitbSessionView struct {
	SessionID  string            `json:"session_id"`
	State      session.FITBState `json:"state"`
	Quiz       quiz.Quiz         `json:"quiz"`
	Generation uint64            `json:"generation"`
}

func viewFITB(id string, s *session.FITBSession) fitbSessionView {
	return fitbSessionView{
		SessionID:  id,
		State:      s.State(),
		Quiz:       s.Quiz(),
		Generation: s.Generation(),
	}
}

// CreateFITBSessionHandler starts a practice session over a stored FITB
// quiz. Committed question edits flow back into the store.
func CreateFITBSessionHandler(st store.Store, reg *session.Registry) http.HandlerFunc {
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
		if z.IsCodeQuiz {
			httpError(w, http.StatusBadRequest, "code-practice quizzes use typing sessions")
			return
		}
		s, err := session.NewFITB(z, st.Put)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		id := reg.AddFITB(s)
		writeJSON(w, http.StatusCreated, viewFITB(id, s))
	}
}

func fitbFromRequest(w http.ResponseWriter, r *http.Request, reg *session.Registry) (string, *session.FITBSession, bool) {
	id := chi.URLParam(r, "sessionID")
	s, err := reg.FITB(id)
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return "", nil, false
	}
	return id, s, true
}

func GetFITBSessionHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := fitbFromRequest(w, r, reg)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, viewFITB(id, s))
	}
}

func StartFITBSessionHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := fitbFromRequest(w, r, reg)
		if !ok {
			return
		}
		if err := s.Start(); err != nil {
			httpError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewFITB(id, s))
	}
}

func SetFITBAnswerHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := fitbFromRequest(w, r, reg)
		if !ok {
			return
		}
		var req struct {
			Question int    `json:"question"`
			Key      string `json:"key"`
			Value    string `json:"value"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := s.SetAnswer(req.Question, req.Key, req.Value); err != nil {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewFITB(id, s))
	}
}

func SubmitFITBSessionHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, s, ok := fitbFromRequest(w, r, reg)
		if !ok {
			return
		}
		rep, err := s.Submit()
		if err != nil {
			httpError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func questionIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 {
		httpError(w, http.StatusBadRequest, "bad question index")
		return 0, false
	}
	return idx, true
}

func BeginFITBEditHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := fitbFromRequest(w, r, reg)
		if !ok {
			return
		}
		idx, ok := questionIndex(w, r)
		if !ok {
			return
		}
		if err := s.BeginEdit(idx); err != nil {
			httpError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewFITB(id, s))
	}
}

func CancelFITBEditHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := fitbFromRequest(w, r, reg)
		if !ok {
			return
		}
		idx, ok := questionIndex(w, r)
		if !ok {
			return
		}
		s.CancelEdit(idx)
		writeJSON(w, http.StatusOK, viewFITB(id, s))
	}
}

// SaveFITBEditHandler commits a question edit. A blank/answer count
// mismatch is rejected with the engine's descriptive error and the
// question stays in its editing sub-state.
func SaveFITBEditHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := fitbFromRequest(w, r, reg)
		if !ok {
			return
		}
		idx, ok := questionIndex(w, r)
		if !ok {
			return
		}
		var req struct {
			Text    string   `json:"text"`
			Answers []string `json:"answers"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := s.SaveEdit(r.Context(), idx, req.Text, req.Answers); err != nil {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewFITB(id, s))
	}
}
