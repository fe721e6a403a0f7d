package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/quizvault/quizvault/internal/codequiz"
	"github.com/quizvault/quizvault/internal/quiz"
	"github.com/quizvault/quizvault/internal/store"
)

// PreviewCodeHandler transforms pasted source code into the code-variant
// question list without saving anything.
func PreviewCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "read body: "+err.Error())
			return
		}
		questions, err := codequiz.Transform(string(src))
		if err != nil {
			if errors.Is(err, codequiz.ErrNoCodeLines) {
				httpError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
	}
}

type saveCodeQuizRequest struct {
	Source string    `json:"source"`
	Meta   quiz.Meta `json:"meta"`
}

// SaveCodeQuizHandler transforms and persists a code-practice quiz in one
// step. The metadata save gate applies here too; an empty title is
// defaulted before the gate runs, matching the authoring flow.
func SaveCodeQuizHandler(st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveCodeQuizRequest
		if !decodeBody(w, r, &req) {
			return
		}
		questions, err := codequiz.Transform(req.Source)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if req.Meta.Title == "" {
			req.Meta.Title = "Code Practice Quiz"
		}
		if err := quiz.CheckSaveGate(req.Meta); err != nil {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		z, err := quiz.NormalizeCode(questions, req.Meta, time.Now())
		if err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := st.Put(r.Context(), z); err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		log.Info("code quiz saved", zap.String("quiz_id", z.ID), zap.Int("lines", len(z.Questions)))
		writeJSON(w, http.StatusCreated, saveQuizResponse{ID: z.ID, Quiz: z})
	}
}
