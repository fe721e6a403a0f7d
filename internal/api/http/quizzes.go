package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quizvault/quizvault/internal/collection"
	"github.com/quizvault/quizvault/internal/ingest"
	"github.com/quizvault/quizvault/internal/quiz"
	"github.com/quizvault/quizvault/internal/storage"
	"github.com/quizvault/quizvault/internal/store"
)

// previewResponse pairs the parsed candidate with its validation outcome.
// The UI shows the error list and only offers Save when Valid is true.
type previewResponse struct {
	Preview    map[string]any `json:"preview,omitempty"`
	Validation quiz.Result    `json:"validation"`
}

// PreviewQuizHandler parses the raw request body (pasted text or an
// uploaded file's contents) and reports validation. Nothing is stored.
func PreviewQuizHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "read body: "+err.Error())
			return
		}
		preview, res := ingest.Parse(raw)
		writeJSON(w, http.StatusOK, previewResponse{Preview: preview.Object, Validation: res})
	}
}

type saveQuizRequest struct {
	Raw  string    `json:"raw"`
	Meta quiz.Meta `json:"meta"`
}

type saveQuizResponse struct {
	ID          string    `json:"id"`
	Quiz        quiz.Quiz `json:"quiz"`
	DuplicateOf []string  `json:"duplicate_of,omitempty"`
}

// SaveQuizHandler runs the full authoring path: parse, validate, apply
// the save gate to the confirmed metadata, normalize, persist, and retain
// the raw upload. Both gates are independent; both must pass.
func SaveQuizHandler(st store.Store, blobs storage.BlobStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveQuizRequest
		if !decodeBody(w, r, &req) {
			return
		}

		preview, res := ingest.Parse([]byte(req.Raw))
		if !res.Valid {
			writeJSON(w, http.StatusUnprocessableEntity, previewResponse{Validation: res})
			return
		}
		if err := quiz.CheckSaveGate(req.Meta); err != nil {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		z, err := quiz.Normalize(preview.Object, req.Meta, time.Now())
		if err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}

		// Dedup hinting only: same fingerprint does not block the save.
		var dupes []string
		if same, err := st.GetAllByField(r.Context(), "sourceHash", z.SourceHash); err == nil {
			for _, d := range same {
				dupes = append(dupes, d.ID)
			}
		}

		if err := st.Put(r.Context(), z); err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := blobs.Put("uploads/"+z.ID, strings.NewReader(req.Raw)); err != nil {
			log.Warn("retain raw upload", zap.String("quiz_id", z.ID), zap.Error(err))
		}
		log.Info("quiz saved", zap.String("quiz_id", z.ID), zap.Int("questions", len(z.Questions)))
		writeJSON(w, http.StatusCreated, saveQuizResponse{ID: z.ID, Quiz: z, DuplicateOf: dupes})
	}
}

// ListQuizzesHandler filters the stored set by the active hierarchy
// selection and a free-text search.
func ListQuizzesHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := st.GetAll(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sel := collection.Selection{
			Notebook: r.URL.Query().Get("notebook"),
			Section:  r.URL.Query().Get("section"),
			Part:     r.URL.Query().Get("part"),
		}
		search := strings.TrimSpace(r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, collection.Filter(all, sel, search))
	}
}

// HierarchyHandler returns the cascading option sets for the sidebar and
// the save-time pickers: all notebooks, the sections of the selected
// notebook, the parts of the selected notebook/section.
func HierarchyHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := st.GetAll(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		notebook := r.URL.Query().Get("notebook")
		section := r.URL.Query().Get("section")
		resp := struct {
			Notebooks []string `json:"notebooks"`
			Sections  []string `json:"sections"`
			Parts     []string `json:"parts"`
		}{
			Notebooks: collection.Notebooks(all),
		}
		if notebook != "" {
			resp.Sections = collection.Sections(all, notebook)
		}
		if notebook != "" && section != "" {
			resp.Parts = collection.Parts(all, notebook, section)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func GetQuizHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		z, err := st.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			httpError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, z)
	}
}

func DeleteQuizHandler(st store.Store, blobs storage.BlobStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		if err := st.Delete(r.Context(), id); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			httpError(w, status, err.Error())
			return
		}
		if err := blobs.Delete("uploads/" + id); err != nil {
			log.Warn("drop retained upload", zap.String("quiz_id", id), zap.Error(err))
		}
		log.Info("quiz deleted", zap.String("quiz_id", id))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": id})
	}
}

// GetQuizSourceHandler streams back the retained raw upload.
func GetQuizSourceHandler(blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, err := blobs.Get("uploads/" + chi.URLParam(r, "quizID"))
		if err != nil {
			httpError(w, http.StatusNotFound, "no retained source for quiz")
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.Copy(w, rc)
	}
}
