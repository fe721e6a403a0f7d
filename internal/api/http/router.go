package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quizvault/quizvault/internal/session"
	"github.com/quizvault/quizvault/internal/storage"
	"github.com/quizvault/quizvault/internal/store"
)

// Deps carries everything the handlers need. main builds one and mounts
// Routes on its router.
type Deps struct {
	Store    store.Store
	Blobs    storage.BlobStore
	Sessions *session.Registry
	Log      *zap.Logger
}

// Routes mounts the full API surface.
func Routes(r chi.Router, d Deps) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/quizzes", func(qr chi.Router) {
		qr.Post("/preview", PreviewQuizHandler())
		qr.Post("/", SaveQuizHandler(d.Store, d.Blobs, d.Log))
		qr.Get("/", ListQuizzesHandler(d.Store))
		qr.Get("/hierarchy", HierarchyHandler(d.Store))
		qr.Get("/{quizID}", GetQuizHandler(d.Store))
		qr.Delete("/{quizID}", DeleteQuizHandler(d.Store, d.Blobs, d.Log))
		qr.Get("/{quizID}/source", GetQuizSourceHandler(d.Blobs))
	})

	r.Route("/code-quizzes", func(cr chi.Router) {
		cr.Post("/preview", PreviewCodeHandler())
		cr.Post("/", SaveCodeQuizHandler(d.Store, d.Log))
	})

	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/fitb", CreateFITBSessionHandler(d.Store, d.Sessions))
		sr.Route("/fitb/{sessionID}", func(fr chi.Router) {
			fr.Get("/", GetFITBSessionHandler(d.Sessions))
			fr.Post("/start", StartFITBSessionHandler(d.Sessions))
			fr.Post("/answers", SetFITBAnswerHandler(d.Sessions))
			fr.Post("/submit", SubmitFITBSessionHandler(d.Sessions))
			fr.Post("/questions/{index}/edit", BeginFITBEditHandler(d.Sessions))
			fr.Delete("/questions/{index}/edit", CancelFITBEditHandler(d.Sessions))
			fr.Put("/questions/{index}", SaveFITBEditHandler(d.Sessions))
		})

		sr.Post("/typing", CreateTypingSessionHandler(d.Store, d.Sessions))
		sr.Route("/typing/{sessionID}", func(tr chi.Router) {
			tr.Get("/", GetTypingSessionHandler(d.Sessions))
			tr.Post("/keys", TypingKeyHandler(d.Sessions))
			tr.Post("/selection", TypingSelectHandler(d.Sessions))
			tr.Delete("/selection", TypingClearSelectionHandler(d.Sessions))
			tr.Post("/reveal", TypingRevealHandler(d.Sessions))
		})

		sr.Delete("/{sessionID}", DropSessionHandler(d.Sessions))
	})
}
