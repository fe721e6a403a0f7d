package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	api "github.com/quizvault/quizvault/internal/api/http"
	"github.com/quizvault/quizvault/internal/config"
	"github.com/quizvault/quizvault/internal/db"
	"github.com/quizvault/quizvault/internal/session"
	"github.com/quizvault/quizvault/internal/storage"
	"github.com/quizvault/quizvault/internal/store"
	"github.com/quizvault/quizvault/pkg/logger"
)

func main() {
	cfgPath := flag.String("config", "", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl := logger.New(cfg.LogPath, cfg.LogDebug)
	defer zl.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		zl.Fatal("db open failed", zap.Error(err))
	}
	st := store.NewSQLStore(dbh, cfg.DBDriver)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		zl.Fatal("blob store", zap.Error(err))
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	api.Routes(r, api.Deps{
		Store:    st,
		Blobs:    bs,
		Sessions: session.NewRegistry(),
		Log:      zl,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		zl.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("serve", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
	_ = dbh.Close()
	zl.Info("stopped")
}
