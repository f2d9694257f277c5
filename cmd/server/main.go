package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"symptom-assistant/internal/analysis"
	"symptom-assistant/internal/config"
	"symptom-assistant/internal/consultation"
	"symptom-assistant/internal/knowledge"
	"symptom-assistant/internal/report"
)

func main() {
	envFile := flag.String("env", "", "path to load env from")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// 2. Knowledge base
	kb := knowledge.Default()
	if cfg.KnowledgeFile != "" {
		kb, err = knowledge.LoadFile(cfg.KnowledgeFile)
		if err != nil {
			log.Fatalf("failed to load knowledge base: %v", err)
		}
	}
	slog.Info("knowledge base ready",
		"diseases", len(kb.Diseases()),
		"languages", kb.Languages(),
		"default_language", kb.DefaultLanguage())

	// 3. Services
	analyzer := analysis.New(kb)
	repo := consultation.NewRepository()
	reportSvc := report.NewService(cfg.ReportFontPaths)
	consultationSvc := consultation.NewService(repo, analyzer, reportSvc, consultation.Options{
		DefaultLanguage: cfg.DefaultLanguage,
		ThinkingDelay:   cfg.ThinkingDelay,
	})
	consultationHandler := consultation.NewHandler(consultationSvc, kb)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		consultation.RegisterRoutes(r, consultationHandler)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
