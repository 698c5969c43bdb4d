package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitelint/sitelint/internal/model"
	"github.com/sitelint/sitelint/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP reporting and scan-trigger surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *scanEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", handleHealth)
	r.Post("/scan/{contentID}", handleScan(env))
	r.Get("/issues", handleIssues(env))
	r.Get("/stats", handleStats(env))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScan runs a synchronous scan. A failed scan is reported as an
// error status, never as an empty success: stale issues stay visible
// until a scan actually completes.
func handleScan(env *scanEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := chi.URLParam(r, "contentID")

		result, err := env.Engine.Scan(r.Context(), contentID)
		if err != nil {
			zap.L().Error("scan failed",
				zap.String("content_id", contentID),
				zap.Error(err),
			)
			writeError(w, http.StatusBadGateway, err)
			return
		}
		env.Stats.Invalidate()

		writeJSON(w, http.StatusOK, map[string]any{
			"content_id": result.ContentID,
			"scanned_at": result.ScannedAt,
			"errors":     result.Count(model.SeverityError),
			"warnings":   result.Count(model.SeverityWarning),
			"notices":    result.Count(model.SeverityNotice),
			"violations": result.Violations,
		})
	}
}

func handleIssues(env *scanEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := store.Filter{
			SiteID:    cfg.Site.ID,
			ContentID: q.Get("content_id"),
			RuleSlug:  q.Get("rule"),
			Severity:  model.Severity(q.Get("severity")),
			Limit:     100,
		}
		if v := q.Get("ignored"); v != "" {
			ignored := v == "true" || v == "1"
			f.Ignored = &ignored
		}

		issues, err := env.Store.ListIssues(r.Context(), f)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if issues == nil {
			issues = []model.IssueRecord{}
		}
		writeJSON(w, http.StatusOK, issues)
	}
}

func handleStats(env *scanEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := env.Stats.Summary(r.Context(), cfg.Site.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
