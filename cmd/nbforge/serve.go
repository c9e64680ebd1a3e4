package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/littlemissdragon/nbforge/internal/hints"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built site from the host",
	Long: `Serve the built Jekyll site with a plain static file server, no
docker required. Nothing is rebuilt on change; run 'build-site' again
after converting to refresh the content. Use 'jekyll' for a container
with live rebuilds.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg := env.Config
	siteDir := filepath.Join(env.Root(), cfg.Jekyll.Site)
	if info, err := os.Stat(siteDir); err != nil || !info.IsDir() {
		return fmt.Errorf("no built site at %s%s", siteDir, hints.ForMissingSite())
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(env.Log))
	r.Handle("/*", http.FileServer(http.Dir(siteDir)))

	addr := fmt.Sprintf("localhost:%d", cfg.Jekyll.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Fprintf(env.Stdout, "Serving %s at http://%s (Ctrl-C to stop)\n", cfg.Jekyll.Site, addr)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			env.Log.Error("server shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, "Server stopped.")
	return nil
}

// requestLogger logs one line per request through the environment's logger.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Millisecond))
		})
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
