package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/youssefsiam38/artifactpg/auth"
	"github.com/youssefsiam38/artifactpg/internal/config"
	"github.com/youssefsiam38/artifactpg/ui"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the artifact browser and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	be, closeBackend, err := openBackend(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	if err := be.Migrate(ctx); err != nil {
		return err
	}
	if err := be.Start(ctx); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}
	defer be.Stop(context.Background())

	handler, err := newServerHandler(be, a.cfg, a.logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			"addr", server.Addr,
			"store", a.cfg.Store.Driver,
			"development", a.cfg.Auth.Development,
			"ask", be.CanAsk(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GetShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}

// newServerHandler assembles the public routes, the UI under the base path
// and the authentication middleware in front of all of them.
func newServerHandler(be backend, cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	base := strings.TrimSuffix(cfg.Server.BasePath, "/")

	authn, err := auth.New(&auth.Config{
		Development:     cfg.Auth.Development,
		Users:           auth.Users(cfg.Auth.Users),
		CookieName:      cfg.Auth.CookieName,
		SessionTTL:      cfg.GetSessionTTL(),
		SecureCookie:    cfg.Auth.SecureCookie,
		DefaultRedirect: base + "/",
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	uiHandler := ui.UIHandler(be.Store(), be, &ui.Config{
		BasePath:        base,
		ReadOnly:        cfg.Server.ReadOnly,
		PageSize:        cfg.Server.PageSize,
		RefreshInterval: cfg.GetRefreshInterval(),
		Logger:          logger,
	})

	mux := http.NewServeMux()
	mux.Handle(auth.DefaultLoginPath, authn.LoginHandler())
	mux.Handle(auth.DefaultLogoutPath, authn.LogoutHandler())
	mux.HandleFunc("GET /health", handleHealth)
	if base == "" {
		mux.Handle("/", uiHandler)
	} else {
		mux.Handle(base+"/", http.StripPrefix(base, uiHandler))
		mux.Handle("GET /{$}", http.RedirectHandler(base+"/", http.StatusFound))
	}

	return logRequests(logger, authn.Middleware(mux)), nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps the event stream working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
