package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lernwerk/vokabel/internal/api"
	"github.com/lernwerk/vokabel/internal/auth"
)

// sessionIdle is how long an untouched API session is kept.
const sessionIdle = 30 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	sc := rt.cfg.Server
	if sc.JWTSecret == "" {
		return errors.New("server.jwt_secret is not set (VOKABEL_SERVER__JWT_SECRET)")
	}

	srv := api.NewServer(api.Options{
		Words:          rt.store.WordRepo(),
		Results:        rt.store.ResultRepo(),
		Profiles:       rt.store.ProfileRepo(),
		Stats:          rt.store.StatRepo(),
		Auth:           auth.NewService(sc.JWTSecret, sc.TokenTTL),
		Logger:         rt.log,
		AllowedOrigins: sc.AllowedOrigins,
		RequestTimeout: sc.RequestTimeout,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go srv.ExpireSessions(ctx, sessionIdle)

	httpSrv := &http.Server{
		Addr:              sc.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("listening", "addr", sc.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
