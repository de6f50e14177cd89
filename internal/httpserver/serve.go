package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/andrebq/shop/internal/logutil"
)

// Serve handles requests on bind until ctx is cancelled,
// every request goes through AccessLog
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	log := logutil.GetOrDefault(ctx)
	server := http.Server{
		Handler:           AccessLog(log, handler),
		Addr:              bind,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute * 5,
	}
	firstErr := make(chan error, 1)
	done := make(chan struct{})
	go serveInBackground(ctx, &server, firstErr, done)
	<-done
	return <-firstErr
}

func serveInBackground(ctx context.Context, server *http.Server, firstErr chan<- error, done chan<- struct{}) {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", server.Addr).Logger()
	defer close(done)
	serverCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		defer close(firstErr)
		log.Info().Msg("Starting HTTP server")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			return
		} else if err != nil {
			firstErr <- err
		}
	}()
	select {
	case <-serverCtx.Done():
	case <-ctx.Done():
		log.Info().Msg("Initiating shutdown process")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelShutdown()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Warn().Err(err).Msg("Shutdown did not complete cleanly")
			return
		}
		log.Info().Msg("Shutdown completed")
	}
}
