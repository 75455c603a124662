package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oshokin/autoclicker/internal/logger"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Handler upgrades /ws requests and attaches them to a Broadcaster.
type Handler struct {
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader
}

// NewHandler creates the HTTP handler of the status feed.
func NewHandler(b *Broadcaster) *Handler {
	return &Handler{
		broadcaster: b,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
	}
}

// Routes returns a mux serving the feed on /ws.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)

	return mux
}

// ServeHTTP upgrades the connection and keeps reading until the peer leaves.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnKV(h.broadcaster.ctx, "WebSocket upgrade failed", "error", err)

		return
	}

	logger.InfoKV(h.broadcaster.ctx, "Status client connected", "remote", r.RemoteAddr)

	c := h.broadcaster.AddClient(conn)

	go func() {
		defer func() {
			h.broadcaster.RemoveClient(c)
			logger.InfoKV(h.broadcaster.ctx, "Status client disconnected", "remote", r.RemoteAddr)
		}()

		// The feed is one-way; reads only detect the peer closing.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Serve runs the feed on lis until ctx is done.
func Serve(ctx context.Context, lis net.Listener, h *Handler) error {
	srv := &http.Server{
		Handler:           h.Routes(),
		ReadHeaderTimeout: shutdownTimeout,
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		logger.Info(ctx, "Shutting down status feed")

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "Status feed shutdown failed", "error", err)
		}

		h.broadcaster.Close()
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve status feed: %w", err)
	}

	<-done

	return nil
}

// checkOrigin accepts non-browser clients and pages served from the same host.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return u.Host == r.Host
}
