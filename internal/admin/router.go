// Package admin serves the state of a running simulation over HTTP.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

const liveWriteTimeout = 5 * time.Second

// RouterConfig configures the admin router.
type RouterConfig struct {
	Store   *Store
	Version string

	// Defaults to local origins when nil.
	CORSOrigins []string
}

// NewRouter builds the admin routes. It starts nothing, so it can be served
// with httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}

	h := handlers{
		store:   cfg.Store,
		version: cfg.Version,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", handleHealthCheck)
	r.Get("/version", h.handleVersion)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/stats", h.handleStats)
	r.Get("/snapshot.png", h.handleSnapshotImage)
	r.Get("/live", h.handleLive)
	return r
}

type handlers struct {
	store    *Store
	version  string
	upgrader websocket.Upgrader
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h handlers) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.version))
}

func (h handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.store.Snapshot()
	if !ok {
		writeError(w, "no frame simulated yet", http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func (h handlers) handleSnapshotImage(w http.ResponseWriter, r *http.Request) {
	img, ok := h.store.Image()
	if !ok {
		writeError(w, "no frame rendered yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

// handleLive streams snapshots as JSON text messages until the client goes
// away or the store is closed.
func (h handlers) handleLive(w http.ResponseWriter, r *http.Request) {
	snapshots, unsubscribe := h.store.Subscribe()
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logs.WithTag("remote_addr", r.RemoteAddr).Debug(err)
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(liveWriteTimeout))
				return
			}

			b, err := json.Marshal(snap)
			if err != nil {
				logs.Warn(errors.New("encoding snapshot failed").Wrap(err))
				return
			}

			conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				logs.WithTag("remote_addr", r.RemoteAddr).Debug(err)
				return
			}

		case <-gone:
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func writeError(w http.ResponseWriter, message string, code int) {
	b, _ := json.Marshal(map[string]string{"error": message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}
