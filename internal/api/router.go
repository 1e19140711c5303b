// Package api serves the dashboard page, the update API and the WebSocket channel.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ruslano69/launchdash/pkg/dashboard"
	"github.com/ruslano69/launchdash/pkg/source"
)

// Info describes the loaded dataset for /healthz and exports.
type Info struct {
	Source      string
	Checksum    string
	RawChecksum string
	Columns     source.Columns
}

// RequestTimeout bounds every non-WebSocket request.
const RequestTimeout = 30 * time.Second

type server struct {
	dash *dashboard.Dashboard
	info Info
	page []byte
}

// NewRouter wires the dashboard into the chi router.
func NewRouter(d *dashboard.Dashboard, info Info) (http.Handler, error) {
	if info.Columns == (source.Columns{}) {
		info.Columns = source.DefaultColumns()
	}
	page, err := renderPage(d.Layout())
	if err != nil {
		return nil, err
	}
	s := &server{dash: d, info: info, page: page}

	r := chi.NewRouter()
	r.Use(zerologMiddleware)
	r.Use(middleware.Recoverer)

	// WebSocket сессии живут дольше таймаута запросов
	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))

		r.Get("/", s.handleIndex)
		r.Get("/healthz", s.handleHealthz)
		r.Handle("/metrics", promhttp.Handler())

		r.Route("/api", func(r chi.Router) {
			r.Get("/layout", s.handleLayout)
			r.Post("/update", s.handleUpdate)
		})

		r.Get("/chart/{file}", s.handleChart)
		r.Get("/export/{file}", s.handleExport)
	})

	return r, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
