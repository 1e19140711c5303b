package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/launchdash/pkg/dashboard"
	"github.com/ruslano69/launchdash/pkg/launch"
	"github.com/ruslano69/launchdash/pkg/processors"
	"github.com/ruslano69/launchdash/pkg/render"
	"github.com/ruslano69/launchdash/pkg/source"
	"github.com/ruslano69/launchdash/pkg/xlsx"
)

// maxUpdateBody caps the size of an update request or WebSocket frame.
const maxUpdateBody = 1 << 20

// exportCompressionLevel is used for both gzip and zstd exports.
const exportCompressionLevel = 6

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.page)
}

func (s *server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Layout())
}

type healthResponse struct {
	Status      string   `json:"status"`
	Rows        int      `json:"rows"`
	Sites       []string `json:"sites"`
	Source      string   `json:"source,omitempty"`
	Checksum    string   `json:"checksum,omitempty"`
	RawChecksum string   `json:"raw_checksum,omitempty"`
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	t := s.dash.Table()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Rows:        t.Len(),
		Sites:       t.Sites(),
		Source:      s.info.Source,
		Checksum:    s.info.Checksum,
		RawChecksum: s.info.RawChecksum,
	})
}

// ────────────────────────────────────────────────────────────────────────────
// POST /api/update
// ────────────────────────────────────────────────────────────────────────────

func (s *server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var u dashboard.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBody)).Decode(&u); err != nil {
		updatesTotal.WithLabelValues("http", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	res, err := s.apply("http", u)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// apply runs an update and records metrics for it.
func (s *server) apply(transport string, u dashboard.Update) (*dashboard.Result, error) {
	start := time.Now()
	res, err := s.dash.Apply(u)
	updateDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())

	if err != nil {
		updatesTotal.WithLabelValues(transport, "error").Inc()
		log.Warn().Err(err).Str("transport", transport).Strs("changed", u.Changed).Msg("update rejected")
		return nil, err
	}
	updatesTotal.WithLabelValues(transport, "ok").Inc()
	return res, nil
}

func statusFor(err error) int {
	if errors.Is(err, dashboard.ErrBadInput) || errors.Is(err, dashboard.ErrUnknownProp) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// selection reads site, low and high from the query. Missing values take the
// initial layout values.
func (s *server) selection(r *http.Request) (string, launch.PayloadRange, error) {
	l := s.dash.Layout()
	q := r.URL.Query()

	site := l.Dropdown.Value
	if v := q.Get("site"); v != "" {
		site = v
	}

	rng := l.Slider.Range()
	for _, p := range []struct {
		key string
		dst *float64
	}{{"low", &rng.Low}, {"high", &rng.High}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", launch.PayloadRange{}, fmt.Errorf("%w: %s=%q", dashboard.ErrBadInput, p.key, v)
		}
		*p.dst = f
	}
	return site, rng, nil
}

// splitFile splits "name.ext" into name and lower-case ext without the dot.
func splitFile(file string) (string, string) {
	ext := path.Ext(file)
	return strings.TrimSuffix(file, ext), strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ────────────────────────────────────────────────────────────────────────────
// GET /chart/{id}.{svg|png}
// ────────────────────────────────────────────────────────────────────────────

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	id, ext := splitFile(chi.URLParam(r, "file"))
	format, err := render.ParseFormat(ext)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	site, rng, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var fig any
	switch id {
	case dashboard.PieChartID:
		fig = s.dash.Pie(site)
	case dashboard.ScatterChartID:
		fig = s.dash.Scatter(site, rng)
	default:
		writeError(w, http.StatusNotFound, "unknown chart "+id)
		return
	}

	var buf bytes.Buffer
	if err := render.Figure(&buf, fig, format); err != nil {
		if errors.Is(err, render.ErrEmptyFigure) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Error().Err(err).Str("chart", id).Msg("render failed")
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	renderTotal.WithLabelValues(id, string(format)).Inc()

	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(buf.Bytes())
}

// ────────────────────────────────────────────────────────────────────────────
// GET /export/launches.{csv|csv.gz|csv.zst|xlsx}
// ────────────────────────────────────────────────────────────────────────────

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	codec, plain := processors.DetectCodec(file)
	name, ext := splitFile(plain)
	if name != "launches" || (ext != "csv" && ext != "xlsx") || (codec != processors.CodecNone && ext != "csv") {
		writeError(w, http.StatusNotFound, "unknown export "+file)
		return
	}
	site, rng, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records := s.dash.Selection(site, rng)

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if ext == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = xlsx.WriteRecords(&buf, "Launches", s.info.Columns.Header(), records)
	} else {
		err = source.WriteCSV(&buf, s.info.Columns, records)
	}
	if err == nil && codec != processors.CodecNone {
		var packed []byte
		packed, err = processors.Compress(codec, buf.Bytes(), exportCompressionLevel)
		buf.Reset()
		buf.Write(packed)
		contentType = codec.ContentType()
	}
	if err != nil {
		log.Error().Err(err).Str("format", ext).Str("codec", string(codec)).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	format := ext
	if codec != processors.CodecNone {
		format += "." + string(codec)
	}
	exportTotal.WithLabelValues(format).Inc()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	_, _ = w.Write(buf.Bytes())
}
