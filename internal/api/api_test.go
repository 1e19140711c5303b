package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/ruslano69/launchdash/pkg/dashboard"
	"github.com/ruslano69/launchdash/pkg/launch"
	"github.com/ruslano69/launchdash/pkg/processors"
	"github.com/ruslano69/launchdash/pkg/source"
	"github.com/ruslano69/launchdash/pkg/xlsx"
)

// newTestServer поднимает httptest-сервер на трех записях из примеров.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tbl, err := launch.NewTable([]launch.Record{
		{Site: "A", Class: launch.Success, PayloadMass: 500, BoosterVersion: "v1.0"},
		{Site: "A", Class: launch.Failure, PayloadMass: 1500, BoosterVersion: "v1.1"},
		{Site: "B", Class: launch.Success, PayloadMass: 2500, BoosterVersion: "FT"},
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	d, err := dashboard.New(tbl, dashboard.Options{})
	if err != nil {
		t.Fatalf("dashboard.New() error = %v", err)
	}
	h, err := NewRouter(d, Info{Source: "test.csv", Checksum: "deadbeef", RawChecksum: "cafebabe"})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// updateResponse mirrors dashboard.Result with typed figures.
type updateResponse struct {
	Outputs struct {
		Pie     *dashboard.PieFigure     `json:"success-pie-chart.figure"`
		Scatter *dashboard.ScatterFigure `json:"success-payload-scatter-chart.figure"`
	} `json:"outputs"`
	Error string `json:"error"`
}

func postUpdate(t *testing.T, srv *httptest.Server, body string) (int, updateResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/update", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/update error = %v", err)
	}
	defer resp.Body.Close()
	var out updateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := healthResponse{Status: "ok", Rows: 3, Sites: []string{"A", "B"}, Source: "test.csv", Checksum: "deadbeef", RawChecksum: "cafebabe"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("healthz mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexAndLayout(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv.URL+"/")
	body, _ := io.ReadAll(resp.Body)
	for _, s := range []string{"SpaceX Launch Records Dashboard", `id="site-dropdown"`, `id="success-pie-chart"`, "plotly"} {
		if !strings.Contains(string(body), s) {
			t.Errorf("index page missing %q", s)
		}
	}

	resp = get(t, srv.URL+"/api/layout")
	var l dashboard.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	if l.Dropdown.ID != dashboard.SiteDropdownID || len(l.Dropdown.Options) != 3 {
		t.Errorf("layout dropdown = %+v", l.Dropdown)
	}
	if l.Slider.Value != [2]float64{500, 2500} {
		t.Errorf("layout slider value = %v", l.Slider.Value)
	}
}

func TestUpdate(t *testing.T) {
	srv := newTestServer(t)

	status, res := postUpdate(t, srv, `{"changed":["site-dropdown.value"],"inputs":{"site-dropdown.value":"ALL","payload-slider.value":[0,1000]}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, error %q", status, res.Error)
	}
	if res.Outputs.Pie == nil || res.Outputs.Scatter == nil {
		t.Fatalf("outputs = %+v", res.Outputs)
	}
	if diff := cmp.Diff([]dashboard.Slice{{Label: "A", Value: 1}, {Label: "B", Value: 1}}, res.Outputs.Pie.Slices); diff != "" {
		t.Errorf("pie slices (-want +got):\n%s", diff)
	}
	if pts := res.Outputs.Scatter.Points; len(pts) != 1 || pts[0].X != 500 {
		t.Errorf("scatter points = %+v", pts)
	}

	status, res = postUpdate(t, srv, `{"changed":["payload-slider.value"],"inputs":{"site-dropdown.value":"B","payload-slider.value":[0,10000]}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, error %q", status, res.Error)
	}
	if res.Outputs.Pie != nil {
		t.Error("pie returned for slider-only change")
	}
	if pts := res.Outputs.Scatter.Points; len(pts) != 1 || pts[0].X != 2500 {
		t.Errorf("scatter points = %+v", pts)
	}
}

func TestUpdate_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"changed":`},
		{"site wrong type", `{"inputs":{"site-dropdown.value":7}}`},
		{"range wrong arity", `{"inputs":{"payload-slider.value":[1]}}`},
		{"unknown prop", `{"changed":["nope.value"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := postUpdate(t, srv, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if res.Error == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestChart(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		contentType string
	}{
		{"pie svg", "/chart/success-pie-chart.svg", http.StatusOK, "image/svg+xml"},
		{"scatter png", "/chart/success-payload-scatter-chart.png?site=A&low=0&high=10000", http.StatusOK, "image/png"},
		{"empty pie", "/chart/success-pie-chart.svg?site=nowhere", http.StatusNoContent, ""},
		{"empty scatter", "/chart/success-payload-scatter-chart.svg?low=5000&high=1000", http.StatusNoContent, ""},
		{"unknown chart", "/chart/other.svg", http.StatusNotFound, ""},
		{"unknown format", "/chart/success-pie-chart.gif", http.StatusNotFound, ""},
		{"bad bound", "/chart/success-payload-scatter-chart.svg?low=abc", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.URL+tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.contentType != "" && resp.Header.Get("Content-Type") != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", resp.Header.Get("Content-Type"), tt.contentType)
			}
		})
	}
}

func TestExport(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv.URL+"/export/launches.csv?site=ALL&low=0&high=1000")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("csv status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	want := "Launch Site,class,Payload Mass (kg),Booster Version Category\nA,1,500,v1.0\n"
	if string(body) != want {
		t.Errorf("csv body = %q, want %q", body, want)
	}

	resp = get(t, srv.URL+"/export/launches.xlsx?site=A")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("xlsx status = %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	header, rows, err := xlsx.ReadSheet(bytes.NewReader(data), "")
	if err != nil {
		t.Fatalf("ReadSheet() error = %v", err)
	}
	recs, err := source.Decode(header, rows, source.DefaultColumns())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(recs) != 2 || recs[0].Site != "A" || recs[1].Site != "A" {
		t.Errorf("xlsx records = %+v", recs)
	}

	for _, file := range []string{"other.json", "launches.xlsx.gz", "launches.json.zst"} {
		if resp := get(t, srv.URL+"/export/"+file); resp.StatusCode != http.StatusNotFound {
			t.Errorf("export %s status = %d, want 404", file, resp.StatusCode)
		}
	}
}

func TestExport_CompressedCSV(t *testing.T) {
	srv := newTestServer(t)
	want := "Launch Site,class,Payload Mass (kg),Booster Version Category\nA,1,500,v1.0\n"

	tests := []struct {
		file        string
		contentType string
	}{
		{"launches.csv.gz", "application/gzip"},
		{"launches.csv.zst", "application/zstd"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			resp := get(t, srv.URL+"/export/"+tt.file+"?site=ALL&low=0&high=1000")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			packed, _ := io.ReadAll(resp.Body)
			body, err := processors.Decompress(tt.file, packed)
			if err != nil {
				t.Fatalf("Decompress() error = %v", err)
			}
			if string(body) != want {
				t.Errorf("body = %q, want %q", body, want)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)
	postUpdate(t, srv, `{}`)

	resp := get(t, srv.URL+"/metrics")
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "launchdash_updates_total") {
		t.Error("metrics missing launchdash_updates_total")
	}
}

func TestWebSocket(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	req := `{"id":"7","changed":["site-dropdown.value"],"inputs":{"site-dropdown.value":"A"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	var got struct {
		ID string `json:"id"`
		updateResponse
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.ID != "7" {
		t.Errorf("id = %q, want 7", got.ID)
	}
	if got.Outputs.Pie == nil || got.Outputs.Pie.Title != "Total Successful Launches from Site: A" {
		t.Errorf("pie = %+v", got.Outputs.Pie)
	}

	// Ошибка не закрывает сессию
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"8","inputs":{"payload-slider.value":"x"}}`)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	var bad wsResponse
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if bad.ID != "8" || bad.Error == "" {
		t.Errorf("error reply = %+v", bad)
	}
}

func TestWebSocket_OversizedFrameClosesSession(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	// Сервер может закрыть соединение раньше, чем запись завершится
	big := `{"id":"9","inputs":{"site-dropdown.value":"` + strings.Repeat("A", maxUpdateBody) + `"}}`
	_ = conn.WriteMessage(websocket.TextMessage, []byte(big))

	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("ReadMessage() expected error after oversized frame")
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) && ce.Code != websocket.CloseMessageTooBig {
		t.Errorf("close code = %d, want %d", ce.Code, websocket.CloseMessageTooBig)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		t.Errorf("session not closed by server: %v", err)
	}
}
