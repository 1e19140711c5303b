package api

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/ruslano69/launchdash/pkg/dashboard"
)

// plotlyURL is the Plotly.js bundle the page renders figures with.
const plotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// ─────────────────────────────────────────────────────────────────────────────
// HTML rendering - dashboard page
// ─────────────────────────────────────────────────────────────────────────────

// renderPage builds the page once. The layout, initial figures included, is
// embedded as JSON; the script wires controls to /ws with /api/update as fallback.
func renderPage(l dashboard.Layout) ([]byte, error) {
	layoutJSON, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>` + html.EscapeString(l.Title) + `</title>
<script src="` + plotlyURL + `"></script>
` + pageCSS() + `
</head>
<body>
<div class="container">
`)
	b.WriteString(`<h1>` + html.EscapeString(l.Title) + `</h1>`)

	// Dropdown
	d := l.Dropdown
	b.WriteString(`<div class="card"><label class="label" for="` + d.ID + `">` + html.EscapeString(l.SiteLabel) + `</label>`)
	b.WriteString(`<select id="` + html.EscapeString(d.ID) + `">`)
	b.WriteString(`<option value="" disabled>` + html.EscapeString(d.Placeholder) + `</option>`)
	for _, o := range d.Options {
		sel := ""
		if o.Value == d.Value {
			sel = ` selected`
		}
		b.WriteString(`<option value="` + html.EscapeString(o.Value) + `"` + sel + `>` + html.EscapeString(o.Label) + `</option>`)
	}
	b.WriteString(`</select></div>`)

	b.WriteString(`<div class="card"><div id="` + html.EscapeString(l.PieGraph.ID) + `" class="graph"></div></div>`)

	// Slider
	s := l.Slider
	b.WriteString(`<div class="card"><span class="label">` + html.EscapeString(l.SliderLabel) + `</span>`)
	b.WriteString(`<div class="slider" id="` + html.EscapeString(s.ID) + `">`)
	for i, name := range []string{"low", "high"} {
		fmt.Fprintf(&b, `<input type="range" data-end="%s" min="%g" max="%g" step="%g" value="%g">`,
			name, s.Min, s.Max, s.Step, s.Value[i])
	}
	fmt.Fprintf(&b, `<span class="range-value">%g – %g</span>`, s.Value[0], s.Value[1])
	b.WriteString(`</div></div>`)

	b.WriteString(`<div class="card"><span class="label">` + html.EscapeString(l.ScatterLabel) + `</span>`)
	b.WriteString(`<div id="` + html.EscapeString(l.ScatterGraph.ID) + `" class="graph"></div></div>`)

	b.WriteString(`<div class="footer"><a href="/export/launches.csv" id="export-csv">CSV</a> · ` +
		`<a href="/export/launches.csv.gz" id="export-csv-gz">CSV.GZ</a> · ` +
		`<a href="/export/launches.xlsx" id="export-xlsx">XLSX</a></div>`)

	// json.Marshal экранирует <, > и &, поэтому вставка в <script> безопасна
	b.WriteString(`<script id="layout" type="application/json">`)
	b.Write(layoutJSON)
	b.WriteString(`</script>`)
	b.WriteString(`<script>` + pageScript + `</script>`)
	b.WriteString(`</div></body></html>`)

	return []byte(b.String()), nil
}

func pageCSS() string {
	return `<style>
  * { box-sizing:border-box; margin:0; padding:0; }
  body { font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif; background:#f8fafc; color:#1e293b; padding:24px; }
  .container { max-width:1200px; margin:0 auto; }
  h1 { text-align:center; color:#503D36; font-size:40px; margin-bottom:24px; }
  .card { background:#fff; border:1px solid #e2e8f0; border-radius:12px; padding:16px 20px; margin-bottom:20px; }
  .label { display:block; font-size:12px; font-weight:600; color:#64748b; text-transform:uppercase; letter-spacing:.05em; margin-bottom:8px; }
  select { width:100%; padding:8px; font-size:14px; }
  .slider { display:flex; align-items:center; gap:12px; }
  .slider input { flex:1; }
  .range-value { font-family:monospace; font-size:13px; min-width:140px; text-align:right; }
  .graph { min-height:420px; }
  .footer { text-align:center; padding:20px; font-size:12px; color:#64748b; }
  .footer a { color:#3b82f6; text-decoration:none; }
</style>`
}

const pageScript = `
(function () {
  var layout = JSON.parse(document.getElementById("layout").textContent);
  var siteProp = layout.dropdown.id + ".value";
  var sliderProp = layout.slider.id + ".value";
  var outputs = {};
  outputs[layout.pie_graph.id + ".figure"] = layout.pie_graph.id;
  outputs[layout.scatter_graph.id + ".figure"] = layout.scatter_graph.id;

  function draw(elID, fig) {
    if (!fig) { return; }
    var data = [];
    if (fig.kind === "pie") {
      data.push({ type: "pie", labels: fig.slices.map(function (s) { return s.label; }),
                  values: fig.slices.map(function (s) { return s.value; }) });
    } else {
      fig.categories.forEach(function (c) {
        var pts = fig.points.filter(function (p) { return p.color === c; });
        data.push({ type: "scatter", mode: "markers", name: c,
                    x: pts.map(function (p) { return p.x; }),
                    y: pts.map(function (p) { return p.y; }),
                    text: pts.map(function (p) { return p.hover; }) });
      });
    }
    var pl = { title: { text: fig.title } };
    if (fig.kind === "scatter") {
      pl.xaxis = { title: { text: fig.x_field } };
      pl.yaxis = { title: { text: fig.y_field }, tickvals: [0, 1] };
      pl.legend = { title: { text: fig.color_field } };
    }
    Plotly.react(elID, data, pl);
  }

  function apply(res) {
    if (res.error) { console.warn("update rejected:", res.error); return; }
    Object.keys(res.outputs || {}).forEach(function (k) {
      if (outputs[k]) { draw(outputs[k], res.outputs[k]); }
    });
  }

  var select = document.getElementById(layout.dropdown.id);
  var ends = document.querySelectorAll("#" + layout.slider.id + " input");
  var rangeLabel = document.querySelector("#" + layout.slider.id + " .range-value");

  function values() {
    var lo = parseFloat(ends[0].value), hi = parseFloat(ends[1].value);
    var inputs = {};
    inputs[siteProp] = select.value;
    inputs[sliderProp] = [lo, hi];
    return inputs;
  }

  function updateLinks(inputs) {
    var q = "?site=" + encodeURIComponent(inputs[siteProp]) +
            "&low=" + inputs[sliderProp][0] + "&high=" + inputs[sliderProp][1];
    document.getElementById("export-csv").href = "/export/launches.csv" + q;
    document.getElementById("export-csv-gz").href = "/export/launches.csv.gz" + q;
    document.getElementById("export-xlsx").href = "/export/launches.xlsx" + q;
  }

  var ws = null, seq = 0;
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    ws = new WebSocket(proto + location.host + "/ws");
    ws.onmessage = function (ev) { apply(JSON.parse(ev.data)); };
    ws.onclose = function () { ws = null; setTimeout(connect, 2000); };
  }

  function send(changed) {
    var inputs = values();
    updateLinks(inputs);
    var msg = { changed: changed, inputs: inputs };
    if (ws && ws.readyState === WebSocket.OPEN) {
      msg.id = String(++seq);
      ws.send(JSON.stringify(msg));
      return;
    }
    fetch("/api/update", { method: "POST", headers: { "Content-Type": "application/json" },
                           body: JSON.stringify(msg) })
      .then(function (r) { return r.json(); }).then(apply);
  }

  select.addEventListener("change", function () { send([siteProp]); });
  ends.forEach(function (el) {
    el.addEventListener("change", function () {
      var v = values()[sliderProp];
      rangeLabel.textContent = v[0] + " – " + v[1];
      send([sliderProp]);
    });
  });

  draw(layout.pie_graph.id, layout.pie_graph.figure);
  draw(layout.scatter_graph.id, layout.scatter_graph.figure);
  updateLinks(values());
  connect();
})();
`
