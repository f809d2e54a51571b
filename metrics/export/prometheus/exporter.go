package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goUmroh "github.com/MrEthical07/goUmroh"
	"github.com/MrEthical07/goUmroh/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() goUmroh.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders client metrics in Prometheus text exposition
// format: lifecycle counters, the API latency histogram, per-route request
// tallies and a gauge of the current session state.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter returns an exporter reading from client.
func NewPrometheusExporter(client *goUmroh.Client) *PrometheusExporter {
	return &PrometheusExporter{source: client}
}

// NewPrometheusExporterFromSource returns an exporter over any snapshot source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves Render over HTTP.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics, or "" when metrics are disabled.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	w := &textWriter{}
	w.b.Grow(8192)

	w.family(internaldefs.SessionStateName, internaldefs.SessionStateHelp, "gauge")
	for _, state := range internaldefs.SessionStates {
		w.sample(internaldefs.SessionStateName, labels{{"state", state.String()}},
			internaldefs.StateValue(snapshot.State, state))
	}

	for _, def := range internaldefs.CounterDefs {
		w.family(def.Name, def.Help, "counter")
		w.sample(def.Name, nil, int64(snapshot.Counters[def.ID]))
	}

	routes := internaldefs.SortedRoutes(snapshot.Routes)
	if len(routes) > 0 {
		w.family(internaldefs.RouteRequestsName, internaldefs.RouteRequestsHelp, "counter")
		for _, r := range routes {
			w.sample(internaldefs.RouteRequestsName, routeLabels(r), int64(r.Requests))
		}
		w.family(internaldefs.RouteFailuresName, internaldefs.RouteFailuresHelp, "counter")
		for _, r := range routes {
			w.sample(internaldefs.RouteFailuresName, routeLabels(r), int64(r.Failures))
		}
	}

	for _, def := range internaldefs.HistogramDefs {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID]))
		w.family(def.Name, def.Help, "histogram")
		for i, le := range internaldefs.HistogramBounds {
			w.sample(def.Name+"_bucket", labels{{"le", le}}, int64(cumulative[i]))
		}
		w.sample(def.Name+"_count", nil, int64(cumulative[len(cumulative)-1]))
		// Snapshots carry no sum.
		w.sample(def.Name+"_sum", nil, 0)
	}

	w.family(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, "counter")
	w.sample(internaldefs.AuditDroppedName, nil, int64(dropped))

	return w.b.String()
}

type label struct{ name, value string }

type labels []label

func routeLabels(r internaldefs.RouteSample) labels {
	return labels{{"method", r.Method}, {"route", r.Route}}
}

type textWriter struct {
	b strings.Builder
}

func (w *textWriter) family(name, help, kind string) {
	w.b.WriteString("# HELP ")
	w.b.WriteString(name)
	w.b.WriteByte(' ')
	w.b.WriteString(escapeHelp(help))
	w.b.WriteString("\n# TYPE ")
	w.b.WriteString(name)
	w.b.WriteByte(' ')
	w.b.WriteString(kind)
	w.b.WriteByte('\n')
}

func (w *textWriter) sample(name string, ls labels, value int64) {
	w.b.WriteString(name)
	if len(ls) > 0 {
		w.b.WriteByte('{')
		for i, l := range ls {
			if i > 0 {
				w.b.WriteByte(',')
			}
			w.b.WriteString(l.name)
			w.b.WriteString(`="`)
			w.b.WriteString(escapeLabel(l.value))
			w.b.WriteByte('"')
		}
		w.b.WriteByte('}')
	}
	w.b.WriteByte(' ')
	w.b.WriteString(strconv.FormatInt(value, 10))
	w.b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, `\`, `\\`)
	return strings.ReplaceAll(help, "\n", `\n`)
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return strings.ReplaceAll(v, "\n", `\n`)
}
