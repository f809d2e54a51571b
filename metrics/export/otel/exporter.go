package otel

import (
	"context"
	"errors"
	"fmt"

	goUmroh "github.com/MrEthical07/goUmroh"
	"github.com/MrEthical07/goUmroh/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goUmroh.MetricsSnapshot
	AuditDropped() uint64
}

// OTelExporter publishes client metrics as observable instruments. Lifecycle
// counters keep their Prometheus names; the session state is a gauge with a
// "state" attribute and per-route tallies carry "method" and "route".
// Close unregisters the callback.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	counters     map[goUmroh.MetricID]metric.Int64ObservableCounter
	latency      []latencyInstruments
	state        metric.Int64ObservableGauge
	routeReqs    metric.Int64ObservableCounter
	routeFails   metric.Int64ObservableCounter
	auditDropped metric.Int64ObservableCounter

	// stateAttrs is built once; the state set is fixed.
	stateAttrs []metric.ObserveOption
}

type latencyInstruments struct {
	id      goUmroh.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// NewOTelExporter registers observable instruments on meter that read from
// client on every collection.
func NewOTelExporter(meter metric.Meter, client *goUmroh.Client) (*OTelExporter, error) {
	if client == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, client)
}

// NewOTelExporterFromSource is NewOTelExporter over any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[goUmroh.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}
	observables, err := e.createInstruments(meter)
	if err != nil {
		return nil, err
	}

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func (e *OTelExporter) createInstruments(meter metric.Meter) ([]metric.Observable, error) {
	var observables []metric.Observable
	counter := func(name, help string) (metric.Int64ObservableCounter, error) {
		ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", name, err)
		}
		observables = append(observables, ins)
		return ins, nil
	}
	gauge := func(name, help string) (metric.Int64ObservableGauge, error) {
		ins, err := meter.Int64ObservableGauge(name, metric.WithDescription(help))
		if err != nil {
			return nil, fmt.Errorf("create observable gauge %s: %w", name, err)
		}
		observables = append(observables, ins)
		return ins, nil
	}

	var err error
	if e.state, err = gauge(internaldefs.SessionStateName, internaldefs.SessionStateHelp); err != nil {
		return nil, err
	}
	for _, s := range internaldefs.SessionStates {
		e.stateAttrs = append(e.stateAttrs, metric.WithAttributes(attribute.String("state", s.String())))
	}

	for _, def := range internaldefs.CounterDefs {
		ins, err := counter(def.Name, def.Help)
		if err != nil {
			return nil, err
		}
		e.counters[def.ID] = ins
	}

	if e.routeReqs, err = counter(internaldefs.RouteRequestsName, internaldefs.RouteRequestsHelp); err != nil {
		return nil, err
	}
	if e.routeFails, err = counter(internaldefs.RouteFailuresName, internaldefs.RouteFailuresHelp); err != nil {
		return nil, err
	}

	for _, def := range internaldefs.HistogramDefs {
		li := latencyInstruments{id: def.ID}
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			if li.buckets[i], err = gauge(def.Name+"_bucket_le_"+suffix, "Cumulative histogram bucket count."); err != nil {
				return nil, err
			}
		}
		if li.count, err = gauge(def.Name+"_count", "Histogram total sample count."); err != nil {
			return nil, err
		}
		e.latency = append(e.latency, li)
	}

	if e.auditDropped, err = counter(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp); err != nil {
		return nil, err
	}
	return observables, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()

	for i, s := range internaldefs.SessionStates {
		o.ObserveInt64(e.state, internaldefs.StateValue(snapshot.State, s), e.stateAttrs[i])
	}

	for id, ins := range e.counters {
		o.ObserveInt64(ins, int64(snapshot.Counters[id]))
	}

	for _, r := range internaldefs.SortedRoutes(snapshot.Routes) {
		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("route", r.Route),
		)
		o.ObserveInt64(e.routeReqs, int64(r.Requests), attrs)
		o.ObserveInt64(e.routeFails, int64(r.Failures), attrs)
	}

	for _, li := range e.latency {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[li.id]))
		for i := range cumulative {
			o.ObserveInt64(li.buckets[i], int64(cumulative[i]))
		}
		o.ObserveInt64(li.count, int64(cumulative[len(cumulative)-1]))
	}

	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the exporter's callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
