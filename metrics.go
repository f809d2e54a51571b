package goUmroh

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricID identifies one counter or histogram.
type MetricID uint16

const (
	// MetricBootstrap counts Bootstrap calls.
	MetricBootstrap MetricID = iota
	// MetricSessionRestored counts persisted credentials accepted at startup.
	MetricSessionRestored
	// MetricSessionRejected counts persisted credentials cleared at startup.
	MetricSessionRejected
	// MetricLoginStarted counts Login calls that produced an intent.
	MetricLoginStarted
	// MetricURLOpenFailure counts URL opener failures.
	MetricURLOpenFailure
	// MetricDeepLinkReceived counts deep links carrying a session id.
	MetricDeepLinkReceived
	// MetricDeepLinkMalformed counts deep links that were dropped.
	MetricDeepLinkMalformed
	// MetricExchangeSuccess counts completed session exchanges.
	MetricExchangeSuccess
	// MetricExchangeFailure counts failed session exchanges.
	MetricExchangeFailure
	// MetricExchangeDeduplicated counts deliveries that joined an in-flight exchange.
	MetricExchangeDeduplicated
	// MetricLogout counts Logout calls.
	MetricLogout
	// MetricLogoutRemoteFailure counts logouts whose backend call failed.
	MetricLogoutRemoteFailure
	// MetricAPIRequest counts outbound API requests.
	MetricAPIRequest
	// MetricAPIFailure counts API requests that returned an error.
	MetricAPIFailure
	// MetricAPILatency is the API request latency histogram.
	MetricAPILatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// RouteKey identifies an API call by method and templated route, e.g.
// GET /bookings/{id}.
type RouteKey struct {
	Method string
	Route  string
}

// RouteCounts is the request tally of one RouteKey.
type RouteCounts struct {
	Requests uint64
	Failures uint64
}

type routeCounters struct {
	requests atomic.Uint64
	failures atomic.Uint64
}

// Metrics is a fixed set of lock-free counters. Counters are padded to a
// cache line so that concurrent increments of different IDs do not contend.
// Per-route tallies live in a map keyed by the templated route, which keeps
// it bounded by the number of API endpoints.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
	routes        sync.Map // RouteKey -> *routeCounters
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
	Routes     map[RouteKey]RouteCounts
	// State is the session state when the snapshot was taken. Only
	// Client.MetricsSnapshot fills it.
	State AuthState
}

// NewMetrics returns a Metrics honoring cfg. A disabled Metrics ignores all
// updates and snapshots as empty.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram of id. Only latency IDs keep histograms.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricAPILatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// ObserveRoute tallies one request against its method and route.
func (m *Metrics) ObserveRoute(method, route string, failed bool) {
	if m == nil || !m.enabled || route == "" {
		return
	}
	key := RouteKey{Method: method, Route: route}
	v, ok := m.routes.Load(key)
	if !ok {
		v, _ = m.routes.LoadOrStore(key, &routeCounters{})
	}
	rc := v.(*routeCounters)
	rc.requests.Add(1)
	if failed {
		rc.failures.Add(1)
	}
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. Histograms are included when latency
// tracking is on.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
			Routes:     map[RouteKey]RouteCounts{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
		Routes:     make(map[RouteKey]RouteCounts),
	}

	m.routes.Range(func(k, v any) bool {
		rc := v.(*routeCounters)
		s.Routes[k.(RouteKey)] = RouteCounts{
			Requests: rc.requests.Load(),
			Failures: rc.failures.Load(),
		}
		return true
	})

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAPILatency].buckets[i])
		}
		s.Histograms[MetricAPILatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
