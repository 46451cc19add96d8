// monitor/monitor.go
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wfunc/lobbyclient/logger"
	"github.com/wfunc/lobbyclient/panel"
	"github.com/wfunc/lobbyclient/roomlist"
	"github.com/wfunc/lobbyclient/session"
)

type Metrics struct {
	ViewOps         *prometheus.CounterVec
	ListedRooms     prometheus.Gauge
	Batches         prometheus.Counter
	BatchSize       prometheus.Histogram
	ReconcileTime   prometheus.Histogram
	PanelSwitches   *prometheus.CounterVec
	ConnectionState prometheus.Gauge
	Notices         prometheus.Counter
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ViewOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_ops_total",
			Help:      "Room list view operations emitted, by kind",
		}, []string{"kind"}),
		ListedRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listed_rooms",
			Help:      "Number of rooms currently listed",
		}),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_list_batches_total",
			Help:      "Room list update batches applied",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "room_list_batch_size",
			Help:      "Rooms per update batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		ReconcileTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_seconds",
			Help:      "Time spent applying one update batch",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 12),
		}),
		PanelSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_switches_total",
			Help:      "Panels shown, by panel",
		}, []string{"panel"}),
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "Current connection state as its enum value",
		}),
		Notices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_total",
			Help:      "Notices shown to the player",
		}),
	}

	reg.MustRegister(
		m.ViewOps,
		m.ListedRooms,
		m.Batches,
		m.BatchSize,
		m.ReconcileTime,
		m.PanelSwitches,
		m.ConnectionState,
		m.Notices,
	)

	return m
}

// Monitor records lobby activity. It also acts as a presenter so it can sit
// behind a broadcast.Fanout next to the real view.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	registry := prometheus.NewRegistry()
	m := &Monitor{
		metrics:   NewMetrics(namespace, registry),
		registry:  registry,
		startTime: time.Now(),
	}
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Seconds since the client started",
	}, func() float64 {
		return time.Since(m.startTime).Seconds()
	}))
	return m
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr in the background.
func (m *Monitor) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Errorf("Metrics server on %s stopped: %v", addr, err)
		}
	}()
	return srv
}

// ObserveBatch records one applied update batch.
func (m *Monitor) ObserveBatch(size int, duration time.Duration) {
	m.metrics.Batches.Inc()
	m.metrics.BatchSize.Observe(float64(size))
	m.metrics.ReconcileTime.Observe(duration.Seconds())
}

func (m *Monitor) ShowPanel(p panel.Panel) {
	m.metrics.PanelSwitches.WithLabelValues(p.String()).Inc()
}

func (m *Monitor) ApplyRoomOps(ops []roomlist.ViewOp) {
	for _, op := range ops {
		m.metrics.ViewOps.WithLabelValues(op.Kind.String()).Inc()
		switch op.Kind {
		case roomlist.OpAdd:
			m.metrics.ListedRooms.Inc()
		case roomlist.OpRemove:
			m.metrics.ListedRooms.Dec()
		}
	}
}

func (m *Monitor) SetStatus(state session.ConnectionState) {
	m.metrics.ConnectionState.Set(float64(state))
}

func (m *Monitor) Notify(msg string) {
	m.metrics.Notices.Inc()
}
