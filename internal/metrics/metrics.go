package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Drain loop metrics
	DrainTicksTotal     int64
	DrainErrorsTotal    int64
	ProviderErrorsTotal int64
	BroadcastsTotal     int64
	lastQueueSize       int
	lastReadyAgents     int

	// Routing metrics
	CallsRoutedTotal   int64
	CallsEnqueuedTotal int64
	CallsMissedTotal   int64
	CallsDequeuedTotal int64
	ClickToDialTotal   int64

	// Push connection metrics
	ConnectionsTotal    int64
	DisconnectionsTotal int64
	activeConnections   int64

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{startTime: time.Now()}
	})
	return instance
}

// RecordDrainTick increments the drain tick counter and stores the tick's
// telemetry values
func (m *Metrics) RecordDrainTick(queueSize, readyAgents int) {
	m.mu.Lock()
	m.DrainTicksTotal++
	m.lastQueueSize = queueSize
	m.lastReadyAgents = readyAgents
	m.mu.Unlock()
}

// RecordDrainError increments the drain error counter
func (m *Metrics) RecordDrainError() {
	m.mu.Lock()
	m.DrainErrorsTotal++
	m.mu.Unlock()
}

// RecordProviderError increments the provider error counter
func (m *Metrics) RecordProviderError() {
	m.mu.Lock()
	m.ProviderErrorsTotal++
	m.mu.Unlock()
}

// RecordBroadcast increments the broadcast counter
func (m *Metrics) RecordBroadcast() {
	m.mu.Lock()
	m.BroadcastsTotal++
	m.mu.Unlock()
}

// RecordCallRouted increments the directly-routed call counter
func (m *Metrics) RecordCallRouted() {
	m.mu.Lock()
	m.CallsRoutedTotal++
	m.mu.Unlock()
}

// RecordCallEnqueued increments the enqueued call counter
func (m *Metrics) RecordCallEnqueued() {
	m.mu.Lock()
	m.CallsEnqueuedTotal++
	m.mu.Unlock()
}

// RecordCallMissed increments the missed call counter
func (m *Metrics) RecordCallMissed() {
	m.mu.Lock()
	m.CallsMissedTotal++
	m.mu.Unlock()
}

// RecordCallDequeued increments the queue-drain dispatch counter
func (m *Metrics) RecordCallDequeued() {
	m.mu.Lock()
	m.CallsDequeuedTotal++
	m.mu.Unlock()
}

// RecordClickToDial increments the click-to-dial counter
func (m *Metrics) RecordClickToDial() {
	m.mu.Lock()
	m.ClickToDialTotal++
	m.mu.Unlock()
}

// RecordConnect increments push connection counters
func (m *Metrics) RecordConnect() {
	m.mu.Lock()
	m.ConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordDisconnect increments the disconnection counter
func (m *Metrics) RecordDisconnect() {
	m.mu.Lock()
	m.DisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// GetActiveConnections returns current push connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		write := func(name string, value int64) {
			w.Write([]byte(name + " " + strconv.FormatInt(value, 10) + "\n"))
		}

		w.Write([]byte("acd_uptime_seconds " + strconv.FormatFloat(time.Since(m.startTime).Seconds(), 'f', 6, 64) + "\n"))

		write("acd_drain_ticks_total", m.DrainTicksTotal)
		write("acd_drain_errors_total", m.DrainErrorsTotal)
		write("acd_provider_errors_total", m.ProviderErrorsTotal)
		write("acd_broadcasts_total", m.BroadcastsTotal)
		write("acd_queue_size", int64(m.lastQueueSize))
		write("acd_ready_agents", int64(m.lastReadyAgents))

		write("acd_calls_routed_total", m.CallsRoutedTotal)
		write("acd_calls_enqueued_total", m.CallsEnqueuedTotal)
		write("acd_calls_missed_total", m.CallsMissedTotal)
		write("acd_calls_dequeued_total", m.CallsDequeuedTotal)
		write("acd_click_to_dial_total", m.ClickToDialTotal)

		write("acd_ws_connections_total", m.ConnectionsTotal)
		write("acd_ws_disconnections_total", m.DisconnectionsTotal)
		write("acd_ws_active_connections", m.activeConnections)
	}
}
