// Package monitor runs the periodic scan loop for one router connection:
// snapshot, diff, session tracking and alert dispatch.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mikrosense/mikrosense/internal/alerts"
	"github.com/mikrosense/mikrosense/internal/metrics"
	"github.com/mikrosense/mikrosense/internal/model"
	"github.com/mikrosense/mikrosense/internal/tracker"
)

// Defaults for the scan schedule and failure policy.
const (
	DefaultInterval    = 15 * time.Second
	DefaultScanTimeout = 30 * time.Second
	DefaultMaxFailures = 10
	DefaultSweepEvery  = 5 * time.Minute
	defaultLogLimit    = 20
)

// SnapshotSource abstracts the router RPC boundary. An empty result is a
// legitimate "no clients attached"; errors mean the fetch failed.
type SnapshotSource interface {
	FetchActiveClients(ctx context.Context) ([]model.ClientRecord, error)
	FetchWirelessRegistrations(ctx context.Context) ([]model.WirelessClient, error)
	FetchInterfaces(ctx context.Context) ([]model.InterfaceStatus, error)
	FetchRecentLogs(ctx context.Context, limit int) ([]model.LogEntry, error)
}

// HistoryRecorder receives completed sessions for statistics retention.
type HistoryRecorder interface {
	RecordClosed(ctx context.Context, closed model.ClosedSession) error
}

// VendorDB resolves a MAC address to a hardware vendor name. ok is
// false when the prefix is not registered.
type VendorDB interface {
	Lookup(mac string) (vendor string, ok bool)
}

// Options tune one monitor instance. Zero values use the defaults above.
type Options struct {
	Interval    time.Duration
	ScanTimeout time.Duration
	MaxFailures int
	SweepEvery  time.Duration
	LogLimit    int
}

func (o Options) normalized() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.ScanTimeout <= 0 {
		o.ScanTimeout = DefaultScanTimeout
	}
	if o.MaxFailures <= 0 {
		o.MaxFailures = DefaultMaxFailures
	}
	if o.SweepEvery <= 0 {
		o.SweepEvery = DefaultSweepEvery
	}
	if o.LogLimit <= 0 {
		o.LogLimit = defaultLogLimit
	}
	return o
}

// Monitor drives the scan loop. One snapshot per cycle feeds the user
// diff plus the wireless, interface and log consumers, so the router is
// polled once regardless of how many concerns observe it. Scans never
// overlap: they all run on the loop goroutine and ticks that fire while
// a scan is in flight are dropped.
type Monitor struct {
	source  SnapshotSource
	tracker *tracker.Tracker
	engine  *tracker.Engine
	sink    *alerts.Sink
	history HistoryRecorder
	vendors VendorDB
	opts    Options
	logger  *slog.Logger

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	refreshCh chan struct{}

	consecutiveFailures int
	lastScanAt          time.Time
	lastScanErr         string
	stopReason          string

	prev      *tracker.ClientSet
	lastSweep time.Time

	prevWireless map[string]model.WirelessClient
	prevIfaces   map[string]bool
	seenLogs     map[string]struct{}
	seenLogOrder []string
}

// New builds a stopped monitor.
func New(source SnapshotSource, tr *tracker.Tracker, engine *tracker.Engine, sink *alerts.Sink, history HistoryRecorder, opts Options, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		source:       source,
		tracker:      tr,
		engine:       engine,
		sink:         sink,
		history:      history,
		opts:         opts.normalized(),
		logger:       logger,
		refreshCh:    make(chan struct{}, 1),
		prev:         tracker.NewClientSet(nil),
		prevWireless: map[string]model.WirelessClient{},
		prevIfaces:   map[string]bool{},
		seenLogs:     map[string]struct{}{},
	}
}

// SetVendorDB enables vendor name enrichment of client records. Must be
// called before Start.
func (m *Monitor) SetVendorDB(db VendorDB) {
	m.vendors = db
}

// Start transitions to Running, performs one immediate scan and schedules
// recurring scans. Starting a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	m.consecutiveFailures = 0
	m.stopReason = ""
	done := m.done
	m.mu.Unlock()

	m.logger.Info("monitoring started", "interval", m.opts.Interval)
	m.runScan(runCtx)
	go m.loop(runCtx, done)
}

// Stop cancels the schedule. Idempotent; an in-flight scan finishes
// applying its cycle before the loop exits.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done
	m.logger.Info("monitoring stopped")
}

// TriggerScan requests an immediate scan. Coalesced if one is pending.
func (m *Monitor) TriggerScan() {
	select {
	case m.refreshCh <- struct{}{}:
	default:
	}
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.refreshCh:
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return
		}
		if !m.runScan(ctx) {
			return
		}
	}
}

// runScan executes one cycle and updates the failure policy. Returns
// false once the consecutive-failure threshold is reached and the loop
// must stop.
func (m *Monitor) runScan(ctx context.Context) bool {
	err := m.scan(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastScanAt = time.Now().UTC()
	if err == nil {
		m.consecutiveFailures = 0
		m.lastScanErr = ""
		metrics.PollCycles.WithLabelValues("ok").Inc()
		return true
	}
	if ctx.Err() != nil {
		// Shutdown, not a router fault.
		return false
	}
	m.consecutiveFailures++
	m.lastScanErr = err.Error()
	metrics.PollCycles.WithLabelValues("error").Inc()
	m.logger.Warn("scan failed",
		"err", err,
		"consecutive_failures", m.consecutiveFailures,
		"max", m.opts.MaxFailures,
	)
	if m.consecutiveFailures >= m.opts.MaxFailures {
		m.stopReason = fmt.Sprintf("stopped after %d consecutive scan failures", m.consecutiveFailures)
		m.logger.Error("monitoring stopped after sustained failures", "failures", m.consecutiveFailures)
		if m.cancel != nil {
			m.cancel()
		}
		return false
	}
	return true
}

func (m *Monitor) scan(ctx context.Context) error {
	scanCtx, cancel := context.WithTimeout(ctx, m.opts.ScanTimeout)
	defer cancel()

	records, err := m.source.FetchActiveClients(scanCtx)
	if err != nil {
		return err
	}
	if m.vendors != nil {
		for i := range records {
			if records[i].Vendor != "" {
				continue
			}
			if vendor, ok := m.vendors.Lookup(records[i].MAC); ok {
				records[i].Vendor = vendor
			}
		}
	}

	now := time.Now().UTC()
	curr := tracker.NewClientSet(records)
	transitions := m.engine.Diff(
		m.prev, curr,
		m.tracker.ActiveView(),
		m.tracker.RecentView(),
		m.tracker.GraceWindow(),
		now,
	)
	m.tracker.Touch(curr)
	for _, transition := range transitions {
		m.apply(ctx, transition, curr.Len())
	}
	m.prev = curr
	metrics.ActiveSessions.Set(float64(curr.Len()))

	// Secondary concerns reuse the cycle; their failures are logged but
	// never counted against the primary presence scan.
	m.scanWireless(scanCtx)
	m.scanInterfaces(scanCtx)
	m.scanLogs(scanCtx)

	if now.Sub(m.lastSweep) >= m.opts.SweepEvery {
		if removed := m.tracker.SweepExpired(); removed > 0 {
			m.logger.Debug("grace window sweep", "evicted", removed)
		}
		m.lastSweep = now
	}
	return nil
}

// apply mutates tracker state for one transition and dispatches its
// alert, in the order the diff engine emitted them.
func (m *Monitor) apply(ctx context.Context, transition model.Transition, totalActive int) {
	metrics.Transitions.WithLabelValues(string(transition.Kind)).Inc()

	switch transition.Kind {
	case model.TransitionConnected:
		m.tracker.OnConnected(transition.Record)
		m.sink.CreateAlert(
			model.AlertUserConnected,
			"New User Connected",
			fmt.Sprintf("%s (%s) has connected", displayName(transition.Record), transition.MAC),
			connectDetails(transition.Record, totalActive),
		)

	case model.TransitionReconnected:
		session := m.tracker.OnReconnected(transition.Record, *transition.Prior)
		details := connectDetails(transition.Record, totalActive)
		details["Previous Disconnect"] = transition.Prior.DisconnectedAt.Format(time.RFC3339)
		details["Time Offline"] = model.FormatDuration(session.TimeOffline)
		m.sink.CreateAlert(
			model.AlertUserReconnected,
			"User Reconnected",
			fmt.Sprintf("%s (%s) has reconnected", displayName(transition.Record), transition.MAC),
			details,
		)

	case model.TransitionDisconnected:
		closed := m.tracker.OnDisconnected(transition.MAC, transition.Record, false, "")
		m.recordClosed(ctx, closed)
		m.sink.CreateAlert(
			model.AlertUserDisconnected,
			"User Disconnected",
			fmt.Sprintf("%s (%s) has disconnected", displayName(transition.Record), transition.MAC),
			disconnectDetails(closed, totalActive),
		)

	case model.TransitionKicked:
		closed := m.tracker.OnDisconnected(transition.MAC, transition.Record, true, transition.KickReason)
		m.recordClosed(ctx, closed)
		details := disconnectDetails(closed, totalActive)
		details["Reason"] = transition.KickReason
		m.sink.CreateAlert(
			model.AlertUserTimeExpired,
			"User Session Ended",
			fmt.Sprintf("%s (%s) was disconnected: %s", displayName(transition.Record), transition.MAC, transition.KickReason),
			details,
		)
	}
}

func (m *Monitor) recordClosed(ctx context.Context, closed model.ClosedSession) {
	if m.history == nil {
		return
	}
	if err := m.history.RecordClosed(ctx, closed); err != nil {
		m.logger.Warn("session history write failed", "mac", closed.MAC, "err", err)
	}
}

// Status is the externally visible monitor state. Callers poll it to
// detect a stopped monitor and decide whether to restart.
type Status struct {
	Running              bool      `json:"running"`
	Interval             string    `json:"interval"`
	ActiveSessions       int       `json:"active_sessions"`
	RecentlyDisconnected int       `json:"recently_disconnected"`
	ConsecutiveFailures  int       `json:"consecutive_failures"`
	LastScanAt           time.Time `json:"last_scan_at"`
	LastScanError        string    `json:"last_scan_error,omitempty"`
	StopReason           string    `json:"stop_reason,omitempty"`
}

// CurrentStatus reports the loop state.
func (m *Monitor) CurrentStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	active, recent := m.tracker.Counts()
	return Status{
		Running:              m.running,
		Interval:             m.opts.Interval.String(),
		ActiveSessions:       active,
		RecentlyDisconnected: recent,
		ConsecutiveFailures:  m.consecutiveFailures,
		LastScanAt:           m.lastScanAt,
		LastScanError:        m.lastScanErr,
		StopReason:           m.stopReason,
	}
}

// Running reports whether the loop is scheduled.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func displayName(record model.ClientRecord) string {
	if record.HostName != "" {
		return record.HostName
	}
	return "Unknown"
}

func connectDetails(record model.ClientRecord, totalActive int) map[string]string {
	details := map[string]string{
		"Host Name":       displayName(record),
		"MAC Address":     record.MAC,
		"IP Address":      record.Address,
		"Connection Type": record.ConnType,
		"Active Users":    fmt.Sprintf("%d", totalActive),
	}
	if record.SignalStrength != "" {
		details["Signal Strength"] = record.SignalStrength
	}
	if record.SessionID != "" {
		details["Session ID"] = record.SessionID
	}
	if record.Vendor != "" {
		details["Vendor"] = record.Vendor
	}
	return details
}

func disconnectDetails(closed model.ClosedSession, totalActive int) map[string]string {
	return map[string]string{
		"Host Name":        displayName(closed.Record),
		"MAC Address":      closed.MAC,
		"IP Address":       closed.Record.Address,
		"Session Duration": model.FormatDuration(closed.SessionLength),
		"Data Downloaded":  model.FormatBytes(closed.BytesIn),
		"Data Uploaded":    model.FormatBytes(closed.BytesOut),
		"Total Data Used":  model.FormatBytes(closed.BytesIn + closed.BytesOut),
		"Users Remaining":  fmt.Sprintf("%d", totalActive),
	}
}
