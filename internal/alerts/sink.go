// Package alerts keeps the bounded in-memory alert history and fans new
// alerts out to email and push subscribers.
package alerts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikrosense/mikrosense/internal/metrics"
	"github.com/mikrosense/mikrosense/internal/model"
)

// DefaultHistorySize bounds the alert ring.
const DefaultHistorySize = 100

const subscriberBuffer = 16

// EmailGateway delivers one alert email. Implementations must not be
// relied on for delivery; the sink treats every send as best effort.
type EmailGateway interface {
	Send(ctx context.Context, subject string, alert model.Alert) error
}

// Sink owns the bounded alert history. CreateAlert always succeeds
// locally; email dispatch runs in the background and its failure is
// logged, never surfaced to the caller.
type Sink struct {
	mu      sync.RWMutex
	history []*model.Alert // oldest first; evicted from the front
	maxSize int
	subs    map[chan model.Alert]struct{}

	gateway      EmailGateway
	emailTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// New builds a sink. gateway may be nil to disable email delivery.
func New(maxSize int, gateway EmailGateway, logger *slog.Logger) *Sink {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		maxSize:      maxSize,
		subs:         make(map[chan model.Alert]struct{}),
		gateway:      gateway,
		emailTimeout: 15 * time.Second,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source, used by tests.
func (s *Sink) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateAlert records a new alert, pushes it to subscribers and kicks off
// the email dispatch. Ring insertion cannot fail; the oldest entry is
// evicted once the ring is full, strictly by insertion order.
func (s *Sink) CreateAlert(category model.AlertCategory, title, message string, details map[string]string) model.Alert {
	profile := model.ProfileFor(category)

	s.mu.Lock()
	alert := model.Alert{
		ID:        "alert_" + uuid.NewString(),
		Category:  category,
		Title:     title,
		Message:   message,
		Details:   details,
		Priority:  profile.Priority,
		Timestamp: s.now(),
	}
	stored := alert
	s.history = append(s.history, &stored)
	if len(s.history) > s.maxSize {
		s.history = s.history[len(s.history)-s.maxSize:]
	}
	// Fan out while still holding the lock: unsubscribe closes the
	// channel under the same lock, so a send can never hit a closed
	// channel. Sends never block; slow subscribers drop the alert.
	for ch := range s.subs {
		select {
		case ch <- alert:
		default:
		}
	}
	s.mu.Unlock()

	metrics.AlertsCreated.WithLabelValues(string(category)).Inc()

	if s.gateway != nil {
		go s.dispatchEmail(profile.EmailSubject, alert)
	}

	s.logger.Info("alert created",
		"category", category,
		"title", title,
		"priority", profile.Priority,
	)
	return alert
}

func (s *Sink) dispatchEmail(subject string, alert model.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), s.emailTimeout)
	defer cancel()
	if err := s.gateway.Send(ctx, subject, alert); err != nil {
		metrics.EmailFailures.Inc()
		s.logger.Warn("alert email failed", "category", alert.Category, "err", err)
	}
}

// Subscribe registers a push listener. The returned cancel func must be
// called to release the channel.
func (s *Sink) Subscribe() (<-chan model.Alert, func()) {
	ch := make(chan model.Alert, subscriberBuffer)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// Alerts returns the history newest first.
func (s *Sink) Alerts() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		out = append(out, *s.history[i])
	}
	return out
}

// UnreadAlerts returns unread alerts newest first.
func (s *Sink) UnreadAlerts() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		if !s.history[i].Read {
			out = append(out, *s.history[i])
		}
	}
	return out
}

// MarkRead flags one alert as read; false when the id is unknown.
func (s *Sink) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, alert := range s.history {
		if alert.ID == id {
			alert.Read = true
			return true
		}
	}
	return false
}

// MarkAllRead flags every alert as read.
func (s *Sink) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, alert := range s.history {
		alert.Read = true
	}
}

// ClearOlderThan purges alerts older than maxAge and returns the number
// removed.
func (s *Sink) ClearOlderThan(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxAge)
	kept := s.history[:0]
	removed := 0
	for _, alert := range s.history {
		if alert.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, alert)
	}
	s.history = kept
	return removed
}

// Status summarizes the sink for the monitoring status endpoint.
type Status struct {
	TotalAlerts  int          `json:"total_alerts"`
	UnreadAlerts int          `json:"unread_alerts"`
	LastAlert    *model.Alert `json:"last_alert,omitempty"`
}

// CurrentStatus returns history totals and the most recent alert.
func (s *Sink) CurrentStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := Status{TotalAlerts: len(s.history)}
	for _, alert := range s.history {
		if !alert.Read {
			status.UnreadAlerts++
		}
	}
	if n := len(s.history); n > 0 {
		last := *s.history[n-1]
		status.LastAlert = &last
	}
	return status
}
