package tracker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mikrosense/mikrosense/internal/model"
)

// DefaultGraceWindow is the span after a disconnect during which a
// reappearance counts as a reconnection rather than a fresh connect.
const DefaultGraceWindow = 30 * time.Minute

// Tracker owns the authoritative in-memory session state for one router.
// A MAC is in at most one of the active map and the recently-disconnected
// map at any time. All mutations happen under the tracker's lock; the
// tracker performs no I/O.
type Tracker struct {
	mu     sync.RWMutex
	active map[string]*model.Session
	recent map[string]model.ClosedSession

	grace  time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// New builds an empty tracker with the given grace window.
func New(grace time.Duration, logger *slog.Logger) *Tracker {
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		active: make(map[string]*model.Session),
		recent: make(map[string]model.ClosedSession),
		grace:  grace,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source, used by tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// GraceWindow returns the configured reconnection window.
func (t *Tracker) GraceWindow() time.Duration { return t.grace }

// OnConnected opens a fresh session for a newly appeared MAC. A stale
// session under the same MAC is overwritten: presence implies the router
// considers this a fresh attachment.
func (t *Tracker) OnConnected(record model.ClientRecord) *model.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if _, exists := t.active[record.MAC]; exists {
		t.logger.Warn("stale session overwritten on connect", "mac", record.MAC)
	}
	session := &model.Session{
		MAC:        record.MAC,
		Record:     record,
		StartedAt:  now,
		LastSeenAt: now,
		BytesIn:    record.BytesIn,
		BytesOut:   record.BytesOut,
	}
	t.active[record.MAC] = session
	delete(t.recent, record.MAC)
	return session
}

// OnReconnected opens a session that resumes a recent disconnect; the MAC
// leaves the recently-disconnected set and the new session carries the
// offline gap for notification context.
func (t *Tracker) OnReconnected(record model.ClientRecord, prior model.ClosedSession) *model.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	disconnectedAt := prior.DisconnectedAt
	session := &model.Session{
		MAC:                record.MAC,
		Record:             record,
		StartedAt:          now,
		LastSeenAt:         now,
		BytesIn:            record.BytesIn,
		BytesOut:           record.BytesOut,
		PreviousDisconnect: &disconnectedAt,
		TimeOffline:        now.Sub(disconnectedAt),
	}
	t.active[record.MAC] = session
	delete(t.recent, record.MAC)
	return session
}

// OnDisconnected closes the session for a disappeared MAC and moves it to
// the recently-disconnected set, tagged with the kick classification for
// audit. When no session was tracked (e.g. first cycle after restart) a
// synthetic one is closed from the final record.
func (t *Tracker) OnDisconnected(mac string, final model.ClientRecord, kicked bool, reason string) model.ClosedSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	session, ok := t.active[mac]
	if !ok {
		session = &model.Session{MAC: mac, Record: final, StartedAt: now, LastSeenAt: now}
	}
	closed := model.ClosedSession{
		MAC:            mac,
		Record:         final,
		StartedAt:      session.StartedAt,
		DisconnectedAt: now,
		SessionLength:  now.Sub(session.StartedAt),
		BytesIn:        final.BytesIn,
		BytesOut:       final.BytesOut,
		Kicked:         kicked,
		KickReason:     reason,
	}
	delete(t.active, mac)
	t.recent[mac] = closed
	return closed
}

// Touch refreshes last-seen time and byte counters for every MAC present
// in both the tracker and the snapshot. Unchanged presence produces no
// transition, only this liveness update.
func (t *Tracker) Touch(curr *ClientSet) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for mac, session := range t.active {
		record, ok := curr.Get(mac)
		if !ok {
			continue
		}
		session.LastSeenAt = now
		session.Record = record
		session.BytesIn = record.BytesIn
		session.BytesOut = record.BytesOut
	}
}

// SweepExpired evicts recently-disconnected entries older than the grace
// window. Idempotent: a second sweep with no time elapsed removes nothing.
func (t *Tracker) SweepExpired() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for mac, closed := range t.recent {
		if now.Sub(closed.DisconnectedAt) > t.grace {
			delete(t.recent, mac)
			removed++
		}
	}
	return removed
}

// ActiveView returns the active session map for diffing. The returned map
// must be treated as read-only and not retained across cycles.
func (t *Tracker) ActiveView() map[string]*model.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]*model.Session, len(t.active))
	for mac, session := range t.active {
		out[mac] = session
	}
	return out
}

// RecentView returns a copy of the recently-disconnected set.
func (t *Tracker) RecentView() map[string]model.ClosedSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]model.ClosedSession, len(t.recent))
	for mac, closed := range t.recent {
		out[mac] = closed
	}
	return out
}

// ActiveSessions returns copies of all active sessions.
func (t *Tracker) ActiveSessions() []model.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.Session, 0, len(t.active))
	for _, session := range t.active {
		out = append(out, *session)
	}
	return out
}

// RecentlyDisconnected returns the recently-disconnected sessions.
func (t *Tracker) RecentlyDisconnected() []model.ClosedSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.ClosedSession, 0, len(t.recent))
	for _, closed := range t.recent {
		out = append(out, closed)
	}
	return out
}

// Counts returns active and recently-disconnected sizes.
func (t *Tracker) Counts() (active, recent int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.active), len(t.recent)
}
