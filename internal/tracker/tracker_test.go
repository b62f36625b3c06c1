package tracker

import (
	"testing"
	"time"

	"github.com/mikrosense/mikrosense/internal/model"
)

func newTestTracker(grace time.Duration) (*Tracker, *time.Time) {
	tr := New(grace, nil)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tr.SetClock(func() time.Time { return now })
	return tr, &now
}

func TestConnectCreatesSingleActiveSession(t *testing.T) {
	tr, now := newTestTracker(30 * time.Minute)

	session := tr.OnConnected(record("AA:BB:CC:DD:EE:01"))
	if !session.StartedAt.Equal(*now) {
		t.Fatalf("expected start at clock time, got %v", session.StartedAt)
	}
	active, recent := tr.Counts()
	if active != 1 || recent != 0 {
		t.Fatalf("expected 1 active 0 recent, got %d %d", active, recent)
	}
}

func TestMACNeverInBothSets(t *testing.T) {
	tr, _ := newTestTracker(30 * time.Minute)
	mac := "AA:BB:CC:DD:EE:01"

	tr.OnConnected(record(mac))
	tr.OnDisconnected(mac, record(mac), false, "")
	if tr.ActiveView()[mac] != nil {
		t.Fatalf("disconnected mac must leave active set")
	}
	if _, ok := tr.RecentView()[mac]; !ok {
		t.Fatalf("disconnected mac must enter recent set")
	}

	prior := tr.RecentView()[mac]
	tr.OnReconnected(record(mac), prior)
	if _, ok := tr.RecentView()[mac]; ok {
		t.Fatalf("reconnected mac must leave recent set")
	}
	if tr.ActiveView()[mac] == nil {
		t.Fatalf("reconnected mac must be active")
	}
}

func TestReconnectedCarriesTimeOffline(t *testing.T) {
	tr, now := newTestTracker(30 * time.Minute)
	mac := "AA:BB:CC:DD:EE:01"

	tr.OnConnected(record(mac))
	tr.OnDisconnected(mac, record(mac), false, "")

	*now = now.Add(10 * time.Second)
	session := tr.OnReconnected(record(mac), tr.RecentView()[mac])
	if session.TimeOffline != 10*time.Second {
		t.Fatalf("expected 10s offline, got %v", session.TimeOffline)
	}
	if session.PreviousDisconnect == nil {
		t.Fatalf("expected previous disconnect timestamp")
	}
}

func TestDisconnectedComputesSessionLength(t *testing.T) {
	tr, now := newTestTracker(30 * time.Minute)
	mac := "AA:BB:CC:DD:EE:01"

	tr.OnConnected(record(mac))
	*now = now.Add(42 * time.Minute)

	final := record(mac)
	final.BytesIn, final.BytesOut = 1000, 250
	closed := tr.OnDisconnected(mac, final, true, "idle timeout")
	if closed.SessionLength != 42*time.Minute {
		t.Fatalf("expected 42m session, got %v", closed.SessionLength)
	}
	if closed.BytesIn != 1000 || closed.BytesOut != 250 {
		t.Fatalf("expected final byte counters on closed session")
	}
	if !closed.Kicked || closed.KickReason != "idle timeout" {
		t.Fatalf("expected kick tag retained for audit")
	}
}

func TestStaleSessionOverwrittenOnConnect(t *testing.T) {
	tr, _ := newTestTracker(30 * time.Minute)
	mac := "AA:BB:CC:DD:EE:01"

	first := tr.OnConnected(record(mac))
	second := tr.OnConnected(record(mac))
	if first == second {
		t.Fatalf("expected a fresh session object")
	}
	active, _ := tr.Counts()
	if active != 1 {
		t.Fatalf("expected exactly one active session, got %d", active)
	}
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	tr, now := newTestTracker(30 * time.Minute)
	mac := "AA:BB:CC:DD:EE:01"

	tr.OnConnected(record(mac))
	tr.OnDisconnected(mac, record(mac), false, "")

	*now = now.Add(31 * time.Minute)
	if removed := tr.SweepExpired(); removed != 1 {
		t.Fatalf("expected one eviction, got %d", removed)
	}
	if removed := tr.SweepExpired(); removed != 0 {
		t.Fatalf("second sweep with no time elapsed must remove nothing, got %d", removed)
	}
}

func TestSweepKeepsEntriesWithinGrace(t *testing.T) {
	tr, now := newTestTracker(30 * time.Minute)
	mac := "AA:BB:CC:DD:EE:01"

	tr.OnConnected(record(mac))
	tr.OnDisconnected(mac, record(mac), false, "")

	*now = now.Add(29 * time.Minute)
	if removed := tr.SweepExpired(); removed != 0 {
		t.Fatalf("entry within grace must survive sweep, got %d evictions", removed)
	}
}

func TestTouchRefreshesLivenessAndCounters(t *testing.T) {
	tr, now := newTestTracker(30 * time.Minute)
	mac := "AA:BB:CC:DD:EE:01"

	tr.OnConnected(record(mac))
	*now = now.Add(time.Minute)

	updated := record(mac)
	updated.BytesIn = 4096
	tr.Touch(NewClientSet([]model.ClientRecord{updated}))

	sessions := tr.ActiveSessions()
	if len(sessions) != 1 {
		t.Fatalf("expected one session")
	}
	if !sessions[0].LastSeenAt.Equal(*now) {
		t.Fatalf("expected last seen refreshed")
	}
	if sessions[0].BytesIn != 4096 {
		t.Fatalf("expected byte counters refreshed, got %d", sessions[0].BytesIn)
	}
}
