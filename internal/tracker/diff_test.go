package tracker

import (
	"testing"
	"time"

	"github.com/mikrosense/mikrosense/internal/model"
)

func record(mac string) model.ClientRecord {
	return model.ClientRecord{
		MAC:      mac,
		Address:  "10.0.0.5",
		HostName: "laptop",
		ConnType: model.ConnTypeHotspot,
	}
}

func TestDiffIdenticalSnapshotsProduceNothing(t *testing.T) {
	engine := NewEngine(NewClassifier())
	snap := NewClientSet([]model.ClientRecord{record("AA:BB:CC:DD:EE:01"), record("AA:BB:CC:DD:EE:02")})

	got := engine.Diff(snap, snap, nil, nil, DefaultGraceWindow, time.Now())
	if len(got) != 0 {
		t.Fatalf("expected no transitions, got %d", len(got))
	}
}

func TestDiffNewConnection(t *testing.T) {
	engine := NewEngine(NewClassifier())
	prev := NewClientSet(nil)
	curr := NewClientSet([]model.ClientRecord{record("AA:BB:CC:DD:EE:01")})

	got := engine.Diff(prev, curr, nil, nil, DefaultGraceWindow, time.Now())
	if len(got) != 1 {
		t.Fatalf("expected one transition, got %d", len(got))
	}
	if got[0].Kind != model.TransitionConnected {
		t.Fatalf("expected connected, got %s", got[0].Kind)
	}
	if got[0].MAC != "AA:BB:CC:DD:EE:01" {
		t.Fatalf("unexpected mac %s", got[0].MAC)
	}
}

func TestDiffDisappearanceIsExactlyOneTransition(t *testing.T) {
	engine := NewEngine(NewClassifier())
	now := time.Now().UTC()

	rec := record("AA:BB:CC:DD:EE:01")
	rec.Uptime = 40 * time.Minute
	prev := NewClientSet([]model.ClientRecord{rec})
	curr := NewClientSet(nil)
	session := &model.Session{MAC: rec.MAC, StartedAt: now.Add(-40 * time.Minute)}

	got := engine.Diff(prev, curr, map[string]*model.Session{rec.MAC: session}, nil, DefaultGraceWindow, now)
	if len(got) != 1 {
		t.Fatalf("expected exactly one transition, got %d", len(got))
	}
	if got[0].Kind != model.TransitionDisconnected {
		t.Fatalf("expected ordinary disconnect for 40m session, got %s", got[0].Kind)
	}
	if got[0].Session != session {
		t.Fatalf("expected transition to carry the tracked session")
	}
}

func TestDiffShortSessionWithIdleKeywordIsKicked(t *testing.T) {
	engine := NewEngine(NewClassifier())
	now := time.Now().UTC()

	rec := record("AA:BB:CC:DD:EE:01")
	rec.Uptime = 5 * time.Minute
	rec.IdleTimeout = "idle"
	prev := NewClientSet([]model.ClientRecord{rec})

	got := engine.Diff(prev, NewClientSet(nil), nil, nil, DefaultGraceWindow, now)
	if len(got) != 1 {
		t.Fatalf("expected one transition, got %d", len(got))
	}
	if got[0].Kind != model.TransitionKicked {
		t.Fatalf("expected kicked, got %s", got[0].Kind)
	}
	if got[0].KickReason != "idle timeout" {
		t.Fatalf("expected idle timeout reason, got %q", got[0].KickReason)
	}
}

func TestDiffReappearanceWithinGraceIsReconnected(t *testing.T) {
	engine := NewEngine(NewClassifier())
	now := time.Now().UTC()

	mac := "AA:BB:CC:DD:EE:01"
	recent := map[string]model.ClosedSession{
		mac: {MAC: mac, DisconnectedAt: now.Add(-10 * time.Second)},
	}
	curr := NewClientSet([]model.ClientRecord{record(mac)})

	got := engine.Diff(NewClientSet(nil), curr, nil, recent, 30*time.Minute, now)
	if len(got) != 1 {
		t.Fatalf("expected one transition, got %d", len(got))
	}
	if got[0].Kind != model.TransitionReconnected {
		t.Fatalf("expected reconnected, got %s", got[0].Kind)
	}
	if got[0].Prior == nil || got[0].Prior.MAC != mac {
		t.Fatalf("expected prior session on reconnect")
	}
}

func TestDiffReappearanceOutsideGraceIsConnected(t *testing.T) {
	engine := NewEngine(NewClassifier())
	now := time.Now().UTC()

	mac := "AA:BB:CC:DD:EE:01"
	recent := map[string]model.ClosedSession{
		mac: {MAC: mac, DisconnectedAt: now.Add(-31 * time.Minute)},
	}
	curr := NewClientSet([]model.ClientRecord{record(mac)})

	got := engine.Diff(NewClientSet(nil), curr, nil, recent, 30*time.Minute, now)
	if len(got) != 1 || got[0].Kind != model.TransitionConnected {
		t.Fatalf("expected fresh connect outside grace window, got %+v", got)
	}
}

func TestDiffOrderFollowsSnapshotOrder(t *testing.T) {
	engine := NewEngine(NewClassifier())
	now := time.Now().UTC()

	a, b := record("AA:BB:CC:DD:EE:0A"), record("AA:BB:CC:DD:EE:0B")
	c := record("AA:BB:CC:DD:EE:0C")
	c.Uptime = time.Hour
	prev := NewClientSet([]model.ClientRecord{c})
	curr := NewClientSet([]model.ClientRecord{a, b})

	got := engine.Diff(prev, curr, nil, nil, DefaultGraceWindow, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(got))
	}
	if got[0].MAC != a.MAC || got[1].MAC != b.MAC || got[2].MAC != c.MAC {
		t.Fatalf("unexpected order: %s %s %s", got[0].MAC, got[1].MAC, got[2].MAC)
	}
}

func TestDiffFieldChangeWithoutPresenceChangeIsSilent(t *testing.T) {
	engine := NewEngine(NewClassifier())

	before := record("AA:BB:CC:DD:EE:01")
	after := before
	after.Address = "10.0.0.99"

	got := engine.Diff(
		NewClientSet([]model.ClientRecord{before}),
		NewClientSet([]model.ClientRecord{after}),
		nil, nil, DefaultGraceWindow, time.Now(),
	)
	if len(got) != 0 {
		t.Fatalf("field-level change must not produce a transition, got %d", len(got))
	}
}
