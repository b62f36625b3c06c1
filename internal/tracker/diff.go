package tracker

import (
	"time"

	"github.com/mikrosense/mikrosense/internal/model"
)

// Engine compares consecutive snapshots and classifies presence changes.
// It is pure: it never mutates tracker state and has no side effects.
type Engine struct {
	classifier Classifier
}

// NewEngine builds a diff engine with the given kick classifier.
func NewEngine(classifier Classifier) *Engine {
	return &Engine{classifier: classifier}
}

// Diff emits one transition per MAC whose presence changed between prev
// and curr. MACs present in both produce no transition; the tracker
// handles their liveness refresh separately. Appearances found in the
// recently-disconnected set within the grace window become Reconnected
// instead of Connected. Disappearances are classified as Disconnected or
// Kicked, never both. Output order follows snapshot row order: arrivals
// in curr order first, then departures in prev order.
func (e *Engine) Diff(
	prev, curr *ClientSet,
	active map[string]*model.Session,
	recent map[string]model.ClosedSession,
	grace time.Duration,
	now time.Time,
) []model.Transition {
	var out []model.Transition

	for _, mac := range curr.MACs() {
		if prev.Has(mac) {
			continue
		}
		record, _ := curr.Get(mac)
		if closed, ok := recent[mac]; ok && closed.WithinGrace(now, grace) {
			prior := closed
			out = append(out, model.Transition{
				Kind:   model.TransitionReconnected,
				MAC:    mac,
				Record: record,
				Prior:  &prior,
			})
			continue
		}
		out = append(out, model.Transition{
			Kind:   model.TransitionConnected,
			MAC:    mac,
			Record: record,
		})
	}

	for _, mac := range prev.MACs() {
		if curr.Has(mac) {
			continue
		}
		final, _ := prev.Get(mac)
		session := active[mac]
		kicked, reason := e.classifier.Classify(session, final)
		transition := model.Transition{
			MAC:     mac,
			Record:  final,
			Session: session,
		}
		if kicked {
			transition.Kind = model.TransitionKicked
			transition.KickReason = reason
		} else {
			transition.Kind = model.TransitionDisconnected
		}
		out = append(out, transition)
	}

	return out
}
