package model

// TransitionKind classifies one presence change between two snapshots.
type TransitionKind string

const (
	TransitionConnected    TransitionKind = "connected"
	TransitionReconnected  TransitionKind = "reconnected"
	TransitionDisconnected TransitionKind = "disconnected"
	TransitionKicked       TransitionKind = "kicked"
)

// Transition is one classified presence change for a single MAC. It is
// produced by the diff engine and consumed immediately by the tracker and
// notification sink; it is never persisted.
type Transition struct {
	Kind TransitionKind
	MAC  string

	// Current router record. For Connected/Reconnected this is the new
	// record; for Disconnected/Kicked it is the last record seen before
	// the MAC disappeared.
	Record ClientRecord

	// Prior holds the closed session that a Reconnected transition
	// resumes from. Nil for other kinds.
	Prior *ClosedSession

	// Session holds the tracked session a Disconnected/Kicked transition
	// ends. Nil for Connected/Reconnected.
	Session *Session

	// KickReason is advisory and set only for Kicked.
	KickReason string
}
