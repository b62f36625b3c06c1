package model

import "time"

// Session is the authoritative record for one currently attached MAC.
// Owned exclusively by the session tracker.
type Session struct {
	MAC        string       `json:"mac"`
	Record     ClientRecord `json:"record"`
	StartedAt  time.Time    `json:"started_at"`
	LastSeenAt time.Time    `json:"last_seen_at"`
	BytesIn    uint64       `json:"bytes_in"`
	BytesOut   uint64       `json:"bytes_out"`

	// Set when the session began as a reconnection within the grace
	// window of an earlier disconnect.
	PreviousDisconnect *time.Time    `json:"previous_disconnect,omitempty"`
	TimeOffline        time.Duration `json:"time_offline,omitempty"`
}

// Duration returns session length as of now.
func (s Session) Duration(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// ClosedSession is a finished session held in the recently-disconnected
// set for reconnection detection, and recorded for statistics.
type ClosedSession struct {
	MAC            string        `json:"mac"`
	Record         ClientRecord  `json:"record"`
	StartedAt      time.Time     `json:"started_at"`
	DisconnectedAt time.Time     `json:"disconnected_at"`
	SessionLength  time.Duration `json:"session_length"`
	BytesIn        uint64        `json:"bytes_in"`
	BytesOut       uint64        `json:"bytes_out"`
	Kicked         bool          `json:"kicked"`
	KickReason     string        `json:"kick_reason,omitempty"`
}

// WithinGrace reports whether a reappearance at now still counts as a
// reconnection.
func (c ClosedSession) WithinGrace(now time.Time, grace time.Duration) bool {
	return now.Sub(c.DisconnectedAt) <= grace
}
