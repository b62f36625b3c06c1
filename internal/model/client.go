package model

import (
	"strings"
	"time"
)

// Connection medium reported for an attached client.
const (
	ConnTypeHotspot  = "hotspot"
	ConnTypeWireless = "wireless"
	ConnTypeWired    = "wired"
	ConnTypeUnknown  = "unknown"
)

// ClientRecord is one attached client as reported by the router for a
// single poll cycle. Records are rebuilt fresh every cycle and are only
// retained as part of a Session.
type ClientRecord struct {
	MAC             string        `json:"mac"`
	Address         string        `json:"address"`
	HostName        string        `json:"host_name"`
	ConnType        string        `json:"conn_type"`
	SignalStrength  string        `json:"signal_strength,omitempty"`
	SessionID       string        `json:"session_id,omitempty"`
	LoginBy         string        `json:"login_by,omitempty"`
	Uptime          time.Duration `json:"uptime"`
	UptimeRaw       string        `json:"uptime_raw,omitempty"`
	IdleTimeout     string        `json:"idle_timeout,omitempty"`
	Comment         string        `json:"comment,omitempty"`
	BytesIn         uint64        `json:"bytes_in"`
	BytesOut        uint64        `json:"bytes_out"`
	LimitBytesIn    uint64        `json:"limit_bytes_in,omitempty"`
	LimitBytesOut   uint64        `json:"limit_bytes_out,omitempty"`
	LimitBytesTotal uint64        `json:"limit_bytes_total,omitempty"`
	Vendor          string        `json:"vendor,omitempty"`
	FetchedAt       time.Time     `json:"fetched_at"`
}

// TotalBytes returns the combined session byte counters.
func (r ClientRecord) TotalBytes() uint64 {
	return r.BytesIn + r.BytesOut
}

// QuotaExceeded reports whether the router-configured byte quota, if any,
// has been reached.
func (r ClientRecord) QuotaExceeded() bool {
	limit := r.LimitBytesTotal
	if limit == 0 {
		limit = r.LimitBytesIn + r.LimitBytesOut
	}
	if limit == 0 {
		return false
	}
	return r.TotalBytes() >= limit
}

// WirelessClient is one entry of the wireless registration table.
type WirelessClient struct {
	MAC            string `json:"mac"`
	Interface      string `json:"interface"`
	SignalStrength string `json:"signal_strength,omitempty"`
	TxRate         string `json:"tx_rate,omitempty"`
	RxRate         string `json:"rx_rate,omitempty"`
	Uptime         string `json:"uptime,omitempty"`
	LastSeen       string `json:"last_seen,omitempty"`
}

// InterfaceStatus is the running state of one router interface.
type InterfaceStatus struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	MAC      string `json:"mac,omitempty"`
	Running  bool   `json:"running"`
	Disabled bool   `json:"disabled"`
	Comment  string `json:"comment,omitempty"`
}

// LogEntry is one router system log line.
type LogEntry struct {
	Time    string `json:"time"`
	Topics  string `json:"topics"`
	Message string `json:"message"`
}

// Key identifies a log line for dedup across poll cycles.
func (e LogEntry) Key() string {
	return e.Time + "|" + e.Message
}

// CanonicalMAC upper-cases a MAC address and normalizes separators so it
// can be used as a map key.
func CanonicalMAC(v string) string {
	v = strings.TrimSpace(strings.ToUpper(v))
	if v == "" {
		return ""
	}
	return strings.ReplaceAll(v, "-", ":")
}
