package monitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikrosense/mikrosense/internal/model"
)

// maxSeenLogs bounds the log dedup set so it cannot grow without limit
// on a chatty router.
const maxSeenLogs = 100

// scanWireless diffs the wireless registration table against the previous
// cycle and raises connect/disconnect alerts per station.
func (m *Monitor) scanWireless(ctx context.Context) {
	stations, err := m.source.FetchWirelessRegistrations(ctx)
	if err != nil {
		m.logger.Debug("wireless registration fetch failed", "err", err)
		return
	}

	curr := make(map[string]model.WirelessClient, len(stations))
	for _, station := range stations {
		mac := model.CanonicalMAC(station.MAC)
		if mac == "" {
			continue
		}
		curr[mac] = station
	}

	for _, station := range stations {
		mac := model.CanonicalMAC(station.MAC)
		if mac == "" {
			continue
		}
		if _, known := m.prevWireless[mac]; known {
			continue
		}
		m.sink.CreateAlert(
			model.AlertWirelessConnected,
			"Wireless Device Connected",
			fmt.Sprintf("%s joined %s", mac, station.Interface),
			map[string]string{
				"MAC Address":     mac,
				"Interface":       station.Interface,
				"Signal Strength": station.SignalStrength,
				"TX Rate":         station.TxRate,
				"RX Rate":         station.RxRate,
			},
		)
	}
	for mac, station := range m.prevWireless {
		if _, still := curr[mac]; still {
			continue
		}
		m.sink.CreateAlert(
			model.AlertWirelessDisconnected,
			"Wireless Device Disconnected",
			fmt.Sprintf("%s left %s", mac, station.Interface),
			map[string]string{
				"MAC Address": mac,
				"Interface":   station.Interface,
				"Last Uptime": station.Uptime,
			},
		)
	}
	m.prevWireless = curr
}

// scanInterfaces raises an alert only when an interface changes running
// state. The first observation of an interface records a baseline
// silently; steady state never alerts.
func (m *Monitor) scanInterfaces(ctx context.Context) {
	interfaces, err := m.source.FetchInterfaces(ctx)
	if err != nil {
		m.logger.Debug("interface fetch failed", "err", err)
		return
	}

	for _, iface := range interfaces {
		if iface.Disabled {
			continue
		}
		prev, known := m.prevIfaces[iface.Name]
		m.prevIfaces[iface.Name] = iface.Running
		if !known || prev == iface.Running {
			continue
		}
		details := map[string]string{
			"Interface": iface.Name,
			"Type":      iface.Type,
		}
		if iface.Comment != "" {
			details["Comment"] = iface.Comment
		}
		if iface.Running {
			m.sink.CreateAlert(
				model.AlertInterfaceUp,
				"Interface Up",
				fmt.Sprintf("Interface %s is running", iface.Name),
				details,
			)
		} else {
			m.sink.CreateAlert(
				model.AlertInterfaceDown,
				"Interface Down",
				fmt.Sprintf("Interface %s stopped running", iface.Name),
				details,
			)
		}
	}
}

// scanLogs surfaces new warning and error lines from the router system
// log, deduplicated across cycles by time+message.
func (m *Monitor) scanLogs(ctx context.Context) {
	entries, err := m.source.FetchRecentLogs(ctx, m.opts.LogLimit)
	if err != nil {
		m.logger.Debug("system log fetch failed", "err", err)
		return
	}

	for _, entry := range entries {
		key := entry.Key()
		if _, seen := m.seenLogs[key]; seen {
			continue
		}
		m.rememberLog(key)

		category, ok := classifyLog(entry)
		if !ok {
			continue
		}
		title := "Router Warning"
		if category == model.AlertSystemError {
			title = "Router Error"
		}
		m.sink.CreateAlert(category, title, entry.Message, map[string]string{
			"Topics": entry.Topics,
			"Time":   entry.Time,
		})
	}
}

func (m *Monitor) rememberLog(key string) {
	m.seenLogs[key] = struct{}{}
	m.seenLogOrder = append(m.seenLogOrder, key)
	if len(m.seenLogOrder) > maxSeenLogs {
		oldest := m.seenLogOrder[0]
		m.seenLogOrder = m.seenLogOrder[1:]
		delete(m.seenLogs, oldest)
	}
}

// classifyLog maps a log line to an alert category. Error outranks
// warning when a line matches both.
func classifyLog(entry model.LogEntry) (model.AlertCategory, bool) {
	haystack := strings.ToLower(entry.Topics + " " + entry.Message)
	if strings.Contains(haystack, "error") || strings.Contains(haystack, "critical") {
		return model.AlertSystemError, true
	}
	if strings.Contains(haystack, "warning") {
		return model.AlertSystemWarning, true
	}
	return "", false
}
