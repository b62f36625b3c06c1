package routeros

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mikrosense/mikrosense/internal/model"
)

// FetchActiveClients returns the currently attached hotspot clients,
// enriched with DHCP host names and wireless signal data when the MAC is
// known to those tables. An empty slice is a legitimate "no clients"
// result; errors mean the fetch itself failed.
func (c *Client) FetchActiveClients(ctx context.Context) ([]model.ClientRecord, error) {
	rows, err := c.RunCommand(ctx, "/ip/hotspot/active")
	if err != nil {
		return nil, err
	}

	// Secondary tables are enrichment only: their failure must not turn a
	// successful presence fetch into a failed scan.
	leaseByMAC := map[string]map[string]any{}
	if leases, err := c.RunCommand(ctx, "/ip/dhcp-server/lease"); err == nil {
		for _, row := range leases {
			if mac := model.CanonicalMAC(str(row["mac-address"])); mac != "" {
				leaseByMAC[mac] = row
			}
		}
	}
	wifiByMAC := map[string]map[string]any{}
	if regs, err := c.RunCommand(ctx, "/interface/wireless/registration-table"); err == nil {
		for _, row := range regs {
			if mac := model.CanonicalMAC(str(row["mac-address"])); mac != "" {
				wifiByMAC[mac] = row
			}
		}
	}

	now := time.Now().UTC()
	records := make([]model.ClientRecord, 0, len(rows))
	for _, row := range rows {
		mac := model.CanonicalMAC(str(row["mac-address"]))
		if mac == "" {
			continue
		}
		record := model.ClientRecord{
			MAC:             mac,
			Address:         str(row["address"]),
			ConnType:        model.ConnTypeHotspot,
			SessionID:       str(row["session-id"]),
			LoginBy:         str(row["login-by"]),
			UptimeRaw:       str(row["uptime"]),
			Uptime:          parseDurationOrZero(str(row["uptime"])),
			IdleTimeout:     str(row["idle-timeout"]),
			Comment:         str(row["comment"]),
			BytesIn:         uintFrom(row["bytes-in"]),
			BytesOut:        uintFrom(row["bytes-out"]),
			LimitBytesIn:    uintFrom(row["limit-bytes-in"]),
			LimitBytesOut:   uintFrom(row["limit-bytes-out"]),
			LimitBytesTotal: uintFrom(row["limit-bytes-total"]),
			FetchedAt:       now,
		}
		if lease, ok := leaseByMAC[mac]; ok {
			record.HostName = str(lease["host-name"])
		}
		if record.HostName == "" {
			record.HostName = str(row["user"])
		}
		if wifi, ok := wifiByMAC[mac]; ok {
			record.ConnType = model.ConnTypeWireless
			record.SignalStrength = normalizeSignal(str(wifi["signal-strength"]))
		}
		records = append(records, record)
	}
	return records, nil
}

// FetchWirelessRegistrations returns the wireless registration table.
func (c *Client) FetchWirelessRegistrations(ctx context.Context) ([]model.WirelessClient, error) {
	rows, err := c.RunCommand(ctx, "/interface/wireless/registration-table")
	if err != nil {
		return nil, err
	}
	items := make([]model.WirelessClient, 0, len(rows))
	for _, row := range rows {
		mac := model.CanonicalMAC(str(row["mac-address"]))
		if mac == "" {
			continue
		}
		items = append(items, model.WirelessClient{
			MAC:            mac,
			Interface:      str(row["interface"]),
			SignalStrength: normalizeSignal(str(row["signal-strength"])),
			TxRate:         str(row["tx-rate"]),
			RxRate:         str(row["rx-rate"]),
			Uptime:         str(row["uptime"]),
			LastSeen:       str(row["last-seen"]),
		})
	}
	return items, nil
}

// FetchInterfaces returns the router interface list with running state.
func (c *Client) FetchInterfaces(ctx context.Context) ([]model.InterfaceStatus, error) {
	rows, err := c.RunCommand(ctx, "/interface")
	if err != nil {
		return nil, err
	}
	items := make([]model.InterfaceStatus, 0, len(rows))
	for _, row := range rows {
		name := str(row["name"])
		if name == "" {
			continue
		}
		items = append(items, model.InterfaceStatus{
			Name:     name,
			Type:     str(row["type"]),
			MAC:      model.CanonicalMAC(str(row["mac-address"])),
			Running:  boolFromWord(row["running"]),
			Disabled: boolFromWord(row["disabled"]),
			Comment:  str(row["comment"]),
		})
	}
	return items, nil
}

// FetchRecentLogs returns up to limit recent system log lines.
func (c *Client) FetchRecentLogs(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.RunCommand(ctx, "/log")
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	items := make([]model.LogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, model.LogEntry{
			Time:    str(row["time"]),
			Topics:  str(row["topics"]),
			Message: str(row["message"]),
		})
	}
	return items, nil
}

// KickActiveClient removes one hotspot active entry, forcing the client to
// reauthenticate. id is the router-assigned .id of the active row.
func (c *Client) KickActiveClient(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("active entry id is required")
	}
	return c.RunWrite(ctx, "/ip/hotspot/active/remove", map[string]any{".id": id})
}

// normalizeSignal reduces "-57dBm@6Mbps" style values to a plain dBm figure.
func normalizeSignal(raw string) string {
	if raw == "" {
		return ""
	}
	head := raw
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	head = strings.TrimSuffix(strings.TrimSpace(head), "dBm")
	head = strings.TrimSpace(head)
	if _, err := strconv.Atoi(head); err == nil {
		return head + " dBm"
	}
	return raw
}
