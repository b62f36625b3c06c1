package routeros

import (
	"context"
)

// SystemInfo is a condensed /system/resource view.
type SystemInfo struct {
	BoardName   string `json:"board_name"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	CPULoad     string `json:"cpu_load"`
	FreeMemory  uint64 `json:"free_memory"`
	TotalMemory uint64 `json:"total_memory"`
	FreeHDD     uint64 `json:"free_hdd_space"`
	TotalHDD    uint64 `json:"total_hdd_space"`
}

// FetchSystemInfo returns router identity and resource usage. Also used as
// the connection liveness probe at login.
func (c *Client) FetchSystemInfo(ctx context.Context) (*SystemInfo, error) {
	rows, err := c.RunCommand(ctx, "/system/resource")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &SystemInfo{}, nil
	}
	row := rows[0]
	return &SystemInfo{
		BoardName:   str(row["board-name"]),
		Version:     str(row["version"]),
		Uptime:      str(row["uptime"]),
		CPULoad:     str(row["cpu-load"]),
		FreeMemory:  uintFrom(row["free-memory"]),
		TotalMemory: uintFrom(row["total-memory"]),
		FreeHDD:     uintFrom(row["free-hdd-space"]),
		TotalHDD:    uintFrom(row["total-hdd-space"]),
	}, nil
}

// InterfaceTraffic is the cumulative byte counters of one interface.
type InterfaceTraffic struct {
	Name    string `json:"name"`
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
	RxError uint64 `json:"rx_errors"`
	TxError uint64 `json:"tx_errors"`
	Running bool   `json:"running"`
}

// FetchBandwidth returns per-interface cumulative traffic counters.
func (c *Client) FetchBandwidth(ctx context.Context) ([]InterfaceTraffic, error) {
	rows, err := c.RunCommand(ctx, "/interface")
	if err != nil {
		return nil, err
	}
	items := make([]InterfaceTraffic, 0, len(rows))
	for _, row := range rows {
		name := str(row["name"])
		if name == "" {
			continue
		}
		items = append(items, InterfaceTraffic{
			Name:    name,
			RxBytes: uintFrom(row["rx-byte"]),
			TxBytes: uintFrom(row["tx-byte"]),
			RxError: uintFrom(row["rx-error"]),
			TxError: uintFrom(row["tx-error"]),
			Running: boolFromWord(row["running"]),
		})
	}
	return items, nil
}

// DHCPLease is one DHCP server lease row.
type DHCPLease struct {
	MAC      string `json:"mac"`
	Address  string `json:"address"`
	HostName string `json:"host_name"`
	Server   string `json:"server"`
	Status   string `json:"status"`
	LastSeen string `json:"last_seen"`
	Dynamic  bool   `json:"dynamic"`
	Blocked  bool   `json:"blocked"`
}

// FetchDHCPLeases returns the DHCP server lease table.
func (c *Client) FetchDHCPLeases(ctx context.Context) ([]DHCPLease, error) {
	rows, err := c.RunCommand(ctx, "/ip/dhcp-server/lease")
	if err != nil {
		return nil, err
	}
	items := make([]DHCPLease, 0, len(rows))
	for _, row := range rows {
		mac := str(row["mac-address"])
		if mac == "" {
			continue
		}
		items = append(items, DHCPLease{
			MAC:      mac,
			Address:  str(row["address"]),
			HostName: str(row["host-name"]),
			Server:   str(row["server"]),
			Status:   str(row["status"]),
			LastSeen: str(row["last-seen"]),
			Dynamic:  boolFromWord(row["dynamic"]),
			Blocked:  boolFromWord(row["blocked"]),
		})
	}
	return items, nil
}
