package tracker

import (
	"github.com/mikrosense/mikrosense/internal/model"
)

// ClientSet is one poll cycle's snapshot of attached clients, keyed by
// canonical MAC and preserving the router's row order so diff output is
// deterministic.
type ClientSet struct {
	order []string
	byMAC map[string]model.ClientRecord
}

// NewClientSet builds a set from fetched records. Records without a MAC
// are dropped; a duplicate MAC keeps the first row but refreshes the
// record.
func NewClientSet(records []model.ClientRecord) *ClientSet {
	s := &ClientSet{byMAC: make(map[string]model.ClientRecord, len(records))}
	for _, record := range records {
		mac := model.CanonicalMAC(record.MAC)
		if mac == "" {
			continue
		}
		record.MAC = mac
		if _, seen := s.byMAC[mac]; !seen {
			s.order = append(s.order, mac)
		}
		s.byMAC[mac] = record
	}
	return s
}

// Len returns the number of distinct MACs in the snapshot.
func (s *ClientSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Has reports presence of a MAC.
func (s *ClientSet) Has(mac string) bool {
	if s == nil {
		return false
	}
	_, ok := s.byMAC[mac]
	return ok
}

// Get returns the record for a MAC.
func (s *ClientSet) Get(mac string) (model.ClientRecord, bool) {
	if s == nil {
		return model.ClientRecord{}, false
	}
	record, ok := s.byMAC[mac]
	return record, ok
}

// MACs returns the MACs in snapshot order.
func (s *ClientSet) MACs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
