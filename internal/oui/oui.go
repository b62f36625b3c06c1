// Package oui resolves hardware vendor names from the OUI prefix of a
// MAC address, using a curated IEEE registry extract compiled into the
// binary.
package oui

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed data/oui.json
var registryExtract []byte

// DB holds the prefix table. The zero value resolves nothing; build one
// with Load or LoadEmbedded. Lookups are safe for concurrent use.
type DB struct {
	byPrefix map[string]string
}

// LoadEmbedded parses the compiled-in registry extract.
func LoadEmbedded() (*DB, error) {
	db, err := Load(registryExtract)
	if err != nil {
		return nil, fmt.Errorf("embedded oui registry: %w", err)
	}
	return db, nil
}

// Load parses a JSON object mapping OUI prefixes to vendor names.
// Keys must carry six hex digits; separators are tolerated. Entries
// with an empty vendor name are dropped.
func Load(data []byte) (*DB, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	byPrefix := make(map[string]string, len(raw))
	for key, vendor := range raw {
		prefix, ok := ouiPrefix(key)
		if !ok {
			return nil, fmt.Errorf("invalid oui prefix %q", key)
		}
		if vendor = strings.TrimSpace(vendor); vendor != "" {
			byPrefix[prefix] = vendor
		}
	}
	return &DB{byPrefix: byPrefix}, nil
}

// Lookup reports the vendor registered for the MAC's OUI prefix.
func (db *DB) Lookup(mac string) (string, bool) {
	if db == nil {
		return "", false
	}
	prefix, ok := ouiPrefix(mac)
	if !ok {
		return "", false
	}
	vendor, ok := db.byPrefix[prefix]
	return vendor, ok
}

// ouiPrefix extracts the first six hex digits of a MAC-like string,
// upper-cased, skipping the usual separators. ok is false when the
// input is too short or contains a non-hex digit.
func ouiPrefix(v string) (string, bool) {
	var prefix [6]byte
	n := 0
	for i := 0; i < len(v) && n < 6; i++ {
		c := v[i]
		switch {
		case c == ':' || c == '-' || c == '.' || c == ' ':
			continue
		case c >= '0' && c <= '9', c >= 'A' && c <= 'F':
			prefix[n] = c
		case c >= 'a' && c <= 'f':
			prefix[n] = c - ('a' - 'A')
		default:
			return "", false
		}
		n++
	}
	if n < 6 {
		return "", false
	}
	return string(prefix[:]), true
}
