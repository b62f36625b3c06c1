package oui

import "testing"

func TestLoadAndLookup(t *testing.T) {
	data := []byte(`{"00:0C:42":"MikroTik","aabbcc":"VendorX"}`)
	db, err := Load(data)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got, ok := db.Lookup("00:0c:42:11:22:33"); !ok || got != "MikroTik" {
		t.Fatalf("expected MikroTik, got %q (ok=%v)", got, ok)
	}
	if got, ok := db.Lookup("AA-BB-CC-01-02-03"); !ok || got != "VendorX" {
		t.Fatalf("expected VendorX, got %q (ok=%v)", got, ok)
	}
	if got, ok := db.Lookup("11:22:33:44:55:66"); ok {
		t.Fatalf("expected unknown prefix to miss, got %q", got)
	}
}

func TestLookupRejectsMalformedMAC(t *testing.T) {
	db, err := Load([]byte(`{"000C42":"MikroTik"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := db.Lookup("zz:0c:42:11:22:33"); ok {
		t.Fatalf("non-hex input must miss")
	}
	if _, ok := db.Lookup("00:0C"); ok {
		t.Fatalf("truncated input must miss")
	}
}

func TestLoadRejectsBadPrefix(t *testing.T) {
	if _, err := Load([]byte(`{"not-a-prefix":"Vendor"}`)); err == nil {
		t.Fatalf("expected invalid prefix to be rejected")
	}
}

func TestLookupOnNilDB(t *testing.T) {
	var db *DB
	if _, ok := db.Lookup("00:0c:42:11:22:33"); ok {
		t.Fatalf("nil db must miss")
	}
}

func TestLoadEmbedded(t *testing.T) {
	db, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("embedded database must parse: %v", err)
	}
	if got, ok := db.Lookup("B8:27:EB:AA:BB:CC"); !ok || got != "Raspberry Pi" {
		t.Fatalf("expected Raspberry Pi, got %q (ok=%v)", got, ok)
	}
}
