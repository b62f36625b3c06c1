package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/mikrosense/mikrosense/internal/model"
)

func TestSendBuildsHTMLMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	gw := New(Config{
		Host:      "smtp.example.net",
		Port:      2525,
		From:      "monitor@example.net",
		Recipient: "admin@example.net",
	}, nil)
	gw.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	alert := model.Alert{
		Title:     "User Connected",
		Message:   "laptop (AA:BB:CC:DD:EE:01) has connected",
		Priority:  model.PriorityHigh,
		Timestamp: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		Details:   map[string]string{"MAC": "AA:BB:CC:DD:EE:01", "IP": "10.0.0.5"},
	}
	if err := gw.Send(context.Background(), "New User\r\nConnected", alert); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	if gotAddr != "smtp.example.net:2525" {
		t.Fatalf("unexpected relay addr %s", gotAddr)
	}
	if gotFrom != "monitor@example.net" || len(gotTo) != 1 || gotTo[0] != "admin@example.net" {
		t.Fatalf("unexpected envelope: %s -> %v", gotFrom, gotTo)
	}
	text := string(gotMsg)
	if !strings.Contains(text, "Subject: New User Connected\r\n") {
		t.Fatalf("expected sanitized subject header, got:\n%s", text)
	}
	if !strings.Contains(text, "Content-Type: text/html") {
		t.Fatalf("expected html content type")
	}
	if !strings.Contains(text, "AA:BB:CC:DD:EE:01") {
		t.Fatalf("expected details in body")
	}
}

func TestSendRequiresConfiguration(t *testing.T) {
	gw := New(Config{}, nil)
	err := gw.Send(context.Background(), "s", model.Alert{})
	if err == nil {
		t.Fatalf("expected error for unconfigured gateway")
	}
}

func TestSendHonorsContextCancellation(t *testing.T) {
	gw := New(Config{Host: "h", From: "f", Recipient: "r"}, nil)
	called := false
	gw.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gw.Send(ctx, "s", model.Alert{}); err == nil {
		t.Fatalf("expected context error")
	}
	if called {
		t.Fatalf("send must not run after cancellation")
	}
}
