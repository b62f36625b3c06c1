// Package mail delivers alert notification emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"sort"
	"strings"

	"github.com/mikrosense/mikrosense/internal/model"
)

// Config carries SMTP relay settings. An empty Host disables delivery.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Recipient string
}

// Enabled reports whether the gateway has enough configuration to send.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != "" && c.Recipient != ""
}

func (c Config) addr() string {
	port := c.Port
	if port == 0 {
		port = 587
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// Gateway renders alerts into HTML email and hands them to an SMTP relay.
// Callers treat delivery as best effort; errors are returned for logging
// only and are never retried here.
type Gateway struct {
	cfg    Config
	send   sendFunc
	logger *slog.Logger
}

// New builds a gateway for the given relay configuration.
func New(cfg Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{cfg: cfg, send: smtp.SendMail, logger: logger}
}

// Send renders and delivers one alert email to the configured admin
// recipient.
func (g *Gateway) Send(ctx context.Context, subject string, alert model.Alert) error {
	if !g.cfg.Enabled() {
		return fmt.Errorf("email gateway not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := renderAlertBody(alert)
	if err != nil {
		return fmt.Errorf("render alert email: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", g.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", g.cfg.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", sanitizeHeader(subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if g.cfg.Username != "" {
		auth = smtp.PlainAuth("", g.cfg.Username, g.cfg.Password, g.cfg.Host)
	}
	return g.send(g.cfg.addr(), auth, g.cfg.From, []string{g.cfg.Recipient}, msg.Bytes())
}

var alertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>{{.Title}}</h2>
  <p><strong>{{.Priority}}</strong> priority alert from the router monitor.</p>
  <p>{{.Message}}</p>
  {{if .Rows}}
  <table cellpadding="6" style="border-collapse: collapse;">
    {{range .Rows}}
    <tr>
      <td style="border-bottom: 1px solid #eee; font-weight: bold;">{{.Key}}</td>
      <td style="border-bottom: 1px solid #eee;">{{.Value}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}
  <p style="color: #999; font-size: 12px;">Sent {{.Timestamp}}</p>
</body>
</html>
`))

type detailRow struct {
	Key   string
	Value string
}

func renderAlertBody(alert model.Alert) (string, error) {
	rows := make([]detailRow, 0, len(alert.Details))
	for key, value := range alert.Details {
		rows = append(rows, detailRow{Key: key, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	var buf bytes.Buffer
	err := alertTemplate.Execute(&buf, map[string]any{
		"Title":     alert.Title,
		"Message":   alert.Message,
		"Priority":  strings.ToUpper(string(alert.Priority)),
		"Rows":      rows,
		"Timestamp": alert.Timestamp.Format("2006-01-02 15:04:05 MST"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeHeader(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.ReplaceAll(v, "\n", " ")
}
