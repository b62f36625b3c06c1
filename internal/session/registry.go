// Package session manages authenticated API connections. Each login
// binds a router client to a bearer token and owns that connection's
// monitor, tracker, alert sink and history store.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mikrosense/mikrosense/internal/alerts"
	"github.com/mikrosense/mikrosense/internal/history"
	"github.com/mikrosense/mikrosense/internal/mail"
	"github.com/mikrosense/mikrosense/internal/monitor"
	"github.com/mikrosense/mikrosense/internal/oui"
	"github.com/mikrosense/mikrosense/internal/routeros"
	"github.com/mikrosense/mikrosense/internal/tracker"
)

// DefaultTokenTTL bounds how long a bearer token stays valid.
const DefaultTokenTTL = 24 * time.Hour

const historyPurgeInterval = time.Hour

// ErrInvalidToken covers every token rejection: expired, malformed,
// bad signature or a connection that no longer exists.
var ErrInvalidToken = errors.New("invalid or expired token")

// Options configure the registry and the per-connection components it
// builds.
type Options struct {
	Secret           string
	TokenTTL         time.Duration
	GraceWindow      time.Duration
	AlertHistorySize int
	HistoryRetention time.Duration
	Monitor          monitor.Options
	Mail             mail.Config
}

// Connection is one authenticated router binding and the monitoring
// components living under it.
type Connection struct {
	ID         string
	RouterHost string
	Client     *routeros.Client
	Tracker    *tracker.Tracker
	Sink       *alerts.Sink
	Monitor    *monitor.Monitor
	History    *history.Store
	CreatedAt  time.Time

	cancel context.CancelFunc
}

// Registry issues tokens on login and resolves them back to live
// connections.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*Connection

	secret   []byte
	tokenTTL time.Duration
	opts     Options
	vendors  *oui.DB
	logger   *slog.Logger

	// newClient is swapped in tests to avoid real router traffic.
	newClient func(cfg routeros.Config) *routeros.Client
}

// NewRegistry builds a registry. An empty secret gets a random
// per-process one, which invalidates tokens on restart.
func NewRegistry(opts Options, vendors *oui.DB, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	secret := []byte(opts.Secret)
	if len(secret) == 0 {
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set; tokens will not survive restarts")
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if opts.HistoryRetention <= 0 {
		opts.HistoryRetention = history.DefaultRetention
	}
	return &Registry{
		conns:     make(map[string]*Connection),
		secret:    secret,
		tokenTTL:  ttl,
		opts:      opts,
		vendors:   vendors,
		logger:    logger,
		newClient: routeros.NewClient,
	}
}

// Login validates the router credentials with a live probe, builds the
// connection's monitoring stack and returns a bearer token for it. The
// monitor is created stopped; callers start it explicitly.
func (r *Registry) Login(ctx context.Context, cfg routeros.Config) (string, *Connection, error) {
	client := r.newClient(cfg)
	if _, err := client.FetchSystemInfo(ctx); err != nil {
		return "", nil, fmt.Errorf("router login failed: %w", err)
	}

	id := uuid.NewString()
	connLogger := r.logger.With("conn", id, "router", cfg.Host)

	store, err := history.Open(ctx, history.InMemoryDSN, connLogger)
	if err != nil {
		return "", nil, fmt.Errorf("open session history: %w", err)
	}

	var gateway alerts.EmailGateway
	if r.opts.Mail.Enabled() {
		gateway = mail.New(r.opts.Mail, connLogger)
	}
	sink := alerts.New(r.opts.AlertHistorySize, gateway, connLogger)
	tr := tracker.New(r.opts.GraceWindow, connLogger)
	engine := tracker.NewEngine(tracker.NewClassifier())
	mon := monitor.New(client, tr, engine, sink, store, r.opts.Monitor, connLogger)
	if r.vendors != nil {
		mon.SetVendorDB(r.vendors)
	}

	connCtx, cancel := context.WithCancel(context.Background())
	conn := &Connection{
		ID:         id,
		RouterHost: cfg.Host,
		Client:     client,
		Tracker:    tr,
		Sink:       sink,
		Monitor:    mon,
		History:    store,
		CreatedAt:  time.Now().UTC(),
		cancel:     cancel,
	}
	go r.purgeHistoryLoop(connCtx, conn)

	token, err := r.issueToken(id)
	if err != nil {
		cancel()
		_ = store.Close()
		return "", nil, err
	}

	r.mu.Lock()
	r.conns[id] = conn
	r.mu.Unlock()

	connLogger.Info("connection established")
	return token, conn, nil
}

// Resolve maps a bearer token to its live connection.
func (r *Registry) Resolve(token string) (*Connection, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	r.mu.Lock()
	conn, ok := r.conns[claims.Subject]
	r.mu.Unlock()
	if !ok {
		return nil, ErrInvalidToken
	}
	return conn, nil
}

// Logout tears the connection down: stops the monitor, closes the
// history store and forgets the token subject.
func (r *Registry) Logout(id string) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()
	if !ok {
		return
	}

	conn.cancel()
	conn.Monitor.Stop()
	if err := conn.History.Close(); err != nil {
		r.logger.Warn("history close failed", "conn", id, "err", err)
	}
	r.logger.Info("connection closed", "conn", id)
}

// CloseAll logs every connection out, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Logout(id)
	}
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *Registry) issueToken(id string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(r.tokenTTL)),
	})
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (r *Registry) purgeHistoryLoop(ctx context.Context, conn *Connection) {
	ticker := time.NewTicker(historyPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purgeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := conn.History.PurgeOlderThan(purgeCtx, r.opts.HistoryRetention); err != nil {
				r.logger.Warn("history purge failed", "conn", conn.ID, "err", err)
			}
			cancel()
		}
	}
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// Extremely unlikely; fall back to a time-derived value rather
		// than refusing to start.
		return []byte(hex.EncodeToString([]byte(time.Now().String())))
	}
	return buf
}
