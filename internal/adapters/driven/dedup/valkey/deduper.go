// Package valkey provides a driven.AlertDeduper backed by a valkey or
// redis server, so alert suppression survives restarts and is shared
// between processes.
package valkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// Ensure Deduper implements the interface.
var _ driven.AlertDeduper = (*Deduper)(nil)

// KeyPrefix namespaces claim keys.
const KeyPrefix = "flowwatch:alert:"

// pingTimeout bounds the connection check in New.
const pingTimeout = 3 * time.Second

// ErrNoAddress is returned when no server address is configured.
var ErrNoAddress = errors.New("valkey: address is required")

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
}

// Deduper claims alert keys with SET NX EX.
type Deduper struct {
	client valkey.Client
	log    *slog.Logger
}

// New connects and pings the server.
func New(ctx context.Context, cfg Config) (*Deduper, error) {
	if cfg.Addr == "" {
		return nil, ErrNoAddress
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{cfg.Addr},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey: connect %s: %w", cfg.Addr, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey: ping %s: %w", cfg.Addr, err)
	}

	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client valkey.Client) *Deduper {
	return &Deduper{client: client, log: logger.Component("dedup")}
}

// Claim sets the key only if absent, expiring after window. A nil reply
// means another run already holds it.
func (d *Deduper) Claim(ctx context.Context, key string, window time.Duration) (bool, error) {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	cmd := d.client.B().Set().Key(KeyPrefix + key).Value(time.Now().UTC().Format(time.RFC3339)).
		Nx().ExSeconds(seconds).Build()
	err := d.client.Do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case valkey.IsValkeyNil(err):
		d.log.Debug("alert already claimed", "key", key)
		return false, nil
	default:
		return false, fmt.Errorf("valkey: claim %s: %w", key, err)
	}
}

// Close releases the client.
func (d *Deduper) Close() {
	d.client.Close()
}
