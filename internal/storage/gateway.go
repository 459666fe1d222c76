package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Gateway serializes typed documents into a Store. Values are encoded as
// JSON; time.Time fields marshal as RFC 3339, so persisted dates stay stable
// across versions.
type Gateway struct {
	store Store
	log   *zap.Logger
}

// NewGateway wraps a Store.
func NewGateway(store Store, log *zap.Logger) *Gateway {
	return &Gateway{store: store, log: log.Named("storage")}
}

// Close closes the underlying store.
func (g *Gateway) Close() error { return g.store.Close() }

// Save serializes v and durably writes it to the named slot, replacing the
// prior document.
func Save[T any](g *Gateway, slot string, v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	if err := g.store.Write(slot, data); err != nil {
		return fmt.Errorf("write %s: %w", slot, err)
	}
	return nil
}

// Load reads and decodes the named slot. It fails with ErrNotFound when the
// slot was never written and ErrDecode when the document no longer parses.
func Load[T any](g *Gateway, slot string) (T, error) {
	var v T
	data, err := g.store.Read(slot)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrDecode, slot, err)
	}
	return v, nil
}

// LoadOrDefault returns the decoded slot, or fallback on any failure. A
// missing or corrupt document must never prevent startup, so the error is
// logged and swallowed.
func LoadOrDefault[T any](g *Gateway, slot string, fallback T) T {
	v, err := Load[T](g, slot)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.log.Warn("falling back to default", zap.String("slot", slot), zap.Error(err))
		}
		return fallback
	}
	return v
}
