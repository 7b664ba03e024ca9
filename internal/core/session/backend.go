package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
)

// Config is what a backend needs to open a live conversation.
type Config struct {
	Model             string
	Credential        string
	Voice             string
	SystemInstruction string
}

// Backend is an open realtime conversation with the generation service.
type Backend interface {
	SendAudio(ctx context.Context, data []byte, mimeType string) error
	// Receive blocks for the next server event. It returns io.EOF when the
	// backend closed the stream cleanly.
	Receive() (json.RawMessage, error)
	Close() error
}

// Dialer opens backends. Dial must honor ctx cancellation where it can; a
// Backend returned after cancellation is still closed by the session.
type Dialer interface {
	Dial(ctx context.Context, cfg Config) (Backend, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, cfg Config) (Backend, error)

func (f DialerFunc) Dial(ctx context.Context, cfg Config) (Backend, error) { return f(ctx, cfg) }

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Credential) == "" {
		return fmt.Errorf("%w: connect requires apiKey", errs.ErrMissingCredential)
	}
	return nil
}
