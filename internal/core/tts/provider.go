package tts

import "context"

type Provenance string

const (
	ProvenancePrimary  Provenance = "primary"
	ProvenanceFallback Provenance = "fallback"
)

// Provider is the network synthesis tier.
type Provider interface {
	Synthesize(ctx context.Context, text, voice, apiKey string) (audio []byte, mimeType string, err error)
}

// LocalSynthesizer produces audio on this host without a network call.
// Available must be a fixed property of the host.
type LocalSynthesizer interface {
	Available() bool
	Synthesize(ctx context.Context, text, voice string) (audio []byte, mimeType string, err error)
}

type Request struct {
	Text   string
	Voice  string
	APIKey string
}

type Result struct {
	Audio    []byte
	MimeType string
	Provider Provenance
}
