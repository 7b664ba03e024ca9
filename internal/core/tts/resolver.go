package tts

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
	"github.com/steveyiyo/voicerelay/internal/core/voice"
)

const DefaultPrimaryTimeout = 20 * time.Second

type Recorder interface {
	ObserveSynthesis(provider, outcome string)
}

// Resolver tries the primary provider once and, when that fails and the host
// supports it, the local synthesizer once.
type Resolver struct {
	Primary        Provider
	Local          LocalSynthesizer
	Voices         *voice.Table
	PrimaryTimeout time.Duration
	Logger         *log.Logger
	Recorder       Recorder

	fallbackAvailable func() bool
}

func NewResolver(primary Provider, local LocalSynthesizer, voices *voice.Table) *Resolver {
	if voices == nil {
		voices = voice.NewTable(voice.Default)
	}
	r := &Resolver{
		Primary:        primary,
		Local:          local,
		Voices:         voices,
		PrimaryTimeout: DefaultPrimaryTimeout,
		Logger:         log.Default(),
	}
	r.fallbackAvailable = sync.OnceValue(func() bool {
		return r.Local != nil && r.Local.Available()
	})
	return r
}

// FallbackAvailable reports the host capability, evaluated once.
func (r *Resolver) FallbackAvailable() bool { return r.fallbackAvailable() }

func (r *Resolver) Synthesize(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, fmt.Errorf("%w: text is required", errs.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return Result{}, fmt.Errorf("%w: apiKey is required", errs.ErrMissingCredential)
	}
	m := r.Voices.Resolve(req.Voice)

	audio, mime, prErr := r.primary(ctx, req.Text, m.Backend, req.APIKey)
	if prErr == nil {
		r.observe(ProvenancePrimary, "ok")
		return Result{Audio: audio, MimeType: mime, Provider: ProvenancePrimary}, nil
	}
	r.observe(ProvenancePrimary, "error")
	r.Logger.Printf("tts: primary failed for voice %s: %v", m.Backend, prErr)

	if !r.FallbackAvailable() {
		return Result{}, fmt.Errorf("%w: %v", errs.ErrSynthesisFailed, prErr)
	}

	audio, mime, fbErr := r.Local.Synthesize(ctx, req.Text, m.Local)
	if fbErr == nil && len(audio) == 0 {
		fbErr = fmt.Errorf("local synthesis produced no audio")
	}
	if fbErr != nil {
		r.observe(ProvenanceFallback, "error")
		return Result{}, fmt.Errorf("%w: primary: %v; fallback: %v", errs.ErrSynthesisFailed, prErr, fbErr)
	}
	r.observe(ProvenanceFallback, "ok")
	r.Logger.Printf("tts: served %d bytes from local voice %s", len(audio), m.Local)
	return Result{Audio: audio, MimeType: mime, Provider: ProvenanceFallback}, nil
}

func (r *Resolver) primary(ctx context.Context, text, voiceName, apiKey string) ([]byte, string, error) {
	if r.Primary == nil {
		return nil, "", fmt.Errorf("no primary provider configured")
	}
	if r.PrimaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.PrimaryTimeout)
		defer cancel()
	}
	// Buffered so a provider that ignores ctx can still finish and exit.
	ch := make(chan primaryResult, 1)
	go func() {
		audio, mime, err := r.Primary.Synthesize(ctx, text, voiceName, apiKey)
		ch <- primaryResult{audio: audio, mime: mime, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, "", res.err
		}
		if len(res.audio) == 0 {
			return nil, "", fmt.Errorf("primary returned no audio")
		}
		return res.audio, res.mime, nil
	case <-ctx.Done():
		return nil, "", fmt.Errorf("primary: %w", ctx.Err())
	}
}

type primaryResult struct {
	audio []byte
	mime  string
	err   error
}

func (r *Resolver) observe(p Provenance, outcome string) {
	if r.Recorder != nil {
		r.Recorder.ObserveSynthesis(string(p), outcome)
	}
}
