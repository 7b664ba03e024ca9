package tts

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
	"github.com/steveyiyo/voicerelay/internal/core/voice"
)

type stubProvider struct {
	mu        sync.Mutex
	calls     int
	seenVoice string
	synth     func(ctx context.Context, text, voice, apiKey string) ([]byte, string, error)
}

func (p *stubProvider) Synthesize(ctx context.Context, text, voiceName, apiKey string) ([]byte, string, error) {
	p.mu.Lock()
	p.calls++
	p.seenVoice = voiceName
	p.mu.Unlock()
	return p.synth(ctx, text, voiceName, apiKey)
}

type stubLocal struct {
	available      bool
	availableCalls int
	calls          int
	seenVoice      string
	err            error
}

func (l *stubLocal) Available() bool {
	l.availableCalls++
	return l.available
}

func (l *stubLocal) Synthesize(_ context.Context, _, voiceName string) ([]byte, string, error) {
	l.calls++
	l.seenVoice = voiceName
	if l.err != nil {
		return nil, "", l.err
	}
	return []byte("RIFFdata"), "audio/wav", nil
}

func failingPrimary() *stubProvider {
	return &stubProvider{synth: func(context.Context, string, string, string) ([]byte, string, error) {
		return nil, "", errors.New("primary unavailable")
	}}
}

func quietResolver(p Provider, l LocalSynthesizer) *Resolver {
	r := NewResolver(p, l, voice.NewTable("Puck"))
	r.Logger = log.New(io.Discard, "", 0)
	return r
}

func TestSynthesizePrimarySuccess(t *testing.T) {
	p := &stubProvider{synth: func(context.Context, string, string, string) ([]byte, string, error) {
		return []byte{0, 0}, "audio/L16;rate=24000", nil
	}}
	l := &stubLocal{available: true}
	r := quietResolver(p, l)

	res, err := r.Synthesize(context.Background(), Request{Text: "hello", Voice: "kore", APIKey: "key"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if res.Provider != ProvenancePrimary {
		t.Fatalf("Provider = %q, want primary", res.Provider)
	}
	if p.seenVoice != "Kore" {
		t.Fatalf("primary voice = %q, want Kore", p.seenVoice)
	}
	if l.calls != 0 {
		t.Fatalf("local calls = %d, want 0", l.calls)
	}
}

func TestSynthesizeFallsBackWhenAvailable(t *testing.T) {
	l := &stubLocal{available: true}
	r := quietResolver(failingPrimary(), l)

	res, err := r.Synthesize(context.Background(), Request{Text: "hello", Voice: "Kore", APIKey: "key"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if res.Provider != ProvenanceFallback {
		t.Fatalf("Provider = %q, want fallback", res.Provider)
	}
	if len(res.Audio) == 0 {
		t.Fatalf("fallback audio is empty")
	}
	if l.seenVoice != voice.Resolve("Kore").Local {
		t.Fatalf("local voice = %q, want %q", l.seenVoice, voice.Resolve("Kore").Local)
	}
}

func TestSynthesizeNoFallbackWhenUnavailable(t *testing.T) {
	l := &stubLocal{available: false}
	r := quietResolver(failingPrimary(), l)

	_, err := r.Synthesize(context.Background(), Request{Text: "hello", Voice: "Kore", APIKey: "key"})
	if !errors.Is(err, errs.ErrSynthesisFailed) {
		t.Fatalf("Synthesize() error = %v, want ErrSynthesisFailed", err)
	}
	if l.calls != 0 {
		t.Fatalf("local calls = %d, want 0", l.calls)
	}
}

func TestSynthesizeBothTiersFail(t *testing.T) {
	l := &stubLocal{available: true, err: errors.New("say exited 1")}
	r := quietResolver(failingPrimary(), l)

	_, err := r.Synthesize(context.Background(), Request{Text: "hello", APIKey: "key"})
	if !errors.Is(err, errs.ErrSynthesisFailed) {
		t.Fatalf("Synthesize() error = %v, want ErrSynthesisFailed", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "primary unavailable") || !strings.Contains(msg, "say exited 1") {
		t.Fatalf("error %q should carry both diagnostics", msg)
	}
	if l.calls != 1 {
		t.Fatalf("local calls = %d, want exactly 1", l.calls)
	}
}

func TestSynthesizeValidatesBeforeCallingProviders(t *testing.T) {
	p := failingPrimary()
	l := &stubLocal{available: true}
	r := quietResolver(p, l)

	if _, err := r.Synthesize(context.Background(), Request{Text: "  ", APIKey: "key"}); !errors.Is(err, errs.ErrInvalidRequest) {
		t.Fatalf("empty text error = %v, want ErrInvalidRequest", err)
	}
	if _, err := r.Synthesize(context.Background(), Request{Text: "hi"}); !errors.Is(err, errs.ErrMissingCredential) {
		t.Fatalf("missing key error = %v, want ErrMissingCredential", err)
	}
	if p.calls != 0 || l.calls != 0 {
		t.Fatalf("providers called: primary=%d local=%d", p.calls, l.calls)
	}
}

func TestSynthesizePrimaryTimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	p := &stubProvider{synth: func(context.Context, string, string, string) ([]byte, string, error) {
		<-release
		return []byte{1}, "audio/L16", nil
	}}
	l := &stubLocal{available: true}
	r := quietResolver(p, l)
	r.PrimaryTimeout = 20 * time.Millisecond

	start := time.Now()
	res, err := r.Synthesize(context.Background(), Request{Text: "hello", APIKey: "key"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if res.Provider != ProvenanceFallback {
		t.Fatalf("Provider = %q, want fallback", res.Provider)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("hung primary blocked fallback for %s", time.Since(start))
	}
}

func TestFallbackAvailabilityEvaluatedOnce(t *testing.T) {
	l := &stubLocal{available: true}
	r := quietResolver(failingPrimary(), l)
	for i := 0; i < 3; i++ {
		if _, err := r.Synthesize(context.Background(), Request{Text: "hello", APIKey: "key"}); err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
	}
	if l.availableCalls != 1 {
		t.Fatalf("Available() calls = %d, want 1", l.availableCalls)
	}
	if !r.FallbackAvailable() {
		t.Fatalf("FallbackAvailable() = false")
	}
}

type recorder struct{ got []string }

func (r *recorder) ObserveSynthesis(provider, outcome string) {
	r.got = append(r.got, provider+":"+outcome)
}

func TestSynthesizeRecordsOutcomes(t *testing.T) {
	rec := &recorder{}
	r := quietResolver(failingPrimary(), &stubLocal{available: true})
	r.Recorder = rec
	_, _ = r.Synthesize(context.Background(), Request{Text: "hello", APIKey: "key"})

	want := []string{"primary:error", "fallback:ok"}
	if strings.Join(rec.got, ",") != strings.Join(want, ",") {
		t.Fatalf("recorded %v, want %v", rec.got, want)
	}
}
