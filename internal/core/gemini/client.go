package gemini

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
)

const (
	apiVersionText  = "v1"
	apiVersionAudio = "v1beta"
)

var sharedHTTP = &http.Client{
	Transport: &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: false,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
	},
	Timeout: 60 * time.Second,
}

// newGenAI builds a client for one caller-supplied key. Keys arrive per
// request, so clients are not cached.
func newGenAI(ctx context.Context, apiKey, apiVersion string) (*genai.Client, error) {
	reqTimeout := 45 * time.Second
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: sharedHTTP,
		HTTPOptions: genai.HTTPOptions{
			APIVersion: apiVersion,
			Timeout:    &reqTimeout,
		},
	})
}

// TextGenerator backs the one-shot generate endpoint.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, model, apiKey string) (string, error)
}

type Generator struct {
	DefaultModel string
	Attempts     int
}

func NewGenerator(defaultModel string) *Generator {
	return &Generator{DefaultModel: defaultModel, Attempts: 3}
}

func (g *Generator) Generate(ctx context.Context, prompt, model, apiKey string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is required", errs.ErrInvalidRequest)
	}
	if strings.TrimSpace(apiKey) == "" {
		return "", fmt.Errorf("%w: apiKey is required", errs.ErrMissingCredential)
	}
	if model == "" {
		model = g.DefaultModel
	}
	cl, err := newGenAI(ctx, apiKey, apiVersionText)
	if err != nil {
		return "", err
	}

	attempts := g.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := cl.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			lastErr = err
			if retriable(err) {
				time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
				continue
			}
			return "", err
		}
		if t := resp.Text(); t != "" {
			return t, nil
		}
		lastErr = errors.New("empty response")
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return "", lastErr
}

// SpeechProvider is the primary synthesis tier backed by a Gemini TTS model.
type SpeechProvider struct {
	Model string
}

func NewSpeechProvider(model string) *SpeechProvider {
	return &SpeechProvider{Model: model}
}

func (p *SpeechProvider) Synthesize(ctx context.Context, text, voice, apiKey string) ([]byte, string, error) {
	cl, err := newGenAI(ctx, apiKey, apiVersionAudio)
	if err != nil {
		return nil, "", err
	}
	resp, err := cl.Models.GenerateContent(ctx, p.Model, genai.Text(text), speechConfig(voice))
	if err != nil {
		return nil, "", err
	}
	return firstAudio(resp)
}

func speechConfig(voice string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig:       prebuiltVoice(voice),
	}
}

func prebuiltVoice(voice string) *genai.SpeechConfig {
	return &genai.SpeechConfig{
		VoiceConfig: &genai.VoiceConfig{
			PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
		},
	}
}

func firstAudio(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	if resp == nil {
		return nil, "", errors.New("empty response")
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.Data, p.InlineData.MIMEType, nil
			}
		}
	}
	return nil, "", errors.New("no audio in response")
}

func retriable(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "unexpected EOF") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "RST_STREAM") ||
		strings.Contains(s, "connection reset")
}
