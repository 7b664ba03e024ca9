package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// commandSynth runs one external program per request and reads the audio it
// writes to a temporary file.
type commandSynth struct {
	bin       string
	mimeType  string
	args      func(text, voice, out string) []string
	voiceName func(voice string) string

	resolveOnce sync.Once
	path        string
}

// NewLocal returns the synthesizer for the current platform.
func NewLocal() LocalSynthesizer { return newPlatformLocal() }

func (c *commandSynth) resolve() string {
	c.resolveOnce.Do(func() {
		for _, bin := range strings.Split(c.bin, ",") {
			if p, err := exec.LookPath(strings.TrimSpace(bin)); err == nil {
				c.path = p
				return
			}
		}
	})
	return c.path
}

func (c *commandSynth) Available() bool { return c.resolve() != "" }

func (c *commandSynth) Synthesize(ctx context.Context, text, voice string) ([]byte, string, error) {
	path := c.resolve()
	if path == "" {
		return nil, "", fmt.Errorf("local synthesis unavailable: %s not found", c.bin)
	}
	if c.voiceName != nil {
		voice = c.voiceName(voice)
	}

	dir, err := os.MkdirTemp("", "voicerelay-tts-")
	if err != nil {
		return nil, "", fmt.Errorf("local synthesis: %w", err)
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "speech.wav")

	cmd := exec.CommandContext(ctx, path, c.args(text, voice, out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, "", fmt.Errorf("%s: %w: %s", filepath.Base(path), err, strings.TrimSpace(stderr.String()))
	}

	audio, err := os.ReadFile(out)
	if err != nil {
		return nil, "", fmt.Errorf("read synthesized audio: %w", err)
	}
	return audio, c.mimeType, nil
}

type unavailable struct{}

func (unavailable) Available() bool { return false }

func (unavailable) Synthesize(context.Context, string, string) ([]byte, string, error) {
	return nil, "", fmt.Errorf("local synthesis is not supported on this platform")
}
