// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/gorilla/websocket"
	"google.golang.org/genai"

	"github.com/steveyiyo/voicerelay/internal/core/session"
)

// LiveDialer opens Gemini Live sessions.
type LiveDialer struct {
	DefaultModel string
}

func NewLiveDialer(model string) *LiveDialer {
	return &LiveDialer{DefaultModel: model}
}

// Dial connects with audio responses, both transcriptions and the requested
// prebuilt voice.
func (d *LiveDialer) Dial(ctx context.Context, cfg session.Config) (session.Backend, error) {
	cl, err := newGenAI(ctx, cfg.Credential, apiVersionAudio)
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = d.DefaultModel
	}
	s, err := cl.Live.Connect(ctx, model, liveConfig(cfg))
	if err != nil {
		return nil, err
	}
	return &liveBackend{s: s}, nil
}

func liveConfig(cfg session.Config) *genai.LiveConnectConfig {
	lc := &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		SpeechConfig:             prebuiltVoice(cfg.Voice),
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if cfg.SystemInstruction != "" {
		lc.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: cfg.SystemInstruction}},
		}
	}
	return lc
}

type liveBackend struct {
	s         *genai.Session
	closeOnce sync.Once
	closeErr  error
}

func (b *liveBackend) SendAudio(_ context.Context, data []byte, mimeType string) error {
	return b.s.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: data, MIMEType: mimeType},
	})
}

// Receive returns each server message re-encoded as JSON; the relay passes it
// through without looking inside.
func (b *liveBackend) Receive() (json.RawMessage, error) {
	msg, err := b.s.Receive()
	if err != nil {
		if normalClose(err) {
			return nil, io.EOF
		}
		return nil, err
	}
	return json.Marshal(msg)
}

func (b *liveBackend) Close() error {
	b.closeOnce.Do(func() { b.closeErr = b.s.Close() })
	return b.closeErr
}

func normalClose(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway
	}
	return errors.Is(err, io.EOF)
}
