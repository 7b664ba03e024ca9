package types

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
)

// MessageType tags a websocket envelope.
type MessageType string

const (
	TypeConnect    MessageType = "connect"
	TypeAudioInput MessageType = "audio-input"
	TypeDisconnect MessageType = "disconnect"

	TypeConnected     MessageType = "connected"
	TypeDisconnected  MessageType = "disconnected"
	TypeGeminiMessage MessageType = "gemini-message"
	TypeError         MessageType = "error"
)

const DefaultAudioMimeType = "audio/pcm;rate=16000"

type ConnectConfig struct {
	VoiceName string `json:"voiceName"`
	UserName  string `json:"userName"`
	Topic     string `json:"topic"`
	APIKey    string `json:"apiKey"`
}

type ConnectMessage struct {
	Config ConnectConfig
}

type AudioInputMessage struct {
	Data     []byte
	MimeType string
}

type DisconnectMessage struct{}

type clientFrame struct {
	Type     MessageType    `json:"type"`
	Config   *ConnectConfig `json:"config"`
	Data     string         `json:"data"`
	Audio    string         `json:"audio"`
	MimeType string         `json:"mimeType"`
}

// ParseClientMessage decodes one inbound frame into ConnectMessage,
// AudioInputMessage or DisconnectMessage. Failures wrap errs.ErrDecode.
func ParseClientMessage(raw []byte) (any, error) {
	var f clientFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecode, err)
	}

	switch f.Type {
	case TypeConnect:
		var cfg ConnectConfig
		if f.Config != nil {
			cfg = *f.Config
		}
		cfg.APIKey = strings.TrimSpace(cfg.APIKey)
		return ConnectMessage{Config: cfg}, nil
	case TypeAudioInput:
		payload := f.Data
		if payload == "" {
			payload = f.Audio
		}
		if payload == "" {
			return nil, fmt.Errorf("%w: audio-input without data", errs.ErrDecode)
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: audio-input data: %v", errs.ErrDecode, err)
		}
		mime := f.MimeType
		if mime == "" {
			mime = DefaultAudioMimeType
		}
		return AudioInputMessage{Data: data, MimeType: mime}, nil
	case TypeDisconnect:
		return DisconnectMessage{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", errs.ErrDecode)
	default:
		return nil, fmt.Errorf("%w: unsupported type %q", errs.ErrDecode, f.Type)
	}
}

// Envelope is an outbound websocket message.
type Envelope struct {
	Type  MessageType     `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

func Connected() Envelope    { return Envelope{Type: TypeConnected} }
func Disconnected() Envelope { return Envelope{Type: TypeDisconnected} }

func GeminiMessage(payload json.RawMessage) Envelope {
	return Envelope{Type: TypeGeminiMessage, Data: payload}
}

func ErrorEnvelope(msg string) Envelope {
	return Envelope{Type: TypeError, Error: msg}
}
