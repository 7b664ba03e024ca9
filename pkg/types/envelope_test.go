package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
)

func TestParseClientMessageConnect(t *testing.T) {
	raw := []byte(`{"type":"connect","config":{"voiceName":"Kore","userName":"Ana","topic":"travel","apiKey":" k "}}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	c, ok := msg.(ConnectMessage)
	if !ok {
		t.Fatalf("got %T, want ConnectMessage", msg)
	}
	if c.Config.VoiceName != "Kore" || c.Config.UserName != "Ana" || c.Config.Topic != "travel" {
		t.Fatalf("unexpected config: %+v", c.Config)
	}
	if c.Config.APIKey != "k" {
		t.Fatalf("APIKey = %q, want trimmed %q", c.Config.APIKey, "k")
	}
}

func TestParseClientMessageConnectWithoutConfig(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"connect"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if c := msg.(ConnectMessage); c.Config.APIKey != "" {
		t.Fatalf("APIKey = %q, want empty", c.Config.APIKey)
	}
}

func TestParseClientMessageAudioInput(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"audio-input","data":"AQID"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	a := msg.(AudioInputMessage)
	if string(a.Data) != "\x01\x02\x03" {
		t.Fatalf("Data = %v", a.Data)
	}
	if a.MimeType != DefaultAudioMimeType {
		t.Fatalf("MimeType = %q, want %q", a.MimeType, DefaultAudioMimeType)
	}

	msg, err = ParseClientMessage([]byte(`{"type":"audio-input","audio":"AQID","mimeType":"audio/pcm;rate=24000"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage(audio alias) error = %v", err)
	}
	if a := msg.(AudioInputMessage); a.MimeType != "audio/pcm;rate=24000" || len(a.Data) != 3 {
		t.Fatalf("unexpected audio message: %+v", a)
	}
}

func TestParseClientMessageDisconnect(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"disconnect"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if _, ok := msg.(DisconnectMessage); !ok {
		t.Fatalf("got %T, want DisconnectMessage", msg)
	}
}

func TestParseClientMessageRejectsMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{}`,
		`{"type":"dance"}`,
		`{"type":"audio-input"}`,
		`{"type":"audio-input","data":"!!not base64!!"}`,
	}
	for _, raw := range cases {
		_, err := ParseClientMessage([]byte(raw))
		if !errors.Is(err, errs.ErrDecode) {
			t.Errorf("ParseClientMessage(%s) error = %v, want ErrDecode", raw, err)
		}
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	b, _ := json.Marshal(Connected())
	if string(b) != `{"type":"connected"}` {
		t.Fatalf("connected = %s", b)
	}
	b, _ = json.Marshal(ErrorEnvelope("nope"))
	if string(b) != `{"type":"error","error":"nope"}` {
		t.Fatalf("error = %s", b)
	}
	b, _ = json.Marshal(GeminiMessage(json.RawMessage(`{"serverContent":{"turnComplete":true}}`)))
	if string(b) != `{"type":"gemini-message","data":{"serverContent":{"turnComplete":true}}}` {
		t.Fatalf("gemini-message = %s", b)
	}
}
