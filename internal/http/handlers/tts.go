package handlers

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"strings"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
	"github.com/steveyiyo/voicerelay/internal/core/tts"
	"github.com/steveyiyo/voicerelay/pkg/types"

	"github.com/gin-gonic/gin"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, req tts.Request) (tts.Result, error)
}

type TTSHandler struct {
	Synth        Synthesizer
	DefaultVoice string
}

func NewTTSHandler(s Synthesizer, defaultVoice string) *TTSHandler {
	return &TTSHandler{Synth: s, DefaultVoice: defaultVoice}
}

func (h *TTSHandler) Synthesize(c *gin.Context) {
	var req types.TTSReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResp{Error: "invalid JSON body"})
		return
	}
	voiceName := strings.TrimSpace(req.Voice)
	if voiceName == "" {
		voiceName = h.DefaultVoice
	}

	res, err := h.Synth.Synthesize(c.Request.Context(), tts.Request{
		Text:   req.Text,
		Voice:  voiceName,
		APIKey: req.APIKey,
	})
	if err != nil {
		status := errs.HTTPStatus(err)
		if status == http.StatusBadRequest {
			c.JSON(status, types.ErrorResp{Error: err.Error()})
			return
		}
		log.Printf("generate-tts: %v", err)
		c.JSON(status, types.ErrorResp{Error: "failed to generate speech", Details: err.Error()})
		return
	}
	log.Printf("generate-tts: %d bytes from %s tier", len(res.Audio), res.Provider)
	c.JSON(http.StatusOK, types.TTSResp{
		AudioBase64:   base64.StdEncoding.EncodeToString(res.Audio),
		AudioMimeType: res.MimeType,
	})
}
