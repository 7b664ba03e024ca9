package handlers

import (
	"log"
	"net/http"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
	"github.com/steveyiyo/voicerelay/internal/core/gemini"
	"github.com/steveyiyo/voicerelay/pkg/types"

	"github.com/gin-gonic/gin"
)

type GenerateHandler struct {
	Gen gemini.TextGenerator
}

func NewGenerateHandler(g gemini.TextGenerator) *GenerateHandler {
	return &GenerateHandler{Gen: g}
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req types.GenerateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResp{Error: "invalid JSON body"})
		return
	}
	text, err := h.Gen.Generate(c.Request.Context(), req.Prompt, req.Model, req.APIKey)
	if err != nil {
		status := errs.HTTPStatus(err)
		if status == http.StatusBadRequest {
			c.JSON(status, types.ErrorResp{Error: err.Error()})
			return
		}
		log.Printf("generate: %v", err)
		c.JSON(status, types.ErrorResp{Error: "failed to generate content", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.GenerateResp{Text: text})
}
