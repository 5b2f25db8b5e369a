package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/gatekeeper/internal/auth/http/dto"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/httputil"
)

// CaptchaHandler issues captcha challenges.
type CaptchaHandler struct {
	captchaUseCase authUseCase.CaptchaUseCase
	logger         *slog.Logger
}

// NewCaptchaHandler creates a new captcha handler with required dependencies.
func NewCaptchaHandler(captchaUseCase authUseCase.CaptchaUseCase, logger *slog.Logger) *CaptchaHandler {
	return &CaptchaHandler{
		captchaUseCase: captchaUseCase,
		logger:         logger,
	}
}

// IssueHandler creates a new challenge.
// POST /v1/captcha - Returns 201 Created with the challenge id and prompt.
func (h *CaptchaHandler) IssueHandler(c *gin.Context) {
	captcha, err := h.captchaUseCase.Issue(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCaptchaToResponse(captcha))
}
