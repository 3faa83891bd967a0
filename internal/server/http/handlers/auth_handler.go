package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/server/http/dto"
	"github.com/polkiloo/tgmarket/internal/server/http/middleware"
)

// AuthHandler opens and closes sessions.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Register handles POST /api/user/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.Register(c.Request.Context(), req.Login, req.Password, req.TelegramChatID)
	if err != nil {
		writeError(c, err)
		return
	}
	startSession(c, token)
}

// Login handles POST /api/user/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		rejectLogin(c, err)
		return
	}
	startSession(c, token)
}

// TelegramLogin handles POST /api/user/telegram.
func (h *AuthHandler) TelegramLogin(c *gin.Context) {
	var req dto.TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.InitData == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.TelegramLogin(c.Request.Context(), req.InitData)
	if err != nil {
		rejectLogin(c, err)
		return
	}
	startSession(c, token)
}

// LinkTelegramChat handles PUT /api/user/telegram-chat.
func (h *AuthHandler) LinkTelegramChat(c *gin.Context) {
	var req dto.LinkTelegramChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if err := h.facade.LinkTelegramChat(c.Request.Context(), CurrentUserID(c), req.ChatID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Logout handles POST /api/user/logout. Tokens are stateless, so only the
// cookie is dropped.
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

func startSession(c *gin.Context, token string) {
	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.SessionResponse{Token: token})
}

// rejectLogin answers 401 for bad credentials; registration reports them as 400.
func rejectLogin(c *gin.Context, err error) {
	if errors.Is(err, domainErrors.ErrInvalidCredentials) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials"})
		return
	}
	writeError(c, err)
}
