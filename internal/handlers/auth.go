package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toast/api/internal/middleware"
	"toast/api/internal/service"
)

func (h HandlerSet) RegisterEmail(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.Register(c.Request.Context(), req); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, messageResponse{Message: "Registration successful."})
}

func (h HandlerSet) LoginEmail(c *gin.Context) {
	var req service.LoginEmailInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.LoginEmail(c.Request.Context(), req, middleware.GetClientInfo(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h HandlerSet) LoginDiscord(c *gin.Context) {
	var req service.LoginDiscordInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.LoginDiscord(c.Request.Context(), req, middleware.GetClientInfo(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h HandlerSet) Whoami(c *gin.Context) {
	c.String(http.StatusOK, middleware.CurrentUser(c).Username)
}

// Logout ends the session that authenticated this request.
func (h HandlerSet) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	session := middleware.CurrentSession(c)
	if err := h.sessions.Delete(c.Request.Context(), user.ID, session.ID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Logout successful."})
}

func (h HandlerSet) Me(c *gin.Context) {
	profile, err := h.auth.Profile(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
