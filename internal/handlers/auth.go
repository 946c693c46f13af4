package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conectame/internal/service"
)

type credentialsRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type accountResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func bindCredentials(c *gin.Context) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return req, false
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	return req, true
}

func (h HandlerSet) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login")
}

func (h HandlerSet) Login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.cfg.Security.SessionTTL.Seconds()))
	respond(c, http.StatusOK, gin.H{
		"account":    accountResponse{ID: result.Account.ID, Email: result.Account.Email},
		"token":      result.Token,
		"expires_at": result.Session.ExpiresAt,
	}, "/clients")
}

func (h HandlerSet) Register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	account, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"account": accountResponse{ID: account.ID, Email: account.Email},
	}, "/login")
}

func (h HandlerSet) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.auth.Logout(ctx, service.SessionTokenFrom(ctx)); err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	respond(c, http.StatusNoContent, nil, "/login")
}

func (h HandlerSet) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.CookieName, value, maxAge, "/", "", h.cfg.Security.CookieSecure, true)
}
