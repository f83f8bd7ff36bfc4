package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clusterboard/dashboard-api/internal/handler"
	"github.com/clusterboard/dashboard-api/internal/model"
	"github.com/clusterboard/dashboard-api/internal/service/auth"
)

// SessionService is what the controller needs from the session façade.
type SessionService interface {
	Login(ctx context.Context, username, password string) (*model.SessionInfo, error)
	Logout(ctx context.Context, rawToken string) (*model.LogoutResponse, error)
	Check(ctx context.Context, rawToken string) (*model.SessionStatus, error)
	LoginURL() string
}

// CookieConfig controls the session cookie. Secure must only be set when the
// endpoint is TLS-terminated; browsers drop Secure cookies on plain HTTP.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type Handler struct {
	svc    SessionService
	cookie CookieConfig
}

func NewHandler(svc SessionService, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &Handler{svc: svc, cookie: cookie}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/check", h.Check)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	info, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid credentials"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
		return
	}

	h.setSessionCookie(c, info.Token)
	c.JSON(http.StatusCreated, info)
}

func (h *Handler) Logout(c *gin.Context) {
	resp, err := h.svc.Logout(c.Request.Context(), h.tokenFromRequest(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Check(c *gin.Context) {
	var req model.CheckRequest
	// An absent or empty body is the same as an empty token.
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Token = ""
	}

	status, err := h.svc.Check(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
		return
	}

	if status == nil {
		c.JSON(http.StatusOK, model.LoginPrompt{LoginURL: h.svc.LoginURL()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// tokenFromRequest reads the caller's token from the Authorization header,
// falling back to the session cookie.
func (h *Handler) tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return header
	}

	cookie, err := c.Request.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) setSessionCookie(c *gin.Context, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
