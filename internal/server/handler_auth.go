package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authdomain "github.com/masjidkita/masjidkita/internal/auth/domain"
	"github.com/masjidkita/masjidkita/internal/auth/session"
)

type AuthHandler struct {
	users    authdomain.Service
	sessions *session.Manager
}

func NewAuthHandler(users authdomain.Service, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

func (h *AuthHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	r.POST("/auth/register", h.register)
	r.POST("/auth/login", h.login)
	r.POST("/auth/logout", h.logout)
	r.GET("/auth/me", auth, h.me)
}

type registerRequest struct {
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	DisplayName      string `json:"display_name" binding:"required"`
	ICPassportNumber string `json:"ic_passport_number"`
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	user, err := h.users.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:            req.Email,
		Password:         req.Password,
		DisplayName:      req.DisplayName,
		ICPassportNumber: req.ICPassportNumber,
		Role:             authdomain.RoleMember,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userView(user))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	result, err := h.users.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.sessions.Set(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusOK, userView(result.User))
}

func (h *AuthHandler) logout(c *gin.Context) {
	if token, ok := h.sessions.ReadToken(c); ok {
		_ = h.users.Logout(c.Request.Context(), token)
	}
	h.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) me(c *gin.Context) {
	c.JSON(http.StatusOK, userView(userFrom(c)))
}

func userView(u *authdomain.User) gin.H {
	return gin.H{
		"id":           u.ID.String(),
		"email":        u.Email,
		"display_name": u.DisplayName,
		"role":         u.Role,
	}
}
