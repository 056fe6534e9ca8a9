package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authsvc/audit"
	"github.com/kochabx/authsvc/core/auth/session"
	"github.com/kochabx/authsvc/core/validator"
	middleware "github.com/kochabx/authsvc/middleware/http"
	"github.com/kochabx/authsvc/transport/http"
	"github.com/kochabx/authsvc/user"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse 登录响应，expires_at 为 unix 秒
type LoginResponse struct {
	SessionID string           `json:"session_id"`
	Token     string           `json:"token"`
	ExpiresAt int64            `json:"expires_at"`
	User      session.Identity `json:"user"`
}

// MessageResponse 仅包含提示信息的响应
type MessageResponse struct {
	Message string `json:"message"`
}

const logoutMessage = "Successfully logged out"

// Register POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req user.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		http.Fail(c, errBadRequest.WithCause(err))
		return
	}

	profile, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.audit.Emit(audit.Event{
		Type:     audit.TypeRegister,
		UserID:   profile.ID,
		ClientIP: c.ClientIP(),
		At:       time.Now(),
	})
	http.Created(c, profile)
}

// Login POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		http.Fail(c, errBadRequest.WithCause(err))
		return
	}
	if err := validator.Validate.StructCtx(c.Request.Context(), &req); err != nil {
		h.fail(c, err)
		return
	}

	issued, err := h.sessions.IssueSession(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.audit.Emit(audit.Event{
			Type:     audit.TypeLoginFailed,
			ClientIP: c.ClientIP(),
			At:       time.Now(),
		})
		h.fail(c, err)
		return
	}

	h.audit.Emit(audit.Event{
		Type:      audit.TypeLogin,
		UserID:    issued.User.ID,
		SessionID: issued.SessionID,
		ClientIP:  c.ClientIP(),
		At:        time.Now(),
	})
	http.OK(c, &LoginResponse{
		SessionID: issued.SessionID,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt.Unix(),
		User:      issued.User,
	})
}

// Logout POST /auth/logout，需要认证
func (h *Handler) Logout(c *gin.Context) {
	subjectID, ok := middleware.GetClaims[int64](c.Request.Context())
	if !ok {
		http.Fail(c, errUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(c.Request.Context(), subjectID); err != nil {
		h.fail(c, err)
		return
	}

	h.audit.Emit(audit.Event{
		Type:     audit.TypeLogout,
		UserID:   subjectID,
		ClientIP: c.ClientIP(),
		At:       time.Now(),
	})
	http.OK(c, &MessageResponse{Message: logoutMessage})
}
