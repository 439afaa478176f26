package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/codecraftkids/codecraft-api/internal/application"
	"github.com/codecraftkids/codecraft-api/pkg/apperror"
	"github.com/codecraftkids/codecraft-api/pkg/response"
	"github.com/codecraftkids/codecraft-api/pkg/validation"
)

type AuthHandler struct {
	Svc *application.Service
}

func NewAuthHandler(svc *application.Service) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

type checkEmailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// bindJSON decodes the body; syntax errors surface as ValidationFailed.
// An empty body leaves dst zero so the service reports the missing fields.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		details := validation.ToDetails(err)
		_ = c.Error(apperror.Validation(validation.Summary(details), details))
		return false
	}
	return true
}

func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req checkEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	exists, err := h.Svc.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, gin.H{"success": true, "exists": exists})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req application.SignupInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Signup(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, authResponse{Token: res.Token, User: toUserView(res.User)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.InvalidCredentials())
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, authResponse{Token: res.Token, User: toUserView(res.User)})
}
