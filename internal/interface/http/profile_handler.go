package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codecraftkids/codecraft-api/internal/application"
	"github.com/codecraftkids/codecraft-api/internal/interface/middleware"
	"github.com/codecraftkids/codecraft-api/pkg/apperror"
	"github.com/codecraftkids/codecraft-api/pkg/response"
)

type ProfileHandler struct {
	Svc            *application.Service
	MaxUploadBytes int64
}

func NewProfileHandler(svc *application.Service, maxUploadBytes int64) *ProfileHandler {
	return &ProfileHandler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

type updateProfileResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	User        UserView     `json:"user"`
	BadgeEarned *badgeEarned `json:"badgeEarned"`
}

type badgeEarned struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

func (h *ProfileHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, gin.H{"success": true, "user": toUserView(u)})
}

// Update accepts multipart/form-data (with an optional profilePic file),
// urlencoded forms or JSON.
func (h *ProfileHandler) Update(c *gin.Context) {
	var (
		in  application.UpdateProfileInput
		err error
	)
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		in, err = h.parseJSON(c)
	} else {
		in, err = h.parseForm(c)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := updateProfileResponse{Success: true, Message: res.Message, User: toUserView(res.User)}
	if b := res.BadgeEarned; b != nil {
		out.BadgeEarned = &badgeEarned{Level: b.Level, Name: b.Name, Icon: b.Icon, Description: b.Description}
	}
	response.OK(c, out)
}

type updateProfileJSON struct {
	Name           *string         `json:"name"`
	Email          *string         `json:"email"`
	CompletedLevel json.RawMessage `json:"completedLevel"`
}

func (h *ProfileHandler) parseJSON(c *gin.Context) (application.UpdateProfileInput, error) {
	var req updateProfileJSON
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return application.UpdateProfileInput{}, apperror.Validation("Invalid JSON body", map[string]string{"payload": "invalid json"})
	}
	in := application.UpdateProfileInput{Name: req.Name, Email: req.Email}
	raw := bytes.TrimSpace(req.CompletedLevel)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			s = string(raw)
		}
		level, err := application.ParseLevel(s)
		if err != nil {
			return in, err
		}
		in.CompletedLevel = &level
	}
	return in, nil
}

func (h *ProfileHandler) parseForm(c *gin.Context) (application.UpdateProfileInput, error) {
	var in application.UpdateProfileInput
	if h.MaxUploadBytes > 0 {
		// room for the text fields and multipart framing
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+1<<20)
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, apperror.Validation("profilePic is too large", map[string]string{"profilePic": "is too large"})
		}
		return in, apperror.Validation("Invalid form body", map[string]string{"payload": "invalid form"})
	}

	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("email"); ok {
		in.Email = &v
	}
	if v, ok := c.GetPostForm("completedLevel"); ok {
		level, err := application.ParseLevel(v)
		if err != nil {
			return in, err
		}
		in.CompletedLevel = &level
	}

	fh, err := c.FormFile("profilePic")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return in, apperror.Validation("Invalid form body", map[string]string{"payload": "invalid form"})
	}
	f, err := fh.Open()
	if err != nil {
		return in, apperror.Internal(err)
	}
	defer func() { _ = f.Close() }()

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = fh.Size
	}
	content, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return in, apperror.Internal(err)
	}
	in.ProfilePicture = &application.Upload{Filename: fh.Filename, Content: content}
	return in, nil
}
