package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/codecraftkids/codecraft-api/config"
	"github.com/codecraftkids/codecraft-api/internal/container"
	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	"github.com/codecraftkids/codecraft-api/internal/domain/repository"
	"github.com/codecraftkids/codecraft-api/internal/infrastructure/memory"
	"github.com/codecraftkids/codecraft-api/internal/infrastructure/storage"
	"github.com/codecraftkids/codecraft-api/pkg/helpers"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type testServer struct {
	t   *testing.T
	r   *gin.Engine
	jwt *helpers.JWTManager
	dir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithUsers(t, memory.NewUserRepository())
}

func newTestServerWithUsers(t *testing.T, users repository.UserRepository) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{
		AppName:             "codecraft-kids",
		CORSAllowedOrigins:  "http://localhost:5173",
		UploadDir:           dir,
		UploadMaxBytes:      1 << 20,
		LeaderboardSize:     10,
		DebugMetricsEnabled: true,
	}
	avatars, err := storage.NewLocalAvatarStore(dir)
	require.NoError(t, err)
	jwtm := helpers.NewJWTManager("test-secret", 24*time.Hour)
	logger := helpers.NewDiscardLogger()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUsers(users)
	container.SetHasher(helpers.NewPasswordHasher(bcrypt.MinCost))
	container.SetJWT(jwtm)
	container.SetAvatars(avatars)
	container.SetRedis(nil)
	container.SetES(nil)
	container.SetRabbitPub(nil)

	r := NewEngine(cfg, logger)
	reg := NewRegistry(r)
	InitModules(reg, BuildService())
	reg.RegisterAll()
	return &testServer{t: t, r: r, jwt: jwtm, dir: dir}
}

func (s *testServer) do(req *http.Request, token string) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	var body map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func (s *testServer) json(method, path string, payload any, token string) (*httptest.ResponseRecorder, map[string]any) {
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *testServer) multipart(path string, fields map[string]string, file []byte, token string) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("profilePic", "me.png")
		require.NoError(s.t, err)
		_, _ = fw.Write(file)
	}
	require.NoError(s.t, mw.Close())
	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req, token)
}

// countingRepo records every store call before delegating.
type countingRepo struct {
	repository.UserRepository
	calls atomic.Int64
}

func (r *countingRepo) Create(ctx context.Context, u *entity.User) error {
	r.calls.Add(1)
	return r.UserRepository.Create(ctx, u)
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.calls.Add(1)
	return r.UserRepository.GetByID(ctx, id)
}

func (r *countingRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.calls.Add(1)
	return r.UserRepository.GetByEmail(ctx, email)
}

func (r *countingRepo) Mutate(ctx context.Context, id string, fn repository.MutateFunc) (*entity.User, error) {
	r.calls.Add(1)
	return r.UserRepository.Mutate(ctx, id, fn)
}

func (r *countingRepo) ListPublic(ctx context.Context) ([]*entity.User, error) {
	r.calls.Add(1)
	return r.UserRepository.ListPublic(ctx)
}

func userOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	u, ok := body["user"].(map[string]any)
	require.True(t, ok, "missing user in %v", body)
	return u
}

func TestLearnerJourney(t *testing.T) {
	s := newTestServer(t)

	w, body := s.json(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, body["token"])
	created := userOf(t, body)
	assert.Equal(t, "ada@x.com", created["email"])
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "Hash")

	w, body = s.json(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@x.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	u := userOf(t, body)
	assert.Equal(t, []any{}, u["completedLevels"])
	assert.Equal(t, []any{}, u["badges"])
	assert.Equal(t, "/default-badge.png", u["currentBadge"])

	w, body = s.multipart("/api/auth/profile", map[string]string{"completedLevel": "1"}, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	earned, ok := body["badgeEarned"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Python Beginner", earned["name"])
	assert.Equal(t, "🎉 You completed Level 1 & earned the Python Beginner badge!", body["message"])
	assert.Equal(t, []any{float64(1)}, userOf(t, body)["completedLevels"])

	w, body = s.multipart("/api/auth/profile", map[string]string{"completedLevel": "1"}, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["badgeEarned"])
	assert.Equal(t, "Profile updated successfully.", body["message"])
	assert.Len(t, userOf(t, body)["badges"], 1)
}

func TestProfilePictureUpload(t *testing.T) {
	s := newTestServer(t)
	_, body := s.json(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret1",
	}, "")
	token := body["token"].(string)

	w, body := s.multipart("/api/auth/profile", map[string]string{"name": "Ada L"}, pngHeader, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u := userOf(t, body)
	assert.Equal(t, "Ada L", u["name"])
	pic, _ := u["profilePic"].(string)
	require.True(t, strings.HasPrefix(pic, "/uploads/"), pic)
	assert.True(t, strings.HasSuffix(pic, ".png"), pic)

	w, _ = s.do(httptest.NewRequest(http.MethodGet, pic, nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngHeader, w.Body.Bytes())

	w, body = s.multipart("/api/auth/profile", nil, []byte("not an image at all"), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestProfileUpdateWithTakenEmailKeepsNoUpload(t *testing.T) {
	s := newTestServer(t)
	s.json(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret1",
	}, "")
	_, body := s.json(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Bob", "email": "bob@x.com", "password": "secret1",
	}, "")
	token := body["token"].(string)

	w, body := s.multipart("/api/auth/profile", map[string]string{"email": "ada@x.com"}, pngHeader, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", body["message"])

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	u := userOf(t, body)
	assert.Equal(t, "bob@x.com", u["email"])
	assert.Empty(t, u["profilePic"])
}

func TestProfileWithoutTokenNeverReachesStore(t *testing.T) {
	users := &countingRepo{UserRepository: memory.NewUserRepository()}
	s := newTestServerWithUsers(t, users)

	w, body := s.do(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", body["message"])

	w, body = s.multipart("/api/auth/profile", map[string]string{"completedLevel": "1"}, pngHeader, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", body["message"])

	w, _ = s.json(http.MethodPut, "/api/auth/profile", map[string]any{"name": "Mallory"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Zero(t, users.calls.Load())
}

func TestJSONProfileUpdate(t *testing.T) {
	s := newTestServer(t)
	_, body := s.json(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@x.com", "password": "secret1",
	}, "")
	token := body["token"].(string)

	w, body := s.json(http.MethodPut, "/api/auth/profile", map[string]any{"completedLevel": "5"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "✨", userOf(t, body)["currentBadge"])

	w, body = s.json(http.MethodPut, "/api/auth/profile", map[string]any{"completedLevel": 2}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{float64(5), float64(2)}, userOf(t, body)["completedLevels"])

	w, _ = s.json(http.MethodPut, "/api/auth/profile", map[string]any{"completedLevel": "two"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)
	signup := map[string]string{"name": "Ada", "email": "ada@x.com", "password": "secret1"}
	w, _ := s.json(http.MethodPost, "/api/auth/signup", signup, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := s.json(http.MethodPost, "/api/auth/signup", signup, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", body["message"])

	w, body = s.json(http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@x.com", "password": "wrong1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", body["message"])

	w, body = s.json(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@x.com", "password": "secret1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", body["message"])

	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", body["message"])

	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", body["message"])

	ghost, _, err := s.jwt.GenerateToken("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), ghost)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", body["message"])

	w, body = s.json(http.MethodPost, "/api/auth/check-email", map[string]string{"email": "ADA@x.com"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["exists"])

	w, body = s.json(http.MethodPost, "/api/auth/check-email", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required", body["message"])

	w, body = s.do(httptest.NewRequest(http.MethodPost, "/api/auth/check-email", nil), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required", body["message"])
}

func TestPublicUsersAndLeaderboard(t *testing.T) {
	s := newTestServer(t)
	tokens := map[string]string{}
	for _, name := range []string{"Ada", "Bob"} {
		_, body := s.json(http.MethodPost, "/api/auth/signup", map[string]string{
			"name": name, "email": strings.ToLower(name) + "@x.com", "password": "secret1",
		}, "")
		tokens[name] = body["token"].(string)
	}
	s.multipart("/api/auth/profile", map[string]string{"completedLevel": "1"}, nil, tokens["Bob"])

	w, body := s.do(httptest.NewRequest(http.MethodGet, "/api/users", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["totalUsers"])
	assert.NotContains(t, w.Body.String(), "@x.com")
	users := body["users"].([]any)
	first := users[0].(map[string]any)
	assert.Equal(t, "Bob", first["name"])

	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/users/leaderboard?limit=1", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	board := body["leaderboard"].([]any)
	require.Len(t, board, 1)
	top := board[0].(map[string]any)
	assert.Equal(t, "Bob", top["name"])
	assert.Equal(t, float64(1), top["rank"])
	assert.Equal(t, float64(1), top["score"])

	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/users/"+first["_id"].(string), nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bob", userOf(t, body)["name"])

	w, _ = s.do(httptest.NewRequest(http.MethodGet, "/api/users/nope", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(httptest.NewRequest(http.MethodGet, "/api/users/search?q=ada", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/users/search?q=ada", nil), tokens["Ada"])
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, body["users"])
}

func TestDebugVars(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "badges_awarded")
	assert.Contains(t, body, "signups")
}
