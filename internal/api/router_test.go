package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blog_api/internal/app/service"
	"blog_api/internal/common/security"
	"blog_api/internal/domain/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	tokens := security.NewTokenService([]byte("test-secret"), 24*time.Hour)
	users := service.NewUserService(store.Users(), tokens, security.NewHasher(bcrypt.MinCost), nil, nil)
	require.NoError(t, users.EnsureAdmin(context.Background(), "admin", "admin@test.com", "adminpass"))

	router := NewRouter(Services{
		Users:    users,
		Posts:    service.NewPostService(store.Posts(), store.Comments(), nil, nil),
		Comments: service.NewCommentService(store.Comments()),
	}, tokens, store.Users(), nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{t: t, server: srv}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}, []byte) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.server.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(s.t, err)
	var obj map[string]interface{}
	_ = json.Unmarshal(buf.Bytes(), &obj)
	return resp.StatusCode, obj, buf.Bytes()
}

func (s *testServer) login(email, password string) (string, int64) {
	s.t.Helper()
	status, body, _ := s.do(http.MethodPost, "/api/user/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, status)
	user := body["user"].(map[string]interface{})
	return body["token"].(string), int64(user["id"].(float64))
}

func (s *testServer) signup(name, email string) (string, int64) {
	s.t.Helper()
	status, body, _ := s.do(http.MethodPost, "/api/user/signup", "", map[string]string{"name": name, "email": email, "password": "secret1"})
	require.Equal(s.t, http.StatusOK, status)
	user := body["user"].(map[string]interface{})
	return body["token"].(string), int64(user["id"].(float64))
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t)

	status, _, raw := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(raw))

	status, body, _ := s.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "404 - resource not found", body["error"])
}

func TestSignupResponseShape(t *testing.T) {
	s := newTestServer(t)

	status, body, raw := s.do(http.MethodPost, "/api/user/signup", "", map[string]string{
		"name": "alice", "email": "alice@test.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1d", body["expiresIn"])
	assert.Contains(t, body["token"], "Bearer ")
	assert.NotContains(t, string(raw), "secret1")
	assert.NotContains(t, string(raw), "assword")

	status, body, raw = s.do(http.MethodPost, "/api/user/signup", "", map[string]string{
		"name": "bo", "email": "not-an-email", "password": "123",
	})
	require.Equal(t, http.StatusBadRequest, status)
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 3)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "field", first["type"])
	assert.Equal(t, "body", first["location"])
	assert.NotContains(t, string(raw), `"123"`)

	status, body, _ = s.do(http.MethodPost, "/api/user/signup", "", map[string]string{
		"name": "alice", "email": "other@test.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "User with this name or email already exists", body["error"])
}

func TestMalformedBodyAndIDs(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login("admin@test.com", "adminpass")

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/user/login", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, body, _ := s.do(http.MethodGet, "/api/post/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid id", body["error"])

	status, _, _ = s.do(http.MethodGet, "/api/user/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, _ = s.do(http.MethodGet, "/api/comment/author/-3", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUserRoutesAccess(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login("admin@test.com", "adminpass")
	alice, aliceID := s.signup("alice", "alice@test.com")
	bob, bobID := s.signup("bob", "bob@test.com")

	status, body, _ := s.do(http.MethodGet, "/api/user/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authorization token required", body["error"])

	status, body, _ = s.do(http.MethodGet, "/api/user/", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User is not authorized to make this request.", body["error"])

	status, _, raw := s.do(http.MethodGet, "/api/user/", admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(raw), "assword")

	status, _, _ = s.do(http.MethodGet, fmt.Sprintf("/api/user/%d", bobID), alice, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, body, _ = s.do(http.MethodGet, fmt.Sprintf("/api/user/%d", aliceID), alice, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["name"])

	status, body, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/user/%d", aliceID), alice, map[string]string{"name": "alice2"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice2", body["name"])

	status, _, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/user/%d/admin", aliceID), alice, map[string]bool{"isAdmin": true})
	assert.Equal(t, http.StatusUnauthorized, status)

	// Promotion applies to tokens issued before it.
	status, body, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/user/%d/admin", bobID), admin, map[string]bool{"isAdmin": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["isAdmin"])
	status, _, _ = s.do(http.MethodGet, "/api/user/", bob, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/user/%d", aliceID), alice, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, fmt.Sprintf("User with id: %d was deleted", aliceID), body["message"])

	status, body, _ = s.do(http.MethodGet, fmt.Sprintf("/api/user/%d", aliceID), alice, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, fmt.Sprintf("User with id: %d doesn't exist.", aliceID), body["error"])
}

func TestPostAndCommentFlow(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login("admin@test.com", "adminpass")
	alice, _ := s.signup("alice", "alice@test.com")
	bob, _ := s.signup("bob", "bob@test.com")

	status, _, _ := s.do(http.MethodPost, "/api/post/", alice, map[string]interface{}{"title": "Nope", "text": "t"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body, _ := s.do(http.MethodPost, "/api/post/", admin, map[string]interface{}{"title": "Draft", "text": "t"})
	require.Equal(t, http.StatusOK, status)
	draftID := int64(body["id"].(float64))
	assert.Equal(t, false, body["isPublished"])

	status, body, _ = s.do(http.MethodPost, "/api/post/", admin, map[string]interface{}{"title": "Live", "text": "t", "isPublished": true})
	require.Equal(t, http.StatusOK, status)
	liveID := int64(body["id"].(float64))

	status, _, _ = s.do(http.MethodPost, "/api/post/", admin, map[string]interface{}{"title": "Live", "text": "dup"})
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _, raw := s.do(http.MethodGet, "/api/post/", "", nil)
	require.Equal(t, http.StatusOK, status)
	var published []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &published))
	require.Len(t, published, 1)
	assert.Equal(t, "Live", published[0]["title"])

	status, body, _ = s.do(http.MethodGet, fmt.Sprintf("/api/post/%d", draftID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User is not authorized to make this request.", body["error"])

	status, _, _ = s.do(http.MethodGet, fmt.Sprintf("/api/post/%d/admin", draftID), admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _, _ = s.do(http.MethodGet, "/api/post/all", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body, _ = s.do(http.MethodPost, fmt.Sprintf("/api/post/%d/comment", liveID), alice, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, status)
	commentID := int64(body["id"].(float64))

	status, body, _ = s.do(http.MethodGet, fmt.Sprintf("/api/post/%d", liveID), "", nil)
	require.Equal(t, http.StatusOK, status)
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 1)

	commentPath := fmt.Sprintf("/api/post/%d/comment/%d", liveID, commentID)
	status, _, _ = s.do(http.MethodPut, commentPath, bob, map[string]string{"text": "mine now"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, body, _ = s.do(http.MethodPut, commentPath, alice, map[string]string{"text": "edited"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "edited", body["text"])

	status, _, _ = s.do(http.MethodPut, fmt.Sprintf("/api/post/%d/comment/%d", draftID, commentID), alice, map[string]string{"text": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ = s.do(http.MethodGet, fmt.Sprintf("/api/comment/%d", commentID), "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "edited", body["text"])

	status, body, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/comment/%d", commentID), admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, fmt.Sprintf("Comment with id: %d was deleted.", commentID), body["message"])

	status, body, _ = s.do(http.MethodGet, fmt.Sprintf("/api/comment/%d", commentID), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, fmt.Sprintf("404 - Comment with id: %d wasn't found", commentID), body["error"])

	status, body, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/post/%d", liveID), admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, fmt.Sprintf("Post with id: %d was deleted.", liveID), body["message"])
}
