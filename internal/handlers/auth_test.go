package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/internal/storage"
	"github.com/agritrack/apiserver/internal/store"
	"github.com/agritrack/apiserver/types"
)

const testJWTSecret = "test-secret"

type fakeUserRepo struct {
	users  map[types.ID]types.User
	nextID types.ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[types.ID]types.User{}, nextID: 1}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id types.ID) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) UsernameOrEmailTaken(ctx context.Context, username, email string, excludeID types.ID) (bool, error) {
	for id, user := range f.users {
		if id == excludeID {
			continue
		}
		if user.Username == username || strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) ListSummaries(ctx context.Context) ([]types.UserSummary, error) {
	out := make([]types.UserSummary, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, types.UserSummary{ID: user.ID, Fullname: user.Fullname})
	}
	return out, nil
}

func newAuthRouter(t *testing.T) (*chi.Mux, *fakeUserRepo) {
	t.Helper()

	backend, err := storage.NewLocalClient(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, backend.EnsureBucket(context.Background()))

	repo := newFakeUserRepo()
	userService := services.NewUserService(repo)

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, userService, storage.NewStorage(backend), testJWTSecret)
	})
	router.Route("/api/users", func(r chi.Router) {
		UsersRouter(r, userService)
	})
	return router, repo
}

func newAuthServer(t *testing.T) (*httptest.Server, *fakeUserRepo) {
	t.Helper()
	router, repo := newAuthRouter(t)
	return httptest.NewServer(router), repo
}

func signupForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("imagePhoto", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func signup(t *testing.T, baseURL string, fields map[string]string) *http.Response {
	t.Helper()
	body, contentType := signupForm(t, fields)
	resp, err := http.Post(baseURL+"/api/auth/signup", contentType, body)
	require.NoError(t, err)
	return resp
}

func login(t *testing.T, baseURL, email, password string) *http.Response {
	t.Helper()
	return postJSON(t, baseURL+"/api/auth/login", `{"email":"`+email+`","password":"`+password+`"}`)
}

func authedRequest(t *testing.T, method, url, token, payload string) *http.Response {
	t.Helper()
	var body *bytes.Buffer
	if payload == "" {
		body = &bytes.Buffer{}
	} else {
		body = bytes.NewBufferString(payload)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

var signupFields = map[string]string{
	"fullname": "Amina Diallo",
	"username": "amina",
	"email":    "amina@example.com",
	"password": "hunter2!",
	"phone":    "+221770000000",
}

func TestSignupAndLogin(t *testing.T) {
	server, _ := newAuthServer(t)
	defer server.Close()

	resp := signup(t, server.URL, signupFields)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[SignupResponse](t, resp)
	assert.Equal(t, types.ID(1), created.User.ID)
	assert.Equal(t, "amina", created.User.Username)

	resp = signup(t, server.URL, signupFields)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = login(t, server.URL, "amina@example.com", "wrong")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = login(t, server.URL, "amina@example.com", "hunter2!")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decodeBody[LoginResponse](t, resp)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, types.ID(1), session.UserID)
}

func TestSignupRejectsIncompleteForm(t *testing.T) {
	server, _ := newAuthServer(t)
	defer server.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("username", "amina"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/api/auth/signup", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignupRejectsNonImageUpload(t *testing.T) {
	server, _ := newAuthServer(t)
	defer server.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range signupFields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("imagePhoto", "resume.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/api/auth/signup", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// countingReader tracks how many bytes a consumer actually read.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestSignupRejectsOversizeUpload(t *testing.T) {
	router, repo := newAuthRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range signupFields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("imagePhoto", "huge.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 64<<20))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	total := int64(body.Len())
	counter := &countingReader{r: &body}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", counter)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "5MB")
	assert.Less(t, counter.n, total/2, "oversize body must be cut off, not read to completion")
	assert.Empty(t, repo.users, "no account is created for a rejected upload")
}

func TestMe(t *testing.T) {
	server, _ := newAuthServer(t)
	defer server.Close()

	resp := signup(t, server.URL, signupFields)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/api/auth/me")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = login(t, server.URL, "amina@example.com", "hunter2!")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decodeBody[LoginResponse](t, resp)

	resp = authedRequest(t, http.MethodGet, server.URL+"/api/auth/me", session.Token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[types.User](t, resp)
	assert.Equal(t, "Amina Diallo", me.Fullname)
	assert.Equal(t, "amina@example.com", me.Email)

	resp = authedRequest(t, http.MethodGet, server.URL+"/api/auth/me", "not-a-token", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	server, _ := newAuthServer(t)
	defer server.Close()

	resp := signup(t, server.URL, signupFields)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = login(t, server.URL, "amina@example.com", "hunter2!")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decodeBody[LoginResponse](t, resp)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("fullname", "Amina D."))
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/auth/update-profile/2", &body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body.Reset()
	writer = multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("fullname", "Amina D."))
	require.NoError(t, writer.Close())

	req, err = http.NewRequest(http.MethodPut, server.URL+"/api/auth/update-profile/1", &body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[ProfileResponse](t, resp)
	assert.Equal(t, "Amina D.", updated.User.Fullname)
	assert.Equal(t, "amina", updated.User.Username, "omitted fields are retained")
}

func TestChangePassword(t *testing.T) {
	server, _ := newAuthServer(t)
	defer server.Close()

	resp := signup(t, server.URL, signupFields)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = login(t, server.URL, "amina@example.com", "hunter2!")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decodeBody[LoginResponse](t, resp)

	resp = authedRequest(t, http.MethodPut, server.URL+"/api/auth/change-password/2", session.Token,
		`{"currentPassword":"hunter2!","newPassword":"correct horse"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = authedRequest(t, http.MethodPut, server.URL+"/api/auth/change-password/1", session.Token,
		`{"currentPassword":"wrong","newPassword":"correct horse"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = authedRequest(t, http.MethodPut, server.URL+"/api/auth/change-password/1", session.Token,
		`{"currentPassword":"hunter2!","newPassword":"correct horse"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = login(t, server.URL, "amina@example.com", "hunter2!")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = login(t, server.URL, "amina@example.com", "correct horse")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUsersList(t *testing.T) {
	server, _ := newAuthServer(t)
	defer server.Close()

	resp := signup(t, server.URL, signupFields)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/api/users")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decodeBody[[]types.UserSummary](t, resp)
	require.Len(t, users, 1)
	assert.Equal(t, "Amina Diallo", users[0].Fullname)
}
