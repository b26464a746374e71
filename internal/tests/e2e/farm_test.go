//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/agritrack/apiserver/config"
	"github.com/agritrack/apiserver/internal/db"
	"github.com/agritrack/apiserver/internal/server"
	"github.com/agritrack/apiserver/types"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestFarmLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	username := fmt.Sprintf("grower_%d", time.Now().UnixNano())
	email := username + "@example.com"
	password := "testpass123!"

	userID, err := signupUser(t, baseURL, username, email, password)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, loginUserID, err := loginUser(t, baseURL, email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginUserID != userID {
		t.Fatalf("login user id %s does not match signup id %s", loginUserID, userID)
	}

	me, err := fetchMe(t, baseURL, token)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Username != username {
		t.Fatalf("unexpected me username: %q", me.Username)
	}

	farmerID, err := createJSON(t, baseURL+"/farmers", fmt.Sprintf(
		`{"user_id":%q,"full_name":"Lifecycle Farmer","gender":"female","email":"farmer_%s@example.com"}`,
		userID.String(), username))
	if err != nil {
		t.Fatalf("create farmer: %v", err)
	}

	farmID, err := createJSON(t, baseURL+"/farms", fmt.Sprintf(
		`{"farmer_id":%q,"name":"Lifecycle Farm","location":"Eldoret","size_acres":4.5,"irrigation":true}`, farmerID.String()))
	if err != nil {
		t.Fatalf("create farm: %v", err)
	}

	farms, total, err := listItems(t, baseURL+"/farms?search=Lifecycle")
	if err != nil {
		t.Fatalf("search farms: %v", err)
	}
	if total < 1 || len(farms) < 1 {
		t.Fatalf("expected the new farm in search results, got %d", total)
	}

	if err := expectStatus(t, http.MethodPut, baseURL+"/farms/"+farmID.String(),
		`{"farmer_id":"abc"}`, http.StatusBadRequest); err != nil {
		t.Fatalf("update farm with bad farmer_id: %v", err)
	}

	if err := expectStatus(t, http.MethodPut, baseURL+"/farms/"+farmID.String(),
		`{"size_acres":9.25}`, http.StatusOK); err != nil {
		t.Fatalf("update farm: %v", err)
	}

	cropID, err := createJSON(t, baseURL+"/crops", fmt.Sprintf(
		`{"farm_id":%q,"name":"Lifecycle Maize","variety":"H614","status":"planted","planting_date":"2026-03-20"}`, farmID.String()))
	if err != nil {
		t.Fatalf("create crop: %v", err)
	}

	crops, _, err := listItems(t, baseURL+"/crops?search=Lifecycle+Maize")
	if err != nil {
		t.Fatalf("search crops: %v", err)
	}
	if len(crops) < 1 {
		t.Fatalf("expected the new crop in search results")
	}

	if err := expectStatus(t, http.MethodDelete, baseURL+"/farms/"+farmID.String(), "", http.StatusOK); err != nil {
		t.Fatalf("delete farm: %v", err)
	}

	// Deleting the farm cascades to its crops.
	if err := expectStatus(t, http.MethodGet, baseURL+"/crops/"+cropID.String(), "", http.StatusNotFound); err != nil {
		t.Fatalf("expected cascaded crop delete: %v", err)
	}

	if err := expectStatus(t, http.MethodDelete, baseURL+"/farmers/"+farmerID.String(), "", http.StatusOK); err != nil {
		t.Fatalf("delete farmer: %v", err)
	}
}

type signupResponse struct {
	User struct {
		ID types.ID `json:"id"`
	} `json:"user"`
}

type loginResponse struct {
	Token  string   `json:"token"`
	UserID types.ID `json:"userId"`
}

type meResponse struct {
	Username string `json:"username"`
}

type idResponse struct {
	ID types.ID `json:"id"`
}

type listResponse struct {
	Items      []json.RawMessage `json:"items"`
	TotalCount int               `json:"totalCount"`
}

func signupUser(t *testing.T, baseURL, username, email, password string) (types.ID, error) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("fullname", "Lifecycle Grower")
	_ = writer.WriteField("username", username)
	_ = writer.WriteField("email", email)
	_ = writer.WriteField("password", password)

	part, err := writer.CreateFormFile("imagePhoto", "avatar.png")
	if err != nil {
		return 0, err
	}
	if _, err := part.Write([]byte("\x89PNG fake image bytes")); err != nil {
		return 0, err
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}

	resp, err := http.Post(baseURL+"/api/auth/signup", writer.FormDataContentType(), &body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("signup status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed signupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, err
	}
	if parsed.User.ID == 0 {
		return 0, fmt.Errorf("missing user id in signup response")
	}
	return parsed.User.ID, nil
}

func loginUser(t *testing.T, baseURL, email, password string) (string, types.ID, error) {
	t.Helper()

	payload := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	resp, err := http.Post(baseURL+"/api/auth/login", "application/json", strings.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("login status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", 0, err
	}
	if parsed.Token == "" {
		return "", 0, fmt.Errorf("missing token in login response")
	}
	return parsed.Token, parsed.UserID, nil
}

func fetchMe(t *testing.T, baseURL, token string) (meResponse, error) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/auth/me", nil)
	if err != nil {
		return meResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return meResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return meResponse{}, fmt.Errorf("me status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed meResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return meResponse{}, err
	}
	return parsed, nil
}

func createJSON(t *testing.T, url, payload string) (types.ID, error) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("create status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed idResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, err
	}
	if parsed.ID == 0 {
		return 0, fmt.Errorf("missing id in create response")
	}
	return parsed.ID, nil
}

func listItems(t *testing.T, url string) ([]json.RawMessage, int, error) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("list status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}
	return parsed.Items, parsed.TotalCount, nil
}

func expectStatus(t *testing.T, method, url, payload string, want int) error {
	t.Helper()

	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s status %d, want %d: %s", method, url, resp.StatusCode, want, strings.TrimSpace(string(msg)))
	}
	return nil
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	dsn := db.BuildDSN(cfg.Database)
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := conn.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	dsn := db.BuildDSN(cfg.Database)
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func startServer() (*server.Server, error) {
	uploadDir, err := os.MkdirTemp("", "agritrack-uploads-")
	if err != nil {
		return nil, err
	}

	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "agritrack")
	_ = os.Setenv("DB_PASSWORD", "password")
	_ = os.Setenv("DB_NAME", "agritrack_db")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("STORAGE_BACKEND", "local")
	_ = os.Setenv("UPLOAD_DIR", uploadDir)
	_ = os.Setenv("MQ_BACKEND", "none")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
