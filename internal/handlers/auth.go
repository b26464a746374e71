package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/internal/storage"
	"github.com/agritrack/apiserver/internal/store"
	"github.com/agritrack/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 7 * 24 * time.Hour
const bcryptCost = 10
const maxMultipartMemory = 8 << 20

// AuthHandler provides JWT authentication and profile endpoints.
type AuthHandler struct {
	userService *services.UserService
	storage     *storage.Storage
	secret      []byte
	tokenTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, uploads *storage.Storage, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		storage:     uploads,
		secret:      []byte(jwtSecret),
		tokenTTL:    defaultTokenTTL,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, uploads *storage.Storage, jwtSecret string) {
	handler := NewAuthHandler(userService, uploads, jwtSecret)

	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
	r.With(handler.RequireAuth).Put("/update-profile/{id}", handler.UpdateProfile)
	r.With(handler.RequireAuth).Put("/change-password/{id}", handler.ChangePassword)
}

// RequireAuth enforces JWT authentication and injects the subject into context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return requireAuth(h.secret)(next)
}

// RequireAuth constructs auth middleware for other routers.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return requireAuth([]byte(jwtSecret))
}

func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			subject, err := parseTokenSubject(tokenString, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			userID, err := types.ParseID(subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SignupResponse confirms account creation.
type SignupResponse struct {
	Message string     `json:"message"`
	User    SignupUser `json:"user"`
}

type SignupUser struct {
	ID       types.ID `json:"id"`
	Username string   `json:"username"`
}

// Signup creates a new account from a multipart form with a profile image.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := parseImageForm(w, r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fullname := strings.TrimSpace(r.FormValue("fullname"))
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	imageFile := formFile(r, "imagePhoto")

	if fullname == "" || username == "" || email == "" || password == "" || imageFile == nil {
		writeError(w, http.StatusBadRequest, "all fields are required including profile image")
		return
	}

	taken, err := h.userService.UsernameOrEmailTaken(r.Context(), username, email, 0)
	if err != nil {
		slog.Error("signup uniqueness check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "username or email already exists")
		return
	}

	imageName, err := saveProfileImage(r.Context(), h.storage, imageFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		slog.Error("password hash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Fullname:     fullname,
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		ImagePhoto:   imageName,
		Phone:        nullableString(r.FormValue("phone")),
		Address:      nullableString(r.FormValue("address")),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "username or email already exists")
			return
		}
		slog.Error("create user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{
		Message: "user created",
		User:    SignupUser{ID: user.ID, Username: user.Username},
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string   `json:"token"`
	UserID types.ID `json:"userId"`
}

// Login verifies email/password credentials and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "incorrect email or password")
			return
		}
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, UserID: user.ID})
}

// Me returns the current authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("load user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ProfileResponse confirms a profile update.
type ProfileResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

// UpdateProfile applies a partial profile edit for the authenticated user.
// Users may only edit their own profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := h.ownerIDs(w, r)
	if !ok {
		return
	}
	if userID != targetID {
		writeError(w, http.StatusForbidden, "cannot edit another user's profile")
		return
	}

	if err := parseImageForm(w, r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("load user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if fullname := strings.TrimSpace(r.FormValue("fullname")); fullname != "" {
		user.Fullname = fullname
	}
	if username := strings.TrimSpace(r.FormValue("username")); username != "" {
		user.Username = username
	}
	if email := strings.TrimSpace(r.FormValue("email")); email != "" {
		user.Email = email
	}
	if phone := r.FormValue("phone"); phone != "" {
		user.Phone = nullableString(phone)
	}
	if address := r.FormValue("address"); address != "" {
		user.Address = nullableString(address)
	}

	taken, err := h.userService.UsernameOrEmailTaken(r.Context(), user.Username, user.Email, targetID)
	if err != nil {
		slog.Error("profile uniqueness check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "username or email already taken")
		return
	}

	if imageFile := formFile(r, "imagePhoto"); imageFile != nil {
		imageName, err := saveProfileImage(r.Context(), h.storage, imageFile)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		user.ImagePhoto = imageName
	}

	updated, err := h.userService.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "username or email already taken")
			return
		}
		slog.Error("update user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Message: "profile updated", User: updated})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the authenticated user's password after verifying
// the current one. Users may only change their own password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := h.ownerIDs(w, r)
	if !ok {
		return
	}
	if userID != targetID {
		writeError(w, http.StatusForbidden, "cannot change another user's password")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "both passwords are required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("load user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect current password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		slog.Error("password hash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user.PasswordHash = string(hashed)
	if _, err := h.userService.Update(r.Context(), user); err != nil {
		slog.Error("update password failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "password changed"})
}

// ownerIDs extracts the authenticated user id and the {id} path parameter.
func (h *AuthHandler) ownerIDs(w http.ResponseWriter, r *http.Request) (userID, targetID types.ID, ok bool) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, 0, false
	}
	targetID, err = pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, 0, false
	}
	return userID, targetID, true
}

func issueToken(userID types.ID, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
