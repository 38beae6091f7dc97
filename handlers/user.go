package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mindforge/mindmap-api/auth"
	"github.com/mindforge/mindmap-api/middleware"
	"github.com/mindforge/mindmap-api/models"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// Register serves POST /api/register.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var requestData struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(requestData.Email))
	if email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if len(requestData.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	var existing models.User
	err := a.AppDB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		respondError(w, http.StatusConflict, "An account with this email already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.Log.Error("registration lookup failed", "email", email, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	hash, err := auth.HashPassword(requestData.Password)
	if err != nil {
		a.Log.Error("password hashing failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(requestData.FullName),
		Email:        email,
		PasswordHash: hash,
	}
	if err := a.AppDB.Create(&user).Error; err != nil {
		a.Log.Error("user creation failed", "email", email, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"id":    user.ID,
		"email": user.Email,
	})
}

// Login serves POST /api/login and establishes the session cookie.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var requestData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(requestData.Email))
	var user models.User
	if err := a.AppDB.Where("email = ?", email).First(&user).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, requestData.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.CreateToken(user.ID, []byte(a.Cfg.JWTSecret))
	if err != nil {
		a.Log.Error("session token creation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   a.Cfg.CookieDomain,
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   a.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"email":    user.Email,
		"fullName": user.FullName,
	})
}

// Session serves GET /api/session for introspection.
func (a *API) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		respondJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"email":         user.Email,
		"fullName":      user.FullName,
	})
}

// Logout serves POST /api/logout by expiring the session cookie.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Domain:   a.Cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
