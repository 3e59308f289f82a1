package controllers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"explore-api/middlewares"
	"explore-api/models"
	"explore-api/utils"
	"explore-api/validation"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// AuthHandler is the identity collaborator: it issues and refreshes the
// PASETO tokens the actor middleware verifies.
type AuthHandler struct {
	DB *sql.DB
}

func (h *AuthHandler) SetupUserRoutes(r *mux.Router) {
	usersRouter := r.PathPrefix("/auth").Subrouter()
	usersRouter.HandleFunc("/register", h.Register).Methods("POST")
	usersRouter.HandleFunc("/login", h.Login).Methods("POST")
	usersRouter.HandleFunc("/logoff", h.Logoff).Methods("POST")
	usersRouter.HandleFunc("/refresh-token", h.RefreshToken).Methods("POST")
	usersRouter.HandleFunc("/change-password", h.ChangePassword).Methods("POST")
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User

	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		middlewares.HttpError(w, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	if err := validation.ValidateUserData(user); err != nil {
		middlewares.HttpError(w, err.Error(), http.StatusBadRequest, err)
		return
	}

	// Roles are never client-assigned; everyone registers as a plain user.
	user.Role = models.RoleUser

	ctx := r.Context()
	if err := CreateUser(ctx, h.DB, &user); err != nil {
		middlewares.HttpError(w, "Failed to create user", http.StatusInternalServerError, err)
		return
	}

	user.Password = ""
	middlewares.RespondJSON(w, user, http.StatusCreated)
}

func CreateUser(ctx context.Context, database *sql.DB, user *models.User) error {
	if err := user.HashPassword(); err != nil {
		return err
	}

	query := `INSERT INTO users (username, email, password, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := database.QueryRowContext(ctx, query, user.Username, user.Email, user.Password, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return errors.New("failed to insert user into database: " + err.Error())
	}

	return nil
}

func GetUserByUsername(ctx context.Context, database *sql.DB, username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, email, password, role, created_at FROM users WHERE username = $1`
	err := database.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		middlewares.HttpError(w, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	user, err := GetUserByUsername(ctx, h.DB, credentials.Username)
	if err != nil {
		middlewares.HttpError(w, "Failed to retrieve user", http.StatusInternalServerError, err)
		return
	}
	if user == nil || !user.CheckPassword(credentials.Password) {
		middlewares.HttpError(w, "Invalid username or password", http.StatusUnauthorized, nil)
		return
	}

	accessToken, err := utils.GeneratePASETO(user.ID, user.Role, 15*time.Minute)
	if err != nil {
		middlewares.HttpError(w, "Failed to generate access token", http.StatusInternalServerError, err)
		return
	}

	refreshToken, err := utils.GeneratePASETO(user.ID, user.Role, 7*24*time.Hour)
	if err != nil {
		middlewares.HttpError(w, "Failed to generate refresh token", http.StatusInternalServerError, err)
		return
	}

	setAuthCookies(w, accessToken, refreshToken)

	middlewares.RespondJSON(w, map[string]string{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, http.StatusOK)
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var refreshTokenRequest struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := json.NewDecoder(r.Body).Decode(&refreshTokenRequest); err != nil {
		middlewares.HttpError(w, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	claims, err := utils.ValidatePASETO(refreshTokenRequest.RefreshToken)
	if err != nil {
		middlewares.HttpError(w, "Invalid refresh token", http.StatusUnauthorized, err)
		return
	}

	accessToken, err := utils.GeneratePASETO(claims.UserID, claims.Role, 15*time.Minute)
	if err != nil {
		middlewares.HttpError(w, "Failed to generate new access token", http.StatusInternalServerError, err)
		return
	}

	middlewares.RespondJSON(w, map[string]string{"accessToken": accessToken}, http.StatusOK)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var data struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		middlewares.HttpError(w, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	actor := middlewares.GetActor(r)
	if actor == nil {
		middlewares.HttpError(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	if err := validation.ValidatePasswordChange(data.OldPassword, data.NewPassword); err != nil {
		middlewares.HttpError(w, err.Error(), http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	user, err := GetUserByID(ctx, h.DB, actor.ID)
	if err != nil {
		middlewares.HttpError(w, "Failed to retrieve user", http.StatusInternalServerError, err)
		return
	}
	if user == nil {
		middlewares.HttpError(w, "User not found", http.StatusNotFound, nil)
		return
	}

	if !user.CheckPassword(data.OldPassword) {
		middlewares.HttpError(w, "Old password is incorrect", http.StatusUnauthorized, nil)
		return
	}

	user.Password = data.NewPassword
	if err := user.HashPassword(); err != nil {
		middlewares.HttpError(w, "Failed to hash new password", http.StatusInternalServerError, err)
		return
	}

	if err := UpdateUserPassword(ctx, h.DB, actor.ID, user.Password); err != nil {
		middlewares.HttpError(w, "Failed to update password", http.StatusInternalServerError, err)
		return
	}

	middlewares.RespondJSON(w, map[string]string{"message": "Password updated"}, http.StatusOK)
}

func GetUserByID(ctx context.Context, database *sql.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, email, password, role, created_at FROM users WHERE id = $1`
	err := database.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func UpdateUserPassword(ctx context.Context, database *sql.DB, id uuid.UUID, hashedPassword string) error {
	_, err := database.ExecContext(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hashedPassword, id)
	if err != nil {
		return errors.New("failed to update password: " + err.Error())
	}
	return nil
}

func (h *AuthHandler) Logoff(w http.ResponseWriter, r *http.Request) {
	clearAuthCookies(w)
	middlewares.RespondJSON(w, map[string]string{"message": "Logged off"}, http.StatusOK)
}

func setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((15 * time.Minute).Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
