package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/config"
	"app/mailer"
	"app/models"
	"app/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

const (
	tokenLifetime      = 30 * 24 * time.Hour
	resetTokenLifetime = time.Hour
	googleUserinfoURL  = "https://www.googleapis.com/oauth2/v3/userinfo"
)

type AuthHandler struct {
	Users store.UserStore
	Mail  *mailer.Mailer
	Cfg   *config.Config
}

func NewAuthHandler(users store.UserStore, mail *mailer.Mailer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Users: users, Mail: mail, Cfg: cfg}
}

func (h *AuthHandler) createToken(userID string) (string, error) {
	claims := models.JwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Cfg.JWTSecret))
}

func (h *AuthHandler) authResponse(c *fiber.Ctx, status int, user *models.User) error {
	token, err := h.createToken(user.ID)
	if err != nil {
		logrus.Errorf("Error creating JWT for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not sign token"})
	}
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"user": user, "token": token},
	})
}

// Signup registers a password account. POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if !parseBody(c, &req) {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.Users.GetByEmail(c.Context(), email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Email already registered"})
	} else if !errors.Is(err, store.ErrNotFound) {
		return storeError(c, err, "User")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.Errorf("Error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not process password"})
	}

	user := &models.User{Email: email, Name: req.Name, PasswordHash: string(hashed)}
	if err := h.Users.Create(c.Context(), user); err != nil {
		logrus.Errorf("Error creating user: %v", err)
		return storeError(c, err, "User")
	}
	return h.authResponse(c, fiber.StatusCreated, user)
}

// Login authenticates a password account. POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if !parseBody(c, &req) {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.Users.GetByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid email or password"})
		}
		return storeError(c, err, "User")
	}
	if user.PasswordHash == "" {
		// Google-only account.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid email or password"})
	}
	return h.authResponse(c, fiber.StatusOK, user)
}

type googleProfile struct {
	Email string
	Name  string
	Sub   string
}

// Google signs a user in with a Google identity, creating the account on
// first sign-in and linking the Google ID to an existing password account
// with the same email. POST /api/auth/google
func (h *AuthHandler) Google(c *fiber.Ctx) error {
	var req models.GoogleAuthRequest
	if !parseBody(c, &req) {
		return nil
	}

	profile, err := h.googleProfile(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Google sign-in failed"})
	}
	if profile.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Email not provided by Google"})
	}
	email := strings.ToLower(profile.Email)

	user, err := h.Users.GetByEmailOrGoogleID(c.Context(), email, profile.Sub)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Google-only account: no password hash until the user sets one.
		user = &models.User{Email: email, Name: profile.Name, GoogleID: profile.Sub}
		if err := h.Users.Create(c.Context(), user); err != nil {
			logrus.Errorf("Error creating Google user: %v", err)
			return storeError(c, err, "User")
		}
	case err != nil:
		return storeError(c, err, "User")
	default:
		if user.GoogleID == "" {
			user.GoogleID = profile.Sub
			if err := h.Users.Update(c.Context(), user); err != nil {
				logrus.Errorf("Error linking Google ID: %v", err)
				return storeError(c, err, "User")
			}
		}
	}
	return h.authResponse(c, fiber.StatusOK, user)
}

func (h *AuthHandler) googleProfile(ctx context.Context, req models.GoogleAuthRequest) (*googleProfile, error) {
	if req.Credential != "" && h.Cfg.GoogleClientID != "" {
		payload, err := idtoken.Validate(ctx, req.Credential, h.Cfg.GoogleClientID)
		if err != nil {
			return nil, err
		}
		email, _ := payload.Claims["email"].(string)
		name, _ := payload.Claims["name"].(string)
		return &googleProfile{Email: email, Name: name, Sub: payload.Subject}, nil
	}

	if req.AccessToken != "" {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserinfoURL, nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)
		resp, err := http.DefaultClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var info struct {
			Email string `json:"email"`
			Name  string `json:"name"`
			Sub   string `json:"sub"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, err
		}
		return &googleProfile{Email: info.Email, Name: info.Name, Sub: info.Sub}, nil
	}

	return nil, errors.New("google token or GOOGLE_CLIENT_ID required")
}

// ForgotPassword issues a one-hour reset token and emails the reset link. The
// response never reveals whether the email exists. POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if !parseBody(c, &req) {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	generic := fiber.Map{"status": "success", "message": "If the email exists, a reset link was sent"}

	user, err := h.Users.GetByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(generic)
		}
		return storeError(c, err, "User")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not generate token"})
	}
	token := hex.EncodeToString(buf)
	expiry := time.Now().Add(resetTokenLifetime)

	user.ResetToken = token
	user.ResetTokenExpiry = &expiry
	if err := h.Users.Update(c.Context(), user); err != nil {
		logrus.Errorf("Error storing reset token: %v", err)
		return storeError(c, err, "User")
	}

	if err := h.Mail.SendPasswordReset(c.Context(), user.Email, token); err != nil {
		logrus.Errorf("Error sending reset email to %s: %v", user.Email, err)
	}

	if h.Cfg.IsDevelopment() {
		return c.JSON(fiber.Map{"status": "success", "message": "Reset link sent", "resetToken": token})
	}
	return c.JSON(generic)
}

// ResetPassword sets a new password for a valid, unexpired reset token.
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if !parseBody(c, &req) {
		return nil
	}

	user, err := h.Users.GetByResetToken(c.Context(), req.Token, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid or expired token"})
		}
		return storeError(c, err, "User")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not process password"})
	}

	user.PasswordHash = string(hashed)
	user.ResetToken = ""
	user.ResetTokenExpiry = nil
	if err := h.Users.Update(c.Context(), user); err != nil {
		logrus.Errorf("Error resetting password: %v", err)
		return storeError(c, err, "User")
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Password reset successful"})
}
