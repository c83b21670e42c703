package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/innercalm/backend/pkg/errors"
)

// Service exposes authentication and account workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Profile(ctx context.Context, userID int64) (UserView, error)
	UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (UserView, error)
	ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error
	Deactivate(ctx context.Context, userID int64) error
	DeleteAccount(ctx context.Context, userID int64) error
	GetPreferences(ctx context.Context, userID int64) (Preferences, error)
	UpdatePreferences(ctx context.Context, userID int64, req PreferencesUpdate) (Preferences, error)
}

type service struct {
	cfg    Config
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "auth.service"),
	}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

func (s *service) Register(ctx context.Context, req RegisterRequest) (TokenResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap("invalid_input", "invalid email address", err)
	}
	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		return TokenResponse{}, apperrors.Wrap("invalid_input", "username must be 3-30 letters, digits or underscores", nil)
	}
	if err := validatePassword(req.Password); err != nil {
		return TokenResponse{}, apperrors.Wrap("invalid_input", err.Error(), nil)
	}

	if _, exists, err := s.repo.GetByEmail(ctx, email); err != nil {
		return TokenResponse{}, apperrors.Wrap("auth_error", "failed to check email", err)
	} else if exists {
		return TokenResponse{}, apperrors.Wrap("email_exists", "email already registered", nil)
	}
	if _, exists, err := s.repo.GetByUsername(ctx, username); err != nil {
		return TokenResponse{}, apperrors.Wrap("auth_error", "failed to check username", err)
	} else if exists {
		return TokenResponse{}, apperrors.Wrap("username_exists", "username already taken", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap("auth_error", "failed to hash password", err)
	}
	user, err := s.repo.Create(ctx, email, username, strings.TrimSpace(req.FullName), string(hashed))
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			return TokenResponse{}, apperrors.Wrap("email_exists", "email already registered", err)
		case errors.Is(err, ErrUsernameExists):
			return TokenResponse{}, apperrors.Wrap("username_exists", "username already taken", err)
		}
		return TokenResponse{}, apperrors.Wrap("auth_error", "failed to create user", err)
	}
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.buildTokenResponse(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.TrimSpace(req.Password) == "" {
		return TokenResponse{}, apperrors.Wrap("invalid_input", "username and password are required", nil)
	}
	user, found, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap("auth_error", "failed to fetch user", err)
	}
	if !found {
		return TokenResponse{}, apperrors.Wrap("invalid_credentials", "incorrect username or password", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return TokenResponse{}, apperrors.Wrap("invalid_credentials", "incorrect username or password", nil)
	}
	if !user.IsActive {
		return TokenResponse{}, apperrors.Wrap("inactive_user", "account is deactivated", nil)
	}
	return s.buildTokenResponse(user)
}

func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing", nil)
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	user, found, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return Claims{}, apperrors.Wrap("auth_error", "failed to load user", err)
	}
	if !found {
		return Claims{}, apperrors.Wrap("invalid_token", "user no longer exists", nil)
	}
	if !user.IsActive {
		return Claims{}, apperrors.Wrap("inactive_user", "account is deactivated", nil)
	}
	return claims, nil
}

func (s *service) Profile(ctx context.Context, userID int64) (UserView, error) {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return UserView{}, apperrors.Wrap("auth_error", "failed to load profile", err)
	}
	if !found {
		return UserView{}, apperrors.Wrap("user_not_found", "user not found", nil)
	}
	return toView(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (UserView, error) {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return UserView{}, apperrors.Wrap("auth_error", "failed to load profile", err)
	}
	if !found {
		return UserView{}, apperrors.Wrap("user_not_found", "user not found", nil)
	}

	email := user.Email
	if req.Email != nil {
		email, err = normalizeEmail(*req.Email)
		if err != nil {
			return UserView{}, apperrors.Wrap("invalid_input", "invalid email address", err)
		}
		if email != user.Email {
			if _, exists, err := s.repo.GetByEmail(ctx, email); err != nil {
				return UserView{}, apperrors.Wrap("auth_error", "failed to check email", err)
			} else if exists {
				return UserView{}, apperrors.Wrap("email_exists", "email already registered", nil)
			}
		}
	}
	fullName := user.FullName
	if req.FullName != nil {
		fullName = strings.TrimSpace(*req.FullName)
	}

	updated, err := s.repo.UpdateProfile(ctx, userID, email, fullName)
	if err != nil {
		return UserView{}, apperrors.Wrap("auth_error", "failed to update profile", err)
	}
	return toView(updated), nil
}

func (s *service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return apperrors.Wrap("auth_error", "failed to load user", err)
	}
	if !found {
		return apperrors.Wrap("user_not_found", "user not found", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperrors.Wrap("invalid_credentials", "current password is incorrect", nil)
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return apperrors.Wrap("invalid_input", err.Error(), nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap("auth_error", "failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return apperrors.Wrap("auth_error", "failed to update password", err)
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *service) Deactivate(ctx context.Context, userID int64) error {
	if err := s.repo.SetActive(ctx, userID, false); err != nil {
		return apperrors.Wrap("auth_error", "failed to deactivate account", err)
	}
	s.logger.Info("account deactivated", "user_id", userID)
	return nil
}

func (s *service) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return apperrors.Wrap("auth_error", "failed to delete account", err)
	}
	s.logger.Info("account deleted", "user_id", userID)
	return nil
}

func (s *service) GetPreferences(ctx context.Context, userID int64) (Preferences, error) {
	prefs, found, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return Preferences{}, apperrors.Wrap("auth_error", "failed to load preferences", err)
	}
	if !found {
		return DefaultPreferences(), nil
	}
	return prefs, nil
}

func (s *service) UpdatePreferences(ctx context.Context, userID int64, req PreferencesUpdate) (Preferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	if req.Theme != nil {
		if *req.Theme != "light" && *req.Theme != "dark" {
			return Preferences{}, apperrors.Wrap("invalid_input", "theme must be light or dark", nil)
		}
		prefs.Theme = *req.Theme
	}
	if req.Language != nil {
		prefs.Language = *req.Language
	}
	if req.Timezone != nil {
		prefs.Timezone = *req.Timezone
	}
	if req.DailyReminders != nil {
		prefs.DailyReminders = *req.DailyReminders
	}
	if req.WeeklyReports != nil {
		prefs.WeeklyReports = *req.WeeklyReports
	}
	if req.Recommendations != nil {
		prefs.Recommendations = *req.Recommendations
	}
	if req.Achievements != nil {
		prefs.Achievements = *req.Achievements
	}
	saved, err := s.repo.SavePreferences(ctx, userID, prefs)
	if err != nil {
		return Preferences{}, apperrors.Wrap("auth_error", "failed to save preferences", err)
	}
	return saved, nil
}

func (s *service) buildTokenResponse(user User) (TokenResponse, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return TokenResponse{}, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	return TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.cfg.TokenTTL.Seconds()),
		User:        toView(user),
	}, nil
}

func (s *service) parseToken(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing expiry", nil)
	}
	if claims.ExpiresAt.Time.Before(time.Now()) {
		return Claims{}, apperrors.Wrap("invalid_token", "token expired", nil)
	}
	return Claims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func toView(user User) UserView {
	return UserView{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(strings.ToLower(raw))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}
