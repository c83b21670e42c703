package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	SecretKey string
	TokenTTL  time.Duration
}

// User represents a persisted account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Preferences stores per-user application settings.
type Preferences struct {
	Theme           string `json:"theme"`
	Language        string `json:"language"`
	Timezone        string `json:"timezone"`
	DailyReminders  bool   `json:"dailyReminders"`
	WeeklyReports   bool   `json:"weeklyReports"`
	Recommendations bool   `json:"recommendations"`
	Achievements    bool   `json:"achievements"`
}

// DefaultPreferences returns the settings applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:           "light",
		Language:        "en",
		Timezone:        "UTC",
		DailyReminders:  true,
		WeeklyReports:   true,
		Recommendations: true,
		Achievements:    false,
	}
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse returns the signed access token.
type TokenResponse struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ExpiresIn   int64    `json:"expiresIn"`
	User        UserView `json:"user"`
}

// UserView trims sensitive fields.
type UserView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// UpdateProfileRequest carries partial profile changes.
type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"fullName,omitempty"`
}

// ChangePasswordRequest carries a password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PreferencesUpdate carries partial preference changes.
type PreferencesUpdate struct {
	Theme           *string `json:"theme,omitempty"`
	Language        *string `json:"language,omitempty"`
	Timezone        *string `json:"timezone,omitempty"`
	DailyReminders  *bool   `json:"dailyReminders,omitempty"`
	WeeklyReports   *bool   `json:"weeklyReports,omitempty"`
	Recommendations *bool   `json:"recommendations,omitempty"`
	Achievements    *bool   `json:"achievements,omitempty"`
}
