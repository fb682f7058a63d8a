// Package services holds the transport-agnostic core: the session issuer and
// the feed service. Operations return *apperror.Error so controllers only
// translate outcomes, never decide them.
package services

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/feedpulse/feedpulse/apperror"
	"github.com/feedpulse/feedpulse/models"
	"github.com/feedpulse/feedpulse/utils"
)

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 5

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService verifies credentials, issues and validates session tokens, and
// owns the user status text.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates an AuthService over the given database.
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Signup validates and persists a new user, storing only the bcrypt hash of
// the password. Returns the new user id.
func (s *AuthService) Signup(email, name, password string) (uint, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	var fields []apperror.FieldError
	if !emailPattern.MatchString(email) {
		fields = append(fields, apperror.FieldError{Field: "email", Message: "Please enter a valid email."})
	}
	if len(password) < MinPasswordLength {
		fields = append(fields, apperror.FieldError{Field: "password", Message: "Password too short."})
	}
	if name == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Message: "Name must not be empty."})
	}
	if len(fields) == 0 {
		var existing models.User
		if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
			fields = append(fields, apperror.FieldError{Field: "email", Message: "E-Mail address already exists!"})
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.NewInternal("failed to check email", err)
		}
	}
	if len(fields) > 0 {
		return 0, apperror.NewValidation("Validation failed", fields...)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return 0, apperror.NewInternal("failed to hash password", err)
	}

	user := models.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.db.Create(&user).Error; err != nil {
		// The unique index still guards against a concurrent signup that
		// slipped past the read above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperror.NewValidation("Validation failed",
				apperror.FieldError{Field: "email", Message: "E-Mail address already exists!"})
		}
		return 0, apperror.NewInternal("failed to create user", err)
	}

	return user.ID, nil
}

// Login checks credentials and issues a signed token with the fixed expiry.
func (s *AuthService) Login(email, password string) (string, uint, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, apperror.NewNotFound("Could not find user")
		}
		return "", 0, apperror.NewInternal("failed to load user", err)
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return "", 0, apperror.NewAuth("Wrong password")
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", 0, apperror.NewInternal("failed to generate token", err)
	}

	return token, user.ID, nil
}

// Verify validates a session token and returns the acting user id. Missing,
// malformed, badly signed, and expired tokens all fail the same way.
func (s *AuthService) Verify(token string) (uint, error) {
	if strings.TrimSpace(token) == "" {
		return 0, apperror.NewAuth("Not authenticated")
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return 0, apperror.NewAuth("Not authenticated")
	}
	return claims.UserID, nil
}

// GetStatus returns the status text of the acting user.
func (s *AuthService) GetStatus(userID uint) (string, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// UpdateStatus replaces the acting user's status text. Only the owner ever
// reaches this path; the id comes from the verified token.
func (s *AuthService) UpdateStatus(userID uint, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return apperror.NewValidation("Validation failed",
			apperror.FieldError{Field: "status", Message: "Status must not be empty."})
	}

	user, err := s.loadUser(userID)
	if err != nil {
		return err
	}
	user.Status = utils.Sanitize(status)
	if err := s.db.Save(user).Error; err != nil {
		return apperror.NewInternal("failed to update status", err)
	}
	return nil
}

// LoginOAuth provisions or refreshes a user for a verified provider identity
// and issues a session token.
func (s *AuthService) LoginOAuth(provider, providerID, email, name string) (string, uint, error) {
	var user models.User
	err := s.db.Where("provider = ? AND provider_id = ?", provider, providerID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:      strings.ToLower(strings.TrimSpace(email)),
			Name:       strings.TrimSpace(name),
			Provider:   provider,
			ProviderID: providerID,
		}
		if user.Name == "" {
			user.Name = provider + " user"
		}
		if err := s.db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", 0, apperror.NewValidation("Validation failed",
					apperror.FieldError{Field: "email", Message: "E-Mail address already exists!"})
			}
			return "", 0, apperror.NewInternal("failed to create user", err)
		}
	case err != nil:
		return "", 0, apperror.NewInternal("failed to load user", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", 0, apperror.NewInternal("failed to generate token", err)
	}
	return token, user.ID, nil
}

func (s *AuthService) loadUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("Could not find user")
		}
		return nil, apperror.NewInternal("failed to load user", err)
	}
	return &user, nil
}
