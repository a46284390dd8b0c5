package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/auth"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/monocle-dev/tracker/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// bcrypt only hashes the first 72 bytes and refuses anything longer.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  types.UserResponse
}

// Credentials registers users and exchanges email and password for a
// bearer token.
type Credentials struct {
	db     *gorm.DB
	issuer *auth.TokenIssuer
	log    logrus.FieldLogger
}

func NewCredentials(db *gorm.DB, issuer *auth.TokenIssuer, log logrus.FieldLogger) *Credentials {
	return &Credentials{db: db, issuer: issuer, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	address, err := mail.ParseAddress(email)
	return err == nil && address.Address == email
}

// Register stores a new user. It does not log the user in.
func (s *Credentials) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	if name == "" || email == "" || input.Password == "" {
		return models.User{}, apperr.BadRequest("Name, email and password are required")
	}
	if !validEmail(email) {
		return models.User{}, apperr.BadRequest("Invalid email")
	}
	if len(input.Password) < minPasswordLength {
		return models.User{}, apperr.BadRequest("Password must be at least 8 characters")
	}
	if len(input.Password) > maxPasswordLength {
		return models.User{}, apperr.BadRequest("Password must be at most 72 bytes")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.User{}, apperr.Internal("Failed to register user", err)
	}
	if count > 0 {
		return models.User{}, apperr.Conflict("Email already registered")
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return models.User{}, apperr.Internal("Failed to register user", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, apperr.Conflict("Email already registered")
		}
		return models.User{}, apperr.Internal("Failed to register user", err)
	}

	s.log.WithField("user_id", user.ID.String()).Info("User registered")

	return user, nil
}

func (s *Credentials) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, apperr.BadRequest("Email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return LoginResult{}, lookupError(err, "User not found")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, apperr.Unauthorized("Invalid credentials")
	}

	token, err := s.issuer.Generate(auth.Identity{ID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		return LoginResult{}, apperr.Internal("Failed to issue token", err)
	}

	return LoginResult{Token: token, User: user.Public()}, nil
}
