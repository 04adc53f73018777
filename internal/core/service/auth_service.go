package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
	"github.com/taskflow/task-manager/internal/pkg/metrics"
)

const (
	passwordCost     = 12
	verificationSize = 32
)

// AuthService implements registration, email verification and login.
type AuthService struct {
	repo      ports.UserRepository
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, mailer ports.Mailer, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, mailer: mailer, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Register stores an unverified account and mails its verification link.
// A failed delivery is logged; the account is kept either way.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		Role:              domain.RoleUser,
		VerificationToken: token,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}
	metrics.UsersRegisteredTotal.Inc()

	if err := s.mailer.SendVerification(ctx, email, token); err != nil {
		metrics.VerificationEmailsTotal.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).Str("user_id", created.ID).Msg("failed to send verification email")
	} else {
		metrics.VerificationEmailsTotal.WithLabelValues("sent").Inc()
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// VerifyEmail consumes a verification token. Tokens are single-use and do not expire.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenRequired
	}

	user, err := s.repo.MarkVerified(ctx, token)
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// Login checks the credentials of a verified account and issues a signed token.
// Unknown emails and wrong passwords are reported identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrMissingFields
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", nil, domain.ErrEmailNotVerified
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("login: sign token: %w", err)
	}

	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// newVerificationToken returns 256 random bits, hex encoded.
func newVerificationToken() (string, error) {
	b := make([]byte, verificationSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
