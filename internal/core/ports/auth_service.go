package ports

import (
	"context"

	"github.com/taskflow/task-manager/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// Mailer delivers the account verification message.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
}
