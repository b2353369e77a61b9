package ports

import (
	"context"

	"github.com/gramsight/dashboard/internal/core/domain"
)

// CredentialSource exposes the credential the gateway attaches to requests.
type CredentialSource interface {
	Credential() (token string, demo bool)
}

// SessionService owns the client session lifecycle.
type SessionService interface {
	CredentialSource
	Restore(ctx context.Context) error
	Login(ctx context.Context, credential string, role domain.Role) error
	LoginDemo(ctx context.Context, role domain.Role) error
	Logout(ctx context.Context) error
	Invalidate(ctx context.Context, credential string) (bool, error)
	Authenticate(ctx context.Context, email, password string, role domain.Role) error
	Register(ctx context.Context, email, password string, role domain.Role) error
	Current() domain.Session
}
