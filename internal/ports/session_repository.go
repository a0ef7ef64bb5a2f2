package ports

import (
	"context"

	"github.com/bnema/billboard-cli/internal/domain"
)

// SessionRepository persists the remote session between runs so it can be
// resumed without pairing again.
type SessionRepository interface {
	Load(ctx context.Context) (domain.RemoteSession, error)
	Save(ctx context.Context, session domain.RemoteSession) error
	Delete(ctx context.Context) error
}
