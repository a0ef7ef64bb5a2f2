package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	sessionPathKey    = "session.path"
	sessionFileMode   = 0o600
	sessionDirMode    = 0o700
	sessionConfigDir  = ".billboard"
	sessionConfigFile = "session.toml"
	tempFilePattern   = ".session-*.toml.tmp"
)

// SessionRepository persists the remote wallet session so the next run can
// resume it without pairing again.
type SessionRepository struct {
	sessionPath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(cfg *viper.Viper) (*SessionRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	if !cfg.IsSet(sessionPathKey) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SetDefault(sessionPathKey, filepath.Join(homeDir, sessionConfigDir, sessionConfigFile))
	}

	sessionPath := cfg.GetString(sessionPathKey)
	if sessionPath == "" {
		return nil, errors.New("session path is empty")
	}
	sessionPath, err := normalizeSessionPath(sessionPath)
	if err != nil {
		return nil, err
	}

	return &SessionRepository{sessionPath: sessionPath, mu: lockForPath(sessionPath)}, nil
}

func (r *SessionRepository) Path() string {
	return r.sessionPath
}

func (r *SessionRepository) Load(ctx context.Context) (domain.RemoteSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.RemoteSession{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.RemoteSession{}, err
	}
	if file.Session == nil || file.Session.Topic == "" {
		return domain.RemoteSession{}, domain.ErrSessionNotFound
	}

	return fromSchema(*file.Session), nil
}

func (r *SessionRepository) Save(ctx context.Context, session domain.RemoteSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session.Topic == "" {
		return errors.New("session topic is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(session)
	file.Session = &encoded

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

// Delete removes the persisted session. Deleting when nothing is stored is
// not an error.
func (r *SessionRepository) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (r *SessionRepository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.sessionPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read session file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode session file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *SessionRepository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.sessionPath), sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.sessionPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tempName, r.sessionPath); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	cleanup = false

	if err := os.Chmod(r.sessionPath, sessionFileMode); err != nil {
		return fmt.Errorf("chmod session file: %w", err)
	}

	return nil
}

func normalizeSessionPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve session path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(session domain.RemoteSession) sessionSchema {
	return sessionSchema{
		Topic:     session.Topic,
		Key:       session.Key,
		Bridge:    session.Bridge,
		ClientID:  session.ClientID,
		PeerName:  session.PeerName,
		Accounts:  append([]string(nil), session.Accounts...),
		ChainID:   session.ChainID,
		CreatedAt: formatTime(session.CreatedAt),
	}
}

func fromSchema(session sessionSchema) domain.RemoteSession {
	return domain.RemoteSession{
		Topic:     session.Topic,
		Key:       session.Key,
		Bridge:    session.Bridge,
		ClientID:  session.ClientID,
		PeerName:  session.PeerName,
		Accounts:  append([]string(nil), session.Accounts...),
		ChainID:   session.ChainID,
		CreatedAt: parseTime(session.CreatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
