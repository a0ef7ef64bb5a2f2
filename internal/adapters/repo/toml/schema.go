package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Session *sessionSchema `toml:"session,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	Topic     string   `toml:"topic"`
	Key       string   `toml:"key"`
	Bridge    string   `toml:"bridge"`
	ClientID  string   `toml:"client_id"`
	PeerName  string   `toml:"peer_name,omitempty"`
	Accounts  []string `toml:"accounts"`
	ChainID   uint64   `toml:"chain_id"`
	CreatedAt string   `toml:"created_at"`
}
