package domain

import (
	"fmt"
	"strings"
	"time"
)

type Address string

func (a Address) Empty() bool {
	return strings.TrimSpace(string(a)) == ""
}

// Short renders 0x1234…abcd for display.
func (a Address) Short() string {
	s := string(a)
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

type ChannelType string

const (
	ChannelNone          ChannelType = "none"
	ChannelInjected      ChannelType = "injected"
	ChannelRemoteSession ChannelType = "remote_session"
)

func (c ChannelType) Valid() bool {
	switch c {
	case ChannelNone, ChannelInjected, ChannelRemoteSession:
		return true
	default:
		return false
	}
}

func (c ChannelType) Label() string {
	switch c {
	case ChannelInjected:
		return "injected wallet"
	case ChannelRemoteSession:
		return "remote session"
	case ChannelNone, "":
		return "not connected"
	default:
		return string(c)
	}
}

type ConnectivityKind string

const (
	ConnectivityConnect    ConnectivityKind = "connect"
	ConnectivityUpdate     ConnectivityKind = "update"
	ConnectivityDisconnect ConnectivityKind = "disconnect"
	ConnectivityError      ConnectivityKind = "error"
)

// ConnectivityEvent is what the session manager tells its subscribers.
type ConnectivityEvent struct {
	Kind    ConnectivityKind
	Account Address
	ChainID uint64
	Channel ChannelType
	Err     error
}

type SessionEventKind string

const (
	SessionEventConnect    SessionEventKind = "connect"
	SessionEventUpdate     SessionEventKind = "session_update"
	SessionEventDisconnect SessionEventKind = "disconnect"
)

// SessionEvent is a raw notification from a wallet channel. A nil Accounts
// slice on a connect or update event means the payload was malformed.
type SessionEvent struct {
	Kind     SessionEventKind
	Accounts []string
	ChainID  uint64
}

func (e SessionEvent) Validate() error {
	switch e.Kind {
	case SessionEventConnect, SessionEventUpdate:
		if e.Accounts == nil {
			return fmt.Errorf("%w: %s event missing accounts", ErrSessionError, e.Kind)
		}
	case SessionEventDisconnect:
	default:
		return fmt.Errorf("%w: unknown event %q", ErrSessionError, e.Kind)
	}
	return nil
}

func (e SessionEvent) FirstAccount() Address {
	if len(e.Accounts) == 0 {
		return ""
	}
	return Address(strings.TrimSpace(e.Accounts[0]))
}

// Pairing is an unapproved remote handshake. URI is what the user scans.
type Pairing struct {
	Topic    string
	Key      string
	Bridge   string
	ClientID string
	URI      string
}

type RemoteSession struct {
	Topic     string
	Key       string
	Bridge    string
	ClientID  string
	PeerName  string
	Accounts  []string
	ChainID   uint64
	CreatedAt time.Time
}

func (s RemoteSession) Connected() bool {
	return s.Topic != "" && len(s.Accounts) > 0 && !Address(s.Accounts[0]).Empty()
}

func (s RemoteSession) Account() Address {
	if len(s.Accounts) == 0 {
		return ""
	}
	return Address(s.Accounts[0])
}
