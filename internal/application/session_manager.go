package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/charmbracelet/log"
)

var (
	ErrPairingInProgress = errors.New("remote pairing already in progress")
	ErrChannelConflict   = errors.New("already connected through another channel")
)

type PairingHandler func(domain.Pairing)

// SessionManager owns both wallet channels. Only one channel is
// authoritative at a time: the first to connect wins and the other is
// ignored until the active one disconnects.
type SessionManager struct {
	injected ports.InjectedProvider
	remote   ports.RemoteSessionProtocol
	sessions ports.SessionRepository
	clock    ports.Clock
	logger   *log.Logger

	emitMu sync.Mutex

	mu            sync.Mutex
	account       domain.Address
	chainID       uint64
	channel       domain.ChannelType
	remoteSession domain.RemoteSession
	epoch         uint64
	started       bool
	closed        bool
	pairing       bool
	cancelPairing context.CancelFunc
	listeners     map[domain.ChannelType]ports.Unsubscribe
	subscribers   map[uint64]func(domain.ConnectivityEvent)
	nextSubID     uint64
}

type SessionManagerConfig struct {
	Injected ports.InjectedProvider
	Remote   ports.RemoteSessionProtocol
	Sessions ports.SessionRepository
	Clock    ports.Clock
	Logger   *log.Logger
}

func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	return &SessionManager{
		injected:    cfg.Injected,
		remote:      cfg.Remote,
		sessions:    cfg.Sessions,
		clock:       cfg.Clock,
		logger:      cfg.Logger.WithPrefix("session"),
		channel:     domain.ChannelNone,
		listeners:   map[domain.ChannelType]ports.Unsubscribe{},
		subscribers: map[uint64]func(domain.ConnectivityEvent){},
	}
}

func (m *SessionManager) Current() domain.ConnectivityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.currentLocked(domain.ConnectivityUpdate)
}

func (m *SessionManager) RemoteSession() (domain.RemoteSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.channel != domain.ChannelRemoteSession || !m.remoteSession.Connected() {
		return domain.RemoteSession{}, false
	}
	return m.remoteSession, true
}

func (m *SessionManager) HasInjectedProvider() bool {
	return m.injected != nil
}

func (m *SessionManager) Subscribe(fn func(domain.ConnectivityEvent)) ports.Unsubscribe {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subscribers, id)
		})
	}
}

// Start resumes a persisted remote session, or adopts an account the
// injected wallet has already authorized. It never prompts the user.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	if m.sessions != nil && m.remote != nil {
		session, err := m.sessions.Load(ctx)
		switch {
		case err == nil && session.Connected():
			if err := m.adoptRemote(ctx, session); err != nil {
				m.logger.Warn("resume remote session", "topic", session.Topic, "err", err)
			} else {
				m.logger.Info("resumed remote session", "account", session.Account(), "topic", session.Topic)
				return nil
			}
		case err != nil && !errors.Is(err, domain.ErrSessionNotFound):
			m.logger.Warn("load remote session", "err", err)
		}
	}

	if m.injected == nil {
		return nil
	}

	accounts, err := m.injected.Accounts(ctx)
	if err != nil {
		m.logger.Debug("query injected accounts", "err", err)
		return nil
	}
	if len(accounts) == 0 {
		m.logger.Debug("no authorized injected account")
		return nil
	}

	chainID, err := m.injected.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%w: injected chain id: %w", domain.ErrSessionError, err)
	}

	if _, err := m.adopt(ctx, domain.ChannelInjected, accounts, chainID); err != nil && !errors.Is(err, ErrChannelConflict) {
		return err
	}

	return nil
}

func (m *SessionManager) ConnectInjected(ctx context.Context) (domain.ConnectivityEvent, error) {
	if m.injected == nil {
		return domain.ConnectivityEvent{}, domain.ErrNoProviderAvailable
	}
	if err := m.checkConflict(domain.ChannelInjected); err != nil {
		return domain.ConnectivityEvent{}, err
	}

	accounts, err := m.injected.RequestAccounts(ctx)
	if err != nil {
		return domain.ConnectivityEvent{}, fmt.Errorf("request injected accounts: %w", err)
	}
	if accounts == nil {
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: injected wallet returned no accounts array", domain.ErrSessionError)
	}
	if len(accounts) == 0 {
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: injected wallet authorized no accounts", domain.ErrSessionError)
	}

	chainID, err := m.injected.ChainID(ctx)
	if err != nil {
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: injected chain id: %w", domain.ErrSessionError, err)
	}

	return m.adopt(ctx, domain.ChannelInjected, accounts, chainID)
}

// ConnectRemote pairs with a remote wallet. onPairing receives the pairing
// URI to show the user while approval is pending. A connected remote
// session makes this a no-op.
func (m *SessionManager) ConnectRemote(ctx context.Context, onPairing PairingHandler) (domain.ConnectivityEvent, error) {
	if m.remote == nil {
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: remote sessions are not configured, set bridge_url", domain.ErrSessionError)
	}

	m.mu.Lock()
	if m.channel == domain.ChannelRemoteSession && m.remoteSession.Connected() {
		current := m.currentLocked(domain.ConnectivityUpdate)
		m.mu.Unlock()
		return current, nil
	}
	if m.pairing {
		m.mu.Unlock()
		return domain.ConnectivityEvent{}, ErrPairingInProgress
	}
	if m.closed {
		m.mu.Unlock()
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: session manager closed", domain.ErrSessionError)
	}
	// Disconnect and Close abandon the handshake.
	ctx, cancel := context.WithCancel(ctx)
	m.pairing = true
	m.cancelPairing = cancel
	m.mu.Unlock()

	defer func() {
		cancel()
		m.mu.Lock()
		m.pairing = false
		m.cancelPairing = nil
		m.mu.Unlock()
	}()

	if err := m.checkConflict(domain.ChannelRemoteSession); err != nil {
		return domain.ConnectivityEvent{}, err
	}

	pairing, err := m.remote.Pair(ctx)
	if err != nil {
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: start pairing: %w", domain.ErrSessionError, err)
	}
	if onPairing != nil {
		onPairing(pairing)
	}

	session, err := m.remote.AwaitApproval(ctx, pairing)
	if err != nil {
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: await approval: %w", domain.ErrSessionError, err)
	}
	if err := ctx.Err(); err != nil {
		// Approved after the user gave up: the wallet side must not keep it.
		if killErr := m.remote.Kill(context.WithoutCancel(ctx), session); killErr != nil {
			m.logger.Warn("kill abandoned remote session", "topic", session.Topic, "err", killErr)
		}
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: await approval: %w", domain.ErrSessionError, err)
	}
	if session.Accounts == nil {
		return domain.ConnectivityEvent{}, fmt.Errorf("%w: approval missing accounts", domain.ErrSessionError)
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = m.clock.Now()
	}

	if err := m.adoptRemote(ctx, session); err != nil {
		if errors.Is(err, ErrChannelConflict) {
			if killErr := m.remote.Kill(ctx, session); killErr != nil {
				m.logger.Warn("kill conflicting remote session", "topic", session.Topic, "err", killErr)
			}
		}
		return domain.ConnectivityEvent{}, err
	}

	if m.sessions != nil {
		if err := m.sessions.Save(ctx, session); err != nil {
			m.logger.Warn("persist remote session", "topic", session.Topic, "err", err)
		}
	}

	return m.Current(), nil
}

// Disconnect abandons a pending pairing, tears down the active channel and
// detaches its listeners, so late events from it are dropped.
func (m *SessionManager) Disconnect(ctx context.Context) error {
	var (
		active  domain.ChannelType
		session domain.RemoteSession
		detach  []ports.Unsubscribe
	)

	m.abandonPairing()
	m.transition(func() (domain.ConnectivityEvent, bool) {
		active = m.channel
		session = m.remoteSession
		if active == domain.ChannelNone {
			return domain.ConnectivityEvent{}, false
		}

		detach = m.detachLocked()
		m.clearLocked()
		return domain.ConnectivityEvent{Kind: domain.ConnectivityDisconnect, Channel: active}, true
	})

	for _, unsubscribe := range detach {
		unsubscribe()
	}

	if active != domain.ChannelRemoteSession || session.Topic == "" {
		return nil
	}

	var errs []error
	if err := m.remote.Kill(ctx, session); err != nil {
		errs = append(errs, fmt.Errorf("kill remote session: %w", err))
	}
	if m.sessions != nil {
		if err := m.sessions.Delete(ctx); err != nil {
			errs = append(errs, fmt.Errorf("delete persisted session: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Close detaches every listener and subscriber without touching the
// persisted session, so the next run can resume it.
func (m *SessionManager) Close() {
	m.mu.Lock()
	m.closed = true
	m.epoch++
	detach := m.detachLocked()
	m.subscribers = map[uint64]func(domain.ConnectivityEvent){}
	m.mu.Unlock()

	m.abandonPairing()
	for _, unsubscribe := range detach {
		unsubscribe()
	}
}

func (m *SessionManager) abandonPairing() {
	m.mu.Lock()
	cancel := m.cancelPairing
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (m *SessionManager) adoptRemote(ctx context.Context, session domain.RemoteSession) error {
	var accepted bool
	var epoch uint64
	m.transition(func() (domain.ConnectivityEvent, bool) {
		ev, ok := m.acceptLocked(domain.ChannelRemoteSession, session.Accounts, session.ChainID)
		if ok {
			m.remoteSession = session
			accepted = true
			epoch = m.epoch
		}
		return ev, ok
	})
	if !accepted {
		return fmt.Errorf("%w: %s is active", ErrChannelConflict, m.Current().Channel.Label())
	}

	unsubscribe, err := m.remote.Subscribe(ctx, session, m.channelHandler(domain.ChannelRemoteSession, epoch))
	if err != nil {
		m.logger.Warn("subscribe to remote session events", "topic", session.Topic, "err", err)
		return nil
	}
	m.attach(domain.ChannelRemoteSession, epoch, unsubscribe)

	return nil
}

func (m *SessionManager) adopt(ctx context.Context, channel domain.ChannelType, accounts []string, chainID uint64) (domain.ConnectivityEvent, error) {
	var (
		result   domain.ConnectivityEvent
		accepted bool
		epoch    uint64
	)
	m.transition(func() (domain.ConnectivityEvent, bool) {
		ev, ok := m.acceptLocked(channel, accounts, chainID)
		accepted = ok
		epoch = m.epoch
		result = m.currentLocked(domain.ConnectivityUpdate)
		return ev, ok
	})
	if !accepted {
		return result, fmt.Errorf("%w: %s is active", ErrChannelConflict, result.Channel.Label())
	}

	if channel == domain.ChannelInjected && m.injected != nil {
		unsubscribe, err := m.injected.Subscribe(ctx, m.channelHandler(channel, epoch))
		if err != nil {
			m.logger.Warn("subscribe to injected wallet events", "err", err)
		} else {
			m.attach(channel, epoch, unsubscribe)
		}
	}

	return result, nil
}

func (m *SessionManager) channelHandler(channel domain.ChannelType, epoch uint64) ports.SessionEventHandler {
	return func(event domain.SessionEvent) {
		m.handleChannelEvent(channel, epoch, event)
	}
}

func (m *SessionManager) handleChannelEvent(channel domain.ChannelType, epoch uint64, event domain.SessionEvent) {
	if err := event.Validate(); err != nil {
		m.logger.Error("malformed wallet event", "channel", channel, "err", err)
		m.transition(func() (domain.ConnectivityEvent, bool) {
			if m.epoch != epoch || m.closed {
				return domain.ConnectivityEvent{}, false
			}
			return domain.ConnectivityEvent{Kind: domain.ConnectivityError, Channel: channel, Err: err}, true
		})
		return
	}

	var (
		detach        []ports.Unsubscribe
		dropPersisted bool
	)
	m.transition(func() (domain.ConnectivityEvent, bool) {
		if m.epoch != epoch || m.closed {
			m.logger.Debug("drop stale wallet event", "channel", channel, "kind", event.Kind)
			return domain.ConnectivityEvent{}, false
		}

		if event.Kind == domain.SessionEventDisconnect || (event.Kind == domain.SessionEventUpdate && len(event.Accounts) == 0) {
			if m.channel != channel {
				return domain.ConnectivityEvent{}, false
			}
			dropPersisted = channel == domain.ChannelRemoteSession
			detach = m.detachLocked()
			m.clearLocked()
			return domain.ConnectivityEvent{Kind: domain.ConnectivityDisconnect, Channel: channel}, true
		}

		ev, ok := m.acceptLocked(channel, event.Accounts, event.ChainID)
		if ok && channel == domain.ChannelRemoteSession {
			m.remoteSession.Accounts = append([]string(nil), event.Accounts...)
			if event.ChainID != 0 {
				m.remoteSession.ChainID = event.ChainID
			}
		}
		if !ok {
			m.logger.Debug("ignore event from inactive channel", "channel", channel, "active", m.channel)
		}
		return ev, ok
	})

	for _, unsubscribe := range detach {
		unsubscribe()
	}
	if dropPersisted && m.sessions != nil {
		if err := m.sessions.Delete(context.Background()); err != nil {
			m.logger.Warn("delete persisted session", "err", err)
		}
	}
}

// acceptLocked applies a connect or update from channel unless another
// channel already holds the account.
func (m *SessionManager) acceptLocked(channel domain.ChannelType, accounts []string, chainID uint64) (domain.ConnectivityEvent, bool) {
	if m.closed {
		return domain.ConnectivityEvent{}, false
	}
	if !m.account.Empty() && m.channel != channel {
		return domain.ConnectivityEvent{}, false
	}

	account := domain.SessionEvent{Accounts: accounts}.FirstAccount()
	if account.Empty() {
		return domain.ConnectivityEvent{}, false
	}

	kind := domain.ConnectivityUpdate
	if m.account.Empty() {
		kind = domain.ConnectivityConnect
	}
	m.account = account
	m.channel = channel
	if chainID != 0 {
		m.chainID = chainID
	}

	return m.currentLocked(kind), true
}

func (m *SessionManager) checkConflict(channel domain.ChannelType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.account.Empty() && m.channel != channel {
		return fmt.Errorf("%w: %s is active", ErrChannelConflict, m.channel.Label())
	}
	return nil
}

func (m *SessionManager) attach(channel domain.ChannelType, epoch uint64, unsubscribe ports.Unsubscribe) {
	m.mu.Lock()
	if m.epoch != epoch || m.closed || m.channel != channel {
		m.mu.Unlock()
		unsubscribe()
		return
	}
	if previous, ok := m.listeners[channel]; ok {
		defer previous()
	}
	m.listeners[channel] = unsubscribe
	m.mu.Unlock()
}

func (m *SessionManager) detachLocked() []ports.Unsubscribe {
	detach := make([]ports.Unsubscribe, 0, len(m.listeners))
	for channel, unsubscribe := range m.listeners {
		detach = append(detach, unsubscribe)
		delete(m.listeners, channel)
	}
	return detach
}

func (m *SessionManager) clearLocked() {
	m.account = ""
	m.chainID = 0
	m.channel = domain.ChannelNone
	m.remoteSession = domain.RemoteSession{}
	m.epoch++
}

func (m *SessionManager) currentLocked(kind domain.ConnectivityKind) domain.ConnectivityEvent {
	return domain.ConnectivityEvent{
		Kind:    kind,
		Account: m.account,
		ChainID: m.chainID,
		Channel: m.channel,
	}
}

// transition runs fn under the state lock and, when fn reports a change,
// delivers the event to subscribers in order.
func (m *SessionManager) transition(fn func() (domain.ConnectivityEvent, bool)) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	event, changed := fn()
	subscribers := make([]func(domain.ConnectivityEvent), 0, len(m.subscribers))
	for _, subscriber := range m.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, subscriber := range subscribers {
		subscriber(event)
	}
}
