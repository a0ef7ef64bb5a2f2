package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

var ErrControllerClosed = errors.New("sync controller closed")

type SyncControllerConfig struct {
	TokenID *big.Int
	Logger  *log.Logger
}

// SyncController is the only writer of the StateStore. It reconciles wallet
// connectivity and chain reads into the store and gates writes.
type SyncController struct {
	sessions *SessionManager
	gateway  *ContractGateway
	resolver *ProviderResolver
	watcher  ports.UpdateWatcher
	store    *StateStore
	tokenID  *big.Int
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	initialized  bool
	closed       bool
	refetching   bool
	trailing     bool
	submitting   bool
	cancelSubmit context.CancelFunc
	disposers    []ports.Unsubscribe

	// inflight counts refetches started from watcher notices.
	inflight sync.WaitGroup
}

func NewSyncController(
	sessions *SessionManager,
	gateway *ContractGateway,
	resolver *ProviderResolver,
	watcher ports.UpdateWatcher,
	store *StateStore,
	cfg SyncControllerConfig,
) *SyncController {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.TokenID == nil {
		cfg.TokenID = big.NewInt(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SyncController{
		sessions: sessions,
		gateway:  gateway,
		resolver: resolver,
		watcher:  watcher,
		store:    store,
		tokenID:  new(big.Int).Set(cfg.TokenID),
		logger:   cfg.Logger.WithPrefix("sync"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *SyncController) Store() *StateStore {
	return c.store
}

// Init reconciles the session and loads the billboard. The store reaches
// PhaseReady whether or not a wallet is connected and whether or not the
// reads succeed; the returned error reports a failed read. Calling Init
// again is a no-op.
func (c *SyncController) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	owner := c.claimRefetchLocked()
	c.mu.Unlock()

	c.addDisposer(c.sessions.Subscribe(c.handleConnectivity))

	if err := c.sessions.Start(ctx); err != nil {
		c.logger.Warn("resume wallet session", "err", err)
		c.store.update(func(s *Snapshot) { s.LastError = err })
	}
	c.syncAccount()

	if c.watcher != nil {
		stop, err := c.watcher.Watch(c.ctx, c.notify)
		if err != nil {
			c.logger.Warn("watch billboard updates", "err", err)
		} else {
			c.addDisposer(stop)
		}
	}

	if !owner {
		// A refetch already running picks up the initial load as its
		// trailing pass.
		return nil
	}
	// Notices that arrived during the initial load run as one trailing
	// refetch before Init returns.
	return c.refetchLoop(ctx, false)
}

// HandleArtifactUpdated refetches artifact and history after an on-chain
// update. While a refetch runs, further calls collapse into one trailing
// refetch.
func (c *SyncController) HandleArtifactUpdated(ctx context.Context) {
	if !c.claimRefetch() {
		return
	}
	if err := c.refetchLoop(ctx, true); err != nil {
		c.logger.Warn("refetch billboard", "err", err, "retriable", domain.Retriable(err))
	}
}

// notify runs on the watcher goroutine. It never blocks on a refetch, so a
// burst of logs collapses into the running refetch plus one trailing one.
func (c *SyncController) notify(notice domain.UpdateNotice) {
	c.logger.Info("billboard updated on-chain", "block", notice.BlockNumber, "tx", notice.TxHash)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.claimRefetchLocked() {
		return
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		if err := c.refetchLoop(c.ctx, true); err != nil {
			c.logger.Warn("refetch billboard", "err", err, "retriable", domain.Retriable(err))
		}
	}()
}

func (c *SyncController) claimRefetch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.claimRefetchLocked()
}

// claimRefetchLocked reports whether the caller owns the next refetch. A
// refetch already in flight gets a trailing one instead.
func (c *SyncController) claimRefetchLocked() bool {
	if c.closed {
		return false
	}
	if c.refetching {
		c.trailing = true
		return false
	}
	c.refetching = true
	return true
}

// refetchLoop is run by the owner of the refetch. It repeats while notices
// keep arriving and returns the error of the last load.
func (c *SyncController) refetchLoop(ctx context.Context, stale bool) error {
	for {
		if stale {
			c.store.update(func(s *Snapshot) {
				if s.Phase == PhaseReady {
					s.Phase = PhaseStale
				}
			})
		}

		err := c.refresh(ctx)

		c.mu.Lock()
		if c.trailing && !c.closed {
			c.trailing = false
			c.mu.Unlock()
			if err != nil {
				c.logger.Warn("refetch billboard", "err", err, "retriable", domain.Retriable(err))
			}
			stale = true
			continue
		}
		c.refetching = false
		c.trailing = false
		c.mu.Unlock()
		return err
	}
}

// Submit validates form against the last fetched price, sends it through
// the active channel and waits for mining. The store is not updated with
// the new billboard; the watcher's event drives that refetch.
func (c *SyncController) Submit(ctx context.Context, form domain.UpdateForm) (string, error) {
	snapshot := c.store.Snapshot()
	if err := form.Validate(snapshot.CurrentPrice()); err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrControllerClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return "", domain.ErrSubmissionInProgress
	}
	// Disconnect and Close abandon the send and the mining wait.
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	c.submitting = true
	c.cancelSubmit = cancel
	c.mu.Unlock()

	defer func() {
		stop()
		cancel()
		c.mu.Lock()
		c.submitting = false
		c.cancelSubmit = nil
		c.mu.Unlock()
	}()

	signer, err := c.resolver.Signer()
	if err != nil {
		return "", err
	}

	c.store.update(func(s *Snapshot) {
		s.Phase = PhaseSubmitting
		s.Pending = true
		s.PendingTxHash = ""
		s.LastError = nil
	})

	handle, err := c.gateway.SubmitUpdate(ctx, signer, form)
	if err != nil {
		return "", c.failSubmission(err)
	}

	c.store.update(func(s *Snapshot) { s.PendingTxHash = handle.Hash })

	if _, err := handle.Wait(ctx); err != nil {
		return handle.Hash, c.failSubmission(err)
	}

	c.logger.Info("update mined", "hash", handle.Hash)
	c.store.update(func(s *Snapshot) {
		s.Phase = PhaseReady
		s.Pending = false
		s.PendingTxHash = ""
	})

	return handle.Hash, nil
}

func (c *SyncController) ConnectInjected(ctx context.Context) (domain.ConnectivityEvent, error) {
	return c.sessions.ConnectInjected(ctx)
}

func (c *SyncController) ConnectRemote(ctx context.Context, onPairing PairingHandler) (domain.ConnectivityEvent, error) {
	return c.sessions.ConnectRemote(ctx, onPairing)
}

// Disconnect abandons a pending submission and tears down the active
// wallet channel.
func (c *SyncController) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	cancelSubmit := c.cancelSubmit
	c.mu.Unlock()
	if cancelSubmit != nil {
		cancelSubmit()
	}

	return c.sessions.Disconnect(ctx)
}

// Close detaches the controller from sessions and the chain watcher, cancels
// pending waits and returns once watcher-driven refetches have stopped.
// Events that arrive afterwards leave the store untouched.
func (c *SyncController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	disposers := c.disposers
	c.disposers = nil
	c.mu.Unlock()

	for _, dispose := range disposers {
		dispose()
	}
	c.cancel()
	c.inflight.Wait()
}

func (c *SyncController) failSubmission(err error) error {
	c.logger.Error("update failed", "err", err)
	c.store.update(func(s *Snapshot) {
		s.Phase = PhaseFailed
		s.Pending = false
		s.LastError = err
	})
	c.store.update(func(s *Snapshot) {
		s.Phase = PhaseReady
		s.PendingTxHash = ""
	})
	return err
}

func (c *SyncController) refresh(ctx context.Context) error {
	var (
		artifact    domain.Artifact
		history     []domain.UpdateRecord
		artifactErr error
		historyErr  error
		group       errgroup.Group
	)

	group.Go(func() error {
		artifact, artifactErr = c.gateway.FetchArtifact(ctx, c.tokenID)
		return artifactErr
	})
	group.Go(func() error {
		history, historyErr = c.gateway.FetchUpdateHistory(ctx)
		return historyErr
	})
	_ = group.Wait()

	if c.isClosed() {
		return ErrControllerClosed
	}

	readErr := errors.Join(artifactErr, historyErr)
	c.store.update(func(s *Snapshot) {
		if historyErr == nil {
			s.History = history
		}

		if artifactErr == nil {
			if n := len(s.History); n > 0 {
				artifact.TxHash = s.History[n-1].TxHash
			}
			s.Artifact = &artifact
			s.ProposedPrice = domain.NextMinimumBid(artifact.Price)
		}

		s.LastError = readErr
		if s.Phase == PhaseInitializing || s.Phase == PhaseStale {
			s.Phase = PhaseReady
		}
	})

	if readErr != nil {
		return fmt.Errorf("load billboard: %w", readErr)
	}
	return nil
}

func (c *SyncController) handleConnectivity(event domain.ConnectivityEvent) {
	if c.isClosed() {
		return
	}

	c.store.update(func(s *Snapshot) {
		switch event.Kind {
		case domain.ConnectivityConnect, domain.ConnectivityUpdate:
			s.Account = event.Account
			s.ChainID = event.ChainID
			s.Channel = event.Channel
		case domain.ConnectivityDisconnect:
			s.Account = ""
			s.ChainID = 0
			s.Channel = domain.ChannelNone
		case domain.ConnectivityError:
			s.LastError = event.Err
		}
	})
}

// syncAccount copies the session state into the store in case Start
// connected before the subscription observed it.
func (c *SyncController) syncAccount() {
	current := c.sessions.Current()
	snapshot := c.store.Snapshot()
	if current.Account == snapshot.Account && current.Channel == snapshot.Channel {
		return
	}
	c.handleConnectivity(current)
}

func (c *SyncController) addDisposer(dispose ports.Unsubscribe) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		dispose()
		return
	}
	c.disposers = append(c.disposers, dispose)
}

func (c *SyncController) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
