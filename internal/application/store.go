package application

import (
	"math/big"
	"sync"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
)

type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseReady        Phase = "ready"
	PhaseStale        Phase = "stale"
	PhaseSubmitting   Phase = "submitting"
	PhaseFailed       Phase = "failed"
)

// Snapshot is a point-in-time copy of the billboard state. Mutating it has
// no effect on the store.
type Snapshot struct {
	Phase   Phase
	Account domain.Address
	ChainID uint64
	Channel domain.ChannelType

	Artifact *domain.Artifact
	History  []domain.UpdateRecord

	// ProposedPrice is the minimum viable next bid, Artifact.Price + 1.
	ProposedPrice *big.Int

	Pending       bool
	PendingTxHash string
	LastError     error

	Version uint64
}

func (s Snapshot) Connected() bool {
	return !s.Account.Empty() && s.Channel != domain.ChannelNone
}

func (s Snapshot) CurrentPrice() *big.Int {
	if s.Artifact == nil || s.Artifact.Price == nil {
		return nil
	}
	return new(big.Int).Set(s.Artifact.Price)
}

// Ranked splits History into the current record and the previous ones,
// highest price first.
func (s Snapshot) Ranked() (*domain.UpdateRecord, []domain.UpdateRecord) {
	return domain.RankHistory(s.History)
}

func (s Snapshot) clone() Snapshot {
	clone := s
	if s.Artifact != nil {
		artifact := s.Artifact.Clone()
		clone.Artifact = &artifact
	}
	if s.History != nil {
		clone.History = make([]domain.UpdateRecord, len(s.History))
		for i, record := range s.History {
			clone.History[i] = record.Clone()
		}
	}
	if s.ProposedPrice != nil {
		clone.ProposedPrice = new(big.Int).Set(s.ProposedPrice)
	}
	return clone
}

// StateStore holds the billboard state. Reads and subscriptions are open to
// anyone; writes are unexported so only the SyncController mutates it.
type StateStore struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   Snapshot

	subMu       sync.Mutex
	subscribers map[uint64]func(Snapshot)
	nextSubID   uint64
}

func NewStateStore() *StateStore {
	return &StateStore{
		state: Snapshot{
			Phase:   PhaseInitializing,
			Channel: domain.ChannelNone,
		},
		subscribers: map[uint64]func(Snapshot){},
	}
}

func (s *StateStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.clone()
}

// Subscribe registers fn for every state change. fn runs on the writer's
// goroutine and must not block.
func (s *StateStore) Subscribe(fn func(Snapshot)) ports.Unsubscribe {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subscribers, id)
		})
	}
}

func (s *StateStore) update(mutate func(*Snapshot)) Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	mutate(&s.state)
	if s.state.Account.Empty() || s.state.Channel == "" || s.state.Channel == domain.ChannelNone {
		s.state.Account = ""
		s.state.ChainID = 0
		s.state.Channel = domain.ChannelNone
	}
	s.state.Version++
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.subMu.Lock()
	subscribers := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot.clone())
	}

	return snapshot
}
