package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"
)

// State is a snapshot of the wallet session.
type State struct {
	Account   *common.Address
	ChainID   *big.Int
	Connected bool
}

func (s State) clone() State {
	out := State{Connected: s.Connected}
	if s.Account != nil {
		account := *s.Account
		out.Account = &account
	}
	if s.ChainID != nil {
		out.ChainID = new(big.Int).Set(s.ChainID)
	}
	return out
}

// Session owns a Provider and tracks the active account and network.
// Provider notifications replace the state atomically; callers read snapshots.
type Session struct {
	provider Provider
	logger   *zap.Logger

	mu    sync.RWMutex
	state State

	sub       event.Subscription
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(provider Provider, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{provider: provider, logger: logger}
}

// Provider returns the underlying wallet provider.
func (s *Session) Provider() Provider {
	return s.provider
}

// Start reads the current network and subscribes to provider notifications.
// Close must be called to release the subscription.
func (s *Session) Start(ctx context.Context) error {
	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("read chain id: %w", err)
	}

	s.mu.Lock()
	s.state.ChainID = new(big.Int).Set(chainID)
	s.mu.Unlock()

	notifications := make(chan Notification, 16)
	s.sub = s.provider.Subscribe(notifications)
	s.done = make(chan struct{})
	go s.loop(notifications)
	return nil
}

func (s *Session) loop(notifications <-chan Notification) {
	defer close(s.done)
	for {
		select {
		case n := <-notifications:
			s.apply(n)
		case err, ok := <-s.sub.Err():
			if ok && err != nil {
				s.logger.Warn("wallet subscription ended", zap.Error(err))
			}
			return
		}
	}
}

func (s *Session) apply(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch n.Kind {
	case AccountsChanged:
		if len(n.Accounts) == 0 {
			s.state.Account = nil
			s.state.Connected = false
			s.logger.Info("wallet disconnected")
			return
		}
		account := n.Accounts[0]
		s.state.Account = &account
		s.state.Connected = true
		s.logger.Info("wallet account changed", zap.String("account", account.Hex()))
	case ChainChanged:
		if n.ChainID == nil {
			return
		}
		s.state.ChainID = new(big.Int).Set(n.ChainID)
		s.logger.Info("wallet network changed", zap.String("chain_id", n.ChainID.String()))
	}
}

// Connect requests account access and refreshes the network.
func (s *Session) Connect(ctx context.Context) error {
	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		if errors.Is(err, ErrConnectionRejected) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrConnectionRejected, err)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("%w: %w", ErrConnectionRejected, ErrNoAccounts)
	}

	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("read chain id: %w", err)
	}

	account := accounts[0]
	s.mu.Lock()
	s.state.Account = &account
	s.state.ChainID = new(big.Int).Set(chainID)
	s.state.Connected = true
	s.mu.Unlock()

	s.logger.Info("wallet connected", zap.String("account", account.Hex()), zap.String("chain_id", chainID.String()))
	return nil
}

// State returns a copy of the current session state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Close releases the provider subscription. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.sub == nil {
			return
		}
		s.sub.Unsubscribe()
		<-s.done
	})
}
