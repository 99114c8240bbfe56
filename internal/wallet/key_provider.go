package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"
)

// Backend is the node surface a KeyProvider signs against. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// LoadKey reads a private key from a hex string or, when keystorePath is set,
// from an encrypted keystore file.
func LoadKey(privateKeyHex, keystorePath, passphrase string) (*ecdsa.PrivateKey, error) {
	if keystorePath != "" {
		raw, err := os.ReadFile(keystorePath)
		if err != nil {
			return nil, fmt.Errorf("read keystore: %w", err)
		}
		key, err := keystore.DecryptKey(raw, passphrase)
		if err != nil {
			return nil, fmt.Errorf("decrypt keystore: %w", err)
		}
		return key.PrivateKey, nil
	}

	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return nil, errors.New("private key or keystore is required")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// KeyProvider is a Provider backed by a local key. Account access and every
// signature go through the Approver.
type KeyProvider struct {
	backend  Backend
	key      *ecdsa.PrivateKey
	address  common.Address
	approver Approver
	logger   *zap.Logger

	feed event.Feed

	mu        sync.Mutex
	unlocked  bool
	lastChain *big.Int
}

func NewKeyProvider(backend Backend, key *ecdsa.PrivateKey, approver Approver, logger *zap.Logger) *KeyProvider {
	if approver == nil {
		approver = AutoApprover{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyProvider{
		backend:  backend,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		approver: approver,
		logger:   logger,
	}
}

// Address returns the signing account.
func (p *KeyProvider) Address() common.Address {
	return p.address
}

func (p *KeyProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	unlocked := p.unlocked
	p.mu.Unlock()
	if unlocked {
		return []common.Address{p.address}, nil
	}

	ok, err := p.approver.Approve(ctx, Prompt{Kind: PromptConnect, Account: p.address})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionRejected, err)
	}
	if !ok {
		return nil, ErrConnectionRejected
	}

	p.mu.Lock()
	p.unlocked = true
	p.mu.Unlock()

	accounts := []common.Address{p.address}
	p.feed.Send(Notification{Kind: AccountsChanged, Accounts: accounts})
	return accounts, nil
}

func (p *KeyProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.backend.ChainID(ctx)
}

func (p *KeyProvider) SendTransaction(ctx context.Context, req TxRequest) (*types.Transaction, error) {
	p.mu.Lock()
	unlocked := p.unlocked
	p.mu.Unlock()
	if !unlocked {
		return nil, ErrConnectionRejected
	}
	if req.From != (common.Address{}) && req.From != p.address {
		return nil, fmt.Errorf("account %s is not managed by this wallet", req.From.Hex())
	}

	chainID, err := p.backend.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(p.key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	opts.Value = req.Value

	sign := opts.Signer
	opts.Signer = func(from common.Address, tx *types.Transaction) (*types.Transaction, error) {
		ok, err := p.approver.Approve(ctx, Prompt{
			Kind:    PromptTransaction,
			Account: from,
			To:      req.To,
			Value:   tx.Value(),
			Gas:     tx.Gas(),
			ChainID: chainID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransactionRejected, err)
		}
		if !ok {
			return nil, ErrTransactionRejected
		}
		return sign(from, tx)
	}

	contract := bind.NewBoundContract(req.To, abi.ABI{}, p.backend, p.backend, p.backend)
	tx, err := contract.RawTransact(opts, req.Data)
	if err != nil {
		return nil, err
	}
	p.logger.Info("transaction broadcast", zap.String("tx_hash", tx.Hash().Hex()), zap.Uint64("nonce", tx.Nonce()))
	return tx, nil
}

func (p *KeyProvider) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, p.backend, tx)
}

func (p *KeyProvider) Subscribe(ch chan<- Notification) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Lock revokes account access and announces the disconnect.
func (p *KeyProvider) Lock() {
	p.mu.Lock()
	p.unlocked = false
	p.mu.Unlock()
	p.feed.Send(Notification{Kind: AccountsChanged})
}

// Watch polls the node's chain id and publishes ChainChanged when it moves.
// It returns when ctx is done.
func (p *KeyProvider) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollChain(ctx)
		}
	}
}

func (p *KeyProvider) pollChain(ctx context.Context) {
	chainID, err := p.backend.ChainID(ctx)
	if err != nil {
		p.logger.Debug("poll chain id failed", zap.Error(err))
		return
	}

	p.mu.Lock()
	changed := p.lastChain != nil && p.lastChain.Cmp(chainID) != 0
	p.lastChain = new(big.Int).Set(chainID)
	p.mu.Unlock()

	if changed {
		p.logger.Info("node network changed", zap.String("chain_id", chainID.String()))
		p.feed.Send(Notification{Kind: ChainChanged, ChainID: chainID})
	}
}
