// Package wallettest provides an in-memory wallet.Provider.
package wallettest

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"tipjar/internal/wallet"
)

// Provider records every request and answers from its fields.
type Provider struct {
	Accounts   []common.Address
	Chain      *big.Int
	RequestErr error
	SendErr    error
	WaitErr    error
	// ReceiptStatus defaults to types.ReceiptStatusSuccessful.
	ReceiptStatus *uint64

	mu           sync.Mutex
	feed         event.Feed
	requestCalls int
	sent         []wallet.TxRequest
	nonce        uint64
}

func (p *Provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	p.requestCalls++
	p.mu.Unlock()
	if p.RequestErr != nil {
		return nil, p.RequestErr
	}
	return p.Accounts, nil
}

func (p *Provider) ChainID(ctx context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Chain == nil {
		return nil, errors.New("no chain")
	}
	return new(big.Int).Set(p.Chain), nil
}

func (p *Provider) SendTransaction(ctx context.Context, req wallet.TxRequest) (*types.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, req)
	if p.SendErr != nil {
		return nil, p.SendErr
	}
	to := req.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    p.nonce,
		To:       &to,
		Value:    req.Value,
		Gas:      100000,
		GasPrice: big.NewInt(1),
		Data:     req.Data,
	})
	p.nonce++
	return tx, nil
}

func (p *Provider) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if p.WaitErr != nil {
		return nil, p.WaitErr
	}
	status := types.ReceiptStatusSuccessful
	if p.ReceiptStatus != nil {
		status = *p.ReceiptStatus
	}
	return &types.Receipt{Status: status, TxHash: tx.Hash(), BlockNumber: big.NewInt(1)}, nil
}

func (p *Provider) Subscribe(ch chan<- wallet.Notification) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Emit publishes n to every subscriber and returns how many received it.
func (p *Provider) Emit(n wallet.Notification) int {
	if n.Kind == wallet.ChainChanged && n.ChainID != nil {
		p.mu.Lock()
		p.Chain = new(big.Int).Set(n.ChainID)
		p.mu.Unlock()
	}
	return p.feed.Send(n)
}

// Sent returns the transaction requests seen so far.
func (p *Provider) Sent() []wallet.TxRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]wallet.TxRequest, len(p.sent))
	copy(out, p.sent)
	return out
}

// RequestCalls returns how many times account access was requested.
func (p *Provider) RequestCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestCalls
}
