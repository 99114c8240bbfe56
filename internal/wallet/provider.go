package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var (
	ErrConnectionRejected  = errors.New("connection rejected")
	ErrTransactionRejected = errors.New("transaction rejected")
	ErrNoAccounts          = errors.New("no approved accounts")
)

// NotificationKind tells which part of the wallet state changed.
type NotificationKind int

const (
	AccountsChanged NotificationKind = iota + 1
	ChainChanged
)

func (k NotificationKind) String() string {
	switch k {
	case AccountsChanged:
		return "accounts_changed"
	case ChainChanged:
		return "chain_changed"
	default:
		return "unknown"
	}
}

// Notification is published by a Provider when the active account or network changes.
// An AccountsChanged notification with no accounts means the wallet disconnected.
type Notification struct {
	Kind     NotificationKind
	Accounts []common.Address
	ChainID  *big.Int
}

// TxRequest is a contract call with an attached value transfer.
type TxRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
}

// Provider is the wallet surface used by the session and the tip submitter.
type Provider interface {
	// RequestAccounts asks the wallet owner for account access.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	// SendTransaction signs and broadcasts req after the owner approves it.
	SendTransaction(ctx context.Context, req TxRequest) (*types.Transaction, error)
	// WaitMined blocks until tx has one confirmation.
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Subscribe(ch chan<- Notification) event.Subscription
}
