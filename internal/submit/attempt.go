package submit

import (
	"github.com/ethereum/go-ethereum/common"

	"tipjar/internal/apperr"
)

// Status is the phase of a tip attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusSending
	StatusMining
	StatusSuccess
	StatusError
)

var statusNames = map[Status]string{
	StatusIdle:       "idle",
	StatusConnecting: "connecting",
	StatusSending:    "sending",
	StatusMining:     "mining",
	StatusSuccess:    "success",
	StatusError:      "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Attempt is one tip submission. Mining and Success always carry a hash;
// Error carries a hash only when the transaction was broadcast.
// The zero value is Idle.
type Attempt struct {
	status Status
	hash   common.Hash
	hashed bool
	err    *apperr.Error
}

func connecting() Attempt { return Attempt{status: StatusConnecting} }

func sending() Attempt { return Attempt{status: StatusSending} }

func mining(hash common.Hash) Attempt {
	return Attempt{status: StatusMining, hash: hash, hashed: true}
}

func succeeded(hash common.Hash) Attempt {
	return Attempt{status: StatusSuccess, hash: hash, hashed: true}
}

func failed(err *apperr.Error) Attempt {
	return Attempt{status: StatusError, err: err}
}

func failedAfterBroadcast(err *apperr.Error, hash common.Hash) Attempt {
	return Attempt{status: StatusError, hash: hash, hashed: true, err: err}
}

func (a Attempt) Status() Status { return a.status }

// TxHash returns the transaction hash once one was issued.
func (a Attempt) TxHash() (common.Hash, bool) {
	return a.hash, a.hashed
}

// Err returns the failure of an Error attempt, nil otherwise.
func (a Attempt) Err() error {
	if a.err == nil {
		return nil
	}
	return a.err
}

// Kind returns the error kind of an Error attempt.
func (a Attempt) Kind() apperr.Kind {
	if a.err == nil {
		return apperr.KindUnknown
	}
	return a.err.Kind
}

// Terminal reports whether the attempt has settled.
func (a Attempt) Terminal() bool {
	return a.status == StatusSuccess || a.status == StatusError
}

// Message is a one-line user-facing description of the attempt.
func (a Attempt) Message() string {
	switch a.status {
	case StatusConnecting:
		return "Connecting wallet..."
	case StatusSending:
		return "Confirm the transaction in your wallet..."
	case StatusMining:
		return "Waiting for confirmation of " + a.hash.Hex()
	case StatusSuccess:
		return "Tip sent! Transaction " + a.hash.Hex()
	case StatusError:
		return a.err.Message
	default:
		return ""
	}
}
