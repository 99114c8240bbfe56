package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TipEvent is the decoded TipReceived payload with its positional fields.
type TipEvent struct {
	Tipper      common.Address
	Recipient   common.Address
	StaffName   string
	Message     string
	Amount      *big.Int
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
}
