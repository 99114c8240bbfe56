// Package tipjartest builds TipReceived logs for tests.
package tipjartest

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"tipjar/internal/tipjar"
)

// Tip describes one TipReceived emission.
type Tip struct {
	Contract    common.Address
	Tipper      common.Address
	Recipient   common.Address
	StaffName   string
	Message     string
	Amount      *big.Int
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
}

// BuildLog encodes tip as a mined TipReceived log. It panics on ABI errors.
func BuildLog(tip Tip) types.Log {
	parsed, err := tipjar.ABI()
	if err != nil {
		panic(err)
	}
	event := parsed.Events[tipjar.EventTipReceived]

	amount := tip.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	data, err := event.Inputs.NonIndexed().Pack(tip.StaffName, tip.Message, amount)
	if err != nil {
		panic(err)
	}

	return types.Log{
		Address: tip.Contract,
		Topics: []common.Hash{
			event.ID,
			common.BytesToHash(tip.Tipper.Bytes()),
			common.BytesToHash(tip.Recipient.Bytes()),
		},
		Data:        data,
		BlockNumber: tip.BlockNumber,
		BlockHash:   common.BigToHash(new(big.Int).SetUint64(tip.BlockNumber + 1)),
		TxHash:      tip.TxHash,
		Index:       tip.LogIndex,
	}
}
