package history

import (
	"github.com/ethereum/go-ethereum/core/types"

	"tipjar/internal/model"
	"tipjar/internal/units"
)

// buildDecodeError keeps the position of a skipped log and why it was skipped.
func buildDecodeError(log types.Log, err error) model.DecodeError {
	topic0 := ""
	if len(log.Topics) > 0 {
		topic0 = log.Topics[0].Hex()
	}
	return model.DecodeError{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topic0:      topic0,
		Error:       err.Error(),
	}
}

func buildTipRecord(event model.TipEvent, timestampMs int64) model.TipRecord {
	txHash := event.TxHash.Hex()
	return model.TipRecord{
		ID:              model.TipRecordID(txHash, event.LogIndex),
		Tipper:          event.Tipper.Hex(),
		StaffName:       event.StaffName,
		Message:         event.Message,
		Amount:          units.FormatEtherDisplay(event.Amount),
		AmountWei:       event.Amount.String(),
		TransactionHash: txHash,
		BlockNumber:     event.BlockNumber,
		Timestamp:       timestampMs,
	}
}
