package model

import "fmt"

// TipRecord is one entry of the payment history, rebuilt from a TipReceived log.
type TipRecord struct {
	ID              string `json:"id"`
	Tipper          string `json:"tipper"`
	StaffName       string `json:"staffName"`
	Message         string `json:"message"`
	Amount          string `json:"amount"`
	AmountWei       string `json:"amountWei"`
	TransactionHash string `json:"transactionHash"`
	BlockNumber     uint64 `json:"blockNumber"`
	Timestamp       int64  `json:"timestamp"`
}

// TipRecordID builds the record id from the transaction hash and log position.
func TipRecordID(txHash string, logIndex uint) string {
	return fmt.Sprintf("%s-%d", txHash, logIndex)
}
