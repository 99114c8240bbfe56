package model

import "time"

// AttemptRecord is the journal row written when a tip attempt settles.
type AttemptRecord struct {
	ID           string    `json:"id"`
	StaffName    string    `json:"staff_name"`
	Recipient    string    `json:"recipient"`
	AmountWei    string    `json:"amount_wei"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	TxHash       string    `json:"tx_hash,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ChainID      uint64    `json:"chain_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
