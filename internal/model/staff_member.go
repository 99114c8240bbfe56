package model

import "github.com/ethereum/go-ethereum/common"

// StaffMember is a tip recipient shown in the staff list.
type StaffMember struct {
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
}
