package tipjar

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"tipjar/internal/model"
)

var (
	ErrUnexpectedEvent = errors.New("unexpected event")
	ErrIncompleteLog   = errors.New("incomplete log")
)

// Decoder decodes TipReceived logs and packs sendTip calls.
type Decoder struct {
	contractABI abi.ABI
	event       abi.Event
}

// NewDecoder builds a TipJar decoder.
func NewDecoder() (*Decoder, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, fmt.Errorf("parse tipjar abi: %w", err)
	}
	event, ok := parsed.Events[EventTipReceived]
	if !ok {
		return nil, fmt.Errorf("abi has no %s event", EventTipReceived)
	}
	return &Decoder{contractABI: parsed, event: event}, nil
}

// EventID is the topic0 of TipReceived.
func (d *Decoder) EventID() common.Hash {
	return d.event.ID
}

// CanDecode checks if the topic0 is TipReceived.
func (d *Decoder) CanDecode(topic0 common.Hash) bool {
	return topic0 == d.event.ID
}

// Decode converts a TipReceived log into a TipEvent. Logs that are removed,
// pending, or lack a transaction hash are rejected with ErrIncompleteLog.
func (d *Decoder) Decode(log types.Log) (model.TipEvent, error) {
	if len(log.Topics) == 0 {
		return model.TipEvent{}, fmt.Errorf("%w: missing topic0", ErrUnexpectedEvent)
	}
	if !d.CanDecode(log.Topics[0]) {
		return model.TipEvent{}, fmt.Errorf("%w: topic0 %s", ErrUnexpectedEvent, log.Topics[0].Hex())
	}
	if err := checkPosition(log); err != nil {
		return model.TipEvent{}, err
	}

	indexedArgs := indexedArguments(d.event.Inputs)
	if len(log.Topics) != len(indexedArgs)+1 {
		return model.TipEvent{}, fmt.Errorf("expected %d topics, got %d", len(indexedArgs)+1, len(log.Topics))
	}

	var indexed struct {
		Tipper    common.Address
		Recipient common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArgs, log.Topics[1:]); err != nil {
		return model.TipEvent{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := d.event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.TipEvent{}, fmt.Errorf("unpack %s: %w", d.event.Name, err)
	}
	if len(values) != 3 {
		return model.TipEvent{}, fmt.Errorf("unexpected %s values: %d", d.event.Name, len(values))
	}

	staffName, ok := values[0].(string)
	if !ok {
		return model.TipEvent{}, fmt.Errorf("staffName: unsupported type %T", values[0])
	}
	message, ok := values[1].(string)
	if !ok {
		return model.TipEvent{}, fmt.Errorf("message: unsupported type %T", values[1])
	}
	amount, ok := values[2].(*big.Int)
	if !ok {
		return model.TipEvent{}, fmt.Errorf("amount: unsupported type %T", values[2])
	}

	return model.TipEvent{
		Tipper:      indexed.Tipper,
		Recipient:   indexed.Recipient,
		StaffName:   staffName,
		Message:     message,
		Amount:      new(big.Int).Set(amount),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		LogIndex:    log.Index,
	}, nil
}

// PackSendTip encodes the sendTip call data.
func (d *Decoder) PackSendTip(recipient common.Address, staffName, message string) ([]byte, error) {
	data, err := d.contractABI.Pack(MethodSendTip, recipient, staffName, message)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", MethodSendTip, err)
	}
	return data, nil
}

func checkPosition(log types.Log) error {
	switch {
	case log.Removed:
		return fmt.Errorf("%w: removed by reorg", ErrIncompleteLog)
	case log.TxHash == (common.Hash{}):
		return fmt.Errorf("%w: missing transaction hash", ErrIncompleteLog)
	case log.BlockHash == (common.Hash{}) || log.BlockNumber == 0:
		return fmt.Errorf("%w: missing block number", ErrIncompleteLog)
	}
	return nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
