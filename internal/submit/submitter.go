package submit

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tipjar/internal/apperr"
	"tipjar/internal/config"
	"tipjar/internal/history"
	"tipjar/internal/metrics"
	"tipjar/internal/model"
	"tipjar/internal/storage"
	"tipjar/internal/tipjar"
	"tipjar/internal/units"
	"tipjar/internal/wallet"
)

// Directory resolves staff names. *staff.Directory satisfies it.
type Directory interface {
	Lookup(name string) (model.StaffMember, error)
}

// Session is the wallet session surface. *wallet.Session satisfies it.
type Session interface {
	State() wallet.State
	Connect(ctx context.Context) error
	Provider() wallet.Provider
}

// Observer receives every transition of an attempt, including the initial Idle.
type Observer func(Attempt)

// Option customizes a Submitter.
type Option func(*Submitter)

// WithObserver adds a callback that sees every attempt transition in order.
func WithObserver(observer Observer) Option {
	return func(s *Submitter) {
		s.observers = append(s.observers, observer)
	}
}

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithJournal records every transition as an AttemptRecord.
func WithJournal(journal storage.Journal) Option {
	return func(s *Submitter) {
		if journal != nil {
			s.journal = journal
		}
	}
}

// Submitter sends tips through a wallet session.
type Submitter struct {
	cfg       config.NodeConfig
	directory Directory
	session   Session
	decoder   *tipjar.Decoder
	observers []Observer
	journal   storage.Journal
	logger    *zap.Logger
	now       func() time.Time
}

// New builds a Submitter for the contract and expected chain in cfg. Attempts
// fail with a configuration error until both are set.
func New(cfg config.NodeConfig, directory Directory, session Session, opts ...Option) (*Submitter, error) {
	decoder, err := tipjar.NewDecoder()
	if err != nil {
		return nil, err
	}
	s := &Submitter{
		cfg:       cfg,
		directory: directory,
		session:   session,
		decoder:   decoder,
		journal:   storage.Nop{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// run tracks one Submit call for logging and journaling.
type run struct {
	record model.AttemptRecord
	logger *zap.Logger
}

// Submit runs one tip attempt to a terminal state. It never panics on
// provider failures; every failure is reported as an Error attempt.
func (s *Submitter) Submit(ctx context.Context, staffName string, amountWei *big.Int, message string) Attempt {
	now := s.now().UTC()
	r := &run{
		record: model.AttemptRecord{
			ID:        uuid.NewString(),
			StaffName: staffName,
			Message:   message,
			CreatedAt: now,
		},
	}
	if amountWei != nil {
		r.record.AmountWei = amountWei.String()
	}
	r.logger = s.logger.With(zap.String("attempt_id", r.record.ID), zap.String("staff", staffName))

	s.emit(ctx, r, Attempt{})

	member, contract, appErr := s.validate(staffName, amountWei)
	if appErr != nil {
		return s.fail(ctx, r, failed(appErr))
	}
	r.record.StaffName = member.Name
	r.record.Recipient = member.Address.Hex()

	if !s.session.State().Connected {
		s.emit(ctx, r, connecting())
		if err := s.session.Connect(ctx); err != nil {
			return s.fail(ctx, r, failed(classifySend(err, s.cfg.RPCURL)))
		}
	}

	state := s.session.State()
	if state.ChainID != nil && state.ChainID.IsUint64() {
		r.record.ChainID = state.ChainID.Uint64()
	}
	if appErr := s.checkNetwork(state); appErr != nil {
		return s.fail(ctx, r, failed(appErr))
	}
	if state.Account == nil {
		return s.fail(ctx, r, failed(apperr.Wrap(apperr.KindWalletRejection, "Wallet is not connected.", wallet.ErrConnectionRejected)))
	}

	s.emit(ctx, r, sending())
	data, err := s.decoder.PackSendTip(member.Address, member.Name, message)
	if err != nil {
		return s.fail(ctx, r, failed(apperr.Wrap(apperr.KindUnknown, "Failed to encode the tip transaction.", err)))
	}

	provider := s.session.Provider()
	tx, err := provider.SendTransaction(ctx, wallet.TxRequest{
		From:  *state.Account,
		To:    contract,
		Value: amountWei,
		Data:  data,
	})
	if err != nil {
		return s.fail(ctx, r, failed(classifySend(err, s.cfg.RPCURL)))
	}

	hash := tx.Hash()
	s.emit(ctx, r, mining(hash))

	receipt, err := provider.WaitMined(ctx, tx)
	if err != nil {
		return s.fail(ctx, r, failedAfterBroadcast(classifySend(err, s.cfg.RPCURL), hash))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		revert := apperr.New(apperr.KindOnChainRevert, fmt.Sprintf("Transaction %s reverted.", hash.Hex()))
		return s.fail(ctx, r, failedAfterBroadcast(revert, hash))
	}

	return s.emit(ctx, r, succeeded(hash))
}

func (s *Submitter) validate(staffName string, amountWei *big.Int) (model.StaffMember, common.Address, *apperr.Error) {
	if amountWei == nil || amountWei.Sign() <= 0 {
		return model.StaffMember{}, common.Address{}, apperr.Validation("Amount must be greater than zero.")
	}
	member, err := s.directory.Lookup(staffName)
	if err != nil {
		if appErr, ok := apperr.As(err); ok {
			return model.StaffMember{}, common.Address{}, appErr
		}
		return model.StaffMember{}, common.Address{}, apperr.Wrap(apperr.KindValidation, "Select a staff member.", err)
	}
	contract, err := history.ParseContract(s.cfg.Contract)
	if err != nil {
		if appErr, ok := apperr.As(err); ok {
			return model.StaffMember{}, common.Address{}, appErr
		}
		return model.StaffMember{}, common.Address{}, apperr.Wrap(apperr.KindConfiguration, "Contract address is invalid.", err)
	}
	if s.cfg.ExpectedChainID == 0 {
		return model.StaffMember{}, common.Address{}, apperr.Configuration("Configuration error: expected network (chain id) is not set.")
	}
	return member, contract, nil
}

func (s *Submitter) checkNetwork(state wallet.State) *apperr.Error {
	expected := s.cfg.ExpectedChainID
	if state.ChainID != nil && state.ChainID.IsUint64() && state.ChainID.Uint64() == expected {
		return nil
	}
	active := "unknown"
	if state.ChainID != nil {
		active = state.ChainID.String()
	}
	return apperr.New(apperr.KindWrongNetwork,
		fmt.Sprintf("Wrong network: wallet is on chain %s, please switch to chain %d.", active, expected))
}

func (s *Submitter) fail(ctx context.Context, r *run, attempt Attempt) Attempt {
	metrics.TipErrorsTotal.WithLabelValues(attempt.Kind().String()).Inc()
	r.record.ErrorKind = attempt.Kind().String()
	r.record.ErrorMessage = attempt.err.Error()
	return s.emit(ctx, r, attempt)
}

func (s *Submitter) emit(ctx context.Context, r *run, attempt Attempt) Attempt {
	metrics.TipTransitionsTotal.WithLabelValues(attempt.Status().String()).Inc()

	fields := []zap.Field{zap.String("status", attempt.Status().String())}
	if hash, ok := attempt.TxHash(); ok {
		fields = append(fields, zap.String("tx_hash", hash.Hex()))
		r.record.TxHash = hash.Hex()
	}
	if attempt.Status() == StatusError {
		r.logger.Warn("tip attempt failed", append(fields,
			zap.String("kind", attempt.Kind().String()),
			zap.Error(attempt.Err()),
		)...)
	} else {
		r.logger.Info("tip attempt", fields...)
	}

	r.record.Status = attempt.Status().String()
	r.record.UpdatedAt = s.now().UTC()
	if err := s.journal.RecordAttempt(context.WithoutCancel(ctx), r.record); err != nil {
		r.logger.Warn("journal attempt failed", zap.Error(err))
	}

	for _, observer := range s.observers {
		observer(attempt)
	}
	return attempt
}

// classifySend maps wallet and node failures of a send or a confirmation wait.
func classifySend(err error, endpoint string) *apperr.Error {
	if appErr, ok := apperr.As(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, wallet.ErrTransactionRejected):
		return apperr.Wrap(apperr.KindWalletRejection, "Transaction was rejected in the wallet.", err)
	case errors.Is(err, wallet.ErrConnectionRejected):
		return apperr.Wrap(apperr.KindWalletRejection, "Wallet connection was rejected.", err)
	}
	if reason, ok := revertReason(err); ok {
		message := "Transaction would revert."
		if reason != "" {
			message = fmt.Sprintf("Transaction would revert: %s", reason)
		}
		return apperr.Wrap(apperr.KindOnChainRevert, message, err)
	}
	return apperr.Classify(err, endpoint)
}

// revertReason reports whether err is an execution revert and extracts its reason.
func revertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if encoded, ok := dataErr.ErrorData().(string); ok {
			if raw, decodeErr := hexutil.Decode(encoded); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
					return reason, true
				}
			}
		}
	}

	const marker = "execution reverted"
	message := err.Error()
	idx := strings.Index(message, marker)
	if idx < 0 {
		return "", false
	}
	reason := strings.TrimSpace(strings.TrimPrefix(message[idx+len(marker):], ":"))
	return reason, true
}

// Summary formats the attempt request for prompts and logs.
func Summary(staffName string, amountWei *big.Int, message string) string {
	if message == "" {
		return fmt.Sprintf("%s to %s", units.FormatEtherDisplay(amountWei), staffName)
	}
	return fmt.Sprintf("%s to %s: %q", units.FormatEtherDisplay(amountWei), staffName, message)
}
