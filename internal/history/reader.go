package history

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"tipjar/internal/apperr"
	"tipjar/internal/chain"
	"tipjar/internal/config"
	"tipjar/internal/metrics"
	"tipjar/internal/model"
	"tipjar/internal/tipjar"
)

const defaultConcurrency = 8

// Source is the node surface the reader needs. *chain.Client satisfies it.
type Source interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	FilterLogs(ctx context.Context, fromBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	Close()
}

// Dialer opens a Source for an RPC URL.
type Dialer func(ctx context.Context, rpcURL string) (Source, error)

// DialChain is the default Dialer backed by go-ethereum.
func DialChain(ctx context.Context, rpcURL string) (Source, error) {
	client, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Option customizes a Reader.
type Option func(*Reader)

// WithDialer replaces the node dialer.
func WithDialer(dialer Dialer) Option {
	return func(r *Reader) {
		r.dial = dialer
	}
}

// WithClock replaces the wall clock used when a block timestamp is unavailable.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) {
		r.now = now
	}
}

// Reader rebuilds the tip history from TipReceived logs.
type Reader struct {
	cfg     config.NodeConfig
	decoder *tipjar.Decoder
	dial    Dialer
	now     func() time.Time
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewReader builds a Reader. Node settings are validated on every fetch.
func NewReader(cfg config.NodeConfig, logger *zap.Logger, opts ...Option) (*Reader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := tipjar.NewDecoder()
	if err != nil {
		return nil, err
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	r := &Reader{
		cfg:     cfg,
		decoder: decoder,
		dial:    DialChain,
		now:     time.Now,
		logger:  logger,
	}
	if cfg.RPCRPS > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RPCRPS), cfg.Concurrency)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// FetchHistory returns every tip, newest first. An empty slice is a valid result.
func (r *Reader) FetchHistory(ctx context.Context) ([]model.TipRecord, error) {
	start := time.Now()
	records, err := r.fetch(ctx)
	metrics.HistoryFetchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.HistoryFetchesTotal.WithLabelValues(apperr.KindOf(err).String()).Inc()
		return nil, err
	}

	metrics.HistoryFetchesTotal.WithLabelValues("ok").Inc()
	metrics.HistoryRecords.Set(float64(len(records)))
	return records, nil
}

func (r *Reader) fetch(ctx context.Context) ([]model.TipRecord, error) {
	contract, err := ParseContract(r.cfg.Contract)
	if err != nil {
		return nil, err
	}
	if err := ValidateRPCURL(r.cfg.RPCURL); err != nil {
		return nil, err
	}

	source, err := r.dial(ctx, r.cfg.RPCURL)
	if err != nil {
		return nil, apperr.Classify(fmt.Errorf("connect rpc: %w", err), r.cfg.RPCURL)
	}
	defer source.Close()

	chainID, err := source.GetChainID(ctx)
	if err != nil {
		return nil, apperr.Classify(fmt.Errorf("get chain id: %w", err), r.cfg.RPCURL)
	}
	if r.cfg.ExpectedChainID != 0 && (!chainID.IsUint64() || chainID.Uint64() != r.cfg.ExpectedChainID) {
		r.logger.Warn("node network differs from expected",
			zap.String("chain_id", chainID.String()),
			zap.Uint64("expected_chain_id", r.cfg.ExpectedChainID),
		)
	}

	r.logger.Debug("query tip logs",
		zap.String("contract", contract.Hex()),
		zap.Uint64("from", r.cfg.FromBlock),
		zap.String("chain_id", chainID.String()),
	)

	logs, err := source.FilterLogs(ctx, r.cfg.FromBlock, []common.Address{contract}, []common.Hash{r.decoder.EventID()})
	if err != nil {
		return nil, apperr.Classify(fmt.Errorf("filter logs: %w", err), r.cfg.RPCURL)
	}

	results := make([]*model.TipRecord, len(logs))
	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i, log := range logs {
		g.Go(func() error {
			if record, ok := r.processLog(ctx, source, log); ok {
				results[i] = &record
			}
			return nil
		})
	}
	_ = g.Wait()

	records := make([]model.TipRecord, 0, len(logs))
	seen := make(map[string]struct{}, len(logs))
	for _, record := range results {
		if record == nil {
			continue
		}
		if _, ok := seen[record.ID]; ok {
			metrics.HistoryLogsSkipped.WithLabelValues("duplicate").Inc()
			continue
		}
		seen[record.ID] = struct{}{}
		records = append(records, *record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	r.logger.Info("history fetched",
		zap.Int("logs", len(logs)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (r *Reader) processLog(ctx context.Context, source Source, log types.Log) (model.TipRecord, bool) {
	event, err := r.decoder.Decode(log)
	if err != nil {
		reason := "decode"
		switch {
		case errors.Is(err, tipjar.ErrIncompleteLog):
			reason = "incomplete"
		case errors.Is(err, tipjar.ErrUnexpectedEvent):
			reason = "unexpected_event"
		}
		metrics.HistoryLogsSkipped.WithLabelValues(reason).Inc()
		decodeErr := buildDecodeError(log, err)
		r.logger.Warn("skip tip log",
			zap.String("reason", reason),
			zap.Uint64("block_number", decodeErr.BlockNumber),
			zap.String("tx_hash", decodeErr.TxHash),
			zap.Uint64("log_index", decodeErr.LogIndex),
			zap.String("address", decodeErr.Address),
			zap.String("topic0", decodeErr.Topic0),
			zap.String("error", decodeErr.Error),
		)
		return model.TipRecord{}, false
	}

	timestampMs, err := r.blockTimestampMs(ctx, source, event.BlockNumber)
	if err != nil {
		metrics.HistoryTimestampFallbacks.Inc()
		r.logger.Warn("block timestamp unavailable, using current time",
			zap.Uint64("block_number", event.BlockNumber),
			zap.String("tx_hash", event.TxHash.Hex()),
			zap.Error(err),
		)
		timestampMs = r.now().UnixMilli()
	}

	return buildTipRecord(event, timestampMs), true
}

func (r *Reader) blockTimestampMs(ctx context.Context, source Source, blockNumber uint64) (int64, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}
	ts, err := source.BlockTimestamp(ctx, blockNumber)
	if err != nil {
		return 0, err
	}
	return int64(ts) * 1000, nil
}
