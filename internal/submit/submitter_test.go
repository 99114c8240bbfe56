package submit

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"tipjar/internal/apperr"
	"tipjar/internal/config"
	"tipjar/internal/staff"
	"tipjar/internal/storage"
	"tipjar/internal/tipjar"
	"tipjar/internal/wallet"
	"tipjar/internal/wallet/wallettest"
)

var (
	contractAddress = common.HexToAddress("0x428b38aFF7D06d10A55639B08C8c22f76A851ACE")
	tipperAddress   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	aliceAddress    = common.HexToAddress("0x3333333333333333333333333333333333333333")
	oneFinney       = big.NewInt(1000000000000000)
)

type harness struct {
	provider  *wallettest.Provider
	session   *wallet.Session
	submitter *Submitter
	statuses  []Status
}

func newHarness(t *testing.T, provider *wallettest.Provider, opts ...Option) *harness {
	t.Helper()
	if provider.Chain == nil {
		provider.Chain = big.NewInt(84532)
	}
	if provider.Accounts == nil {
		provider.Accounts = []common.Address{tipperAddress}
	}

	directory := staff.New([]config.StaffEntry{
		{Name: "Alice", Address: aliceAddress.Hex()},
		{Name: "Broken", Address: "0xnothex"},
	}, nil)
	session := wallet.NewSession(provider, nil)

	h := &harness{provider: provider, session: session}
	opts = append([]Option{WithObserver(func(a Attempt) {
		h.statuses = append(h.statuses, a.Status())
	})}, opts...)

	submitter, err := New(config.NodeConfig{
		RPCURL:          "https://node.example",
		Contract:        contractAddress.Hex(),
		ExpectedChainID: 84532,
	}, directory, session, opts...)
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}
	h.submitter = submitter
	return h
}

func (h *harness) assertStatuses(t *testing.T, want ...Status) {
	t.Helper()
	if len(h.statuses) != len(want) {
		t.Fatalf("transitions mismatch: got %v want %v", h.statuses, want)
	}
	for i := range want {
		if h.statuses[i] != want[i] {
			t.Fatalf("transitions mismatch: got %v want %v", h.statuses, want)
		}
	}
}

func TestSubmitSuccess(t *testing.T) {
	h := newHarness(t, &wallettest.Provider{})

	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "great coffee")
	if attempt.Status() != StatusSuccess {
		t.Fatalf("expected success, got %s: %v", attempt.Status(), attempt.Err())
	}
	hash, ok := attempt.TxHash()
	if !ok || hash == (common.Hash{}) {
		t.Fatalf("success must carry a hash")
	}
	h.assertStatuses(t, StatusIdle, StatusConnecting, StatusSending, StatusMining, StatusSuccess)

	sent := h.provider.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one transaction, got %d", len(sent))
	}
	decoder, _ := tipjar.NewDecoder()
	wantData, _ := decoder.PackSendTip(aliceAddress, "Alice", "great coffee")
	if sent[0].To != contractAddress || sent[0].From != tipperAddress ||
		sent[0].Value.Cmp(oneFinney) != 0 || !bytes.Equal(sent[0].Data, wantData) {
		t.Fatalf("unexpected request: %+v", sent[0])
	}
}

func TestSubmitIsRearmable(t *testing.T) {
	h := newHarness(t, &wallettest.Provider{})
	first := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	second := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if first.Status() != StatusSuccess || second.Status() != StatusSuccess {
		t.Fatalf("expected two successes: %s %s", first.Status(), second.Status())
	}
	firstHash, _ := first.TxHash()
	secondHash, _ := second.TxHash()
	if firstHash == secondHash {
		t.Fatalf("attempts should be independent")
	}
	if h.provider.RequestCalls() != 1 {
		t.Fatalf("connected session should not reconnect, calls=%d", h.provider.RequestCalls())
	}
	h.assertStatuses(t,
		StatusIdle, StatusConnecting, StatusSending, StatusMining, StatusSuccess,
		StatusIdle, StatusSending, StatusMining, StatusSuccess,
	)
}

func TestSubmitValidationBeforeProvider(t *testing.T) {
	cases := []struct {
		name   string
		staff  string
		amount *big.Int
		kind   apperr.Kind
	}{
		{name: "zero amount", staff: "Alice", amount: big.NewInt(0), kind: apperr.KindValidation},
		{name: "nil amount", staff: "Alice", amount: nil, kind: apperr.KindValidation},
		{name: "negative amount", staff: "Alice", amount: big.NewInt(-1), kind: apperr.KindValidation},
		{name: "no staff selected", staff: "", amount: oneFinney, kind: apperr.KindValidation},
		{name: "unknown staff", staff: "Mallory", amount: oneFinney, kind: apperr.KindValidation},
		{name: "misconfigured staff", staff: "Broken", amount: oneFinney, kind: apperr.KindConfiguration},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, &wallettest.Provider{})
			attempt := h.submitter.Submit(context.Background(), tc.staff, tc.amount, "")
			if attempt.Status() != StatusError || attempt.Kind() != tc.kind {
				t.Fatalf("expected %s error, got %s %s", tc.kind, attempt.Status(), attempt.Kind())
			}
			if _, ok := attempt.TxHash(); ok {
				t.Fatalf("no hash expected")
			}
			if h.provider.RequestCalls() != 0 || len(h.provider.Sent()) != 0 {
				t.Fatalf("provider must not be called")
			}
			h.assertStatuses(t, StatusIdle, StatusError)
		})
	}
}

func TestSubmitMissingContract(t *testing.T) {
	h := newHarness(t, &wallettest.Provider{})
	h.submitter.cfg.Contract = ""
	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if attempt.Kind() != apperr.KindConfiguration {
		t.Fatalf("expected configuration error, got %s", attempt.Kind())
	}
	if h.provider.RequestCalls() != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestSubmitWithoutExpectedChain(t *testing.T) {
	h := newHarness(t, &wallettest.Provider{Chain: big.NewInt(1)})
	h.submitter.cfg.ExpectedChainID = 0
	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if attempt.Kind() != apperr.KindConfiguration {
		t.Fatalf("expected configuration error, got %s: %v", attempt.Kind(), attempt.Err())
	}
	if h.provider.RequestCalls() != 0 || len(h.provider.Sent()) != 0 {
		t.Fatalf("provider must not be called without an expected chain")
	}
	h.assertStatuses(t, StatusIdle, StatusError)
}

func TestSubmitWrongNetwork(t *testing.T) {
	h := newHarness(t, &wallettest.Provider{Chain: big.NewInt(1)})
	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if attempt.Kind() != apperr.KindWrongNetwork {
		t.Fatalf("expected wrong network, got %s: %v", attempt.Kind(), attempt.Err())
	}
	if len(h.provider.Sent()) != 0 {
		t.Fatalf("no contract call expected on the wrong network")
	}
	if !strings.Contains(attempt.Message(), "84532") {
		t.Fatalf("message should name the expected chain: %q", attempt.Message())
	}
}

func TestSubmitSeesNetworkSwitch(t *testing.T) {
	provider := &wallettest.Provider{Chain: big.NewInt(1)}
	h := newHarness(t, provider)
	if err := h.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.session.Close()

	if attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, ""); attempt.Kind() != apperr.KindWrongNetwork {
		t.Fatalf("expected wrong network first, got %s", attempt.Kind())
	}

	provider.Emit(wallet.Notification{Kind: wallet.ChainChanged, ChainID: big.NewInt(84532)})
	for i := 0; i < 200 && h.session.State().ChainID.Int64() != 84532; i++ {
		waitTick()
	}

	if attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, ""); attempt.Status() != StatusSuccess {
		t.Fatalf("expected success after switching network, got %s: %v", attempt.Status(), attempt.Err())
	}
}

func TestSubmitRevertKeepsHash(t *testing.T) {
	status := types.ReceiptStatusFailed
	h := newHarness(t, &wallettest.Provider{ReceiptStatus: &status})

	var minedHash common.Hash
	h.submitter.observers = append(h.submitter.observers, func(a Attempt) {
		if a.Status() == StatusMining {
			minedHash, _ = a.TxHash()
		}
	})

	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if attempt.Kind() != apperr.KindOnChainRevert {
		t.Fatalf("expected revert, got %s", attempt.Kind())
	}
	hash, ok := attempt.TxHash()
	if !ok || hash != minedHash {
		t.Fatalf("error must keep the mined hash: %s != %s", hash.Hex(), minedHash.Hex())
	}
	h.assertStatuses(t, StatusIdle, StatusConnecting, StatusSending, StatusMining, StatusError)
}

func TestSubmitWaitErrorKeepsHash(t *testing.T) {
	h := newHarness(t, &wallettest.Provider{WaitErr: context.DeadlineExceeded})
	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if attempt.Kind() != apperr.KindTimeout {
		t.Fatalf("expected timeout, got %s", attempt.Kind())
	}
	if _, ok := attempt.TxHash(); !ok {
		t.Fatalf("error after broadcast must keep the hash")
	}
}

func TestSubmitRejections(t *testing.T) {
	h := newHarness(t, &wallettest.Provider{RequestErr: wallet.ErrConnectionRejected})
	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if attempt.Kind() != apperr.KindWalletRejection || !errors.Is(attempt.Err(), wallet.ErrConnectionRejected) {
		t.Fatalf("expected connection rejection, got %s: %v", attempt.Kind(), attempt.Err())
	}
	h.assertStatuses(t, StatusIdle, StatusConnecting, StatusError)

	h = newHarness(t, &wallettest.Provider{SendErr: wallet.ErrTransactionRejected})
	attempt = h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if attempt.Kind() != apperr.KindWalletRejection || !errors.Is(attempt.Err(), wallet.ErrTransactionRejected) {
		t.Fatalf("expected transaction rejection, got %s: %v", attempt.Kind(), attempt.Err())
	}
	if _, ok := attempt.TxHash(); ok {
		t.Fatalf("rejected transaction has no hash")
	}
	h.assertStatuses(t, StatusIdle, StatusConnecting, StatusSending, StatusError)
}

func TestSubmitEstimationRevert(t *testing.T) {
	h := newHarness(t, &wallettest.Provider{SendErr: errors.New("execution reverted: Tip must be positive")})
	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "")
	if attempt.Kind() != apperr.KindOnChainRevert {
		t.Fatalf("expected revert, got %s", attempt.Kind())
	}
	if !strings.Contains(attempt.Message(), "Tip must be positive") {
		t.Fatalf("revert reason missing: %q", attempt.Message())
	}
}

func TestRevertReasonKeepsCase(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
		ok     bool
	}{
		{name: "plain", err: errors.New("execution reverted: Tip must be positive"), reason: "Tip must be positive", ok: true},
		{name: "no reason", err: errors.New("execution reverted"), reason: "", ok: true},
		{name: "multibyte prefix", err: errors.New("İİ execution reverted: Staff only"), reason: "Staff only", ok: true},
		{name: "other", err: errors.New("nonce too low"), ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, ok := revertReason(tt.err)
			if ok != tt.ok || reason != tt.reason {
				t.Fatalf("revertReason(%q) = %q, %v; want %q, %v", tt.err, reason, ok, tt.reason, tt.ok)
			}
		})
	}
}

func TestSubmitJournalsTransitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attempts.jsonl")
	h := newHarness(t, &wallettest.Provider{}, WithJournal(storage.NewJsonlJournal(path)))

	attempt := h.submitter.Submit(context.Background(), "Alice", oneFinney, "hi")
	records, err := storage.ReadJsonl(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected one record per transition, got %d", len(records))
	}
	last := records[len(records)-1]
	hash, _ := attempt.TxHash()
	if last.Status != "success" || last.TxHash != hash.Hex() || last.AmountWei != oneFinney.String() {
		t.Fatalf("unexpected final record: %+v", last)
	}
	if last.Recipient != aliceAddress.Hex() || last.ChainID != 84532 {
		t.Fatalf("unexpected final record: %+v", last)
	}
	for _, record := range records {
		if record.ID != last.ID {
			t.Fatalf("records of one attempt must share an id")
		}
	}
}
