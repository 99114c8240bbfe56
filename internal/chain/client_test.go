package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeNode answers the handful of JSON-RPC methods the client uses.
type fakeNode struct {
	mu    sync.Mutex
	calls map[string]int
	logs  []string
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.mu.Lock()
	n.calls[req.Method]++
	n.logs = append(n.logs, string(joinParams(req.Params)))
	n.mu.Unlock()

	var result string
	switch req.Method {
	case "eth_chainId":
		result = `"0x14a34"`
	case "eth_getBlockByNumber":
		result = headerJSON(0x10, 0x65f00000)
	case "eth_getLogs":
		result = `[]`
	default:
		result = `null`
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
}

func joinParams(params []json.RawMessage) []byte {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, string(p))
	}
	return []byte(strings.Join(parts, ","))
}

func headerJSON(number, timestamp uint64) string {
	zero := common.Hash{}.Hex()
	return fmt.Sprintf(`{
		"parentHash": %q,
		"sha3Uncles": %q,
		"miner": "0x0000000000000000000000000000000000000000",
		"stateRoot": %q,
		"transactionsRoot": %q,
		"receiptsRoot": %q,
		"logsBloom": "0x%s",
		"difficulty": "0x0",
		"number": "0x%x",
		"gasLimit": "0x1c9c380",
		"gasUsed": "0x0",
		"timestamp": "0x%x",
		"extraData": "0x",
		"mixHash": %q,
		"nonce": "0x0000000000000000"
	}`, zero, zero, zero, zero, zero, strings.Repeat("00", 256), number, timestamp, zero)
}

func newTestClient(t *testing.T) (*Client, *fakeNode) {
	t.Helper()
	node := &fakeNode{calls: make(map[string]int)}
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)
	return client, node
}

func TestGetChainID(t *testing.T) {
	client, _ := newTestClient(t)
	chainID, err := client.GetChainID(context.Background())
	if err != nil {
		t.Fatalf("chain id: %v", err)
	}
	if chainID.Uint64() != 84532 {
		t.Fatalf("chain id mismatch: %s", chainID)
	}
}

func TestBlockTimestampIsCached(t *testing.T) {
	client, node := newTestClient(t)

	for i := 0; i < 3; i++ {
		ts, err := client.BlockTimestamp(context.Background(), 16)
		if err != nil {
			t.Fatalf("timestamp: %v", err)
		}
		if ts != 0x65f00000 {
			t.Fatalf("timestamp mismatch: %d", ts)
		}
	}
	if got := node.count("eth_getBlockByNumber"); got != 1 {
		t.Fatalf("expected one header lookup, got %d", got)
	}
}

func TestFilterLogsQueriesToLatest(t *testing.T) {
	client, node := newTestClient(t)
	address := common.HexToAddress("0x428b38aFF7D06d10A55639B08C8c22f76A851ACE")
	topic := common.HexToHash("0x01")

	logs, err := client.FilterLogs(context.Background(), 5, []common.Address{address}, []common.Hash{topic})
	if err != nil {
		t.Fatalf("filter logs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected no logs, got %d", len(logs))
	}
	if node.count("eth_getLogs") != 1 {
		t.Fatalf("expected a single eth_getLogs call")
	}

	node.mu.Lock()
	params := node.logs[len(node.logs)-1]
	node.mu.Unlock()
	if !strings.Contains(params, `"fromBlock":"0x5"`) || !strings.Contains(params, `"toBlock":"latest"`) {
		t.Fatalf("unexpected filter params: %s", params)
	}
	if !strings.Contains(strings.ToLower(params), strings.ToLower(address.Hex())) {
		t.Fatalf("address missing from filter: %s", params)
	}
}
