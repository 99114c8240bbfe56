package presenter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tipjar/internal/apperr"
)

func serve(t *testing.T, status int, body string) *APIClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewAPIClient(server.URL+"/", server.Client())
}

func TestAPIClientPayments(t *testing.T) {
	client := serve(t, http.StatusOK, `{"payments":[{"id":"0xaaa-0","tipper":"0x1","staffName":"Alice","message":"hi","amount":"0.05 ETH","amountWei":"50000000000000000","transactionHash":"0xaaa","blockNumber":7,"timestamp":1700000000000}]}`)

	records, err := client.FetchHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Alice", records[0].StaffName)
	assert.Equal(t, uint64(7), records[0].BlockNumber)
	assert.Equal(t, int64(1700000000000), records[0].Timestamp)
}

func TestAPIClientEmpty(t *testing.T) {
	records, err := serve(t, http.StatusOK, `{"payments":[]}`).FetchHistory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestAPIClientServerError(t *testing.T) {
	client := serve(t, http.StatusInternalServerError, `{"error":"Server configuration error: Contract address missing.","details":"contract not set","kind":"configuration"}`)

	_, err := client.FetchHistory(context.Background())
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConfiguration, appErr.Kind)
	assert.Equal(t, "Server configuration error: Contract address missing.", appErr.Message)
	assert.Equal(t, "contract not set", appErr.Details())
}

func TestAPIClientServerErrorWithoutKind(t *testing.T) {
	for _, body := range []string{
		`{"error":"Failed to fetch payment history from the blockchain.","details":"boom"}`,
		`{"error":"Failed to fetch payment history from the blockchain.","details":"boom","kind":"unknown"}`,
	} {
		_, err := serve(t, http.StatusInternalServerError, body).FetchHistory(context.Background())
		require.Error(t, err)
		assert.Equal(t, apperr.KindNodeServer, apperr.KindOf(err), body)
	}
}

func TestAPIClientRawErrorBody(t *testing.T) {
	client := serve(t, http.StatusBadGateway, strings.Repeat("x", 500))

	_, err := client.FetchHistory(context.Background())
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "HTTP 502")
	assert.Less(t, len(appErr.Message), 300)
}

func TestAPIClientRejectsMissingPayments(t *testing.T) {
	_, err := serve(t, http.StatusOK, `{"items":[]}`).FetchHistory(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindDecode, apperr.KindOf(err))

	_, err = serve(t, http.StatusOK, `not json`).FetchHistory(context.Background())
	assert.Equal(t, apperr.KindDecode, apperr.KindOf(err))
}
