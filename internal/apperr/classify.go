package apperr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// Classify maps a node/RPC failure onto a kind and a user-facing message.
// endpoint is only used to build the message.
func Classify(err error, endpoint string) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}

	kind := classifyKind(err)
	return Wrap(kind, messageFor(kind, endpoint), err)
}

func classifyKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden:
			return KindAuth
		case httpErr.StatusCode == http.StatusGatewayTimeout || httpErr.StatusCode == http.StatusRequestTimeout:
			return KindTimeout
		case httpErr.StatusCode >= 500:
			return KindNodeServer
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnectivity
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnectivity
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindConnectivity
	}

	lower := strings.ToLower(err.Error())

	// The node answered; only an auth phrase changes the kind.
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if containsAny(lower, authPhrases) {
			return KindAuth
		}
		return KindNodeServer
	}

	switch {
	case containsAny(lower, timeoutPhrases):
		return KindTimeout
	case containsAny(lower, authPhrases):
		return KindAuth
	case containsAny(lower, connectivityPhrases):
		return KindConnectivity
	default:
		return KindNodeServer
	}
}

var (
	timeoutPhrases = []string{"timeout", "timed out", "deadline exceeded"}
	authPhrases    = []string{
		"unauthorized", "forbidden", "invalid api key", "must be authenticated",
		"status code 401", "status code 403",
	}
	connectivityPhrases = []string{
		"connection refused", "connection reset", "network is unreachable",
		"no such host", "broken pipe", "unexpected eof",
	}
)

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func messageFor(kind Kind, endpoint string) string {
	switch kind {
	case KindConnectivity:
		return fmt.Sprintf("Server could not connect to the RPC node (%s). Please check the RPC URL and network status.", endpoint)
	case KindAuth:
		return fmt.Sprintf("Server error: the RPC node (%s) rejected the credentials. Please check the API key.", endpoint)
	case KindTimeout:
		return fmt.Sprintf("Server error: the RPC node (%s) timed out.", endpoint)
	case KindNodeServer:
		return fmt.Sprintf("Server error: The RPC node (%s) returned an error. It might be unavailable.", endpoint)
	default:
		return "Failed to fetch payment history from the blockchain."
	}
}
