package history

import (
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"tipjar/internal/apperr"
)

// ParseContract validates the configured contract address.
func ParseContract(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, apperr.Configuration("Server configuration error: Contract address missing.")
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, apperr.Configuration("Server error: Invalid contract address configuration (%s).", input)
	}
	address := common.HexToAddress(input)
	if address == (common.Address{}) {
		return common.Address{}, apperr.Configuration("Server error: Contract address is the zero address.")
	}
	return address, nil
}

// ValidateRPCURL checks that the node endpoint is present and dialable by go-ethereum.
func ValidateRPCURL(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return apperr.Configuration("Server configuration error: RPC URL missing.")
	}
	parsed, err := url.Parse(input)
	if err != nil {
		return apperr.Wrap(apperr.KindConfiguration, "Server configuration error: RPC URL is malformed.", err)
	}
	switch parsed.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return apperr.Configuration("Server configuration error: unsupported RPC URL scheme %q.", parsed.Scheme)
	}
	if parsed.Host == "" {
		return apperr.Configuration("Server configuration error: RPC URL has no host.")
	}
	return nil
}
