package explorer

import "strings"

// DefaultBaseURL is used for chain ids missing from the table.
const DefaultBaseURL = "https://sepolia.etherscan.io"

var baseURLs = map[uint64]string{
	1:        "https://etherscan.io",
	17000:    "https://holesky.etherscan.io",
	11155111: "https://sepolia.etherscan.io",
	8453:     "https://basescan.org",
	84532:    "https://sepolia.basescan.org",
}

// Explorer builds block-explorer links for one chain.
type Explorer struct {
	baseURL string
}

// ForChain returns the explorer for chainID, falling back to DefaultBaseURL.
func ForChain(chainID uint64) Explorer {
	if base, ok := baseURLs[chainID]; ok {
		return Explorer{baseURL: base}
	}
	return Explorer{baseURL: DefaultBaseURL}
}

// WithBaseURL overrides the table, e.g. for a private network.
func WithBaseURL(baseURL string) Explorer {
	return Explorer{baseURL: strings.TrimRight(baseURL, "/")}
}

// TxURL links to a transaction page.
func (e Explorer) TxURL(hash string) string {
	return e.baseURL + "/tx/" + hash
}
