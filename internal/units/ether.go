package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of base units per ETH as a power of ten.
const EtherDecimals = 18

const etherSuffix = " ETH"

// FormatEther renders wei as a decimal ETH string without trailing zeros ("0.05").
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}

// FormatEtherDisplay renders wei for display ("0.05 ETH").
func FormatEtherDisplay(wei *big.Int) string {
	return FormatEther(wei) + etherSuffix
}

// ParseEther converts an ETH amount ("0.05" or "0.05 ETH") to wei.
// Amounts with more than 18 fractional digits are rejected instead of rounded.
func ParseEther(input string) (*big.Int, error) {
	text := strings.TrimSpace(input)
	text = strings.TrimSpace(strings.TrimSuffix(text, strings.TrimSpace(etherSuffix)))
	if text == "" {
		return nil, fmt.Errorf("empty amount")
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", input, err)
	}

	wei := value.Shift(EtherDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("amount %q has more than %d decimals", input, EtherDecimals)
	}
	return wei.BigInt(), nil
}
