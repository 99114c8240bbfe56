package units

import (
	"math/big"
	"testing"
)

func TestFormatEther(t *testing.T) {
	cases := map[string]string{
		"50000000000000000":    "0.05",
		"1000000000000000000":  "1",
		"1":                    "0.000000000000000001",
		"0":                    "0",
		"12345678901234567890": "12.34567890123456789",
	}
	for weiText, want := range cases {
		wei, _ := new(big.Int).SetString(weiText, 10)
		if got := FormatEther(wei); got != want {
			t.Fatalf("format %s: got %s want %s", weiText, got, want)
		}
	}
}

func TestFormatEtherDisplay(t *testing.T) {
	if got := FormatEtherDisplay(big.NewInt(50000000000000000)); got != "0.05 ETH" {
		t.Fatalf("unexpected display: %s", got)
	}
}

func TestEtherRoundTrip(t *testing.T) {
	inputs := []string{
		"50000000000000000",
		"1",
		"999999999999999999",
		"123456789012345678901234567890",
	}
	for _, input := range inputs {
		wei, _ := new(big.Int).SetString(input, 10)
		back, err := ParseEther(FormatEtherDisplay(wei))
		if err != nil {
			t.Fatalf("parse %s: %v", input, err)
		}
		if back.Cmp(wei) != 0 {
			t.Fatalf("round-trip drift: %s != %s", back, wei)
		}
	}
}

func TestParseEtherInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "0.0000000000000000001", " ETH"} {
		if _, err := ParseEther(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestParseEtherNegative(t *testing.T) {
	wei, err := ParseEther("-0.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if wei.Sign() >= 0 {
		t.Fatalf("expected negative amount, got %s", wei)
	}
}
