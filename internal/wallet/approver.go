package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"tipjar/internal/units"
)

// PromptKind distinguishes account access from transaction signing.
type PromptKind int

const (
	PromptConnect PromptKind = iota + 1
	PromptTransaction
)

// Prompt is what the wallet owner is asked to approve.
type Prompt struct {
	Kind    PromptKind
	Account common.Address
	To      common.Address
	Value   *big.Int
	Gas     uint64
	ChainID *big.Int
}

// Approver decides whether a prompt is accepted.
type Approver interface {
	Approve(ctx context.Context, prompt Prompt) (bool, error)
}

// AutoApprover accepts every prompt.
type AutoApprover struct{}

func (AutoApprover) Approve(context.Context, Prompt) (bool, error) {
	return true, nil
}

// TerminalApprover asks on a terminal and accepts "y" or "yes".
type TerminalApprover struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func (a *TerminalApprover) Approve(ctx context.Context, prompt Prompt) (bool, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}

	switch prompt.Kind {
	case PromptConnect:
		fmt.Fprintf(a.Out, "Connect account %s? [y/N] ", prompt.Account.Hex())
	case PromptTransaction:
		fmt.Fprintf(a.Out, "Send %s from %s to contract %s (gas %d, chain %s)? [y/N] ",
			units.FormatEtherDisplay(prompt.Value), prompt.Account.Hex(), prompt.To.Hex(), prompt.Gas, prompt.ChainID)
	default:
		return false, fmt.Errorf("unknown prompt kind %d", prompt.Kind)
	}

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := a.reader.ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case got := <-answers:
		if got.err != nil && got.err != io.EOF {
			return false, got.err
		}
		switch strings.ToLower(strings.TrimSpace(got.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
