package chain

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/term"
)

// TerminalApprover prompts for the keystore passphrase on the controlling
// terminal without echo. An empty answer declines the session.
type TerminalApprover struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalApprover creates an approver bound to stdin/stderr.
func NewTerminalApprover() *TerminalApprover {
	return &TerminalApprover{In: os.Stdin, Out: os.Stderr}
}

// Approve reads the passphrase.
func (a *TerminalApprover) Approve(_ context.Context, account common.Address) (string, error) {
	fd := int(a.In.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal available to approve %s", account.Hex())
	}

	fmt.Fprintf(a.Out, "Approve session for %s (empty to decline): ", account.Hex())
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(a.Out)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(passphrase), nil
}
