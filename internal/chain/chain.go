// Package chain lists the chains a wallet can be classified with and checks
// address formats for them.
package chain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/filecoin-project/go-address"
	"github.com/mr-tron/base58"
)

type Chain string

const (
	BTC  Chain = "BTC"
	ETH  Chain = "ETH"
	SOL  Chain = "SOL"
	HYPE Chain = "HYPE"
	FIL  Chain = "FIL"
)

// All returns the supported chains in display order.
func All() []Chain {
	return []Chain{BTC, ETH, SOL, HYPE, FIL}
}

var ErrUnknownChain = errors.New("unknown chain")

// Parse accepts a chain name in any case.
func Parse(s string) (Chain, error) {
	c := Chain(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range All() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChain, s)
}

func (c Chain) String() string { return string(c) }

var (
	evmAddress    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	bech32Address = regexp.MustCompile(`^(bc1|tb1)[02-9ac-hj-np-z]{8,87}$`)
)

// ValidateAddress checks that addr is well formed for chain c.
func ValidateAddress(c Chain, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return errors.New("address is required")
	}

	switch c {
	case ETH, HYPE:
		if !evmAddress.MatchString(addr) {
			return fmt.Errorf("invalid %s address %q: want 0x followed by 40 hex digits", c, addr)
		}
	case SOL:
		raw, err := base58.Decode(addr)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("invalid %s address %q: want base58 encoded 32 byte key", c, addr)
		}
	case BTC:
		if bech32Address.MatchString(strings.ToLower(addr)) {
			return nil
		}
		raw, err := base58.Decode(addr)
		if err != nil || len(raw) != 25 || (addr[0] != '1' && addr[0] != '3') {
			return fmt.Errorf("invalid %s address %q", c, addr)
		}
	case FIL:
		if _, err := address.NewFromString(addr); err != nil {
			return fmt.Errorf("invalid %s address %q: %w", c, addr, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChain, string(c))
	}
	return nil
}
