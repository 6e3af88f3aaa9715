// Package chain establishes the trusted connection: it forces the wallet
// onto the one configured network and binds an authorized identity to the
// contract handle.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chaindo/internal/config"
	"chaindo/internal/wallet"
)

var (
	// ErrNoWallet means no wallet daemon was reachable. Terminal for the
	// session; nothing else is attempted.
	ErrNoWallet = errors.New("no wallet available")

	// ErrSwitchRejected means the wallet refused to move to the target
	// network.
	ErrSwitchRejected = errors.New("network switch rejected")

	// ErrWrongNetwork means the wallet ended up on a different chain than
	// the target, e.g. the user picked another network during the prompt.
	ErrWrongNetwork = errors.New("wallet is on the wrong network")

	// ErrAccountsRejected means the wallet declined account access.
	ErrAccountsRejected = errors.New("account access rejected")
)

// EnsureNetwork makes the wallet's active chain the configured one. Already
// being on the target is a no-op with no wallet-visible switch request. An
// unknown chain (code 4902) is registered with the configured metadata. The
// active chain is re-read afterwards in every path that switched, since the
// user can change networks underneath the prompt.
func EnsureNetwork(ctx context.Context, p wallet.Provider, net config.Network) error {
	want, err := config.ParseChainID(net.ChainID)
	if err != nil {
		return err
	}

	active, err := p.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("reading active chain failed: %w", err)
	}
	if got, err := config.ParseChainID(active); err == nil && got == want {
		return nil
	}

	if err := p.SwitchChain(ctx, net.ChainID); err != nil {
		if wallet.ErrorCode(err) != wallet.CodeUnrecognizedChain {
			return fmt.Errorf("%w: %v", ErrSwitchRejected, err)
		}
		slog.Info("wallet does not know the target network, registering it",
			"chain_id", net.ChainID, "name", net.Name)
		if err := p.AddChain(ctx, wallet.ChainParams{
			ChainID:   net.ChainID,
			ChainName: net.Name,
			RPCURLs:   []string{net.RPCURL},
			NativeCurrency: wallet.Currency{
				Name:     net.Currency.Name,
				Symbol:   net.Currency.Symbol,
				Decimals: net.Currency.Decimals,
			},
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrSwitchRejected, err)
		}
	}

	active, err = p.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("re-reading active chain failed: %w", err)
	}
	got, err := config.ParseChainID(active)
	if err != nil || got != want {
		return fmt.Errorf("%w: want %s, got %s", ErrWrongNetwork, net.ChainID, active)
	}
	return nil
}
