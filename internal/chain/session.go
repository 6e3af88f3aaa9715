package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"chaindo/internal/config"
	"chaindo/internal/todo"
	"chaindo/internal/wallet"
)

// Session binds an authorized identity to write access against the contract.
// It lives in memory only and is wholesale-replaced on reconnect.
type Session struct {
	Address common.Address
	Tasks   *todo.Contract

	provider wallet.Provider
}

// Dialer opens a wallet provider. Indirection so tests can substitute an
// in-memory fake for the JSON-RPC client.
type Dialer func(ctx context.Context, url string) (wallet.Provider, error)

// WalletDialer is the production Dialer.
func WalletDialer(ctx context.Context, url string) (wallet.Provider, error) {
	return wallet.Dial(ctx, url)
}

// Connect runs the strict connect order: dial the wallet, force the target
// network, request account access, bind the first authorized identity to the
// contract address. Failure at any step yields no session at all.
func Connect(ctx context.Context, dial Dialer, cfg config.Config) (*Session, error) {
	p, err := dial(ctx, cfg.WalletURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoWallet, err)
	}

	if err := EnsureNetwork(ctx, p, cfg.Network); err != nil {
		closeProvider(p)
		return nil, err
	}

	accounts, err := p.RequestAccounts(ctx)
	if err != nil {
		closeProvider(p)
		return nil, fmt.Errorf("%w: %v", ErrAccountsRejected, err)
	}
	if len(accounts) == 0 {
		closeProvider(p)
		return nil, errors.New("wallet returned no accounts")
	}

	address := accounts[0]
	slog.Info("session bound", "address", address.Hex(), "network", cfg.Network.Name)

	return &Session{
		Address:  address,
		Tasks:    todo.Bind(p, common.HexToAddress(cfg.ContractAddress), address),
		provider: p,
	}, nil
}

// Close releases the underlying provider connection.
func (s *Session) Close() {
	closeProvider(s.provider)
}

func closeProvider(p wallet.Provider) {
	if c, ok := p.(interface{ Close() }); ok {
		c.Close()
	}
}
