// Package wallet defines the provider surface the client consumes from an
// external wallet daemon (the EIP-1193 request set a browser wallet exposes),
// plus a JSON-RPC implementation of it. The wallet holds the keys and prompts
// the user; this package never sees a private key.
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Currency is the native currency metadata of a chain registration request.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainParams is the payload of wallet_addEthereumChain.
type ChainParams struct {
	ChainID        string   `json:"chainId"`
	ChainName      string   `json:"chainName"`
	RPCURLs        []string `json:"rpcUrls"`
	NativeCurrency Currency `json:"nativeCurrency"`
}

// CallMsg carries a contract read or a transaction to be signed and
// broadcast by the wallet.
type CallMsg struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// Receipt is the subset of a transaction receipt the client cares about.
// A nil receipt means the transaction has not been mined yet.
type Receipt struct {
	TxHash      common.Hash    `json:"transactionHash"`
	BlockNumber *hexutil.Big   `json:"blockNumber"`
	Status      hexutil.Uint64 `json:"status"`
}

// Succeeded reports whether the mined transaction executed without revert.
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == 1
}

// Provider is the wallet-mediated view of the chain. Every method is a
// suspension point: the wallet may block on user approval for as long as it
// likes, so callers pass a context and await completion before moving on.
type Provider interface {
	// ChainID returns the wallet's active chain id as a hex quantity.
	ChainID(ctx context.Context) (string, error)

	// SwitchChain asks the wallet to move to the given chain. Wallets that
	// do not know the chain fail with code 4902.
	SwitchChain(ctx context.Context, chainID string) error

	// AddChain asks the wallet to register a network it does not know.
	AddChain(ctx context.Context, params ChainParams) error

	// RequestAccounts asks for account access and returns the authorized
	// identities. Rejection fails with code 4001.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Call executes a read-only contract call against the latest block.
	Call(ctx context.Context, msg CallMsg) ([]byte, error)

	// SendTransaction has the wallet sign and broadcast the transaction,
	// returning its hash. The hash is a submission receipt only; durability
	// requires waiting for the mined receipt.
	SendTransaction(ctx context.Context, msg CallMsg) (common.Hash, error)

	// TransactionReceipt returns the mined receipt, or nil while pending.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
}
