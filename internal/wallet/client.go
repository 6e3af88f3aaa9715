package wallet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client talks JSON-RPC to a wallet daemon (e.g. Frame on localhost:1248).
type Client struct {
	rpc *rpc.Client
}

var _ Provider = (*Client)(nil)

// Dial connects to the wallet endpoint and probes it once. A daemon that
// cannot be reached yields ErrNotAvailable so callers can tell "no wallet"
// apart from later request failures.
func Dial(ctx context.Context, url string) (*Client, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}

	var version string
	if err := rc.CallContext(ctx, &version, "web3_clientVersion"); err != nil {
		rc.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	slog.Debug("wallet provider attached", "url", url, "version", version)

	return &Client{rpc: rc}, nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := c.rpc.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return "", err
	}
	return id, nil
}

type switchChainParams struct {
	ChainID string `json:"chainId"`
}

func (c *Client) SwitchChain(ctx context.Context, chainID string) error {
	var result any
	return c.rpc.CallContext(ctx, &result, "wallet_switchEthereumChain", switchChainParams{ChainID: chainID})
}

func (c *Client) AddChain(ctx context.Context, params ChainParams) error {
	var result any
	return c.rpc.CallContext(ctx, &result, "wallet_addEthereumChain", params)
}

func (c *Client) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) Call(ctx context.Context, msg CallMsg) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &out, "eth_call", msg, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendTransaction(ctx context.Context, msg CallMsg) (common.Hash, error) {
	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", msg); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var receipt *Receipt
	if err := c.rpc.CallContext(ctx, &receipt, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	return receipt, nil
}
