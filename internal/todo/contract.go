// Package todo binds the remote Todo contract. Reads return the full task
// collection in contract order; mutations are two-phase, a submission via the
// wallet followed by an explicit wait for the mined receipt.
package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"chaindo/internal/wallet"
)

const (
	// readTimeout bounds contract reads. Mutations get no deadline: wallet
	// approval and mining may take as long as the user and the network want.
	readTimeout = 10 * time.Second

	defaultPollInterval = 2 * time.Second
)

// ErrReverted means the transaction was mined but its execution failed, so
// no state changed.
var ErrReverted = errors.New("transaction reverted")

// Task is one mirrored task record. Fields are remote-owned; the client never
// changes them except through a confirmed mutation.
type Task struct {
	ID        uint64
	Content   string
	Completed bool
	Deleted   bool
	CreatedAt time.Time
}

// rawTask matches the ABI tuple layout for decoding.
type rawTask struct {
	Id        *big.Int
	Content   string
	Completed bool
	Deleted   bool
	CreatedAt *big.Int
}

// Contract is a write-capable handle bound to the contract address and one
// authorized identity.
type Contract struct {
	provider wallet.Provider
	address  common.Address
	from     common.Address

	// PollInterval is the receipt polling cadence. Tests shrink it.
	PollInterval time.Duration
}

func Bind(p wallet.Provider, contract, from common.Address) *Contract {
	return &Contract{
		provider:     p,
		address:      contract,
		from:         from,
		PollInterval: defaultPollInterval,
	}
}

// GetTasks fetches every task, soft-deleted ones included, in whatever order
// the contract returns them. The contract owns ordering; nothing here sorts.
func (c *Contract) GetTasks(ctx context.Context) ([]Task, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	data, err := contractABI.Pack("getTasks")
	if err != nil {
		return nil, err
	}
	out, err := c.provider.Call(ctx, c.msg(data))
	if err != nil {
		return nil, fmt.Errorf("getTasks call failed: %w", err)
	}

	decoded, err := contractABI.Unpack("getTasks", out)
	if err != nil {
		return nil, fmt.Errorf("getTasks decode failed: %w", err)
	}
	raw := *abi.ConvertType(decoded[0], new([]rawTask)).(*[]rawTask)

	tasks := make([]Task, 0, len(raw))
	for _, r := range raw {
		tasks = append(tasks, Task{
			ID:        r.Id.Uint64(),
			Content:   r.Content,
			Completed: r.Completed,
			Deleted:   r.Deleted,
			CreatedAt: time.Unix(r.CreatedAt.Int64(), 0),
		})
	}
	return tasks, nil
}

// AddTask submits a new task. The caller validates and trims content first.
func (c *Contract) AddTask(ctx context.Context, content string) (*PendingTx, error) {
	return c.submit(ctx, "addTask", content)
}

// ToggleTask flips the completed flag of an existing task.
func (c *Contract) ToggleTask(ctx context.Context, id uint64) (*PendingTx, error) {
	return c.submit(ctx, "toggleTask", new(big.Int).SetUint64(id))
}

// EditTask replaces the content of an existing task.
func (c *Contract) EditTask(ctx context.Context, id uint64, content string) (*PendingTx, error) {
	return c.submit(ctx, "editTask", new(big.Int).SetUint64(id), content)
}

// DeleteTask marks a task deleted. The record stays on chain; only the flag
// changes.
func (c *Contract) DeleteTask(ctx context.Context, id uint64) (*PendingTx, error) {
	return c.submit(ctx, "deleteTask", new(big.Int).SetUint64(id))
}

func (c *Contract) submit(ctx context.Context, method string, args ...any) (*PendingTx, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	hash, err := c.provider.SendTransaction(ctx, c.msg(data))
	if err != nil {
		return nil, fmt.Errorf("%s submission failed: %w", method, err)
	}
	slog.Debug("transaction submitted", "method", method, "tx", hash.Hex())
	return &PendingTx{contract: c, Hash: hash}, nil
}

func (c *Contract) msg(data []byte) wallet.CallMsg {
	return wallet.CallMsg{From: c.from, To: c.address, Data: data}
}

// PendingTx is a submitted but unconfirmed mutation.
type PendingTx struct {
	contract *Contract
	Hash     common.Hash
}

// Wait polls until the transaction is mined. There is no deadline; once
// broadcast the transaction cannot be recalled, so the only ways out are a
// receipt or ctx cancellation. A status-0 receipt yields ErrReverted.
func (p *PendingTx) Wait(ctx context.Context) error {
	for {
		receipt, err := p.contract.provider.TransactionReceipt(ctx, p.Hash)
		if err != nil {
			return fmt.Errorf("receipt lookup failed: %w", err)
		}
		if receipt != nil {
			if !receipt.Succeeded() {
				return fmt.Errorf("%w: tx %s", ErrReverted, p.Hash.Hex())
			}
			slog.Debug("transaction mined", "tx", p.Hash.Hex(), "block", receipt.BlockNumber)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.contract.PollInterval):
		}
	}
}
