// Package testutil provides an in-memory stand-in for the wallet daemon and
// the Todo contract behind it. It decodes the real calldata the client
// produces, applies the contract's semantics (server-assigned ids and
// timestamps, soft delete) and supports per-call error injection.
package testutil

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"chaindo/internal/todo"
	"chaindo/internal/wallet"
)

// DefaultChainID matches the default target network in config.
const DefaultChainID = "0x7a69"

// contractABI is bound to a variable so its pointer-receiver lookups work.
var contractABI = todo.ABI()

// SentOp is one decoded mutating call received by the fake contract.
type SentOp struct {
	Method string
	Args   []any
}

// chainTask mirrors the ABI tuple layout so it can be packed directly.
type chainTask struct {
	Id        *big.Int
	Content   string
	Completed bool
	Deleted   bool
	CreatedAt *big.Int
}

type fakeReceipt struct {
	receipt *wallet.Receipt
	polls   int
}

// FakeChain implements wallet.Provider over an in-memory task collection.
type FakeChain struct {
	mu sync.Mutex

	// ActiveChain is the wallet's current chain id; KnownChains the set the
	// wallet can switch to without registration.
	ActiveChain string
	KnownChains map[string]bool
	Accounts    []common.Address

	// Requests logs every provider method in call order.
	Requests []string
	// SentOps logs every decoded mutation.
	SentOps []SentOp

	// Error injection.
	ChainIDErr  error
	SwitchErr   error
	AddChainErr error
	AccountsErr error
	CallErr     error
	SendErr     error
	ReceiptErr  error

	// SwitchIgnored makes the switch succeed without changing the active
	// chain, simulating the user flipping networks mid-prompt.
	SwitchIgnored bool
	// RevertNext makes the next submitted transaction mine with status 0
	// and apply nothing.
	RevertNext bool
	// ReceiptPolls is how many receipt lookups return pending before the
	// receipt appears.
	ReceiptPolls int

	tasks     []chainTask
	nextID    uint64
	txCounter uint64
	receipts  map[common.Hash]*fakeReceipt
}

var _ wallet.Provider = (*FakeChain)(nil)

func NewFakeChain() *FakeChain {
	return &FakeChain{
		ActiveChain: DefaultChainID,
		KnownChains: map[string]bool{DefaultChainID: true},
		Accounts: []common.Address{
			common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"),
		},
		receipts: make(map[common.Hash]*fakeReceipt),
	}
}

// SeedTask plants a task with an explicit id, so tests can present
// collections in arbitrary order.
func (f *FakeChain) SeedTask(id uint64, content string, completed, deleted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, chainTask{
		Id:        new(big.Int).SetUint64(id),
		Content:   content,
		Completed: completed,
		Deleted:   deleted,
		CreatedAt: big.NewInt(1_700_000_000 + int64(id)),
	})
	if id >= f.nextID {
		f.nextID = id + 1
	}
}

// Count reports how many times a provider method was called.
func (f *FakeChain) Count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.Requests {
		if r == method {
			n++
		}
	}
	return n
}

func (f *FakeChain) record(method string) {
	f.Requests = append(f.Requests, method)
}

func (f *FakeChain) ChainID(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("eth_chainId")
	if f.ChainIDErr != nil {
		return "", f.ChainIDErr
	}
	return f.ActiveChain, nil
}

func (f *FakeChain) SwitchChain(ctx context.Context, chainID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("wallet_switchEthereumChain")
	if f.SwitchErr != nil {
		return f.SwitchErr
	}
	if !f.KnownChains[chainID] {
		return &wallet.RPCError{Code: wallet.CodeUnrecognizedChain, Message: "unrecognized chain"}
	}
	if !f.SwitchIgnored {
		f.ActiveChain = chainID
	}
	return nil
}

func (f *FakeChain) AddChain(ctx context.Context, params wallet.ChainParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("wallet_addEthereumChain")
	if f.AddChainErr != nil {
		return f.AddChainErr
	}
	f.KnownChains[params.ChainID] = true
	if !f.SwitchIgnored {
		f.ActiveChain = params.ChainID
	}
	return nil
}

func (f *FakeChain) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("eth_requestAccounts")
	if f.AccountsErr != nil {
		return nil, f.AccountsErr
	}
	accounts := make([]common.Address, len(f.Accounts))
	copy(accounts, f.Accounts)
	return accounts, nil
}

func (f *FakeChain) Call(ctx context.Context, msg wallet.CallMsg) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("eth_call")
	if f.CallErr != nil {
		return nil, f.CallErr
	}

	method, err := contractABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	if method.Name != "getTasks" {
		return nil, fmt.Errorf("unexpected read call %q", method.Name)
	}
	return method.Outputs.Pack(f.tasks)
}

func (f *FakeChain) SendTransaction(ctx context.Context, msg wallet.CallMsg) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("eth_sendTransaction")
	if f.SendErr != nil {
		return common.Hash{}, f.SendErr
	}

	method, err := contractABI.MethodById(msg.Data[:4])
	if err != nil {
		return common.Hash{}, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return common.Hash{}, err
	}
	f.SentOps = append(f.SentOps, SentOp{Method: method.Name, Args: args})

	applied := false
	if !f.RevertNext {
		applied = f.apply(method.Name, args)
	}
	f.RevertNext = false

	f.txCounter++
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], f.txCounter)
	hash := common.BytesToHash(raw[:])

	status := hexutil.Uint64(0)
	if applied {
		status = 1
	}
	f.receipts[hash] = &fakeReceipt{
		receipt: &wallet.Receipt{
			TxHash:      hash,
			BlockNumber: (*hexutil.Big)(new(big.Int).SetUint64(f.txCounter)),
			Status:      status,
		},
		polls: f.ReceiptPolls,
	}
	return hash, nil
}

// apply executes the contract semantics. Mutations against missing ids fail
// like a reverted require().
func (f *FakeChain) apply(method string, args []any) bool {
	switch method {
	case "addTask":
		f.tasks = append(f.tasks, chainTask{
			Id:        new(big.Int).SetUint64(f.nextID),
			Content:   args[0].(string),
			CreatedAt: big.NewInt(1_700_000_000 + int64(f.nextID)),
		})
		f.nextID++
		return true
	case "toggleTask":
		if t := f.find(args[0].(*big.Int)); t != nil {
			t.Completed = !t.Completed
			return true
		}
	case "editTask":
		if t := f.find(args[0].(*big.Int)); t != nil {
			t.Content = args[1].(string)
			return true
		}
	case "deleteTask":
		if t := f.find(args[0].(*big.Int)); t != nil {
			t.Deleted = true
			return true
		}
	}
	return false
}

func (f *FakeChain) find(id *big.Int) *chainTask {
	for i := range f.tasks {
		if f.tasks[i].Id.Cmp(id) == 0 {
			return &f.tasks[i]
		}
	}
	return nil
}

func (f *FakeChain) TransactionReceipt(ctx context.Context, hash common.Hash) (*wallet.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("eth_getTransactionReceipt")
	if f.ReceiptErr != nil {
		return nil, f.ReceiptErr
	}
	entry, ok := f.receipts[hash]
	if !ok {
		return nil, nil
	}
	if entry.polls > 0 {
		entry.polls--
		return nil, nil
	}
	return entry.receipt, nil
}
