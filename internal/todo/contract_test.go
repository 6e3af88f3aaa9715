package todo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"chaindo/internal/testutil"
	"chaindo/internal/todo"
)

var (
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	ownerAddr    = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
)

func bind(f *testutil.FakeChain) *todo.Contract {
	c := todo.Bind(f, contractAddr, ownerAddr)
	c.PollInterval = time.Millisecond
	return c
}

func mustWait(t *testing.T, tx *todo.PendingTx, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := tx.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestGetTasksReturnsEverythingInStoreOrder(t *testing.T) {
	f := testutil.NewFakeChain()
	f.SeedTask(3, "ship it", false, false)
	f.SeedTask(1, "old one", true, true)
	f.SeedTask(2, "buy milk", true, false)

	tasks, err := bind(f).GetTasks(context.Background())
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks (deleted included), got %d", len(tasks))
	}
	// The store owns ordering; the client must not re-sort by id.
	wantIDs := []uint64{3, 1, 2}
	for i, want := range wantIDs {
		if tasks[i].ID != want {
			t.Fatalf("task %d: id %d, want %d", i, tasks[i].ID, want)
		}
	}
	if !tasks[1].Deleted || !tasks[1].Completed {
		t.Fatalf("flags lost in decode: %+v", tasks[1])
	}
	if got := tasks[0].CreatedAt; !got.Equal(time.Unix(1_700_000_003, 0)) {
		t.Fatalf("createdAt decoded as %v", got)
	}
}

func TestAddTaskLifecycle(t *testing.T) {
	f := testutil.NewFakeChain()
	c := bind(f)

	tx, err := c.AddTask(context.Background(), "Buy milk")
	mustWait(t, tx, err)

	if len(f.SentOps) != 1 || f.SentOps[0].Method != "addTask" {
		t.Fatalf("sent ops: %+v", f.SentOps)
	}
	if got := f.SentOps[0].Args[0].(string); got != "Buy milk" {
		t.Fatalf("submitted content %q", got)
	}

	tasks, err := c.GetTasks(context.Background())
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Content != "Buy milk" || got.Completed || got.Deleted {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestToggleTask(t *testing.T) {
	f := testutil.NewFakeChain()
	f.SeedTask(0, "ship it", false, false)
	c := bind(f)

	tx, err := c.ToggleTask(context.Background(), 0)
	mustWait(t, tx, err)

	tasks, _ := c.GetTasks(context.Background())
	if !tasks[0].Completed {
		t.Fatal("toggle did not flip completed")
	}

	tx, err = c.ToggleTask(context.Background(), 0)
	mustWait(t, tx, err)
	tasks, _ = c.GetTasks(context.Background())
	if tasks[0].Completed {
		t.Fatal("second toggle did not flip back")
	}
}

func TestEditTask(t *testing.T) {
	f := testutil.NewFakeChain()
	f.SeedTask(0, "ship it", false, false)
	c := bind(f)

	tx, err := c.EditTask(context.Background(), 0, "ship it today")
	mustWait(t, tx, err)

	tasks, _ := c.GetTasks(context.Background())
	if tasks[0].Content != "ship it today" {
		t.Fatalf("content is %q", tasks[0].Content)
	}
}

func TestDeleteTaskIsSoft(t *testing.T) {
	f := testutil.NewFakeChain()
	f.SeedTask(0, "ship it", false, false)
	c := bind(f)

	tx, err := c.DeleteTask(context.Background(), 0)
	mustWait(t, tx, err)

	tasks, _ := c.GetTasks(context.Background())
	if len(tasks) != 1 {
		t.Fatalf("soft delete must keep the record, got %d tasks", len(tasks))
	}
	if !tasks[0].Deleted {
		t.Fatal("deleted flag not set")
	}
}

func TestRevertedTransaction(t *testing.T) {
	f := testutil.NewFakeChain()
	f.SeedTask(0, "ship it", false, false)
	f.RevertNext = true
	c := bind(f)

	tx, err := c.ToggleTask(context.Background(), 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := tx.Wait(context.Background()); !errors.Is(err, todo.ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}

	tasks, _ := c.GetTasks(context.Background())
	if tasks[0].Completed {
		t.Fatal("reverted toggle must not apply")
	}
}

func TestMutationOnMissingIDReverts(t *testing.T) {
	f := testutil.NewFakeChain()
	c := bind(f)

	tx, err := c.ToggleTask(context.Background(), 42)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := tx.Wait(context.Background()); !errors.Is(err, todo.ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}
}

func TestWaitPollsUntilMined(t *testing.T) {
	f := testutil.NewFakeChain()
	f.ReceiptPolls = 2
	c := bind(f)

	tx, err := c.AddTask(context.Background(), "slow block")
	mustWait(t, tx, err)

	if n := f.Count("eth_getTransactionReceipt"); n != 3 {
		t.Fatalf("expected 3 receipt lookups, got %d", n)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	f := testutil.NewFakeChain()
	f.ReceiptPolls = 1_000_000
	c := bind(f)

	tx, err := c.AddTask(context.Background(), "never mined")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := tx.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
