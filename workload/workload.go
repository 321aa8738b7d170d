// Package workload drives random demo traffic against the store's public
// operation surface. It consumes the API only and produces no guarantees;
// validation errors are an expected part of the generated traffic.
package workload

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/romshark/todosim/domain"
)

var descriptions = []string{
	"buy groceries",
	"do the laundry",
	"answer emails",
	"pay the invoice",
	"water the plants",
	"finish the report",
	"call the dentist",
	"clean the garage",
}

var listNames = []string{"home", "work", "errands", "someday", "urgent"}

// Driver issues randomly chosen operations against store.
type Driver struct {
	store    *domain.Store
	rng      *rand.Rand
	interval time.Duration
}

// New creates a driver with a deterministic operation sequence for seed.
func New(store *domain.Store, seed uint64, interval time.Duration) *Driver {
	return &Driver{
		store:    store,
		rng:      rand.New(rand.NewPCG(seed, seed)),
		interval: interval,
	}
}

// Run performs one operation per interval until ctx is canceled.
func (d *Driver) Run(ctx context.Context) {
	t := time.NewTicker(d.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			op, err := d.Step(ctx)
			if err != nil {
				slog.Debug("operation failed",
					slog.String("op", op), slog.Any("err", err))
			}
		}
	}
}

// Step performs one randomly chosen operation and reports its name.
// Indices are drawn blindly from a small range, so some calls exercise
// the store's validation path on purpose.
func (d *Driver) Step(ctx context.Context) (op string, err error) {
	switch n := d.rng.IntN(100); {
	case n < 25:
		op = "listAll"
		var lists []domain.TodoList
		if lists, err = d.store.ListAll(ctx); err == nil {
			slog.Debug("listed", slog.Int("lists", len(lists)))
		}
	case n < 40:
		op = "createList"
		name := fmt.Sprintf("%s %d",
			listNames[d.rng.IntN(len(listNames))], d.rng.IntN(100))
		var index int
		if index, err = d.store.CreateList(ctx, name); err == nil {
			slog.Debug("created list",
				slog.String("name", name), slog.Int("index", index))
		}
	case n < 48:
		op = "deleteList"
		_, err = d.store.DeleteList(ctx, d.randIndex())
	case n < 68:
		op = "addItem"
		_, err = d.store.AddItem(ctx, d.randIndex(), d.randItem())
	case n < 78:
		op = "removeItem"
		_, err = d.store.RemoveItem(ctx, d.randIndex(), d.randIndex())
	case n < 88:
		op = "moveItem"
		_, err = d.store.MoveItem(ctx,
			d.randIndex(), d.randIndex(), d.randIndex())
	case n < 95:
		op = "editItem"
		_, err = d.store.EditItem(ctx,
			d.randIndex(), d.randIndex(), d.randItem())
	default:
		op = "searchItems"
		var matches []domain.ItemMatch
		term := descriptions[d.rng.IntN(len(descriptions))]
		if matches, err = d.store.SearchItems(ctx, term); err == nil {
			slog.Debug("searched",
				slog.String("term", term), slog.Int("matches", len(matches)))
		}
	}
	return op, err
}

func (d *Driver) randIndex() int { return d.rng.IntN(8) }

func (d *Driver) randItem() domain.TodoItem {
	return domain.TodoItem{
		Description: descriptions[d.rng.IntN(len(descriptions))],
		Done:        d.rng.IntN(4) == 0,
	}
}

// IsMutation reports whether op is one of the store's mutating operations.
func IsMutation(op string) bool {
	switch op {
	case "createList", "deleteList", "addItem", "removeItem",
		"moveItem", "editItem":
		return true
	}
	return false
}
