// Package refine runs a bounded regenerate-and-rescore loop over a batch of
// scored items and remembers the best version of every item it has seen.
package refine

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Evolution is the history of one item across the iterations of a run.
type Evolution[T any] struct {
	ID            string  `json:"id"`
	Iterations    []T     `json:"iterations"`
	BestScore     float64 `json:"bestScore"`
	BestIteration int     `json:"bestIteration"`
}

// Best returns the highest scoring version of the item.
func (e *Evolution[T]) Best() T {
	return e.Iterations[e.BestIteration]
}

func (e *Evolution[T]) record(item T, score float64) {
	e.Iterations = append(e.Iterations, item)
	// only a strict improvement moves the best iteration
	if score > e.BestScore {
		e.BestScore = score
		e.BestIteration = len(e.Iterations) - 1
	}
}

// RefineFunc produces the next version of the batch. low holds the items of
// current that scored below the threshold, in batch order.
type RefineFunc[T any] func(ctx context.Context, iteration int, current, low []T) ([]T, error)

// Config parameterizes Run.
type Config[T any] struct {
	// MaxIterations counts the initial batch; at most MaxIterations-1
	// refinement rounds run.
	MaxIterations int
	// Threshold is the per-item score an item must reach to be left alone.
	Threshold float64
	ID        func(T) string
	Score     func(T) float64
	Refine    RefineFunc[T]
}

// Result is the outcome of Run.
type Result[T any] struct {
	// Best holds the best version of every item, in first-seen order.
	Best       []T
	Evolutions []*Evolution[T]
	// Rounds is the number of refinement rounds that ran.
	Rounds int
}

// ErrEmptyRefinement is returned when a refinement round yields no items.
var ErrEmptyRefinement = errors.New("refine: refinement returned no items")

// Run refines initial until every item reaches the threshold or the
// iteration budget is spent. Refinement errors abort the run.
func Run[T any](ctx context.Context, cfg Config[T], initial []T) (Result[T], error) {
	var evolutions []*Evolution[T]
	byID := make(map[string]*Evolution[T])
	record := func(items []T) {
		for _, item := range items {
			id := cfg.ID(item)
			evo, ok := byID[id]
			if !ok {
				evo = &Evolution[T]{ID: id, BestScore: cfg.Score(item)}
				evo.Iterations = append(evo.Iterations, item)
				byID[id] = evo
				evolutions = append(evolutions, evo)
				continue
			}
			evo.record(item, cfg.Score(item))
		}
	}
	record(initial)

	current := initial
	rounds := 0
	for iteration := 0; iteration < cfg.MaxIterations-1; iteration++ {
		low := Below(current, cfg.Score, cfg.Threshold)
		if len(low) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return Result[T]{}, err
		}

		next, err := cfg.Refine(ctx, iteration+1, current, low)
		if err != nil {
			return Result[T]{}, fmt.Errorf("refinement round %d: %w", iteration+1, err)
		}
		if len(next) == 0 {
			return Result[T]{}, fmt.Errorf("refinement round %d: %w", iteration+1, ErrEmptyRefinement)
		}
		record(next)
		current = next
		rounds++
	}

	best := make([]T, len(evolutions))
	for i, evo := range evolutions {
		best[i] = evo.Best()
	}
	return Result[T]{Best: best, Evolutions: evolutions, Rounds: rounds}, nil
}

// Below returns the items scoring under threshold, in order.
func Below[T any](items []T, score func(T) float64, threshold float64) []T {
	var out []T
	for _, item := range items {
		if score(item) < threshold {
			out = append(out, item)
		}
	}
	return out
}

// AtLeast drops the items scoring under floor.
func AtLeast[T any](items []T, score func(T) float64, floor float64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if score(item) >= floor {
			out = append(out, item)
		}
	}
	return out
}

// SortByScore orders items by score, highest first, keeping the order of
// equal scores.
func SortByScore[T any](items []T, score func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return score(items[i]) > score(items[j])
	})
}

// Merge replaces the items of current whose id appears in updates and keeps
// the others. Updates with unknown ids are ignored.
func Merge[T any](current, updates []T, id func(T) string) []T {
	byID := make(map[string]T, len(updates))
	for _, u := range updates {
		byID[id(u)] = u
	}
	out := make([]T, len(current))
	for i, item := range current {
		if u, ok := byID[id(item)]; ok {
			out[i] = u
			continue
		}
		out[i] = item
	}
	return out
}
