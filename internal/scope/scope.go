// Package scope fans a read out over every gym in a caller's scope and
// concatenates the per-gym results.
package scope

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

// Ref identifies one gym in scope.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Failure records a gym whose fetch failed.
type Failure struct {
	GymID string `json:"gymId"`
	Error string `json:"error"`
}

type Result[T any] struct {
	Items    []T
	Failures []Failure
}

// FetchFunc reads one gym's records.
type FetchFunc[T any] func(ctx context.Context, gym Ref) ([]T, error)

// TagFunc stamps a record with the gym it came from.
type TagFunc[T any] func(item T, gym Ref) T

// Gather runs fetch once per gym with at most limit requests in flight.
// A failing gym is logged and skipped; it never cancels the other gyms and
// never fails the aggregate. Items keep the input gym order.
func Gather[T any](ctx context.Context, gyms []Ref, limit int, fetch FetchFunc[T], tag TagFunc[T]) Result[T] {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	perGym := make([][]T, len(gyms))
	errs := make([]error, len(gyms))

	// plain Group (no WithContext): one failure must not cancel siblings
	var g errgroup.Group
	g.SetLimit(limit)
	for i, gym := range gyms {
		g.Go(func() error {
			items, err := fetch(ctx, gym)
			if err != nil {
				errs[i] = err
				return nil
			}
			if tag != nil {
				for j := range items {
					items[j] = tag(items[j], gym)
				}
			}
			perGym[i] = items
			return nil
		})
	}
	_ = g.Wait()

	res := Result[T]{Items: []T{}}
	for i, gym := range gyms {
		if errs[i] != nil {
			log.Printf("[scope] fetch failed for gym %s: %v", gym.ID, errs[i])
			res.Failures = append(res.Failures, Failure{GymID: gym.ID, Error: errs[i].Error()})
			continue
		}
		res.Items = append(res.Items, perGym[i]...)
	}
	return res
}

// IDs returns the gym ids in order.
func IDs(gyms []Ref) []string {
	out := make([]string, 0, len(gyms))
	for _, g := range gyms {
		out = append(out, g.ID)
	}
	return out
}
