package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NamedEntity is the resolver's view of an author or a book title.
type NamedEntity struct {
	ID          uuid.UUID `json:"id"`
	DisplayForm string    `json:"display_form"`
	MatchKey    string    `json:"match_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// Source is the backing store as seen by the resolver.
//
// FindByMatchKey returns (nil, nil) or ErrNotFound when nothing has that key; any
// other error is treated as the store being unavailable.
type Source interface {
	FindByMatchKey(ctx context.Context, matchKey string) (*NamedEntity, error)
	ListCandidates(ctx context.Context) ([]NamedEntity, error)
}

// Match tells how a name was resolved.
type Match string

const (
	MatchNone  Match = "none"
	MatchExact Match = "exact"
	MatchFuzzy Match = "fuzzy"
)

// Result of a resolution. Entity is nil when Match is MatchNone.
type Result struct {
	Name    CanonicalName
	Entity  *NamedEntity
	Match   Match
	Score   float64
	Created bool
}

// Found reports whether an existing entity was matched.
func (r Result) Found() bool {
	return r.Entity != nil
}

// Options configures a Resolver for one entity type.
type Options struct {
	Fuzzy     bool
	Threshold float64
}

// Resolver decides whether a submitted name refers to an existing entity.
// It only reads; creating entities is left to the caller (see FindOrCreate).
type Resolver struct {
	fuzzy     bool
	threshold float64
}

func NewResolver(opts Options) *Resolver {
	threshold := opts.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Resolver{fuzzy: opts.Fuzzy, threshold: threshold}
}

// Threshold returns the fuzzy cut-off in use.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Resolve canonicalizes raw, tries an exact key lookup and then, if enabled, a
// fuzzy scan over every candidate.
func (r *Resolver) Resolve(ctx context.Context, raw string, src Source) (Result, error) {
	name := Canonicalize(raw)
	res := Result{Name: name, Match: MatchNone}
	if name.IsEmpty() {
		return res, ErrInvalidInput
	}

	// 1. Exact match
	entity, err := src.FindByMatchKey(ctx, name.MatchKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return res, &StoreError{Op: "find by key", Err: err}
	}
	if err == nil && entity != nil {
		res.Entity = entity
		res.Match = MatchExact
		res.Score = 1
		return res, nil
	}

	if !r.fuzzy {
		return res, nil
	}

	// 2. Fuzzy fallback
	all, err := src.ListCandidates(ctx)
	if err != nil {
		return res, &StoreError{Op: "list candidates", Err: err}
	}

	names := make([]CanonicalName, len(all))
	for i, e := range all {
		names[i] = CanonicalName{Raw: e.DisplayForm, DisplayForm: e.DisplayForm, MatchKey: e.MatchKey}
	}

	ranked := Rank(name.MatchKey, names, r.threshold)
	if len(ranked) == 0 {
		return res, nil
	}

	best := all[ranked[0].Index]
	res.Entity = &best
	res.Match = MatchFuzzy
	res.Score = ranked[0].Score
	return res, nil
}

// InsertFunc creates a new entity for name. It must return an error wrapping
// ErrUniquenessViolation when the store rejects a duplicate key.
type InsertFunc func(ctx context.Context, name CanonicalName) (*NamedEntity, error)

// FindOrCreate resolves raw and inserts only when nothing matches. An insert that
// loses a creation race is resolved again so both callers end up with the winner.
func FindOrCreate(ctx context.Context, r *Resolver, raw string, src Source, insert InsertFunc) (Result, error) {
	res, err := r.Resolve(ctx, raw, src)
	if err != nil || res.Found() {
		return res, err
	}

	created, err := insert(ctx, res.Name)
	if err == nil {
		res.Entity = created
		res.Created = true
		return res, nil
	}
	if !errors.Is(err, ErrUniquenessViolation) {
		return res, fmt.Errorf("insert %q: %w", res.Name.DisplayForm, err)
	}

	again, rerr := r.Resolve(ctx, raw, src)
	if rerr != nil {
		return again, rerr
	}
	if !again.Found() {
		// the conflicting row is not visible through this source
		return again, err
	}
	return again, nil
}
