package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Presence is the tri-state answer of an existence check.
type Presence int

const (
	// Unknown means the cache has no answer (miss or failure): ask the store.
	Unknown Presence = iota
	Present
	Absent
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// Existence is the result of ExistenceCache.Check. Value is set only when Present.
type Existence struct {
	State Presence
	Value string
}

const (
	DefaultPresentTTL = time.Hour
	DefaultAbsentTTL  = 5 * time.Minute
)

// ExistenceOptions configures an ExistenceCache.
type ExistenceOptions struct {
	PresentSuffix string // appended to the key for the positive line
	AbsentSuffix  string // appended to the key for the negative line
	PresentTTL    time.Duration
	AbsentTTL     time.Duration

	// OnCheck, if set, is called with every Check result (metrics).
	OnCheck func(Presence)
}

// ExistenceCache keeps a positive and a negative line per key in front of an
// authoritative store.
//
//	{none} --present--> {positive} --invalidate/ttl--> {none}
//	{none} --absent---> {negative} --invalidate/present/ttl--> {none}
//
// A positive line always wins over a negative one. Cache failures never surface:
// reads degrade to Unknown and writes are dropped with a warning.
type ExistenceCache struct {
	cache Cache
	opts  ExistenceOptions
}

func NewExistenceCache(c Cache, opts ExistenceOptions) *ExistenceCache {
	if opts.PresentSuffix == "" {
		opts.PresentSuffix = "present"
	}
	if opts.AbsentSuffix == "" {
		opts.AbsentSuffix = "absent"
	}
	if opts.PresentTTL <= 0 {
		opts.PresentTTL = DefaultPresentTTL
	}
	if opts.AbsentTTL <= 0 {
		opts.AbsentTTL = DefaultAbsentTTL
	}
	return &ExistenceCache{cache: c, opts: opts}
}

func (e *ExistenceCache) positiveKey(key string) string {
	return fmt.Sprintf("%s:%s", key, e.opts.PresentSuffix)
}

func (e *ExistenceCache) negativeKey(key string) string {
	return fmt.Sprintf("%s:%s", key, e.opts.AbsentSuffix)
}

// Check answers from the cache only.
func (e *ExistenceCache) Check(ctx context.Context, key string) Existence {
	res := e.check(ctx, key)
	if e.opts.OnCheck != nil {
		e.opts.OnCheck(res.State)
	}
	return res
}

func (e *ExistenceCache) check(ctx context.Context, key string) Existence {
	var value string
	found, err := e.cache.Get(ctx, e.positiveKey(key), &value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] existence check failed, falling back to store")
		return Existence{State: Unknown}
	}
	if found {
		return Existence{State: Present, Value: value}
	}

	negative, err := e.cache.Exists(ctx, e.negativeKey(key))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] negative check failed, falling back to store")
		return Existence{State: Unknown}
	}
	if negative {
		return Existence{State: Absent}
	}
	return Existence{State: Unknown}
}

// RecordPresent stores a positive answer and drops any negative line.
func (e *ExistenceCache) RecordPresent(ctx context.Context, key, value string) {
	if err := e.cache.Set(ctx, e.positiveKey(key), value, e.opts.PresentTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] failed to record presence")
	}
	// Even if the Set failed, a stale negative line must not survive.
	if err := e.cache.Delete(ctx, e.negativeKey(key)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] failed to clear negative entry")
	}
}

// RecordAbsent stores a negative answer unless a positive line exists.
func (e *ExistenceCache) RecordAbsent(ctx context.Context, key string) {
	positive, err := e.cache.Exists(ctx, e.positiveKey(key))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] skip negative entry, positive check failed")
		return
	}
	if positive {
		return
	}
	if err := e.cache.Set(ctx, e.negativeKey(key), "1", e.opts.AbsentTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] failed to record absence")
	}
}

// Invalidate removes both lines.
func (e *ExistenceCache) Invalidate(ctx context.Context, key string) {
	if err := e.cache.Delete(ctx, e.positiveKey(key), e.negativeKey(key)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[CACHE] failed to invalidate")
	}
}

// InvalidateMatching removes both lines of every key matching keyPattern (glob
// syntax). Used when the store drops many relationships at once.
func (e *ExistenceCache) InvalidateMatching(ctx context.Context, keyPattern string) {
	for _, pattern := range []string{e.positiveKey(keyPattern), e.negativeKey(keyPattern)} {
		if err := e.cache.DeletePattern(ctx, pattern); err != nil {
			log.Warn().Err(err).Str("pattern", pattern).Msg("[CACHE] failed to invalidate matching keys")
		}
	}
}

// LoadFunc asks the authoritative store. It returns the value and whether it exists.
type LoadFunc func(ctx context.Context) (string, bool, error)

// Lookup is the read-through path: cache first, then the store, then populate.
// Store errors are returned as is; cache errors never are.
func (e *ExistenceCache) Lookup(ctx context.Context, key string, load LoadFunc) (string, bool, error) {
	switch res := e.Check(ctx, key); res.State {
	case Present:
		return res.Value, true, nil
	case Absent:
		return "", false, nil
	}

	value, ok, err := load(ctx)
	if err != nil {
		return "", false, err
	}
	if ok {
		e.RecordPresent(ctx, key, value)
	} else {
		e.RecordAbsent(ctx, key)
	}
	return value, ok, nil
}
