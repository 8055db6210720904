package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segyhp/emi-ledger/internal/cache"
)

// Cached projections are keyed by the generations of the scopes they read.
// A write bumps the generation of every scope it touches, so an entry filled
// from rows read before the write is never served again and simply expires.
const (
	allLoansScope = "loans"
	catalogScope  = "catalog"
)

func userScope(userID int64) string { return fmt.Sprintf("user:%d", userID) }

func generationKey(scope string) string { return "gen:" + scope }

func emiApplicationsKey(userID int64) string { return fmt.Sprintf("emi-applications:%d", userID) }

func emiDetailsKey(userID int64) string { return fmt.Sprintf("emi-details:%d", userID) }

func activeLoansKey(userID *int64) string {
	if userID == nil {
		return "active-loans:all"
	}
	return fmt.Sprintf("active-loans:%d", *userID)
}

// userViewScopes are the scopes a per-user projection depends on.
func userViewScopes(userID int64) []string {
	return []string{userScope(userID), catalogScope}
}

func activeLoansScopes(userID *int64) []string {
	if userID == nil {
		return []string{allLoansScope, catalogScope}
	}
	return userViewScopes(*userID)
}

// cachedView serves key from the store under the current generations of scopes.
// When a generation cannot be read the cache is bypassed.
func cachedView[T any](ctx context.Context, store cache.Store, ttl time.Duration, key string, scopes []string, load func() (T, error)) (T, error) {
	versioned := key
	for _, scope := range scopes {
		var gen int64
		if err := store.Get(ctx, generationKey(scope), &gen); err != nil && !errors.Is(err, cache.ErrMiss) {
			slog.WarnContext(ctx, "cache generation read failed", "scope", scope, "error", err)
			return load()
		}
		versioned += fmt.Sprintf(":%s@%d", scope, gen)
	}
	return cache.GetOrSet(ctx, store, versioned, ttl, load)
}

// bump advances the generation of each scope. Failures are only logged;
// entries of the old generation expire on their own.
func bump(ctx context.Context, store cache.Store, scopes ...string) {
	for _, scope := range scopes {
		if _, err := store.Incr(ctx, generationKey(scope)); err != nil {
			slog.WarnContext(ctx, "cache invalidation failed", "scope", scope, "error", err)
		}
	}
}

// invalidateUser retires every cached projection that can contain the user's loans.
func invalidateUser(ctx context.Context, store cache.Store, userID int64) {
	bump(ctx, store, userScope(userID), allLoansScope)
}

// invalidateCatalog retires projections that join vehicle rows.
func invalidateCatalog(ctx context.Context, store cache.Store) {
	bump(ctx, store, catalogScope)
}
