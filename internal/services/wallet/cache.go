package wallet

import (
	"context"
	"time"

	"prizewallet/internal/repositories/cache"

	"github.com/sirupsen/logrus"
)

// cacheGet reports a hit only when the entry decoded cleanly.
func (s *service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
		found = false
	}
	if found {
		s.metrics.RecordCacheHit(key)
	} else {
		s.metrics.RecordCacheMiss(key)
	}
	return found
}

func (s *service) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// invalidateWallets drops the namespace of every touched wallet and the
// listings. balanceChanged also drops the lottery eligible sets.
func (s *service) invalidateWallets(ctx context.Context, balanceChanged bool, codes ...int64) {
	for _, code := range codes {
		if err := cache.InvalidateWallet(ctx, s.cache, code); err != nil {
			s.log.WithError(err).WithField("code", code).Warn("failed to invalidate wallet cache")
		}
	}
	if len(codes) == 0 {
		if err := cache.InvalidateWalletList(ctx, s.cache); err != nil {
			s.log.WithError(err).Warn("failed to invalidate wallet list cache")
		}
	}
	if balanceChanged {
		if err := cache.InvalidateLottery(ctx, s.cache); err != nil {
			s.log.WithError(err).Warn("failed to invalidate lottery cache")
		}
	}
}

// observe records the outcome of one operation. Call it deferred with a
// pointer to the named error result.
func (s *service) observe(op string, start time.Time, err *error) {
	s.metrics.RecordOperationDuration(op, time.Since(start))
	if *err == nil {
		s.metrics.RecordOperationResult(op, "success")
		return
	}

	kind := kindName(*err)
	s.metrics.RecordOperationResult(op, "failure")
	s.metrics.RecordError(op, kind)

	entry := s.log.WithFields(logrus.Fields{
		"operation": op,
		"kind":      kind,
	}).WithError(*err)
	if kind == "internal" {
		entry.Error("wallet operation failed")
	} else {
		entry.Info("wallet operation rejected")
	}
}
