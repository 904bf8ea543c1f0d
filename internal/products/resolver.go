package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creamlane/creamery-backend/pkg/db/models"
	pkgerrors "github.com/creamlane/creamery-backend/pkg/errors"
)

// ResolveAt returns the price effective at the given instant: among the
// intervals still in force at that instant (a NULL bound counts as
// +infinity), the one with the smallest closing bound wins. The boolean is
// false when no interval covers the instant.
//
// Deleted intervals participate: the flag marks frozen history, it does not
// erase it. A soft delete closes the open interval, so every instant at or
// after the delete already resolves to none while earlier instants keep
// returning the price that was effective then.
//
// Two candidates sharing the same bound would make the answer depend on scan
// order, so that case is reported as a consistency error instead of being
// resolved arbitrarily.
//
// ResolveAt never mutates its input.
func ResolveAt(intervals []models.PriceInterval, at time.Time) (decimal.Decimal, bool, error) {
	var best *models.PriceInterval
	for i := range intervals {
		iv := &intervals[i]
		if !iv.CoversAt(at) {
			continue
		}
		if best == nil {
			best = iv
			continue
		}
		switch {
		case boundEqual(best.ValidTo, iv.ValidTo):
			return decimal.Zero, false, pkgerrors.New(pkgerrors.CodeConsistency,
				"price history corrupt: two intervals share a closing boundary")
		case boundLess(iv.ValidTo, best.ValidTo):
			best = iv
		}
	}
	if best == nil {
		return decimal.Zero, false, nil
	}
	return best.Price, true, nil
}

// ResolveCurrent is ResolveAt at the provided notion of now.
func ResolveCurrent(intervals []models.PriceInterval, now time.Time) (decimal.Decimal, bool, error) {
	return ResolveAt(intervals, now)
}

func boundEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// boundLess orders closing bounds with NULL as +infinity.
func boundLess(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}
