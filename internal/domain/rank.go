package domain

import "math"

// Priority tiers. The tier always dominates the requested sort mode: every
// featured listing sorts before every merely-activated one, which sorts
// before unclaimed profiles.
const (
	TierFeatured  = 0
	TierActivated = 1
	TierStandard  = 2
)

// Null sentinels used so that missing sort-field values land at the end of
// their tier in every sort mode. The same values back the COALESCE
// expressions in the SQL ordering, keeping Go and SQL comparisons aligned.
const (
	ratingNull = float64(-1)
	priceNull  = int64(math.MaxInt64)
)

// Tier returns the listing's priority tier.
func (l *Listing) Tier() int {
	switch {
	case l.Featured:
		return TierFeatured
	case l.Activated:
		return TierActivated
	default:
		return TierStandard
	}
}

// RankKey is the three-level sort key (tier, sort-field value, id) that
// defines the strict total order over listings and is exactly what cursors
// encode. Only the field selected by the sort mode is meaningful besides
// Tier and ID.
type RankKey struct {
	Tier      int     `json:"t"`
	CreatedAt int64   `json:"c,omitempty"` // featured mode, unix micros
	Rating    float64 `json:"r,omitempty"` // rating mode, -1 when unrated
	Price     int64   `json:"p,omitempty"` // price mode, MaxInt64 when unpriced
	ID        string  `json:"i"`
}

// KeyFor extracts the rank key of a listing under the given sort mode.
func KeyFor(l *Listing, mode SortMode) RankKey {
	k := RankKey{Tier: l.Tier(), ID: l.ID}

	switch mode {
	case SortRating:
		k.Rating = ratingNull
		if l.Rating != nil {
			k.Rating = *l.Rating
		}
	case SortPrice:
		k.Price = priceNull
		if l.PriceAmount != nil {
			k.Price = *l.PriceAmount
		}
	default:
		k.CreatedAt = l.CreatedAt.UnixMicro()
	}

	return k
}

// Less reports whether a sorts strictly before b under the given mode.
// The order is total: two distinct listings never compare equal because the
// unique ID is the final tiebreaker.
func (a RankKey) Less(b RankKey, mode SortMode) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}

	switch mode {
	case SortRating:
		if a.Rating != b.Rating {
			return a.Rating > b.Rating // descending, nulls (-1) last
		}
	case SortPrice:
		if a.Price != b.Price {
			return a.Price < b.Price // ascending, nulls (max) last
		}
	default:
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt // newest first
		}
	}

	return a.ID < b.ID
}

// After reports whether a listing's key sorts strictly after the seek key,
// i.e. whether the listing belongs to the page that continues past it.
func (a RankKey) After(seek RankKey, mode SortMode) bool {
	return seek.Less(a, mode)
}
