package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bucket identifies a quality grade assigned to returned job-work goods.
type Bucket string

const (
	// BucketOK is the accepted quantity
	BucketOK Bucket = "OK"
	// BucketCR is the credited-as-reject quantity
	BucketCR Bucket = "CR"
	// BucketMR is the rework-needed quantity
	BucketMR Bucket = "MR"
)

// String returns the string representation of Bucket
func (b Bucket) String() string {
	return string(b)
}

// bucketRule declares how a bucket behaves during reconciliation. A bucket
// with a non-empty AbsorbedBy pushes its over-billed shortfall into that
// bucket instead of reporting a negative remaining quantity.
type bucketRule struct {
	Bucket     Bucket
	AbsorbedBy Bucket
}

// Buckets is the ordered set of quality buckets. Order matters: absorption
// is resolved in this order, and an absorbing bucket must precede the
// buckets it absorbs.
var Buckets = []bucketRule{
	{Bucket: BucketOK},
	{Bucket: BucketCR, AbsorbedBy: BucketOK},
	{Bucket: BucketMR},
}

// QualitySplit is an immutable value object holding one quantity per quality
// bucket. It deliberately carries no unit: job-work quantities are piece
// counts in the same unit as the intake order line they settle against.
type QualitySplit struct {
	values map[Bucket]decimal.Decimal
}

// NewQualitySplit creates a split from the three bucket quantities.
// Every bucket must be non-negative.
func NewQualitySplit(ok, cr, mr decimal.Decimal) (QualitySplit, error) {
	s := QualitySplit{values: map[Bucket]decimal.Decimal{
		BucketOK: ok,
		BucketCR: cr,
		BucketMR: mr,
	}}
	for _, rule := range Buckets {
		if s.values[rule.Bucket].IsNegative() {
			return QualitySplit{}, fmt.Errorf("bucket %s cannot be negative", rule.Bucket)
		}
	}
	return s, nil
}

// MustNewQualitySplit creates a split and panics on error
func MustNewQualitySplit(ok, cr, mr decimal.Decimal) QualitySplit {
	s, err := NewQualitySplit(ok, cr, mr)
	if err != nil {
		panic(err)
	}
	return s
}

// ZeroQualitySplit returns a split with every bucket at zero
func ZeroQualitySplit() QualitySplit {
	return MustNewQualitySplit(decimal.Zero, decimal.Zero, decimal.Zero)
}

// Get returns the quantity in the given bucket
func (s QualitySplit) Get(b Bucket) decimal.Decimal {
	if s.values == nil {
		return decimal.Zero
	}
	return s.values[b]
}

// OK returns the accepted quantity
func (s QualitySplit) OK() decimal.Decimal { return s.Get(BucketOK) }

// CR returns the credited-as-reject quantity
func (s QualitySplit) CR() decimal.Decimal { return s.Get(BucketCR) }

// MR returns the rework-needed quantity
func (s QualitySplit) MR() decimal.Decimal { return s.Get(BucketMR) }

// Total returns the sum over all buckets
func (s QualitySplit) Total() decimal.Decimal {
	total := decimal.Zero
	for _, rule := range Buckets {
		total = total.Add(s.Get(rule.Bucket))
	}
	return total
}

// IsZero reports whether every bucket is zero
func (s QualitySplit) IsZero() bool {
	return s.Total().IsZero()
}

// MatchesTotal reports whether the bucket sum equals the declared quantity
func (s QualitySplit) MatchesTotal(quantity decimal.Decimal) bool {
	return s.Total().Equal(quantity)
}

// Add returns a new split with each bucket summed
func (s QualitySplit) Add(other QualitySplit) QualitySplit {
	out := map[Bucket]decimal.Decimal{}
	for _, rule := range Buckets {
		out[rule.Bucket] = s.Get(rule.Bucket).Add(other.Get(rule.Bucket))
	}
	return QualitySplit{values: out}
}

// remaining is an intermediate, possibly-negative per-bucket balance
type remaining map[Bucket]decimal.Decimal

// Remaining subtracts billed quantities from this split and settles
// shortfalls per the bucket rules: a bucket billed beyond its origin has the
// excess deducted from its absorbing bucket, then every bucket is floored
// at zero. This is the cross-bucket deduction of the billing
// reconciliation.
func (s QualitySplit) Remaining(billed QualitySplit) QualitySplit {
	rem := remaining{}
	for _, rule := range Buckets {
		rem[rule.Bucket] = s.Get(rule.Bucket).Sub(billed.Get(rule.Bucket))
	}

	for _, rule := range Buckets {
		if rule.AbsorbedBy == "" {
			continue
		}
		if rem[rule.Bucket].IsNegative() {
			rem[rule.AbsorbedBy] = rem[rule.AbsorbedBy].Add(rem[rule.Bucket])
			rem[rule.Bucket] = decimal.Zero
		}
	}

	out := map[Bucket]decimal.Decimal{}
	for _, rule := range Buckets {
		if rem[rule.Bucket].IsNegative() {
			out[rule.Bucket] = decimal.Zero
		} else {
			out[rule.Bucket] = rem[rule.Bucket]
		}
	}
	return QualitySplit{values: out}
}

// Equal reports whether both splits hold identical bucket quantities
func (s QualitySplit) Equal(other QualitySplit) bool {
	for _, rule := range Buckets {
		if !s.Get(rule.Bucket).Equal(other.Get(rule.Bucket)) {
			return false
		}
	}
	return true
}

// String returns a compact representation for logs
func (s QualitySplit) String() string {
	return fmt.Sprintf("ok=%s cr=%s mr=%s", s.OK(), s.CR(), s.MR())
}
