package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared/valueobject"
)

// PendingSource is one delivery line with its resolved rate, as fed into the
// pending-to-bill computation. Rate resolution happens before pooling so
// lines billed at different rates never merge.
type PendingSource struct {
	DeliveryID     uuid.UUID
	DeliveryLineID uuid.UUID
	ChallanNumber  string
	ChallanDate    time.Time
	PartyID        uuid.UUID
	ItemID         uuid.UUID
	Rate           decimal.Decimal
	Delivered      valueobject.QualitySplit
}

// PendingPool is one billable pool: the unbilled remainder of every delivery
// line in one delivery sharing an item and a rate.
type PendingPool struct {
	DeliveryID      uuid.UUID                `json:"delivery_id"`
	ChallanNumber   string                   `json:"challan_number"`
	ChallanDate     time.Time                `json:"challan_date"`
	PartyID         uuid.UUID                `json:"party_id"`
	ItemID          uuid.UUID                `json:"item_id"`
	Rate            decimal.Decimal          `json:"rate"`
	Remaining       valueobject.QualitySplit `json:"-"`
	OkQty           decimal.Decimal          `json:"ok_qty"`
	CrQty           decimal.Decimal          `json:"cr_qty"`
	MrQty           decimal.Decimal          `json:"mr_qty"`
	Quantity        decimal.Decimal          `json:"quantity"`
	DeliveryLineIDs []uuid.UUID              `json:"delivery_line_ids"`
}

type poolKey struct {
	deliveryID uuid.UUID
	itemID     uuid.UUID
	rate       string
}

type poolTotals struct {
	pool      *PendingPool
	delivered valueobject.QualitySplit
	billed    valueobject.QualitySplit
}

// ComputePendingPools reconciles delivered quantities against what invoices
// already billed and groups the remainders into billable pools. Billed
// splits are keyed by delivery line ID; a line absent from the map is fully
// unbilled. Delivered and billed quantities are summed per pool before the
// subtraction, so a line billed past its own delivered quantity draws down
// its sibling lines instead of being clamped in isolation. Pools that
// reconcile to zero are dropped, so fully billed deliveries disappear from
// the result. Source order is preserved.
func ComputePendingPools(sources []PendingSource, billed map[uuid.UUID]valueobject.QualitySplit) []PendingPool {
	pools := make(map[poolKey]*poolTotals)
	order := make([]poolKey, 0)

	for _, src := range sources {
		key := poolKey{deliveryID: src.DeliveryID, itemID: src.ItemID, rate: src.Rate.String()}
		totals, ok := pools[key]
		if !ok {
			totals = &poolTotals{
				pool: &PendingPool{
					DeliveryID:    src.DeliveryID,
					ChallanNumber: src.ChallanNumber,
					ChallanDate:   src.ChallanDate,
					PartyID:       src.PartyID,
					ItemID:        src.ItemID,
					Rate:          src.Rate,
				},
				delivered: valueobject.ZeroQualitySplit(),
				billed:    valueobject.ZeroQualitySplit(),
			}
			pools[key] = totals
			order = append(order, key)
		}
		totals.delivered = totals.delivered.Add(src.Delivered)
		totals.billed = totals.billed.Add(billed[src.DeliveryLineID])
		totals.pool.DeliveryLineIDs = append(totals.pool.DeliveryLineIDs, src.DeliveryLineID)
	}

	out := make([]PendingPool, 0, len(order))
	for _, key := range order {
		totals := pools[key]
		remaining := totals.delivered.Remaining(totals.billed)
		if remaining.IsZero() {
			continue
		}
		pool := totals.pool
		pool.Remaining = remaining
		pool.OkQty = remaining.OK()
		pool.CrQty = remaining.CR()
		pool.MrQty = remaining.MR()
		pool.Quantity = remaining.Total()
		out = append(out, *pool)
	}
	return out
}
