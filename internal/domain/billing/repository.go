package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/shared/valueobject"
)

// InvoiceRepository defines persistence for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Invoice, error)
	FindByInvoiceNumber(ctx context.Context, scope shared.Scope, invoiceNumber string) (*Invoice, error)
	FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[Invoice], error)
	FindAllWithLines(ctx context.Context, scope shared.Scope) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error

	// BilledSplits aggregates the already-billed bucket quantities per
	// delivery line across all invoices in the scope. Lines of the excluded
	// invoice do not count, so an invoice being edited sees its own
	// quantities as still available.
	BilledSplits(ctx context.Context, scope shared.Scope, excludeInvoiceID *uuid.UUID) (map[uuid.UUID]valueobject.QualitySplit, error)

	// ExistsForDelivery reports whether any invoice line settles the
	// delivery. Used as the delete guard on deliveries.
	ExistsForDelivery(ctx context.Context, scope shared.Scope, deliveryID uuid.UUID) (bool, error)

	// GenerateInvoiceNumber produces the next INV-NNN number within the scope
	GenerateInvoiceNumber(ctx context.Context, scope shared.Scope) (string, error)
}

// PaymentAllocationRepository defines persistence for payment allocations
type PaymentAllocationRepository interface {
	ExistsForInvoice(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) (bool, error)
	FindByInvoice(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) ([]PaymentAllocation, error)
}
