package shared

import "github.com/google/uuid"

// Scope identifies the tenant boundary every document lives in: one company
// and one financial year. Party scoping is per-document, not part of Scope.
type Scope struct {
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index:idx_scope,priority:1"`
	FiscalYearID uuid.UUID `gorm:"type:uuid;not null;index:idx_scope,priority:2"`
}

// NewScope creates a scope from its two components
func NewScope(companyID, fiscalYearID uuid.UUID) Scope {
	return Scope{CompanyID: companyID, FiscalYearID: fiscalYearID}
}

// IsZero reports whether either component of the scope is missing
func (s Scope) IsZero() bool {
	return s.CompanyID == uuid.Nil || s.FiscalYearID == uuid.Nil
}

// Validate returns a domain error when the scope is incomplete
func (s Scope) Validate() error {
	if s.CompanyID == uuid.Nil {
		return NewDomainError("INVALID_SCOPE", "Company ID cannot be empty")
	}
	if s.FiscalYearID == uuid.Nil {
		return NewDomainError("INVALID_SCOPE", "Financial year ID cannot be empty")
	}
	return nil
}
