package persistence

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jobwork/backend/internal/domain/shared"
)

// scoped narrows a query to one company and financial year. Every document
// query goes through this; cross-scope reads are never valid.
func scoped(query *gorm.DB, scope shared.Scope) *gorm.DB {
	return query.Where("company_id = ? AND fiscal_year_id = ?", scope.CompanyID, scope.FiscalYearID)
}

// allowedSortColumns are the columns list queries may order by. Anything
// else falls back to created_at so filter input cannot inject SQL.
var allowedSortColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"challan_number": true,
	"invoice_number": true,
	"order_date":     true,
	"challan_date":   true,
	"invoice_date":   true,
	"entry_date":     true,
	"status":         true,
	"name":           true,
}

// applyOrdering applies a validated ORDER BY clause from the filter
func applyOrdering(query *gorm.DB, filter shared.Filter) *gorm.DB {
	column := filter.OrderBy
	if !allowedSortColumns[column] {
		column = "created_at"
	}
	dir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		dir = "DESC"
	}
	return query.Order(column + " " + dir)
}

// applyPagination applies offset/limit from the filter
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// applyDocumentFilters applies the filters shared by the document list
// endpoints: party, status and a date window on the given date column.
func applyDocumentFilters(query *gorm.DB, filter shared.Filter, dateColumn string) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "party_id":
			query = query.Where("party_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "date_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where(dateColumn+" >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				query = query.Where(dateColumn+" <= ?", t)
			}
		}
	}
	return query
}
