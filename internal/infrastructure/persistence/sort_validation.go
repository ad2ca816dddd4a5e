package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a listing may be ordered by
type sortColumns struct {
	allowed  map[string]bool
	fallback string
}

// invoiceSort holds the columns invoices may be listed by. Ties break on id.
var invoiceSort = sortColumns{
	allowed: map[string]bool{
		"id":           true,
		"created_at":   true,
		"updated_at":   true,
		"event_id":     true,
		"status":       true,
		"total_amount": true,
	},
	fallback: "created_at",
}

// column returns field when whitelisted, otherwise the fallback column
func (s sortColumns) column(field string) string {
	field = strings.TrimSpace(field)
	if s.allowed[field] {
		return field
	}
	return s.fallback
}

// orderBy builds the ORDER BY clause for a listing. Anything other than "asc"
// sorts descending, so user input never reaches the SQL text.
func (s sortColumns) orderBy(field, direction string) clause.OrderBy {
	desc := !strings.EqualFold(strings.TrimSpace(direction), "asc")
	primary := s.column(field)

	columns := []clause.OrderByColumn{{Column: clause.Column{Name: primary}, Desc: desc}}
	if primary != "id" {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
	return clause.OrderBy{Columns: columns}
}
