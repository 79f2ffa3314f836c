package persistence

import (
	"regexp"

	"gorm.io/gorm"

	"github.com/alamait/backend/internal/domain/shared"
)

// columnNamePattern restricts OrderBy values to plain column names so user
// input can never be spliced into the ORDER BY clause.
var columnNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// applyPagination applies page, page size and ordering from a shared filter.
// defaultOrder is used when the filter does not specify a valid column.
func applyPagination(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	order := defaultOrder
	if columnNamePattern.MatchString(filter.OrderBy) {
		dir := "ASC"
		if filter.OrderDir == "desc" || filter.OrderDir == "DESC" {
			dir = "DESC"
		}
		order = filter.OrderBy + " " + dir
	}
	query = query.Order(order)

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}
