// Package option provides composable query modifiers for repositories.
package option

import (
	"fmt"
	"strings"
	"time"

	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(stmt *gorm.DB) *gorm.DB {
	return f(stmt)
}

// ApplyPagination applies cursor-based pagination over tables keyed by
// an id column. One extra row is fetched so callers can detect whether
// more pages exist.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return ApplyKeyedPagination(page, "id")
}

// ApplyKeyedPagination is ApplyPagination for tables whose tie-break
// key is a named column, such as a human-assigned number. A table
// prefix on the key column also qualifies created_at, for joined
// queries.
func ApplyKeyedPagination(page pagination.Pagination, keyColumn string) QueryOption {
	createdAt := "created_at"
	if idx := strings.LastIndex(keyColumn, "."); idx >= 0 {
		createdAt = keyColumn[:idx+1] + createdAt
	}
	return queryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 50
		}
		if token := strings.TrimSpace(page.PageToken); token != "" {
			cursor, err := pagination.DecodeCursor(token)
			if err == nil && cursor != nil && cursor.CreatedAt != "" {
				if ts, err := time.Parse(time.RFC3339, cursor.CreatedAt); err == nil {
					stmt = stmt.Where(
						fmt.Sprintf("%s < ? OR (%s = ? AND %s < ?)", createdAt, createdAt, keyColumn),
						ts, ts, cursor.ID,
					)
				}
			}
		}
		return stmt.Limit(size + 1)
	})
}

type QuerySortBy struct {
	Field string
	Order string
	Allow map[string]bool
}

// WithSortBy orders results by an allow-listed column. Unknown fields
// fall back to created_at desc.
func WithSortBy(sort QuerySortBy) QueryOption {
	return queryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		field := strings.TrimSpace(sort.Field)
		if field == "" || !sort.Allow[field] {
			field = "created_at"
		}
		order := strings.ToLower(strings.TrimSpace(sort.Order))
		if order != "asc" && order != "desc" {
			order = "desc"
		}
		return stmt.Order(fmt.Sprintf("%s %s", field, order))
	})
}

// Apply runs each option in sequence over the statement.
func Apply(stmt *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		stmt = opt.Apply(stmt)
	}
	return stmt
}
