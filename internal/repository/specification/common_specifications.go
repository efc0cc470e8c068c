package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}

// IsNull matches rows where the column is NULL or empty. Used as the
// precondition for at-most-once side effects (shipment_id not yet set).
type IsNull struct {
	Field string
}

func (s IsNull) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("(%s IS NULL OR %s = '')", s.Field, s.Field)
	return db.Where(query)
}

// NotEqual excludes rows where the column already holds the value. Used to
// make admin transitions no-ops on re-invocation.
type NotEqual struct {
	Field string
	Value interface{}
}

func (s NotEqual) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s <> ?", s.Field)
	return db.Where(query, s.Value)
}

// In filters by a set of values.
type In struct {
	Field  string
	Values []string
}

func (s In) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s IN ?", s.Field)
	return db.Where(query, s.Values)
}
