package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/camden-git/photogallery/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type PhotoOrder string

const (
	OrderDateTakenDesc PhotoOrder = "dateTaken"
	OrderCreatedDesc   PhotoOrder = "created"
)

// IsValidPhotoOrder reports whether o is a supported listing order.
func IsValidPhotoOrder(o PhotoOrder) bool {
	return o == OrderDateTakenDesc || o == OrderCreatedDesc
}

// PhotoFilter selects photo documents from the photos table.
type PhotoFilter struct {
	FeaturedOnly bool
	Slug         string
	Order        PhotoOrder
	Limit        uint64
}

func (f PhotoFilter) predicate() sq.And {
	conds := sq.And{sq.Eq{"type": models.PhotoDocumentType}}
	if f.FeaturedOnly {
		conds = append(conds, sq.Eq{"featured": true})
	}
	if f.Slug != "" {
		conds = append(conds, sq.Eq{"slug_current": f.Slug})
	}
	return conds
}

// Where returns the WHERE predicate and its arguments. Placeholders are '?',
// which GORM rebinds for the active dialect.
func (f PhotoFilter) Where() (string, []interface{}, error) {
	sqlStr, args, err := f.predicate().ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build photo filter: %w", err)
	}
	return sqlStr, args, nil
}

// OrderBy returns the ORDER BY terms. Photos without a dateTaken sort last on
// every dialect.
func (f PhotoFilter) OrderBy() []string {
	switch f.Order {
	case OrderCreatedDesc:
		return []string{"created_at DESC", "id DESC"}
	default:
		return []string{"CASE WHEN date_taken IS NULL THEN 1 ELSE 0 END", "date_taken DESC"}
	}
}

// ToSql renders the complete listing query. Used for logging and tests; the
// repository hands Where and OrderBy to GORM.
func (f PhotoFilter) ToSql() (string, []interface{}, error) {
	qb := psql.Select("*").From(models.Photo{}.TableName()).
		Where(f.predicate()).
		OrderBy(f.OrderBy()...)
	if f.Limit > 0 {
		qb = qb.Limit(f.Limit)
	}
	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build SQL query for photo listing: %w", err)
	}
	return sqlStr, args, nil
}
