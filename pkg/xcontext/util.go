package xcontext

import (
	"context"

	"gorm.io/gorm"
)

// Transaction runs fn with a context whose DB is a database transaction. The transaction is
// committed if fn returns nil and rolled back otherwise.
func Transaction(ctx context.Context, fn func(context.Context) error) error {
	return DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithDB(ctx, tx))
	})
}
