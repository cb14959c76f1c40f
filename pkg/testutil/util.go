package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/questx-lab/netgraph/config"
	"github.com/questx-lab/netgraph/migration"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/logger"
	"github.com/questx-lab/netgraph/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MockContext returns a context with its own in-memory database. The database has a single
// connection, so everything inside a transaction must use the transaction context.
func MockContext() context.Context {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", idutil.NewUUID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Default()
	cfg.Bus.RetryDelay = time.Millisecond
	cfg.Outbox.RedeliverAfter = 0
	cfg.Pagination = config.PaginationConfigs{DefaultLimit: 2, MaxLimit: 50}
	cfg.Stats.RebuildBatchSize = 2
	cfg.Stats.RebuildWorkers = 2

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}

// WithUserID returns a context of the same database acting as another user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}

func CountRows(ctx context.Context, model any, count *int64) error {
	return xcontext.DB(ctx).Model(model).Count(count).Error
}
