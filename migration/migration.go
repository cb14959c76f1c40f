package migration

import (
	"context"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

// Migrator is a data migration which AutoMigrate cannot express. It returns the users whose
// derived stats must be recomputed after it ran.
type Migrator func(context.Context) ([]string, error)

// Migrators can be run again without changing the result.
var Migrators = map[string]Migrator{
	"0001": migrate0001,
	"0002": migrate0002,
}

// AutoMigrate creates or alters the tables of every entity.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Connection{},
		&entity.Follow{},
		&entity.VisibilitySetting{},
		&entity.ProfileStats{},
		&entity.Notification{},
		&entity.Profile{},
		&entity.Experience{},
		&entity.Education{},
		&entity.Skill{},
		&entity.SkillEndorsement{},
		&entity.OutboxEvent{},
	)
}
