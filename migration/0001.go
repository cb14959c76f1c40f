package migration

import (
	"context"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm/clause"
)

const migrateBatchSize = 500

// migrate0001 stores the default visibility setting of users created before settings were
// persisted.
func migrate0001(ctx context.Context) ([]string, error) {
	afterID := ""
	for {
		var userIDs []string
		err := xcontext.DB(ctx).Model(&entity.User{}).
			Where("id > ?", afterID).
			Where("id NOT IN (?)", xcontext.DB(ctx).Model(&entity.VisibilitySetting{}).Select("user_id")).
			Order("id ASC").
			Limit(migrateBatchSize).
			Pluck("id", &userIDs).Error
		if err != nil {
			return nil, err
		}

		if len(userIDs) == 0 {
			return nil, nil
		}

		settings := make([]entity.VisibilitySetting, 0, len(userIDs))
		for _, id := range userIDs {
			settings = append(settings, entity.DefaultVisibilitySetting(id))
		}

		err = xcontext.DB(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Omit("User").
			Create(&settings).Error
		if err != nil {
			return nil, err
		}

		afterID = userIDs[len(userIDs)-1]
	}
}
