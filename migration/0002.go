package migration

import (
	"context"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// migrate0002 deletes follows between users who blocked each other before blocking removed
// follows. Both users of a pair lose a follower or following count.
func migrate0002(ctx context.Context) ([]string, error) {
	var blocked []entity.Connection
	err := xcontext.DB(ctx).
		Select("id", "from_user_id", "to_user_id").
		Where("status=?", entity.ConnectionBlocked).
		Find(&blocked).Error
	if err != nil {
		return nil, err
	}

	var affected []string
	for _, c := range blocked {
		tx := xcontext.DB(ctx).
			Where("(follower_id=? AND following_id=?) OR (follower_id=? AND following_id=?)",
				c.FromUserID, c.ToUserID, c.ToUserID, c.FromUserID).
			Delete(&entity.Follow{})
		if tx.Error != nil {
			return nil, tx.Error
		}

		if tx.RowsAffected > 0 {
			affected = append(affected, c.FromUserID, c.ToUserID)
		}
	}

	slices.Sort(affected)
	return slices.Compact(affected), nil
}
