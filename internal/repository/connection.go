package repository

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListConnectionFilter struct {
	UserID string
	Status []entity.ConnectionStatus

	// Direction is "incoming", "outgoing" or empty for both.
	Direction string
	Offset    int
	Limit     int
}

type ConnectionRepository interface {
	Create(ctx context.Context, data *entity.Connection) error
	GetByID(ctx context.Context, id string) (*entity.Connection, error)
	GetByPair(ctx context.Context, userA, userB string) (*entity.Connection, error)
	GetList(ctx context.Context, filter GetListConnectionFilter) ([]entity.Connection, error)
	UpdateStatus(ctx context.Context, id string, from, to entity.ConnectionStatus) error
	Delete(ctx context.Context, id string, status entity.ConnectionStatus) error
	HasAccepted(ctx context.Context, userA, userB string) (bool, error)
	CountAccepted(ctx context.Context, userID string) (int64, error)
	GetAcceptedUserIDs(ctx context.Context, userID string) ([]string, error)
	DeletePendingBefore(ctx context.Context, before time.Time) ([]entity.Connection, error)
}

type connectionRepository struct{}

func NewConnectionRepository() ConnectionRepository {
	return &connectionRepository{}
}

func (r *connectionRepository) Create(ctx context.Context, data *entity.Connection) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *connectionRepository) GetByID(ctx context.Context, id string) (*entity.Connection, error) {
	var result entity.Connection
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *connectionRepository) GetByPair(ctx context.Context, userA, userB string) (*entity.Connection, error) {
	var result entity.Connection
	err := xcontext.DB(ctx).Take(&result, "pair_key=?", entity.PairKey(userA, userB)).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *connectionRepository) GetList(
	ctx context.Context, filter GetListConnectionFilter,
) ([]entity.Connection, error) {
	tx := xcontext.DB(ctx).Model(&entity.Connection{})

	switch filter.Direction {
	case "incoming":
		tx = tx.Where("to_user_id=?", filter.UserID)
	case "outgoing":
		tx = tx.Where("from_user_id=?", filter.UserID)
	default:
		tx = tx.Where("from_user_id=? OR to_user_id=?", filter.UserID, filter.UserID)
	}

	if len(filter.Status) > 0 {
		tx = tx.Where("status IN (?)", filter.Status)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Connection
	if err := tx.Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatus moves the connection from one status to another. It returns
// gorm.ErrRecordNotFound if the connection was not in the from status anymore.
func (r *connectionRepository) UpdateStatus(
	ctx context.Context, id string, from, to entity.ConnectionStatus,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Connection{}).
		Where("id=? AND status=?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now(),
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes the connection only if it is still in the given status.
func (r *connectionRepository) Delete(ctx context.Context, id string, status entity.ConnectionStatus) error {
	tx := xcontext.DB(ctx).Delete(&entity.Connection{}, "id=? AND status=?", id, status)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *connectionRepository) HasAccepted(ctx context.Context, userA, userB string) (bool, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.Connection{}).
		Where("pair_key=? AND status=?", entity.PairKey(userA, userB), entity.ConnectionAccepted).
		Limit(1).
		Count(&result).Error
	if err != nil {
		return false, err
	}

	return result > 0, nil
}

func (r *connectionRepository) CountAccepted(ctx context.Context, userID string) (int64, error) {
	var outgoing, incoming int64
	err := xcontext.DB(ctx).
		Model(&entity.Connection{}).
		Where("from_user_id=? AND status=?", userID, entity.ConnectionAccepted).
		Count(&outgoing).Error
	if err != nil {
		return 0, err
	}

	err = xcontext.DB(ctx).
		Model(&entity.Connection{}).
		Where("to_user_id=? AND status=?", userID, entity.ConnectionAccepted).
		Count(&incoming).Error
	if err != nil {
		return 0, err
	}

	return outgoing + incoming, nil
}

func (r *connectionRepository) GetAcceptedUserIDs(ctx context.Context, userID string) ([]string, error) {
	connections, err := r.GetList(ctx, GetListConnectionFilter{
		UserID: userID,
		Status: []entity.ConnectionStatus{entity.ConnectionAccepted},
	})
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(connections))
	for i := range connections {
		result = append(result, connections[i].Other(userID))
	}

	return result, nil
}

// DeletePendingBefore removes pending requests created before the given time and returns
// the removed rows.
func (r *connectionRepository) DeletePendingBefore(
	ctx context.Context, before time.Time,
) ([]entity.Connection, error) {
	var expired []entity.Connection
	err := xcontext.DB(ctx).
		Where("status=? AND created_at<?", entity.ConnectionPending, before).
		Find(&expired).Error
	if err != nil {
		return nil, err
	}

	if len(expired) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(expired))
	for _, c := range expired {
		ids = append(ids, c.ID)
	}

	err = xcontext.DB(ctx).
		Where("id IN (?) AND status=?", ids, entity.ConnectionPending).
		Delete(&entity.Connection{}).Error
	if err != nil {
		return nil, err
	}

	return expired, nil
}
