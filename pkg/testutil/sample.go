package testutil

import (
	"context"
	"reflect"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

// SampleConnection creates a pending connection from User1 to User2. The sample can be
// overwritten by non-zero fields of init. The pair key always follows the users.
func SampleConnection(ctx context.Context, init *entity.Connection) (entity.Connection, error) {
	sample := &entity.Connection{
		ID:         idutil.NewUUID(),
		FromUserID: User1.ID,
		ToUserID:   User2.ID,
		Status:     entity.ConnectionPending,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}
	sample.PairKey = entity.PairKey(sample.FromUserID, sample.ToUserID)

	if err := xcontext.DB(ctx).Omit("FromUser", "ToUser").Create(sample).Error; err != nil {
		return *sample, err
	}

	return *sample, nil
}

func SampleFollow(ctx context.Context, followerID, followingID string) (entity.Follow, error) {
	sample := &entity.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := xcontext.DB(ctx).Omit("Follower", "Following").Create(sample).Error; err != nil {
		return *sample, err
	}

	return *sample, nil
}

// SampleEndorsement creates an endorsement of User2 on Skill1OfUser1.
func SampleEndorsement(ctx context.Context, init *entity.SkillEndorsement) (entity.SkillEndorsement, error) {
	sample := &entity.SkillEndorsement{
		Base:         entity.Base{ID: idutil.NewUUID()},
		SkillID:      Skill1OfUser1.ID,
		SkillOwnerID: Skill1OfUser1.UserID,
		EndorserID:   User2.ID,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := xcontext.DB(ctx).Create(sample).Error; err != nil {
		return *sample, err
	}

	return *sample, nil
}

// SaveVisibility stores the default setting of userID after applying modify.
func SaveVisibility(ctx context.Context, userID string, modify func(*entity.VisibilitySetting)) error {
	setting := entity.DefaultVisibilitySetting(userID)
	if modify != nil {
		modify(&setting)
	}

	return xcontext.DB(ctx).Omit("User").Save(&setting).Error
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !overwriteField.IsZero() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
