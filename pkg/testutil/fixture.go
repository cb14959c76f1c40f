package testutil

import (
	"context"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

var (
	// Users
	User1 = &entity.User{
		Base: entity.Base{ID: "user1"},
		Name: "user1",
		Role: entity.RoleUser,
	}

	User2 = &entity.User{
		Base: entity.Base{ID: "user2"},
		Name: "user2",
		Role: entity.RoleUser,
	}

	User3 = &entity.User{
		Base: entity.Base{ID: "user3"},
		Name: "user3",
		Role: entity.RoleUser,
	}

	// User4 is a global admin.
	User4 = &entity.User{
		Base: entity.Base{ID: "user4"},
		Name: "user4",
		Role: entity.RoleAdmin,
	}

	Users = []*entity.User{User1, User2, User3, User4}

	// Profiles
	// Profile1 fills every field of the completeness checklist except the avatar.
	Profile1 = &entity.Profile{
		UserID:   User1.ID,
		Bio:      "Backend engineer",
		Location: "Hanoi",
		Position: "Engineer",
	}

	Profiles = []*entity.Profile{Profile1}

	// Skills
	Skill1OfUser1 = &entity.Skill{
		Base:   entity.Base{ID: "skill1"},
		UserID: User1.ID,
		Name:   "Go",
	}

	Skill2OfUser2 = &entity.Skill{
		Base:   entity.Base{ID: "skill2"},
		UserID: User2.ID,
		Name:   "SQL",
	}

	Skills = []*entity.Skill{Skill1OfUser1, Skill2OfUser2}

	Experience1OfUser1 = &entity.Experience{
		Base:   entity.Base{ID: "experience1"},
		UserID: User1.ID,
		Title:  "Engineer",
	}

	Experiences = []*entity.Experience{Experience1OfUser1}
)

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertProfiles(ctx)
}

func InsertUsers(ctx context.Context) {
	for _, u := range Users {
		if err := xcontext.DB(ctx).Create(u).Error; err != nil {
			panic(err)
		}
	}
}

func InsertProfiles(ctx context.Context) {
	for _, p := range Profiles {
		if err := xcontext.DB(ctx).Create(p).Error; err != nil {
			panic(err)
		}
	}

	for _, s := range Skills {
		if err := xcontext.DB(ctx).Create(s).Error; err != nil {
			panic(err)
		}
	}

	for _, e := range Experiences {
		if err := xcontext.DB(ctx).Create(e).Error; err != nil {
			panic(err)
		}
	}
}
