package domain

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Weights of the profile completeness checklist, summing to 100.
const (
	completenessBio        = 15
	completenessLocation   = 10
	completenessPosition   = 10
	completenessAvatar     = 15
	completenessExperience = 20
	completenessEducation  = 15
	completenessSkill      = 15
)

const statsLockStripes = 64

var statsEvents = []event.Type{
	event.ConnectionAccepted,
	event.ConnectionRemoved,
	event.FollowCreated,
	event.FollowRemoved,
	event.EndorsementCreated,
	event.EndorsementRemoved,
	event.ContentChanged,
	event.UserCreated,
}

type StatsDomain interface {
	event.Subscriber

	GetStats(context.Context, *model.GetStatsRequest) (*model.GetStatsResponse, error)

	// Recompute derives the stats of the user from the source tables. The stored row is
	// only written when a value changed.
	Recompute(ctx context.Context, userID string) (*entity.ProfileStats, error)

	// RebuildAll recomputes the stats of every user and returns the number of rebuilt users.
	// Users which fail are logged and skipped.
	RebuildAll(ctx context.Context) (int, error)

	// RecomputeUsers recomputes the given users in parallel, skipping removed and failing
	// ones, and returns the number of recomputed users.
	RecomputeUsers(ctx context.Context, userIDs []string) int
}

type statsDomain struct {
	statsRepo       repository.ProfileStatsRepository
	userRepo        repository.UserRepository
	connectionRepo  repository.ConnectionRepository
	followRepo      repository.FollowRepository
	endorsementRepo repository.EndorsementRepository
	profileRepo     repository.ProfileRepository

	locks [statsLockStripes]sync.Mutex
}

func NewStatsDomain(
	statsRepo repository.ProfileStatsRepository,
	userRepo repository.UserRepository,
	connectionRepo repository.ConnectionRepository,
	followRepo repository.FollowRepository,
	endorsementRepo repository.EndorsementRepository,
	profileRepo repository.ProfileRepository,
) *statsDomain {
	return &statsDomain{
		statsRepo:       statsRepo,
		userRepo:        userRepo,
		connectionRepo:  connectionRepo,
		followRepo:      followRepo,
		endorsementRepo: endorsementRepo,
		profileRepo:     profileRepo,
	}
}

func (d *statsDomain) Name() string {
	return "stats"
}

func (d *statsDomain) Handle(ctx context.Context, ev *event.MutationEvent) error {
	if !slices.Contains(statsEvents, ev.Type) {
		return nil
	}

	var errs []error
	for _, userID := range ev.AffectedUserIDs {
		if _, err := d.Recompute(ctx, userID); err != nil {
			if errorx.Is(err, errorx.NotFound) {
				xcontext.Logger(ctx).Debugf("Skip stats of unknown user %s", userID)
				continue
			}

			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (d *statsDomain) GetStats(
	ctx context.Context, req *model.GetStatsRequest,
) (*model.GetStatsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	if userID == "" {
		return nil, errorx.New(errorx.BadRequest, "Empty user id")
	}

	var stats *entity.ProfileStats
	var err error
	if !xcontext.Configs(ctx).Stats.ReadThrough {
		stats, err = d.statsRepo.GetCached(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get profile stats: %v", err)
			return nil, errorx.Unknown
		}
	}

	if stats == nil {
		// Stats are created lazily on the first read.
		stats, err = d.Recompute(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	resp := model.GetStatsResponse(model.ConvertProfileStats(stats))
	return &resp, nil
}

func (d *statsDomain) Recompute(ctx context.Context, userID string) (*entity.ProfileStats, error) {
	lock := d.lock(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := d.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	fresh, err := d.compute(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot compute profile stats of %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	current, err := d.statsRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get profile stats: %v", err)
		return nil, errorx.Unknown
	}

	if current != nil && current.SameCounters(fresh) {
		common.PromCounters[common.StatsRecomputeTotal].WithLabelValues(strconv.FormatBool(false)).Inc()
		return current, nil
	}

	fresh.LastUpdated = time.Now()
	if err := d.statsRepo.Upsert(ctx, fresh); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert profile stats: %v", err)
		return nil, errorx.Unknown
	}

	common.PromCounters[common.StatsRecomputeTotal].WithLabelValues(strconv.FormatBool(true)).Inc()
	return fresh, nil
}

func (d *statsDomain) compute(ctx context.Context, userID string) (*entity.ProfileStats, error) {
	var err error
	stats := &entity.ProfileStats{UserID: userID}

	if stats.ConnectionsCount, err = d.connectionRepo.CountAccepted(ctx, userID); err != nil {
		return nil, err
	}

	if stats.FollowersCount, err = d.followRepo.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}

	if stats.FollowingCount, err = d.followRepo.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}

	if stats.EndorsementsCount, err = d.endorsementRepo.CountReceived(ctx, userID); err != nil {
		return nil, err
	}

	if stats.ProfileCompleteness, err = d.completeness(ctx, userID); err != nil {
		return nil, err
	}

	return stats, nil
}

func (d *statsDomain) completeness(ctx context.Context, userID string) (int, error) {
	score := 0

	profile, err := d.profileRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if profile != nil {
		if profile.Bio != "" {
			score += completenessBio
		}

		if profile.Location != "" {
			score += completenessLocation
		}

		if profile.Position != "" {
			score += completenessPosition
		}

		if profile.AvatarURL != "" {
			score += completenessAvatar
		}
	}

	sections := []struct {
		count  func(context.Context, string) (int64, error)
		weight int
	}{
		{d.profileRepo.CountExperiences, completenessExperience},
		{d.profileRepo.CountEducations, completenessEducation},
		{d.profileRepo.CountSkills, completenessSkill},
	}

	for _, section := range sections {
		n, err := section.count(ctx, userID)
		if err != nil {
			return 0, err
		}

		if n > 0 {
			score += section.weight
		}
	}

	return score, nil
}

func (d *statsDomain) RebuildAll(ctx context.Context) (int, error) {
	batchSize := xcontext.Configs(ctx).Stats.RebuildBatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	rebuilt := 0
	lastID := ""
	for {
		if err := ctx.Err(); err != nil {
			return rebuilt, err
		}

		ids, err := d.userRepo.GetIDsAfter(ctx, lastID, batchSize)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user ids: %v", err)
			return rebuilt, errorx.Unknown
		}

		if len(ids) == 0 {
			return rebuilt, nil
		}

		rebuilt += d.RecomputeUsers(ctx, ids)
		lastID = ids[len(ids)-1]
	}
}

func (d *statsDomain) RecomputeUsers(ctx context.Context, userIDs []string) int {
	var g errgroup.Group
	if workers := xcontext.Configs(ctx).Stats.RebuildWorkers; workers > 0 {
		g.SetLimit(workers)
	}

	var rebuilt, failed atomic.Int64
	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			_, err := d.Recompute(ctx, id)
			switch {
			case err == nil:
				rebuilt.Add(1)
			case errorx.Is(err, errorx.NotFound):
				xcontext.Logger(ctx).Debugf("Skip recomputing stats of removed user %s", id)
			default:
				failed.Add(1)
				xcontext.Logger(ctx).Errorf("Cannot recompute stats of %s: %v", id, err)
				common.PromCounters[common.StatsRebuildFailure].WithLabelValues().Inc()
			}

			return nil
		})
	}

	_ = g.Wait()
	if n := failed.Load(); n > 0 {
		xcontext.Logger(ctx).Warnf("Recomputed stats of %d users, %d failed", rebuilt.Load(), n)
	}

	return int(rebuilt.Load())
}

func (d *statsDomain) lock(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &d.locks[h.Sum32()%statsLockStripes]
}
