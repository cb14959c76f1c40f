package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

func requestUserID(ctx context.Context) (string, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return "", errorx.New(errorx.Unauthenticated, "Unknown request user")
	}

	return userID, nil
}

// mutate runs fn in a transaction. Events returned by fn are stored in the same transaction
// and published after the commit, so a failing subscriber never rolls back the mutation.
func mutate(
	ctx context.Context,
	outbox *event.Outbox,
	fn func(context.Context) ([]*event.MutationEvent, error),
) error {
	var staged []*entity.OutboxEvent
	err := xcontext.Transaction(ctx, func(ctx context.Context) error {
		events, err := fn(ctx)
		if err != nil {
			return err
		}

		for _, ev := range events {
			record, err := outbox.Stage(ctx, ev)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot stage mutation event: %v", err)
				return errorx.Unknown
			}

			staged = append(staged, record)
		}

		return nil
	})
	if err != nil {
		var errx errorx.Error
		if !errors.As(err, &errx) {
			xcontext.Logger(ctx).Errorf("Cannot commit mutation: %v", err)
			return errorx.Unknown
		}

		return err
	}

	for _, record := range staged {
		common.PromCounters[common.GraphMutationTotal].WithLabelValues(record.Type).Inc()
	}

	outbox.Deliver(ctx, staged...)
	return nil
}

func pagination(ctx context.Context, offset, limit int) (int, int, error) {
	cfg := xcontext.Configs(ctx).Pagination
	if offset < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Offset must be non-negative")
	}

	if limit == 0 {
		limit = cfg.DefaultLimit
	}

	if limit < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > cfg.MaxLimit {
		return 0, 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit")
	}

	return offset, limit, nil
}
