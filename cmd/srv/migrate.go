package main

import (
	"fmt"

	"github.com/questx-lab/netgraph/migration"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

const rebuildStatsVersion = "stats"

func (s *srv) startMigrate(cctx *cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}

	if err := migration.AutoMigrate(s.ctx); err != nil {
		return err
	}

	version := cctx.String("version")
	switch version {
	case "auto":
		return nil

	case rebuildStatsVersion:
		n, err := s.statsDomain.RebuildAll(s.ctx)
		if err != nil {
			return err
		}

		xcontext.Logger(s.ctx).Infof("Rebuilt profile stats of %d users", n)
		return nil
	}

	migrator, ok := migration.Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	affected, err := migrator(s.ctx)
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated version %s", version)
	if len(affected) > 0 {
		n := s.statsDomain.RecomputeUsers(s.ctx, affected)
		xcontext.Logger(s.ctx).Infof("Recomputed profile stats of %d/%d affected users", n, len(affected))
	}

	return nil
}
