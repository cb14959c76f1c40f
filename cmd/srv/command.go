package main

import "github.com/urfave/cli/v2"

// loadApp creates an app with sane defaults.
func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "netgraph"
	s.app.Usage = "Relationship graph authorization and derived state engine"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path of the toml config file",
			EnvVars: []string{"NETGRAPH_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      server.startRPC,
			Name:        "rpc",
			Usage:       "Start graph rpc server",
			Category:    "Server",
			Description: `Used to serve the policy queries, graph mutations and inbound mutation events.`,
		},
		{
			Action:      server.startWorker,
			Name:        "worker",
			Usage:       "Start mutation event worker",
			Category:    "Worker",
			Description: `Used to consume mutation events from kafka and dispatch them to stats and notification subscribers.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Used to reconcile stats, redeliver outbox events, expire pending connections and clean up notifications.`,
		},
		{
			Action:   server.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Value: "auto",
					Usage: "Migrator version. auto only creates or alters tables, stats rebuilds all profile stats",
				},
			},
			Description: `Used to create tables and run data migrators.`,
		},
	}
}
