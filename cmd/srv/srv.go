package main

import (
	"context"
	"strings"

	"github.com/questx-lab/netgraph/config"
	"github.com/questx-lab/netgraph/internal/domain"
	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/kafka"
	"github.com/questx-lab/netgraph/pkg/logger"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/questx-lab/netgraph/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	ctx context.Context
	app *cli.App

	redisClient xredis.Client

	userRepo         repository.UserRepository
	connectionRepo   repository.ConnectionRepository
	followRepo       repository.FollowRepository
	visibilityRepo   repository.VisibilityRepository
	profileStatsRepo repository.ProfileStatsRepository
	notificationRepo repository.NotificationRepository
	profileRepo      repository.ProfileRepository
	endorsementRepo  repository.EndorsementRepository
	outboxRepo       repository.OutboxRepository

	bus       *event.Bus
	publisher event.Publisher
	outbox    *event.Outbox

	policyDomain       domain.PolicyDomain
	statsDomain        domain.StatsDomain
	connectionDomain   domain.ConnectionDomain
	followDomain       domain.FollowDomain
	endorsementDomain  domain.EndorsementDomain
	notificationDomain domain.NotificationDomain
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))

	return idutil.Setup(cfg.Snowflake.NodeID)
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       cfg.ConnectionString(), // data source name
		DefaultStringSize:         256,                    // default size for string fields
		DisableDatetimePrecision:  true,                   // disable datetime precision, which not supported before MySQL 5.6
		DontSupportRenameIndex:    true,                   // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
		DontSupportRenameColumn:   true,                   // `change` when rename column, rename column not supported before MySQL 8, MariaDB
		SkipInitializeWithVersion: false,                  // auto configure based on currently MySQL version
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		panic(err)
	}

	return db
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Error
	}
}

// loadRedisClient leaves the client unset when redis is unreachable, the repositories then
// read from the database only.
func (s *srv) loadRedisClient() {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot connect to redis, cache is disabled: %v", err)
		return
	}

	s.redisClient = client
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.connectionRepo = repository.NewConnectionRepository()
	s.followRepo = repository.NewFollowRepository()
	s.visibilityRepo = repository.NewVisibilityRepository(s.redisClient)
	s.profileStatsRepo = repository.NewProfileStatsRepository(s.redisClient)
	s.notificationRepo = repository.NewNotificationRepository()
	s.profileRepo = repository.NewProfileRepository()
	s.endorsementRepo = repository.NewEndorsementRepository()
	s.outboxRepo = repository.NewOutboxRepository()
}

// loadPublisher dispatches events to the in-process bus, or to kafka when the bus is async.
// In the async mode the worker command owns the subscribers.
func (s *srv) loadPublisher() error {
	s.bus = event.NewBus()
	s.publisher = s.bus

	cfg := xcontext.Configs(s.ctx)
	if cfg.Bus.Async {
		kafkaPublisher, err := kafka.NewPublisher(cfg.RPCServer.RPCName, []string{cfg.Kafka.Addr})
		if err != nil {
			return err
		}

		s.publisher = event.NewKafkaPublisher(kafkaPublisher, cfg.Kafka.MutationTopic)
	}

	s.outbox = event.NewOutbox(s.outboxRepo, s.publisher)
	return nil
}

func (s *srv) loadDomains() {
	s.policyDomain = domain.NewPolicyDomain(s.userRepo, s.visibilityRepo, s.connectionRepo)
	s.statsDomain = domain.NewStatsDomain(s.profileStatsRepo, s.userRepo, s.connectionRepo,
		s.followRepo, s.endorsementRepo, s.profileRepo)
	s.notificationDomain = domain.NewNotificationDomain(s.notificationRepo, s.userRepo,
		s.connectionRepo, s.endorsementRepo, s.profileRepo)
	s.connectionDomain = domain.NewConnectionDomain(s.connectionRepo, s.followRepo, s.userRepo,
		s.policyDomain, s.outbox)
	s.followDomain = domain.NewFollowDomain(s.followRepo, s.userRepo, s.connectionRepo, s.outbox)
	s.endorsementDomain = domain.NewEndorsementDomain(s.endorsementRepo, s.profileRepo,
		s.policyDomain, s.outbox)

	s.bus.Subscribe(s.statsDomain, s.notificationDomain)
}

// loadAll prepares everything a command needs to run domain operations.
func (s *srv) loadAll() error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.loadRedisClient()
	s.loadRepos()
	if err := s.loadPublisher(); err != nil {
		return err
	}

	s.loadDomains()
	return nil
}
