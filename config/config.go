package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database     DatabaseConfigs     `toml:"database"`
	Redis        RedisConfigs        `toml:"redis"`
	Kafka        KafkaConfigs        `toml:"kafka"`
	RPCServer    RPCServerConfigs    `toml:"rpc_server"`
	Metrics      ServerConfigs       `toml:"metrics"`
	Bus          BusConfigs          `toml:"bus"`
	Outbox       OutboxConfigs       `toml:"outbox"`
	Stats        StatsConfigs        `toml:"stats"`
	Visibility   VisibilityConfigs   `toml:"visibility"`
	Notification NotificationConfigs `toml:"notification"`
	Pagination   PaginationConfigs   `toml:"pagination"`
	Connection   ConnectionConfigs   `toml:"connection"`
	Snowflake    SnowflakeConfigs    `toml:"snowflake"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type RPCServerConfigs struct {
	ServerConfigs
	RPCName  string `toml:"rpc_name"`
	Endpoint string `toml:"endpoint"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr          string `toml:"addr"`
	MutationTopic string `toml:"mutation_topic"`
	ConsumerGroup string `toml:"consumer_group"`
}

type BusConfigs struct {
	// Async publishes mutation events to kafka instead of dispatching them in-process.
	Async       bool          `toml:"async"`
	MaxAttempts int           `toml:"max_attempts"`
	RetryDelay  time.Duration `toml:"retry_delay"`
}

type OutboxConfigs struct {
	RedeliverAfter time.Duration `toml:"redeliver_after"`
	BatchSize      int           `toml:"batch_size"`
	// MaxAttempts is the number of failed publishes after which a row is left for manual
	// inspection and skipped by redelivery.
	MaxAttempts int           `toml:"max_attempts"`
	Retention   time.Duration `toml:"retention"`
}

type StatsConfigs struct {
	// ReadThrough recomputes counters on every GetStats instead of reading the stored row.
	ReadThrough       bool          `toml:"read_through"`
	CacheTTL          time.Duration `toml:"cache_ttl"`
	ReconcileInterval time.Duration `toml:"reconcile_interval"`
	RebuildBatchSize  int           `toml:"rebuild_batch_size"`
	RebuildWorkers    int           `toml:"rebuild_workers"`
}

type VisibilityConfigs struct {
	CacheTTL time.Duration `toml:"cache_ttl"`
}

type NotificationConfigs struct {
	ReadRetention      time.Duration `toml:"read_retention"`
	ReminderInactivity time.Duration `toml:"reminder_inactivity"`
	SuggestionsPerDay  int           `toml:"suggestions_per_day"`
	// SuggestionsPerConnection bounds the candidates taken from each accepted connection.
	SuggestionsPerConnection int `toml:"suggestions_per_connection"`
}

type PaginationConfigs struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

type ConnectionConfigs struct {
	PendingExpiration time.Duration `toml:"pending_expiration"`
	MaxMessageLength  int           `toml:"max_message_length"`
}

type SnowflakeConfigs struct {
	NodeID int64 `toml:"node_id"`
}

// Default returns the configuration used when a value is not present in the config file.
func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "netgraph",
			User:     "mysql",
			LogLevel: "error",
		},
		Redis: RedisConfigs{Addr: "localhost:6379"},
		Kafka: KafkaConfigs{
			Addr:          "localhost:9092",
			MutationTopic: "graph.mutation",
			ConsumerGroup: "graph-worker",
		},
		RPCServer: RPCServerConfigs{
			ServerConfigs: ServerConfigs{Port: "8090"},
			RPCName:       "graph",
			Endpoint:      "http://localhost:8090",
		},
		Metrics: ServerConfigs{Port: "9090"},
		Bus: BusConfigs{
			MaxAttempts: 3,
			RetryDelay:  50 * time.Millisecond,
		},
		Outbox: OutboxConfigs{
			RedeliverAfter: time.Minute,
			BatchSize:      100,
			MaxAttempts:    20,
			Retention:      7 * 24 * time.Hour,
		},
		Stats: StatsConfigs{
			CacheTTL:          10 * time.Minute,
			ReconcileInterval: time.Hour,
			RebuildBatchSize:  500,
			RebuildWorkers:    4,
		},
		Visibility: VisibilityConfigs{CacheTTL: 10 * time.Minute},
		Notification: NotificationConfigs{
			ReadRetention:            30 * 24 * time.Hour,
			ReminderInactivity:       30 * 24 * time.Hour,
			SuggestionsPerDay:        5,
			SuggestionsPerConnection: 3,
		},
		Pagination: PaginationConfigs{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
		Connection: ConnectionConfigs{
			PendingExpiration: 30 * 24 * time.Hour,
			MaxMessageLength:  300,
		},
		Snowflake: SnowflakeConfigs{NodeID: 1},
	}
}

// Load reads a TOML file over the default configuration. An empty path returns the default.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, err
	}

	return cfg, nil
}
