package config

import (
	"github.com/blues/sfs/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Projector ProjectorConfig `mapstructure:"projector"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LedgerConfig seeds the in-memory ledger engine.
type LedgerConfig struct {
	Owner           string `mapstructure:"owner"`             // authority account, hex address
	RewardsPoolFund int64  `mapstructure:"rewards_pool_fund"` // whole tokens minted to the staking pool at startup
}

// ProjectorConfig tunes the event projection worker pool.
type ProjectorConfig struct {
	PoolSize  int `mapstructure:"pool_size"`
	BatchSize int `mapstructure:"batch_size"`
	Interval  int `mapstructure:"interval"` // seconds between feed polls
}

type SchedulerConfig struct {
	InvariantInterval int `mapstructure:"invariant_interval"` // seconds
	AccrualInterval   int `mapstructure:"accrual_interval"`   // seconds
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // stdout, file
	File   string `mapstructure:"file"`   // log file path when output is file
}

func (l LogConfig) GetLevel() string {
	return l.Level
}

func (l LogConfig) GetOutput() string {
	return l.Output
}

func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sfs")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "seriefunding")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("ledger.owner", "0x0000000000000000000000000000000000000001")
	viper.SetDefault("ledger.rewards_pool_fund", 0)
	viper.SetDefault("projector.pool_size", 4)
	viper.SetDefault("projector.batch_size", 200)
	viper.SetDefault("projector.interval", 5)
	viper.SetDefault("scheduler.invariant_interval", 60)
	viper.SetDefault("scheduler.accrual_interval", 300)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
