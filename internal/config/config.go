package config

import (
	"log"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

type KafkaConfig struct {
	Brokers     []string `toml:"brokers"`
	ClientID    string   `toml:"clientID"`
	EventTopic  string   `toml:"eventTopic"`
	Partitions  int32    `toml:"partitions"`
	Replication int16    `toml:"replication"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
}

// SlaConfig holds the service-level timing knobs. Hours for request SLAs,
// minutes for collection pre-alerts.
type SlaConfig struct {
	DefaultHours          int `toml:"defaultHours"`
	PreAlertMinutes       int `toml:"preAlertMinutes"`
	AlertDedupeHours      int `toml:"alertDedupeHours"`
	MaxDispatchAttempts   int `toml:"maxDispatchAttempts"`
	RetentionTerminalDays int `toml:"retentionTerminalDays"`
	RetentionPendingDays  int `toml:"retentionPendingDays"`
}

type NotifyConfig struct {
	SmtpHost     string `toml:"smtpHost"`
	SmtpPort     int    `toml:"smtpPort"`
	SmtpUser     string `toml:"smtpUser"`
	SmtpPassword string `toml:"smtpPassword"`
	SmtpFrom     string `toml:"smtpFrom"`
	SmsURL       string `toml:"smsURL"`
	SmsAPIKey    string `toml:"smsApiKey"`
	PushURL      string `toml:"pushURL"`
	PushAPIKey   string `toml:"pushApiKey"`
}

// MonitorConfig carries the cron expressions for the background jobs.
// Empty expressions fall back to the defaults in the scheduler.
type MonitorConfig struct {
	Enabled             bool   `toml:"enabled"`
	SlaSpec             string `toml:"slaSpec"`
	DispatchSpec        string `toml:"dispatchSpec"`
	PreAlertSpec        string `toml:"preAlertSpec"`
	OverdueSpec         string `toml:"overdueSpec"`
	PromisesSpec        string `toml:"promisesSpec"`
	DigestSpec          string `toml:"digestSpec"`
	AutoActivitiesSpec  string `toml:"autoActivitiesSpec"`
	SeguimientosSpec    string `toml:"seguimientosSpec"`
	WeeklyReportSpec    string `toml:"weeklyReportSpec"`
	DailyReportSpec     string `toml:"dailyReportSpec"`
	RetentionSpec       string `toml:"retentionSpec"`
	LockTTLSeconds      int    `toml:"lockTTLSeconds"`
	DigestRecipientRole string `toml:"digestRecipientRole"`
}

type SecurityConfig struct {
	// DataKey derives the key for column-level encryption of sensitive
	// fields. Empty disables encryption (plaintext pass-through).
	DataKey string `toml:"dataKey"`
}

type SslConfig struct {
	Enabled  bool   `toml:"enabled"`
	CertFile string `toml:"certFile"`
	KeyFile  string `toml:"keyFile"`
}

type Config struct {
	MainConfig     `toml:"mainConfig"`
	MysqlConfig    `toml:"mysqlConfig"`
	RedisConfig    `toml:"redisConfig"`
	KafkaConfig    `toml:"kafkaConfig"`
	JwtConfig      `toml:"jwtConfig"`
	LogConfig      `toml:"logConfig"`
	SlaConfig      `toml:"slaConfig"`
	NotifyConfig   `toml:"notifyConfig"`
	MonitorConfig  `toml:"monitorConfig"`
	SecurityConfig `toml:"securityConfig"`
	SslConfig      `toml:"sslConfig"`
}

var config *Config

func LoadConfig() error {
	if config == nil {
		config = new(Config)
	}
	configPath := "configs/config_local.toml"
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("config load failed: %v, falling back to defaults", err)
		return err
	}
	applyDefaults(config)
	return nil
}

func applyDefaults(c *Config) {
	if c.SlaConfig.DefaultHours <= 0 {
		c.SlaConfig.DefaultHours = 24
	}
	if c.SlaConfig.PreAlertMinutes <= 0 {
		c.SlaConfig.PreAlertMinutes = 60
	}
	if c.SlaConfig.AlertDedupeHours <= 0 {
		c.SlaConfig.AlertDedupeHours = 4
	}
	if c.SlaConfig.MaxDispatchAttempts <= 0 {
		c.SlaConfig.MaxDispatchAttempts = 3
	}
	if c.SlaConfig.RetentionTerminalDays <= 0 {
		c.SlaConfig.RetentionTerminalDays = 30
	}
	if c.SlaConfig.RetentionPendingDays <= 0 {
		c.SlaConfig.RetentionPendingDays = 7
	}
	if c.MonitorConfig.LockTTLSeconds <= 0 {
		c.MonitorConfig.LockTTLSeconds = 300
	}
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}
