package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config 导入任务配置
type Config struct {
	Job      JobConfig      `json:"job"`
	Source   SourceConfig   `json:"source"`
	Database DatabaseConfig `json:"database"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Log      LogConfig      `json:"log"`
}

// JobConfig 任务配置
type JobConfig struct {
	Name             string `json:"name"`               // 任务名称（用于日志/链路追踪）
	DefaultPhoneCode string `json:"default_phone_code"` // 电话号码默认国家码，例如 "+1"
	MaxErrors        int    `json:"max_errors"`         // 每个实体类型保留的错误条数上限
}

// SourceConfig 外部表格数据源配置（Airtable 风格 REST API）
type SourceConfig struct {
	BaseURL        string       `json:"base_url"`         // API 地址
	BaseID         string       `json:"base_id"`          // 数据库（base）标识
	Token          string       `json:"token"`            // API Token
	TimeoutSeconds int          `json:"timeout_seconds"`  // 单次请求超时
	RatePerSecond  int64        `json:"rate_per_second"`  // 每秒请求数上限（令牌桶）
	BreakerMaxFail int          `json:"breaker_max_fail"` // 熔断前允许的连续失败次数
	Tables         TablesConfig `json:"tables"`           // 各实体对应的源表名
}

// TablesConfig 源表名配置（源端表名可能与实体名不一致）
type TablesConfig struct {
	Vehicles       string `json:"vehicles"`
	Departments    string `json:"departments"`
	ServiceRecords string `json:"service_records"`
	Members        string `json:"members"`
	RepairRequests string `json:"repair_requests"`
	Appointments   string `json:"appointments"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // 数据库驱动
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		// 如果配置文件不存在，使用默认配置
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
		applyDefaults(globalConfig)
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// applyDefaults 对缺省字段补默认值（配置文件允许只写一部分）
func applyDefaults(c *Config) {
	if c == nil {
		return
	}
	d := defaultConfig()
	if c.Job.Name == "" {
		c.Job.Name = d.Job.Name
	}
	if c.Job.DefaultPhoneCode == "" {
		c.Job.DefaultPhoneCode = d.Job.DefaultPhoneCode
	}
	if c.Job.MaxErrors <= 0 {
		c.Job.MaxErrors = d.Job.MaxErrors
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = d.Source.BaseURL
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = d.Source.TimeoutSeconds
	}
	if c.Source.RatePerSecond <= 0 {
		c.Source.RatePerSecond = d.Source.RatePerSecond
	}
	if c.Source.BreakerMaxFail <= 0 {
		c.Source.BreakerMaxFail = d.Source.BreakerMaxFail
	}
	if c.Source.Tables.Vehicles == "" {
		c.Source.Tables = d.Source.Tables
	}
	if c.Database.Driver == "" {
		c.Database = d.Database
	}
	if c.Log.Level == "" {
		c.Log = d.Log
	}
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Job: JobConfig{
			Name:             "fleet-import-job",
			DefaultPhoneCode: "+1",
			MaxErrors:        50,
		},
		Source: SourceConfig{
			BaseURL:        "https://api.airtable.com/v0",
			BaseID:         "",
			Token:          os.Getenv("SOURCE_API_TOKEN"),
			TimeoutSeconds: 30,
			RatePerSecond:  5,
			BreakerMaxFail: 5,
			Tables: TablesConfig{
				Vehicles:       "Vehicles",
				Departments:    "Departments",
				ServiceRecords: "Service Records",
				Members:        "Members",
				RepairRequests: "Repair Requests",
				Appointments:   "Appointments",
			},
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "smartfleetsync",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "http://localhost:14268/api/traces",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/import.log",
		},
	}
}
