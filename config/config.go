// config/config.go
//
// 配置加载顺序：默认值 -> YAML 配置文件 -> TASKLIST_* 环境变量

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chhz0/tasklist/retry"
	"github.com/chhz0/tasklist/storage"
)

const (
	AppName    = "tasklist"
	EnvPrefix  = "TASKLIST"
	ConfigFile = "config.yaml"
)

type Config struct {
	Backend            string            `mapstructure:"backend"`
	Key                string            `mapstructure:"key"`
	DataDir            string            `mapstructure:"data_dir"`
	RequireDescription bool              `mapstructure:"require_description"`
	Bolt               PathConfig        `mapstructure:"bolt"`
	SQLite             PathConfig        `mapstructure:"sqlite"`
	MySQL              MySQLConfig       `mapstructure:"mysql"`
	Redis              RedisConfig       `mapstructure:"redis"`
	Log                LogConfig         `mapstructure:"log"`
	Persistence        PersistenceConfig `mapstructure:"persistence"`
}

type PathConfig struct {
	Path string `mapstructure:"path"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type PersistenceConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	// Retries 是失败后的重试次数，不含第一次调用
	Retries      int           `mapstructure:"retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// 默认值；路径为空时在 resolve 中按 data_dir 补全
var defaults = map[string]any{
	"backend":                         "bolt",
	"key":                             "tasks",
	"data_dir":                        "",
	"require_description":             true,
	"bolt.path":                       "",
	"sqlite.path":                     "",
	"mysql.dsn":                       "root:password@tcp(127.0.0.1:3306)/tasklist",
	"redis.addr":                      "localhost:6379",
	"redis.password":                  "",
	"redis.db":                        0,
	"redis.prefix":                    storage.DefaultRedisPrefix,
	"log.level":                       "info",
	"log.file":                        "",
	"persistence.timeout":             "2s",
	"persistence.retry.retries":       2,
	"persistence.retry.initial_delay": "100ms",
	"persistence.retry.max_delay":     "1s",
}

// DefaultDir 返回配置目录：$XDG_CONFIG_HOME/tasklist 或 ~/.config/tasklist
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultDataDir 返回数据目录：$XDG_DATA_HOME/tasklist 或 ~/.local/share/tasklist
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

func DefaultPath() string {
	return filepath.Join(DefaultDir(), ConfigFile)
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load 读取配置。path 为空时使用默认路径，默认路径下没有文件不算错误。
// overrides 优先级最高（命令行参数）。
func Load(path string, overrides map[string]any) (*Config, error) {
	v := newViper()
	for k, val := range overrides {
		v.Set(k, val)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if explicit || !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.resolve()
	return &cfg, nil
}

func (c *Config) resolve() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.Bolt.Path == "" {
		c.Bolt.Path = filepath.Join(c.DataDir, "tasks.db")
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = filepath.Join(c.DataDir, "tasks.sqlite")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "tasklist.log")
	}
}

func (c *Config) Storage() storage.Config {
	return storage.Config{
		Backend:    c.Backend,
		BoltPath:   c.Bolt.Path,
		SQLitePath: c.SQLite.Path,
		MySQLDSN:   c.MySQL.DSN,
		Redis: storage.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
	}
}

func (c *Config) RetryPolicy() retry.Policy {
	r := c.Persistence.Retry
	if r.Retries <= 0 {
		return retry.Never{}
	}
	return &retry.ExponentialBackoff{
		InitialDelay: r.InitialDelay,
		MaxDelay:     r.MaxDelay,
		MaxRetries:   r.Retries,
	}
}

// fileConfig 是写入磁盘的形态，时长以字符串保存
type fileConfig struct {
	Backend            string `yaml:"backend"`
	Key                string `yaml:"key"`
	DataDir            string `yaml:"data_dir,omitempty"`
	RequireDescription bool   `yaml:"require_description"`
	Bolt               struct {
		Path string `yaml:"path,omitempty"`
	} `yaml:"bolt"`
	SQLite struct {
		Path string `yaml:"path,omitempty"`
	} `yaml:"sqlite"`
	MySQL struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file,omitempty"`
	} `yaml:"log"`
	Persistence struct {
		Timeout string `yaml:"timeout"`
		Retry   struct {
			Retries      int    `yaml:"retries"`
			InitialDelay string `yaml:"initial_delay"`
			MaxDelay     string `yaml:"max_delay"`
		} `yaml:"retry"`
	} `yaml:"persistence"`
}

// WriteDefault 写出默认配置文件；文件已存在时返回 fs.ErrExist
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s: %w", path, fs.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: ensure dir: %w", err)
	}

	var fc fileConfig
	fc.Backend = defaults["backend"].(string)
	fc.Key = defaults["key"].(string)
	fc.RequireDescription = defaults["require_description"].(bool)
	fc.MySQL.DSN = defaults["mysql.dsn"].(string)
	fc.Redis.Addr = defaults["redis.addr"].(string)
	fc.Redis.Prefix = defaults["redis.prefix"].(string)
	fc.Log.Level = defaults["log.level"].(string)
	fc.Persistence.Timeout = defaults["persistence.timeout"].(string)
	fc.Persistence.Retry.Retries = defaults["persistence.retry.retries"].(int)
	fc.Persistence.Retry.InitialDelay = defaults["persistence.retry.initial_delay"].(string)
	fc.Persistence.Retry.MaxDelay = defaults["persistence.retry.max_delay"].(string)

	data, err := yaml.Marshal(&fc)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	header := "# tasklist configuration\n# backends: " + strings.Join(storage.Backends(), ", ") + "\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}
