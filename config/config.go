package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Inventory   InventoryConfig   `mapstructure:"inventory"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Security    SecurityConfig    `mapstructure:"security"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

// InventoryConfig describes the slot grid and drop behaviour.
type InventoryConfig struct {
	Columns          int           `mapstructure:"columns"`
	Rows             int           `mapstructure:"rows"`
	Spacing          float32       `mapstructure:"spacing"`
	DropMode         string        `mapstructure:"drop_mode"` // closest | best
	SaveName         string        `mapstructure:"save_name"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"` // 0 disables autosave
}

type CatalogConfig struct {
	Path string `mapstructure:"path"` // .json, .yaml or .yml
}

type PersistenceConfig struct {
	Backend      string        `mapstructure:"backend"` // sql | cache | file
	FilePath     string        `mapstructure:"file_path"`
	QueueSize    int           `mapstructure:"queue_size"`
	LoadOnStart  bool          `mapstructure:"load_on_start"`
	SaveDebounce time.Duration `mapstructure:"save_debounce"` // 0 disables save-on-change
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/inventory.db")
	v.SetDefault("database.mysql_max_open", 10)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("inventory.columns", 6)
	v.SetDefault("inventory.rows", 4)
	v.SetDefault("inventory.spacing", 100)
	v.SetDefault("inventory.drop_mode", "closest")
	v.SetDefault("inventory.save_name", "default")
	v.SetDefault("inventory.autosave_interval", "0s")
	v.SetDefault("catalog.path", "./data/items.yaml")
	v.SetDefault("persistence.backend", "sql")
	v.SetDefault("persistence.file_path", "./data/inventory_data.json")
	v.SetDefault("persistence.queue_size", 16)
	v.SetDefault("persistence.load_on_start", true)
	v.SetDefault("persistence.save_debounce", "0s")
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)
}

// Validate rejects settings the inventory cannot start with.
func (c *Config) Validate() error {
	inv := c.Inventory
	if inv.Columns <= 0 || inv.Rows <= 0 {
		return fmt.Errorf("config: inventory grid %dx%d is empty", inv.Columns, inv.Rows)
	}
	if inv.Spacing <= 0 {
		return fmt.Errorf("config: inventory.spacing must be positive")
	}
	switch inv.DropMode {
	case "closest", "best":
	default:
		return fmt.Errorf("config: unknown inventory.drop_mode %q", inv.DropMode)
	}
	switch c.Persistence.Backend {
	case "sql", "cache", "file":
	default:
		return fmt.Errorf("config: unknown persistence.backend %q", c.Persistence.Backend)
	}
	if c.Inventory.SaveName == "" {
		return fmt.Errorf("config: inventory.save_name is empty")
	}
	return nil
}
