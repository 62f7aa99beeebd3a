package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	OverlayMemory   = "memory"
	OverlayFile     = "file"
	OverlayRedis    = "redis"
	OverlayPostgres = "postgres"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTP       HTTPConfig       `yaml:"http"`
	Backend    BackendConfig    `yaml:"backend"`
	Overlay    OverlayConfig    `yaml:"overlay"`
	Redis      RedisConf        `yaml:"redis"`
	Upload     UploadConfig     `yaml:"upload"`
	Categories CategoriesConfig `yaml:"categories"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	// SSEKeepAlive период комментариев в потоке /api/v1/events
	SSEKeepAlive time.Duration `yaml:"sse_keep_alive" env-default:"25s"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url" env:"BACKEND_BASE_URL" env-required:"true"`
	// 0 - без таймаута
	Timeout time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"0s"`
}

type OverlayConfig struct {
	Driver string `yaml:"driver" env:"OVERLAY_DRIVER" env-default:"memory"`
	Prefix string `yaml:"prefix" env:"OVERLAY_PREFIX" env-default:"pubadmin:v1:"`
	// DSN postgres, используется при driver=postgres
	DSN string `yaml:"dsn" env:"OVERLAY_DSN"`
	// Dir каталог для driver=file
	Dir     string `yaml:"dir" env:"OVERLAY_DIR" env-default:"./overlay"`
	Channel string `yaml:"channel" env:"OVERLAY_CHANNEL" env-default:"publications_changed"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redispassword" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

type UploadConfig struct {
	MaxFiles  int `yaml:"max_files" env-default:"10"`
	MaxSizeMB int `yaml:"max_size_mb" env-default:"5"`
}

type CategoriesConfig struct {
	// отрицательное значение отключает кэш
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"5m"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	switch cfg.Overlay.Driver {
	case OverlayMemory, OverlayFile, OverlayRedis, OverlayPostgres:
	default:
		panic("unknown overlay driver: " + cfg.Overlay.Driver)
	}

	if cfg.Overlay.Driver == OverlayPostgres && cfg.Overlay.DSN == "" {
		panic("overlay.dsn is required for the postgres driver")
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
