package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local" env-description:"Environment" env-choices:"local,dev,prod"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Secrets    `yaml:"secrets"`
	Auth       `yaml:"auth"`
	RateLimit  `yaml:"rate_limit"`
}

type HTTPServer struct {
	Host        string        `yaml:"host" env:"HTTP_HOST" env-default:"localhost"`
	Port        int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	Db              string        `yaml:"db" env:"POSTGRES_DB" env-default:"shop"`
	SSLMode         string        `yaml:"sslmode" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"20"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"30m"`
}

// Secrets points at where credentials live. The credentials themselves are
// never part of the config file.
type Secrets struct {
	Provider string `yaml:"provider" env:"SECRETS_PROVIDER" env-default:"env" env-choices:"env,file"`
	Path     string `yaml:"path" env:"SECRETS_PATH"`
}

type Auth struct {
	TokenTTL   time.Duration `yaml:"token_ttl" env-default:"24h"`
	Moderators []string      `yaml:"moderators"`
}

type RateLimit struct {
	Enabled       bool   `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"false"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env-default:"0"`
	PerHour       int64  `yaml:"per_hour" env-default:"50"`
	PerDay        int64  `yaml:"per_day" env-default:"200"`
}

func (a Auth) IsModerator(username string) bool {
	for _, m := range a.Moderators {
		if m == username {
			return true
		}
	}
	return false
}

func MustLoad() *Config {
	path := fetchConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file does not exist: " + path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
