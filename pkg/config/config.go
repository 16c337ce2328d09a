package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var (
	once     sync.Once
	instance *Config
)

const DateTimeLayout = "2006-01-02T15:04:05"

type Config struct {
}

func New() *Config {
	once.Do(func() {
		err := godotenv.Load("./configs/.env")
		if err != nil {
			log.Fatal("loading envs error: ", err)
		}
		instance = &Config{}
	})
	return instance
}

func (c *Config) GetString(key string) string {
	return os.Getenv(key)
}

func (c *Config) GetStringOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func (c *Config) GetInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int in %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

// GetLocation resolves an IANA zone name. Empty or "Local" means time.Local.
func (c *Config) GetLocation(key string) *time.Location {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" || v == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		log.Printf("invalid location in %s=%q, using local", key, v)
		return time.Local
	}
	return loc
}

// GetDateTime parses DateTimeLayout in loc.
func (c *Config) GetDateTime(key string, def time.Time, loc *time.Location) time.Time {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	t, err := time.ParseInLocation(DateTimeLayout, v, loc)
	if err != nil {
		log.Printf("invalid datetime in %s=%q, using default", key, v)
		return def
	}
	return t
}
