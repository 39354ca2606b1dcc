package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KRISHI_"

type lookupFunc func(key string) (string, bool)

// readEnvFiles merges the existing files among paths. Earlier files win,
// matching godotenv.Load.
func readEnvFiles(paths []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		for k, v := range values {
			if _, seen := merged[k]; !seen {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// applyEnv overrides cfg from KRISHI_* variables.
func applyEnv(cfg *Config, env lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := env(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := env(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := env(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := env(EnvPrefix + key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := env(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := env(EnvPrefix + key); ok {
			var out []string
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			*dst = out
		}
	}

	num("PORT", &cfg.Server.Port)
	dur("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	list("ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)

	str("LISTING_URL", &cfg.Listing.URL)
	num("PAGE_SIZE", &cfg.Listing.PageSize)
	dur("DEBOUNCE", &cfg.Listing.Debounce)

	str("USER_AGENT", &cfg.Fetch.UserAgent)
	num("FETCH_ATTEMPTS", &cfg.Fetch.Attempts)
	dur("FETCH_BASE_DELAY", &cfg.Fetch.BaseDelay)
	dur("FETCH_TIMEOUT", &cfg.Fetch.Timeout)
	float("RATE_LIMIT_RPS", &cfg.Fetch.RequestsPerSecond)
	num("RATE_LIMIT_BURST", &cfg.Fetch.Burst)

	str("CACHE_BACKEND", &cfg.Cache.Backend)
	str("REDIS_ADDR", &cfg.Cache.RedisAddr)
	str("REDIS_PASSWORD", &cfg.Cache.RedisPassword)
	num("REDIS_DB", &cfg.Cache.RedisDB)
	str("SQLITE_DIR", &cfg.Cache.SQLiteDir)

	str("DATA_GOV_RESOURCE_URL", &cfg.Proxy.ResourceURL)
	str("DATA_GOV_API_KEY", &cfg.Proxy.APIKey)
	num("PROXY_PAGE_SIZE", &cfg.Proxy.DefaultPageSize)

	str("WEATHER_URL", &cfg.Weather.BaseURL)
	str("WEATHER_API_KEY", &cfg.Weather.APIKey)

	str("JOBS_URL", &cfg.Jobs.URL)
	dur("JOBS_TTL", &cfg.Jobs.TTL)

	str("LOG_LEVEL", &cfg.Log.Level)
	boolean("LOG_PRETTY", &cfg.Log.Pretty)

	return errors.Join(errs...)
}
