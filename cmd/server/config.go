package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/krypto"
	"github.com/minitienda/minitienda/internal/web"
)

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	// cookieKeys are pairs of hash and block keys, newest pair first.
	cookieKeys    []krypto.Key
	sessionMaxAge time.Duration
	// sessionDir keeps sessions on disk instead of in the cookie when set.
	sessionDir string
	// viewDir loads the templates from disk instead of the embedded ones when set.
	viewDir string
	server  web.ServerConfig
}

// dbConfig is the configuration for the database.
type dbConfig struct {
	driver  string
	file    string
	migrate bool
}

// logConfig is the configuration for logging.
type logConfig struct {
	level slog.Level
	// file is written to next to stderr when set, rotated by size.
	file       string
	maxSizeMB  int
	maxBackups int
}

// metricsConfig is the configuration for the metrics endpoint.
type metricsConfig struct {
	// addr serves the metrics on a separate listener, disabled when empty.
	addr string
}

// config is the configuration for the server command.
type config struct {
	http    httpConfig
	db      dbConfig
	auth    auth.ServiceConfig
	log     logConfig
	metrics metricsConfig
}

// defaultConfig returns a config with sane default values.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":8888",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 10,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
			sessionMaxAge:   time.Hour * 12,
			server: web.ServerConfig{
				SecureCookie:  true,
				LoginInterval: time.Second * 6,
				LoginBurst:    10,
			},
		},
		db: dbConfig{
			driver:  db.DriverCGO,
			file:    "minitienda.db",
			migrate: true,
		},
		auth: auth.ServiceConfig{
			Throttle:       auth.DefaultThrottleConfig(),
			HashIterations: auth.DefaultIterations,
		},
		log: logConfig{
			level:      slog.LevelInfo,
			maxSizeMB:  10,
			maxBackups: 5,
		},
	}
}

// requiredKeys are the environment variables without a default.
var requiredKeys = []string{
	"HTTP_COOKIE_KEYS",
	"HTTP_CSRF_KEY",
}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"HTTP_COOKIE_KEYS": func(v string, c *config) error {
		keys, err := krypto.ParseKeys(v)
		if err != nil {
			return err
		}
		if len(keys)%2 != 0 {
			return fmt.Errorf("need pairs of hash and block keys, got %d keys", len(keys))
		}
		c.http.cookieKeys = keys
		return nil
	},
	"HTTP_SESSION_MAX_AGE": func(v string, c *config) error {
		return confDuration(v, &c.http.sessionMaxAge, time.Minute, math.MaxInt64)
	},
	"HTTP_SESSION_DIR": func(v string, c *config) error {
		c.http.sessionDir = v
		return nil
	},
	"HTTP_VIEW_DIR": func(v string, c *config) error {
		c.http.viewDir = v
		return nil
	},
	"HTTP_SECURE_COOKIE": func(v string, c *config) error {
		return confBool(v, &c.http.server.SecureCookie)
	},
	"HTTP_CSRF_KEY": func(v string, c *config) error {
		return confKey(v, &c.http.server.CSRFKey)
	},
	"HTTP_LOGIN_INTERVAL": func(v string, c *config) error {
		return confDuration(v, &c.http.server.LoginInterval, time.Millisecond, math.MaxInt64)
	},
	"HTTP_LOGIN_BURST": func(v string, c *config) error {
		return confInt(v, &c.http.server.LoginBurst, 1, math.MaxInt32)
	},
	"HTTP_CLIENT_IP_HEADER": func(v string, c *config) error {
		c.http.server.ClientIPHeader = v
		return nil
	},
	"DB_DRIVER": func(v string, c *config) error {
		if v != db.DriverCGO && v != db.DriverPureGo {
			return fmt.Errorf("unsupported driver %q, use %q or %q", v, db.DriverCGO, db.DriverPureGo)
		}
		c.db.driver = v
		return nil
	},
	"DB_FILENAME": func(v string, c *config) error {
		if v == "" {
			return errors.New("empty filename")
		}
		c.db.file = v
		return nil
	},
	"DB_MIGRATE": func(v string, c *config) error {
		return confBool(v, &c.db.migrate)
	},
	"AUTH_MAX_FAILED_ATTEMPTS": func(v string, c *config) error {
		return confInt(v, &c.auth.Throttle.MaxFailedAttempts, 1, math.MaxInt32)
	},
	"AUTH_LOCKOUT_DURATION": func(v string, c *config) error {
		return confDuration(v, &c.auth.Throttle.LockoutDuration, time.Second, math.MaxInt64)
	},
	"AUTH_MAX_TRACKED_IDENTIFIERS": func(v string, c *config) error {
		return confInt(v, &c.auth.Throttle.MaxTrackedIdentifiers, 1, 64)
	},
	"AUTH_HASH_ITERATIONS": func(v string, c *config) error {
		return confInt(v, &c.auth.HashIterations, auth.MinIterations, math.MaxInt32)
	},
	"LOG_LEVEL": func(v string, c *config) error {
		return c.log.level.UnmarshalText([]byte(v))
	},
	"LOG_FILE": func(v string, c *config) error {
		c.log.file = v
		return nil
	},
	"LOG_MAX_SIZE_MB": func(v string, c *config) error {
		return confInt(v, &c.log.maxSizeMB, 1, math.MaxInt32)
	},
	"LOG_MAX_BACKUPS": func(v string, c *config) error {
		return confInt(v, &c.log.maxBackups, 0, math.MaxInt32)
	},
	"METRICS_ADDR": func(v string, c *config) error {
		c.metrics.addr = v
		return nil
	},
}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing environment variables.
//
// It does a best effort to validate provided values, so that mistakes are
// caught ASAP. However, there is no guarantee that the returned config
// is valid and will work. All problems are reported at once.
func configFromEnv() (config, error) {
	c := defaultConfig()

	var errs []error
	for _, key := range requiredKeys {
		if _, ok := os.LookupEnv(key); !ok {
			errs = append(errs, fmt.Errorf("missing required env variable %s", key))
		}
	}

	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, &c); err != nil {
				errs = append(errs, fmt.Errorf("invalid env variable %s: %w", key, err))
			}
		}
	}

	return c, errors.Join(errs...)
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}

// confInt attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confInt(v string, tgt *int, min, max int) error {
	i, err := strconv.Atoi(v)
	if err != nil {
		return err
	}

	if i < min || i > max {
		return fmt.Errorf("%d not in range [%d, %d] (inclusive)", i, min, max)
	}

	*tgt = i

	return nil
}

func confBool(v string, tgt *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}

	*tgt = b

	return nil
}

func confKey(v string, tgt *krypto.Key) error {
	k, err := krypto.ParseKey(v)
	if err != nil {
		return err
	}

	*tgt = k

	return nil
}
