package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Windows       WindowsConfig
	Reservations  ReservationsConfig
	Seed          SeedConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Password.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ERANCHO_APP_ENV" default:"dev"`
	Port         string   `envconfig:"ERANCHO_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"ERANCHO_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ERANCHO_LOG_WARN_STACK" default:"false"`
	Timezone     string   `envconfig:"ERANCHO_TIMEZONE" default:"Local"`
	CORSOrigins  []string `envconfig:"ERANCHO_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the timezone used to decide what "today" is.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

type DBConfig struct {
	Driver      string `envconfig:"ERANCHO_DB_DRIVER" default:"sqlite"`
	DSN         string `envconfig:"ERANCHO_DB_DSN"`
	AutoMigrate bool   `envconfig:"ERANCHO_AUTO_MIGRATE" default:"true"`

	LegacyHost     string `envconfig:"ERANCHO_DB_HOST"`
	LegacyPort     int    `envconfig:"ERANCHO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ERANCHO_DB_USER"`
	LegacyPassword string `envconfig:"ERANCHO_DB_PASSWORD"`
	LegacyName     string `envconfig:"ERANCHO_DB_NAME"`
	LegacySSLMode  string `envconfig:"ERANCHO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ERANCHO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ERANCHO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ERANCHO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ERANCHO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// RedisConfig is optional; an empty URL disables sessions, idempotency, rate limiting and cron locks.
type RedisConfig struct {
	URL          string        `envconfig:"ERANCHO_REDIS_URL"`
	Address      string        `envconfig:"ERANCHO_REDIS_ADDR"`
	Password     string        `envconfig:"ERANCHO_REDIS_PASSWORD"`
	DB           int           `envconfig:"ERANCHO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ERANCHO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ERANCHO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ERANCHO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ERANCHO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ERANCHO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret                 string `envconfig:"ERANCHO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ERANCHO_JWT_ISSUER" default:"erancho"`
	ExpirationMinutes      int    `envconfig:"ERANCHO_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"ERANCHO_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	PinStorage       string `envconfig:"ERANCHO_PIN_STORAGE" default:"plain"`
	ArgonMemoryKB    int    `envconfig:"ERANCHO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"ERANCHO_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"ERANCHO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"ERANCHO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"ERANCHO_ARGON_KEY_LEN" default:"32"`
}

func (p PasswordConfig) HashPins() bool {
	return strings.EqualFold(strings.TrimSpace(p.PinStorage), PinStorageArgon2)
}

func (p PasswordConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.PinStorage)) {
	case PinStoragePlain, PinStorageArgon2:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvPinStorage, PinStoragePlain, PinStorageArgon2)
	}
}

type AuthRateLimitConfig struct {
	LoginWindow   time.Duration `envconfig:"ERANCHO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginCPFLimit int           `envconfig:"ERANCHO_AUTH_RATE_LIMIT_LOGIN_CPF_LIMIT" default:"5"`
	LoginIPLimit  int           `envconfig:"ERANCHO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// WindowsConfig holds the offset/count pairs of the three date window policies.
type WindowsConfig struct {
	SelfOffset       int `envconfig:"ERANCHO_WINDOW_SELF_OFFSET" default:"7"`
	SelfCount        int `envconfig:"ERANCHO_WINDOW_SELF_COUNT" default:"20"`
	SupervisorOffset int `envconfig:"ERANCHO_WINDOW_SUPERVISOR_OFFSET" default:"1"`
	SupervisorCount  int `envconfig:"ERANCHO_WINDOW_SUPERVISOR_COUNT" default:"15"`
	ReportOffset     int `envconfig:"ERANCHO_WINDOW_REPORT_OFFSET" default:"0"`
	ReportCount      int `envconfig:"ERANCHO_WINDOW_REPORT_COUNT" default:"30"`
}

type ReservationsConfig struct {
	PreserveAttendance bool `envconfig:"ERANCHO_RESERVATIONS_PRESERVE_ATTENDANCE" default:"true"`
}

type SeedConfig struct {
	Enabled bool   `envconfig:"ERANCHO_SEED_ENABLED" default:"false"`
	Path    string `envconfig:"ERANCHO_SEED_PATH"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ERANCHO_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"ERANCHO_CRON_LOCK_TTL" default:"5m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = "file:erancho?mode=memory&cache=shared"
		}
		return nil
	}
	if !strings.EqualFold(db.Driver, DBDriverPostgres) {
		return fmt.Errorf("%s must be %q or %q", EnvDBDriver, DBDriverSQLite, DBDriverPostgres)
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
