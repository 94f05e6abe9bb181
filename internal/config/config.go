package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"cookiejar/creator/internal/routing"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// HostsConfig names the two faces of the site. Dev hosts behave like the
// creator host but never bounce marketing paths to the public host.
// PublicAliases are extra hostnames served exactly like Public.
type HostsConfig struct {
	Public        string
	PublicAliases []string
	Creator       string
	Dev           []string
	Scheme        string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint    string
	PublicURL   string
	AccessKey   string
	SecretKey   string
	BucketGames string
	UseSSL      bool
	Region      string
}

type SecurityConfig struct {
	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookie     string
	SignatureSecret   string
	PasswordMinLength int
}

type UploadConfig struct {
	MaxFileBytes int64
}

type WorkerConfig struct {
	Stream         string
	Group          string
	Consumer       string
	ClaimInterval  time.Duration
	StaleUploadAge time.Duration
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	Log              LogConfig
	HTTP             HTTPConfig
	Hosts            HostsConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Upload           UploadConfig
	Worker           WorkerConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// CORSOrigins returns the configured origins, defaulting to the site hosts
// and public aliases.
func (c *AppConfig) CORSOrigins() []string {
	if len(c.AllowCORSOrigins) > 0 {
		return c.AllowCORSOrigins
	}
	scheme := c.Hosts.Scheme
	if scheme == "" {
		scheme = "https"
	}
	origins := []string{scheme + "://" + c.Hosts.Public, scheme + "://" + c.Hosts.Creator}
	for _, alias := range c.Hosts.PublicAliases {
		origins = append(origins, scheme+"://"+alias)
	}
	return origins
}

// SecureCookies reports whether session cookies carry the Secure flag.
func (c *AppConfig) SecureCookies() bool {
	return c.Hosts.Scheme == "https"
}

func (c *AppConfig) Validate() error {
	var errs []error
	if c.Hosts.Public == "" || c.Hosts.Creator == "" {
		errs = append(errs, errors.New("hosts.public and hosts.creator are required"))
	}
	creator := routing.NormalizeHost(c.Hosts.Creator)
	if routing.NormalizeHost(c.Hosts.Public) == creator {
		errs = append(errs, errors.New("hosts.public and hosts.creator must differ"))
	}
	for _, alias := range c.Hosts.PublicAliases {
		if routing.NormalizeHost(alias) == creator {
			errs = append(errs, fmt.Errorf("hosts.publicaliases entry %q names the creator host", alias))
		}
	}
	if c.Security.SessionTTL <= 0 {
		errs = append(errs, errors.New("security.sessionttl must be positive"))
	}
	if c.IsProduction() {
		if c.Security.SessionSecret == "" {
			errs = append(errs, errors.New("security.sessionsecret is required in production"))
		}
		if c.Security.SignatureSecret == "" {
			errs = append(errs, errors.New("security.signaturesecret is required in production"))
		}
	}
	return errors.Join(errs...)
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("COOKIEJAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if !cfg.IsProduction() {
		fillDevelopmentSecrets(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// fillDevelopmentSecrets lets a local checkout run without secrets. Tokens
// signed with these are worthless outside the machine that made them.
func fillDevelopmentSecrets(cfg *AppConfig) {
	if cfg.Security.SessionSecret == "" {
		cfg.Security.SessionSecret = "cookiejar-dev-session-secret"
	}
	if cfg.Security.SignatureSecret == "" {
		cfg.Security.SignatureSecret = "cookiejar-dev-signature-secret"
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log.level", "")
	v.SetDefault("allowcorsorigins", []string{})

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "2m")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("hosts.public", "thecookiejar.app")
	v.SetDefault("hosts.publicaliases", []string{"www.thecookiejar.app"})
	v.SetDefault("hosts.creator", "creator.thecookiejar.app")
	v.SetDefault("hosts.dev", []string{"localhost", "127.0.0.1"})
	v.SetDefault("hosts.scheme", "https")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "127.0.0.1:9000")
	v.SetDefault("storage.publicurl", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketgames", "games")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.sessionsecret", "")
	v.SetDefault("security.signaturesecret", "")
	v.SetDefault("security.sessionttl", "720h") // 30 days
	v.SetDefault("security.sessioncookie", "cookiejar_session")
	v.SetDefault("security.passwordminlength", 6)

	v.SetDefault("upload.maxfilebytes", 50<<20)

	v.SetDefault("worker.stream", "games:ingest")
	v.SetDefault("worker.group", "game-workers")
	v.SetDefault("worker.consumer", "worker-1")
	v.SetDefault("worker.claiminterval", "10s")
	v.SetDefault("worker.staleuploadage", "24h")
}
