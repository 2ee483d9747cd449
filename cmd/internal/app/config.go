package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Session persistence. DatabaseURL wins over SQLitePath; with neither
	// set, sessions live in memory per guard.
	DatabaseURL string
	SQLitePath  string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless the database is configured and
	// reachable.
	ReadinessRequireDB bool

	// Credentials. When KeyringService is set, passwords come from the OS
	// keyring under that service name; otherwise Username/Password form a
	// single static account.
	Username       string
	Password       string
	KeyringService string

	ProtectedPath string
	StreamPath    string

	ChallengeWindow time.Duration
	SessionTTL      time.Duration

	LockoutThreshold int
	LockoutWindow    time.Duration

	TrustProxy   bool
	CookieSecure bool

	WSAllowedOrigins []string

	Version string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("AUTHGATE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("AUTHGATE_LOG_LEVEL", "info"),
		LogFormat: EnvString("AUTHGATE_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("AUTHGATE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("AUTHGATE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("AUTHGATE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("AUTHGATE_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("AUTHGATE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("AUTHGATE_DATABASE_URL", ""),
		SQLitePath:  EnvString("AUTHGATE_SQLITE_PATH", ""),
		DBMaxConns:  EnvInt32("AUTHGATE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("AUTHGATE_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("AUTHGATE_READINESS_REQUIRE_DB", false),

		Username:       EnvString("AUTHGATE_USERNAME", "admin"),
		Password:       EnvString("AUTHGATE_PASSWORD", ""),
		KeyringService: EnvString("AUTHGATE_KEYRING_SERVICE", ""),

		ProtectedPath: EnvString("AUTHGATE_PROTECTED_PATH", "/dashboard"),
		StreamPath:    EnvString("AUTHGATE_STREAM_PATH", "/stream"),

		ChallengeWindow: EnvDuration("AUTHGATE_CHALLENGE_WINDOW", 30*time.Second),
		SessionTTL:      EnvDuration("AUTHGATE_SESSION_TTL", 5*time.Minute),

		LockoutThreshold: EnvInt("AUTHGATE_LOCKOUT_THRESHOLD", 3),
		LockoutWindow:    EnvDuration("AUTHGATE_LOCKOUT_WINDOW", 5*time.Minute),

		TrustProxy:   EnvBool("AUTHGATE_TRUST_PROXY", false),
		CookieSecure: EnvBool("AUTHGATE_COOKIE_SECURE", false),

		WSAllowedOrigins: EnvCSV("AUTHGATE_WS_ALLOWED_ORIGINS", ""),

		Version: EnvString("AUTHGATE_VERSION", "dev"),
	}
}
