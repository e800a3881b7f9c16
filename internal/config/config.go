package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	JWTSecret    string
	CookieDomain string
	CORSOrigins  []string

	MemesDir string
	// VoteReceiver is the wallet that collects vote action fees.
	VoteReceiver string

	SessionDuration     time.Duration
	DemoSessionDuration time.Duration
	TickInterval        time.Duration
	RecordTimeout       time.Duration
	SessionTTL          time.Duration

	SwipeFee   int64
	MinBalance int64
}

const defaultVoteReceiver = "0x8170Dde13D14E93Af7EDEdcE81db35479630cB8B"

// Load reads .env when present and then parses args on top of the environment.
func Load(name string, args []string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return ParseFlags(name, args)
}

// ParseFlags builds the configuration. Flags default to environment variables.
func ParseFlags(name string, args []string) (Config, error) {
	var cfg Config
	var corsOrigins string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	port, err := envInt("PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", port, "HTTP listen port")

	fs.StringVar(&cfg.DBHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	fs.StringVar(&cfg.DBPort, "db-port", envString("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&cfg.DBUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&cfg.DBPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&cfg.DBName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")

	fs.StringVar(&cfg.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "Access token signing secret (prefer env)")
	fs.StringVar(&cfg.CookieDomain, "cookie-domain", os.Getenv("COOKIE_DOMAIN"), "Auth cookie domain")
	fs.StringVar(&corsOrigins, "cors-origins", envString("CORS_ORIGINS", "*"), "Comma separated allowed origins")
	fs.StringVar(&cfg.MemesDir, "memes-dir", os.Getenv("MEMES_DIR"), "Directory holding the meme images")
	fs.StringVar(&cfg.VoteReceiver, "vote-receiver", envString("VOTE_RECEIVER", defaultVoteReceiver), "Wallet receiving vote action fees")

	durations := []struct {
		target *time.Duration
		flag   string
		env    string
		def    time.Duration
		usage  string
	}{
		{&cfg.SessionDuration, "session-duration", "SESSION_DURATION", 30 * time.Second, "Live session length"},
		{&cfg.DemoSessionDuration, "demo-session-duration", "DEMO_SESSION_DURATION", 10 * time.Second, "Demo session length"},
		{&cfg.TickInterval, "tick-interval", "TICK_INTERVAL", time.Second, "Session clock interval"},
		{&cfg.RecordTimeout, "record-timeout", "RECORD_TIMEOUT", 10 * time.Second, "Timeout for recording one vote"},
		{&cfg.SessionTTL, "session-ttl", "SESSION_TTL", 30 * time.Minute, "How long finished sessions stay in memory"},
	}
	for _, d := range durations {
		def, err := envDuration(d.env, d.def)
		if err != nil {
			return Config{}, err
		}
		fs.DurationVar(d.target, d.flag, def, d.usage)
	}

	fee, err := envInt64("SWIPE_FEE", 1)
	if err != nil {
		return Config{}, err
	}
	fs.Int64Var(&cfg.SwipeFee, "swipe-fee", fee, "Credits charged per live vote")

	minBalance, err := envInt64("MIN_BALANCE", -1)
	if err != nil {
		return Config{}, err
	}
	fs.Int64Var(&cfg.MinBalance, "min-balance", minBalance, "Credits needed to start a live session (defaults to the swipe fee)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.MinBalance < 0 {
		cfg.MinBalance = cfg.SwipeFee
	}
	cfg.CORSOrigins = splitList(corsOrigins)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	for name, d := range map[string]time.Duration{
		"SESSION_DURATION":      c.SessionDuration,
		"DEMO_SESSION_DURATION": c.DemoSessionDuration,
		"TICK_INTERVAL":         c.TickInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.RecordTimeout < 0 || c.SessionTTL < 0 {
		return errors.New("RECORD_TIMEOUT and SESSION_TTL cannot be negative")
	}
	if c.SwipeFee < 0 {
		return errors.New("SWIPE_FEE cannot be negative")
	}
	return nil
}

// RequireSecret fails when no token signing secret was configured.
func (c Config) RequireSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}
	return nil
}

// RequireDatabase fails when the connection settings are incomplete.
func (c Config) RequireDatabase() error {
	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		return errors.New("POSTGRES_HOST, POSTGRES_USER and POSTGRES_DB required")
	}
	return nil
}

func (c Config) DBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
