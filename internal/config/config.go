package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
)

const envPrefix = "TELEPORT"

// Stream sources for the reconciler
const (
	SourceEthereum  = "ethereum"
	SourceJetStream = "jetstream"
)

// Safety gate providers
const (
	SafetyProviderOpenAI   = "openai"
	SafetyProviderAllowAll = "allow_all"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	AckWait        time.Duration `mapstructure:"ack_wait"`
	MaxDeliver     int           `mapstructure:"max_deliver"`
}

// EthereumConfig holds chain and contract configuration
type EthereumConfig struct {
	WebSocketURL     string        `mapstructure:"websocket_url"`
	RPCURL           string        `mapstructure:"rpc_url"`
	ChainID          domain.Chain  `mapstructure:"chain_id"`
	ContractAddress  string        `mapstructure:"contract_address"`
	StartBlock       uint64        `mapstructure:"start_block"` // 0 resumes from the cursor, or latest when there is none
	MinterPrivateKey string        `mapstructure:"minter_private_key"`
	ReconnectWait    time.Duration `mapstructure:"reconnect_wait"`     // initial backoff before re-dialing the node
	MaxReconnectWait time.Duration `mapstructure:"max_reconnect_wait"` // backoff ceiling
}

// ReconcilerSettings holds the reconciliation loop configuration
type ReconcilerSettings struct {
	Source          string        `mapstructure:"source"`            // ethereum or jetstream
	CursorSaveFreq  uint64        `mapstructure:"cursor_save_freq"`  // Save cursor every N blocks
	CursorSaveDelay time.Duration `mapstructure:"cursor_save_delay"` // Or save cursor every N seconds
	MetricsAddr     string        `mapstructure:"metrics_addr"`      // empty disables the metrics listener
}

// SafetyConfig holds the content safety gate configuration
type SafetyConfig struct {
	Provider      string `mapstructure:"provider"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
}

// XConfig holds the social platform publication configuration
type XConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// ReconcilerConfig holds configuration for the reconciler
type ReconcilerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig     `mapstructure:"database"`
	NATS       NATSConfig         `mapstructure:"nats"`
	Ethereum   EthereumConfig     `mapstructure:"ethereum"`
	Reconciler ReconcilerSettings `mapstructure:"reconciler"`
	Safety     SafetyConfig       `mapstructure:"safety"`
	X          XConfig            `mapstructure:"x"`
}

// EmitterConfig holds configuration for the log emitter
type EmitterConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
}

// APIConfig holds configuration for the read API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// SubmitterConfig holds configuration for the mint/redeem submission CLI
type SubmitterConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
}

// LoadReconcilerConfig loads configuration for the reconciler
func LoadReconcilerConfig(configFile string, envPath string) (*ReconcilerConfig, error) {
	v := configureViper("reconciler", configFile, envPath)

	setDatabaseDefaults(v)
	setNATSDefaults(v)
	setEthereumDefaults(v)
	v.SetDefault("nats.consumer_name", "teleport-reconciler")
	v.SetDefault("nats.connection_name", "teleport-reconciler")
	v.SetDefault("reconciler.source", SourceEthereum)
	v.SetDefault("reconciler.cursor_save_freq", 1)
	v.SetDefault("reconciler.cursor_save_delay", "30s")
	v.SetDefault("reconciler.metrics_addr", ":9090")
	v.SetDefault("safety.provider", SafetyProviderOpenAI)
	v.SetDefault("safety.openai_model", "gpt-4o-mini")
	v.SetDefault("x.api_url", "https://api.twitter.com")
	v.SetDefault("x.http_timeout", "30s")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg ReconcilerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the required reconciler keys are set
func (c *ReconcilerConfig) Validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}
	if err := c.Ethereum.validateContract(); err != nil {
		return err
	}

	switch c.Reconciler.Source {
	case SourceEthereum:
		if c.Ethereum.WebSocketURL == "" {
			return errors.New("ethereum.websocket_url is required when reconciler.source is ethereum")
		}
	case SourceJetStream:
		if c.NATS.URL == "" {
			return errors.New("nats.url is required when reconciler.source is jetstream")
		}
	default:
		return fmt.Errorf("unsupported reconciler.source: %q", c.Reconciler.Source)
	}

	switch c.Safety.Provider {
	case SafetyProviderOpenAI:
		if c.Safety.OpenAIAPIKey == "" {
			return errors.New("safety.openai_api_key is required when safety.provider is openai")
		}
	case SafetyProviderAllowAll:
	default:
		return fmt.Errorf("unsupported safety.provider: %q", c.Safety.Provider)
	}

	if c.X.ConsumerKey == "" || c.X.ConsumerSecret == "" {
		return errors.New("x.consumer_key and x.consumer_secret are required")
	}

	return nil
}

// LoadEmitterConfig loads configuration for the log emitter
func LoadEmitterConfig(configFile string, envPath string) (*EmitterConfig, error) {
	v := configureViper("log-emitter", configFile, envPath)

	setDatabaseDefaults(v)
	setNATSDefaults(v)
	setEthereumDefaults(v)
	v.SetDefault("nats.connection_name", "teleport-log-emitter")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg EmitterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Ethereum.validateContract(); err != nil {
		return nil, err
	}
	if cfg.Ethereum.WebSocketURL == "" {
		return nil, errors.New("ethereum.websocket_url is required")
	}
	if cfg.NATS.URL == "" {
		return nil, errors.New("nats.url is required")
	}

	return &cfg, nil
}

// LoadAPIConfig loads configuration for the read API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	setDatabaseDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadSubmitterConfig loads configuration for the mint/redeem submission CLI
func LoadSubmitterConfig(configFile string, envPath string) (*SubmitterConfig, error) {
	v := configureViper("teleportctl", configFile, envPath)

	setDatabaseDefaults(v)
	setEthereumDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SubmitterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Ethereum.validateContract(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.stream_name", "CONTRACT_LOGS")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.ack_wait", "5m")
	v.SetDefault("nats.max_deliver", -1)
}

func setEthereumDefaults(v *viper.Viper) {
	v.SetDefault("ethereum.chain_id", string(domain.ChainEthereumMainnet))
	v.SetDefault("ethereum.reconnect_wait", "1s")
	v.SetDefault("ethereum.max_reconnect_wait", "1m")
}

// readConfig reads the config file, tolerating a missing file so that environment
// variables alone can configure a service
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return errors.New("database.host is required")
	}
	if c.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

func (c *EthereumConfig) validateContract() error {
	if c.ContractAddress == "" {
		return errors.New("ethereum.contract_address is required")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("ethereum.contract_address is not a valid address: %s", c.ContractAddress)
	}
	if !domain.IsValidChain(c.ChainID) {
		return fmt.Errorf("unsupported ethereum.chain_id: %s", c.ChainID)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/reconciler/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		// Ethereum
		"ethereum.websocket_url",
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.contract_address",
		"ethereum.start_block",
		"ethereum.minter_private_key",
		"ethereum.reconnect_wait",
		"ethereum.max_reconnect_wait",
		// Reconciler
		"reconciler.source",
		"reconciler.cursor_save_freq",
		"reconciler.cursor_save_delay",
		"reconciler.metrics_addr",
		// Safety
		"safety.provider",
		"safety.openai_api_key",
		"safety.openai_model",
		"safety.openai_base_url",
		// X
		"x.api_url",
		"x.consumer_key",
		"x.consumer_secret",
		"x.http_timeout",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
