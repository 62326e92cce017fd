package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the config file.
const (
	EnvJWTSecret  = "REDCHAIN_JWT_SECRET"
	EnvDBPassword = "REDCHAIN_DB_PASSWORD"
)

// DevChainConfig represents the development chain configuration
type DevChainConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Chain      ChainConfig      `yaml:"chain"`
	Crowdfund  CrowdfundConfig  `yaml:"crowdfund"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"127.0.0.1"`
	Port            int           `yaml:"port" default:"8545" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s"`
}

// Address returns the host:port the server listens on.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ChainConfig contains the development chain settings
type ChainConfig struct {
	ChainID  uint64 `yaml:"chain_id" default:"1337" validate:"gt=0"`
	Mnemonic string `yaml:"mnemonic" default:"candy maple cake sugar pudding cream honey rich smooth crumble sweet treat" validate:"required"`
	HDPath   string `yaml:"hd_path" default:"m/44'/60'/0'/0" validate:"required"`
	// Accounts is how many accounts are derived and funded.
	Accounts int `yaml:"accounts" default:"10" validate:"min=10"`
	// DefaultBalance is the ether every account starts with.
	DefaultBalance string `yaml:"default_balance" default:"100" validate:"required,numeric"`
	// GenesisTime is the unix time of the genesis block; zero means now.
	GenesisTime int64 `yaml:"genesis_time"`
	// Realtime makes the chain clock advance with wall time.
	Realtime      bool   `yaml:"realtime" default:"true"`
	GasPrice      string `yaml:"gas_price_wei" default:"20000000000" validate:"required,numeric"`
	BlockGasLimit uint64 `yaml:"block_gas_limit" default:"6721975" validate:"gt=0"`
	// DataDir holds chain.json. An empty value keeps the chain in memory only.
	DataDir          string        `yaml:"data_dir"`
	AutosaveInterval time.Duration `yaml:"autosave_interval" default:"30s"`
}

// CrowdfundConfig contains deployment settings for the RED contracts
type CrowdfundConfig struct {
	Deploy bool `yaml:"deploy" default:"true"`
	// ICOStart is the unix time handed to setICOPeriod; zero means the chain time at deployment.
	ICOStart       int64         `yaml:"ico_start"`
	EarlyBirdsRate uint64        `yaml:"early_birds_rate" default:"2750" validate:"gt=0"`
	OpenRate       uint64        `yaml:"open_rate" default:"2500" validate:"gt=0"`
	ICODuration    time.Duration `yaml:"ico_duration" default:"672h" validate:"gt=0"`
	Pools          PoolsConfig   `yaml:"pools"`
	// AngelPartialUnlockPercent of an angel allocation becomes transferable
	// after partialUnlockAngelsAccounts.
	AngelPartialUnlockPercent uint64        `yaml:"angel_partial_unlock_percent" default:"20" validate:"max=100"`
	AngelFullUnlockDelay      time.Duration `yaml:"angel_full_unlock_delay" default:"2160h" validate:"gte=0"`
	TeamReleaseDelay          time.Duration `yaml:"team_release_delay" default:"6600h" validate:"gte=0"`
	// USDPerEth and MaxDeployCostUSD drive the deployment cost check; an empty
	// MaxDeployCostUSD disables it.
	USDPerEth        string `yaml:"usd_per_eth" default:"1068" validate:"omitempty,numeric"`
	MaxDeployCostUSD string `yaml:"max_deploy_cost_usd" default:"100" validate:"omitempty,numeric"`
}

// PoolsConfig holds the token pool caps in whole RED; fractions down to 18
// decimals are allowed.
type PoolsConfig struct {
	Angel      string `yaml:"angel" default:"20000000" validate:"required,numeric"`
	EarlyBird  string `yaml:"early_bird" default:"48000000" validate:"required,numeric"`
	Public     string `yaml:"public" default:"12000000" validate:"required,numeric"`
	Marketing  string `yaml:"marketing" default:"20000000" validate:"required,numeric"`
	Team       string `yaml:"team" default:"30000000" validate:"required,numeric"`
	Foundation string `yaml:"foundation" default:"70000000" validate:"required,numeric"`
}

// ArtifactsConfig contains settings for the persisted contract artifacts
type ArtifactsConfig struct {
	Dir   string `yaml:"dir" default:"build/contracts" validate:"required"`
	Serve bool   `yaml:"serve" default:"true"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host" default:"localhost" validate:"required_if=Enabled true"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"redchain"`
	SSLMode  string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	PoolSize int    `yaml:"pool_size" default:"5" validate:"min=1"`
}

// AuthConfig contains admin API authentication settings
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTIssuer string        `yaml:"jwt_issuer" default:"redchain"`
	TokenTTL  time.Duration `yaml:"token_ttl" default:"24h"`
	// AllowDeployer lets the deployer account sign admin requests.
	AllowDeployer bool `yaml:"allow_deployer" default:"true"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled          bool `yaml:"enabled" default:"true"`
	GRPCHealthPort   int  `yaml:"grpc_health_port" validate:"min=0,max=65535"`
	AccessLogEnabled bool `yaml:"access_log" default:"false"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
	// Rotation applies when OutputPath is a file.
	MaxSizeMB  int  `yaml:"max_size_mb" default:"100"`
	MaxBackups int  `yaml:"max_backups" default:"3"`
	MaxAgeDays int  `yaml:"max_age_days" default:"28"`
	Compress   bool `yaml:"compress"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" default:"30s"`
}

// Default returns the configuration used when no file is given.
func Default() (*DevChainConfig, error) {
	var cfg DevChainConfig
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}
	applyEnv(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Load loads configuration from file and environment variables. An empty
// path yields the defaults.
func Load(configPath string) (*DevChainConfig, error) {
	if configPath == "" {
		return Default()
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over the defaults.
func Parse(data []byte) (*DevChainConfig, error) {
	var cfg DevChainConfig
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyEnv(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *DevChainConfig) {
	if v, ok := os.LookupEnv(EnvJWTSecret); ok {
		cfg.Auth.JWTSecret = v
	}
	if v, ok := os.LookupEnv(EnvDBPassword); ok {
		cfg.Database.Password = v
	}
}

// Validate checks struct constraints.
func Validate(cfg *DevChainConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s: failed %q check", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// GetConnectionString returns a PostgreSQL DSN for pgdriver
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}
