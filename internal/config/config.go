package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"trenchcard/internal/pkg/utils"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Network       NetworkConfig       `yaml:"network"`
	RpcClient     RpcClientConfig     `yaml:"rpcClient"`
	PriceOracle   PriceOracleConfig   `yaml:"priceOracle"`
	TokenRegistry TokenRegistryConfig `yaml:"tokenRegistry"`
	Snapshot      SnapshotConfig      `yaml:"snapshot"`
	Render        RenderConfig        `yaml:"render"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// NetworkConfig overrides the built-in Solana endpoint list and fallback pacing.
type NetworkConfig struct {
	RPCEndpoints    []string `yaml:"rpcEndpoints"`
	FallbackDelayMs int64    `yaml:"fallbackDelayMs"`
	SignatureLimit  int      `yaml:"signatureLimit"`
}

// RpcClientConfig holds configuration for the per-endpoint RPC clients.
type RpcClientConfig struct {
	DefaultTimeoutMs    int64   `yaml:"defaultTimeoutMs"`
	RateLimit           float64 `yaml:"rateLimit"`
	BurstLimit          int     `yaml:"burstLimit"`
	MaxIdleConnsPerHost int     `yaml:"maxIdleConnsPerHost"`
}

// PriceOracleConfig holds the configuration for the CoinGecko style price oracle.
type PriceOracleConfig struct {
	BaseURL              string   `yaml:"baseURL"`
	ApiKey               string   `yaml:"apiKey"`
	RequestTimeoutMillis int64    `yaml:"requestTimeoutMillis"`
	MaxAttempts          int      `yaml:"maxAttempts"`
	RetryBaseDelayMs     int64    `yaml:"retryBaseDelayMs"`
	CacheTTLSeconds      int      `yaml:"cacheTTLSeconds"`
	AssetIDs             []string `yaml:"assetIds"`
}

// TokenRegistryConfig points at an optional YAML file with extra tokens.
type TokenRegistryConfig struct {
	File string `yaml:"file"`
}

// SnapshotConfig holds limits and presentation settings for snapshots.
type SnapshotConfig struct {
	TopAssetsLimit          int    `yaml:"topAssetsLimit"`
	RecentTransactionsLimit int    `yaml:"recentTransactionsLimit"`
	Timezone                string `yaml:"timezone"`
}

// RenderConfig holds headless browser settings for card images.
type RenderConfig struct {
	BrowserExecutablePath string `yaml:"browserExecutablePath"`
	ViewportWidth         int    `yaml:"viewportWidth"`
	ViewportHeight        int    `yaml:"viewportHeight"`
	TimeoutSeconds        int    `yaml:"timeoutSeconds"`
	Quality               int    `yaml:"quality"`
}

// DefaultAssetIDs is the id list sent to the price oracle when none is configured.
var DefaultAssetIDs = []string{
	"solana", "usd-coin", "raydium", "serum", "oxygen", "maps", "step-finance", "bonfida", "mango-markets",
}

// LoadConfig loads configuration from a YAML file. A missing file is not an
// error: every field then takes its default.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	case err != nil:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			logrus.Warnf("Failed to load env file %s: %v", f, err)
		}
	}
}

// ApplyEnvOverrides copies environment settings over the file values.
func (c *Config) ApplyEnvOverrides() {
	if port := utils.GetEnv("PORT", ""); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		c.Server.Port = port
		logrus.Infof("Server.Port overridden from environment: %s", port)
	}
	if level := utils.GetEnv("LOG_LEVEL", ""); level != "" {
		c.Logging.Level = level
	}
	if urls := utils.GetEnvAsList("SOLANA_RPC_URLS"); len(urls) > 0 {
		c.Network.RPCEndpoints = urls
		logrus.Infof("Network.RPCEndpoints overridden from environment (%d endpoints)", len(urls))
	}
	if key := utils.GetEnv("COINGECKO_API_KEY", ""); key != "" {
		c.PriceOracle.ApiKey = key
	}
	browser := utils.GetEnv("BROWSER_EXECUTABLE_PATH", utils.GetEnv("PUPPETEER_EXECUTABLE_PATH", ""))
	if browser != "" {
		c.Render.BrowserExecutablePath = browser
	}
}

// Validate rejects values that defaults cannot repair.
func (c *Config) Validate() error {
	for i, u := range c.Network.RPCEndpoints {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("network.rpcEndpoints[%d]: %q is not an http(s) URL", i, u)
		}
	}
	if c.PriceOracle.MaxAttempts > 10 {
		return fmt.Errorf("priceOracle.maxAttempts must be at most 10, got %d", c.PriceOracle.MaxAttempts)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":3000"
		logrus.Infof("Server.Port not set, defaulting to %s", c.Server.Port)
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		// image rendering can take a while
		c.Server.WriteTimeout = 60
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Network.FallbackDelayMs == 0 {
		c.Network.FallbackDelayMs = 1000
		logrus.Infof("Network.FallbackDelayMs not set, defaulting to %d ms", c.Network.FallbackDelayMs)
	}
	if c.Network.SignatureLimit == 0 {
		c.Network.SignatureLimit = 10
	}

	if c.RpcClient.DefaultTimeoutMs == 0 {
		c.RpcClient.DefaultTimeoutMs = 10000
		logrus.Infof("RpcClient.DefaultTimeoutMs not set, defaulting to %d ms", c.RpcClient.DefaultTimeoutMs)
	}
	if c.RpcClient.RateLimit == 0 {
		c.RpcClient.RateLimit = 10
	}
	if c.RpcClient.BurstLimit == 0 {
		c.RpcClient.BurstLimit = 5
	}
	if c.RpcClient.MaxIdleConnsPerHost == 0 {
		c.RpcClient.MaxIdleConnsPerHost = 10
	}

	if c.PriceOracle.BaseURL == "" {
		c.PriceOracle.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("PriceOracle.BaseURL not set, defaulting to %s", c.PriceOracle.BaseURL)
	}
	if c.PriceOracle.RequestTimeoutMillis == 0 {
		c.PriceOracle.RequestTimeoutMillis = 5000
		logrus.Infof("PriceOracle.RequestTimeoutMillis not set, defaulting to %d ms", c.PriceOracle.RequestTimeoutMillis)
	}
	if c.PriceOracle.MaxAttempts == 0 {
		c.PriceOracle.MaxAttempts = 3
	}
	if c.PriceOracle.RetryBaseDelayMs == 0 {
		c.PriceOracle.RetryBaseDelayMs = 2000
	}
	if c.PriceOracle.CacheTTLSeconds == 0 {
		c.PriceOracle.CacheTTLSeconds = 60
		logrus.Infof("PriceOracle.CacheTTLSeconds not set, defaulting to %d s", c.PriceOracle.CacheTTLSeconds)
	}
	if len(c.PriceOracle.AssetIDs) == 0 {
		c.PriceOracle.AssetIDs = append([]string(nil), DefaultAssetIDs...)
	}

	if c.Snapshot.TopAssetsLimit == 0 {
		c.Snapshot.TopAssetsLimit = 5
	}
	if c.Snapshot.RecentTransactionsLimit == 0 {
		c.Snapshot.RecentTransactionsLimit = 5
	}
	if c.Snapshot.Timezone == "" {
		c.Snapshot.Timezone = "Local"
	}

	if c.Render.ViewportWidth == 0 {
		c.Render.ViewportWidth = 600
	}
	if c.Render.ViewportHeight == 0 {
		c.Render.ViewportHeight = 800
	}
	if c.Render.TimeoutSeconds == 0 {
		c.Render.TimeoutSeconds = 30
	}
	if c.Render.Quality == 0 {
		c.Render.Quality = 100
	}
}
