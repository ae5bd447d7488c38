// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	arbitrageApp "github.com/meridianfi/arbengine/business/arbitrage/app"
	marketApp "github.com/meridianfi/arbengine/business/market/app"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/business/market/infra/uniswap"
)

// Config holds all application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Chains      []ChainConfig     `mapstructure:"chains"`
	Bridges     []BridgeConfig    `mapstructure:"bridges"`
	Aggregator  AggregatorConfig  `mapstructure:"aggregator"`
	Arbitrage   ArbitrageConfig   `mapstructure:"arbitrage"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// PersistenceConfig controls warm-start persistence of custom asset
// mappings. An empty RedisAddr keeps the mapper's custom mappings
// in-memory only (lost on restart).
type PersistenceConfig struct {
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ChainConfig describes one chain the engine watches for arbitrage
// opportunities: its RPC endpoints, native asset, and the parameters
// the domain layer uses to weigh it (swap venues, typical swap time,
// risk multiplier, reliability score).
type ChainConfig struct {
	ID             uint64        `mapstructure:"id"`
	Name           string        `mapstructure:"name"`
	WebSocketURL   string        `mapstructure:"websocket_url"`
	HTTPURL        string        `mapstructure:"http_url"`
	NativeSymbol   string        `mapstructure:"native_symbol"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`

	SwapVenues         []string `mapstructure:"swap_venues"`
	TypicalSwapTimeS   float64  `mapstructure:"typical_swap_time_s"`
	BaseRiskMultiplier float64  `mapstructure:"base_risk_multiplier"`
	Reliability        float64  `mapstructure:"reliability"` // 0..100

	UniswapQuoterAddress  string `mapstructure:"uniswap_quoter_address"`
	UniswapRouterAddress  string `mapstructure:"uniswap_router_address"`
	UniswapFactoryAddress string `mapstructure:"uniswap_factory_address"`
	UniswapDefaultFeeTier int    `mapstructure:"uniswap_default_fee_tier"`
}

// UniswapConfig returns this chain's Uniswap V3 deployment as the uniswap
// package's own Config type.
func (ch ChainConfig) UniswapConfig() uniswap.Config {
	feeTier := ch.UniswapDefaultFeeTier
	if feeTier == 0 {
		feeTier = uniswap.FeeTier030
	}
	return uniswap.Config{
		QuoterAddress:  ch.UniswapQuoterAddress,
		RouterAddress:  ch.UniswapRouterAddress,
		FactoryAddress: ch.UniswapFactoryAddress,
		DefaultFeeTier: feeTier,
	}
}

// BridgeConfig describes one cross-chain bridge in the catalog.
type BridgeConfig struct {
	ID                   string            `mapstructure:"id"`
	Kind                 string            `mapstructure:"kind"` // canonical, liquidity_network, third_party
	SupportedChains      []uint64          `mapstructure:"supported_chains"`
	TrustLevel           int               `mapstructure:"trust_level"`
	AvgProcessingSeconds float64           `mapstructure:"avg_processing_seconds"`
	FeeBase              float64           `mapstructure:"fee_base"`
	FeePercentage        float64           `mapstructure:"fee_percentage"`
	FeeMin               float64           `mapstructure:"fee_min"`
	FeeMax               float64           `mapstructure:"fee_max"`
	Contracts            map[uint64]string `mapstructure:"contracts"`
}

// ToDomain converts a loaded BridgeConfig into the market domain's
// BridgeConfig value object.
func (b BridgeConfig) ToDomain() marketDomain.BridgeConfig {
	return marketDomain.BridgeConfig{
		ID:                   b.ID,
		Kind:                 marketDomain.BridgeKind(b.Kind),
		SupportedChains:      b.SupportedChains,
		TrustLevel:           b.TrustLevel,
		AvgProcessingSeconds: b.AvgProcessingSeconds,
		Fee: marketDomain.BridgeFee{
			Base:       b.FeeBase,
			Percentage: b.FeePercentage,
			Min:        b.FeeMin,
			Max:        b.FeeMax,
		},
		ContractPerChain: b.Contracts,
	}
}

// AggregatorConfig holds the price aggregator's tuning knobs.
type AggregatorConfig struct {
	UpdateIntervalMS         int     `mapstructure:"update_interval_ms"`
	CacheExpirySeconds       int     `mapstructure:"cache_expiry_seconds"`
	ReconnectDelayMS         int     `mapstructure:"reconnect_delay_ms"`
	PriceValidationThreshold float64 `mapstructure:"price_validation_threshold"`
	SourceRateLimitMS        int     `mapstructure:"source_rate_limit_ms"`
}

// AggregatorConfig returns the market app's AggregatorConfig built from
// this configuration, filling in the chain ID list from the chains
// section.
func (c *Config) AggregatorConfig() marketApp.AggregatorConfig {
	chainIDs := make([]uint64, 0, len(c.Chains))
	for _, ch := range c.Chains {
		chainIDs = append(chainIDs, ch.ID)
	}
	return marketApp.AggregatorConfig{
		Chains:                   chainIDs,
		UpdateIntervalMS:         c.Aggregator.UpdateIntervalMS,
		CacheExpirySeconds:       c.Aggregator.CacheExpirySeconds,
		ReconnectDelayMS:         c.Aggregator.ReconnectDelayMS,
		PriceValidationThreshold: c.Aggregator.PriceValidationThreshold,
	}
}

// ArbitrageConfig holds engine-wide detection and evaluation tuning.
type ArbitrageConfig struct {
	MinProfitUSD       float64 `mapstructure:"min_profit_usd"`
	DefaultNotionalUSD float64 `mapstructure:"default_notional_usd"`
	TickIntervalMS     int     `mapstructure:"tick_interval_ms"`
	PriceMaxAgeSeconds int     `mapstructure:"price_max_age_seconds"`
	MaxRecentCache     int     `mapstructure:"max_recent_cache"`
	MonteCarloBaseSeed int64   `mapstructure:"monte_carlo_base_seed"`

	CycleDetectorTopN int `mapstructure:"cycle_detector_top_n"`

	PathOptimizerMaxAlternatives int    `mapstructure:"path_optimizer_max_alternatives"`
	PathOptimizerSimRounds       int    `mapstructure:"path_optimizer_simulation_rounds"`
	PathOptimizerParallelSims    int    `mapstructure:"path_optimizer_parallel_simulations"`
	PathOptimizerRiskTolerance   string `mapstructure:"path_optimizer_risk_tolerance"`

	AvailableCapitalUSD float64 `mapstructure:"available_capital_usd"`
	GasBudgetUSD        float64 `mapstructure:"gas_budget_usd"`

	TUIMode bool `mapstructure:"-"` // Set at runtime, not from config file
}

// EngineConfig builds the arbitrage app's EngineConfig from loaded
// configuration, falling back to the reference defaults for anything
// left unset.
func (c *Config) EngineConfig() arbitrageApp.EngineConfig {
	cfg := arbitrageApp.DefaultEngineConfig()
	if c.Arbitrage.TickIntervalMS > 0 {
		cfg.TickInterval = time.Duration(c.Arbitrage.TickIntervalMS) * time.Millisecond
	}
	if c.Arbitrage.PriceMaxAgeSeconds > 0 {
		cfg.PriceMaxAge = time.Duration(c.Arbitrage.PriceMaxAgeSeconds) * time.Second
	}
	if c.Arbitrage.DefaultNotionalUSD > 0 {
		cfg.DefaultNotionalUSD = c.Arbitrage.DefaultNotionalUSD
	}
	if c.Arbitrage.MaxRecentCache > 0 {
		cfg.MaxRecentCache = c.Arbitrage.MaxRecentCache
	}
	if c.Arbitrage.MonteCarloBaseSeed != 0 {
		cfg.MonteCarloBaseSeed = c.Arbitrage.MonteCarloBaseSeed
	}
	return cfg
}

// CycleDetectorConfig builds the cycle detector's configuration.
func (c *Config) CycleDetectorConfig() arbitrageApp.CycleDetectorConfig {
	topN := c.Arbitrage.CycleDetectorTopN
	if topN <= 0 {
		topN = 100
	}
	return arbitrageApp.CycleDetectorConfig{
		MinProfitThreshold: c.Arbitrage.MinProfitUSD,
		TopN:               topN,
	}
}

// GraphBuilderConfig builds the graph builder's configuration from the
// per-chain swap venue and swap-time settings.
func (c *Config) GraphBuilderConfig() arbitrageApp.GraphBuilderConfig {
	venues := make(map[uint64][]string, len(c.Chains))
	var typicalSwap float64
	for _, ch := range c.Chains {
		venues[ch.ID] = ch.SwapVenues
		if ch.TypicalSwapTimeS > 0 {
			typicalSwap = ch.TypicalSwapTimeS
		}
	}
	if typicalSwap == 0 {
		typicalSwap = 15
	}
	return arbitrageApp.GraphBuilderConfig{
		SwapVenuesPerChain: venues,
		TypicalSwapTimeS:   typicalSwap,
	}
}

// CostCalculatorConfig returns the reference cost calculator
// configuration; nothing in this deployment overrides it yet.
func (c *Config) CostCalculatorConfig() arbitrageApp.CostCalculatorConfig {
	return arbitrageApp.DefaultCostCalculatorConfig()
}

// PathOptimizerConfig builds the path optimizer's configuration.
func (c *Config) PathOptimizerConfig() arbitrageApp.PathOptimizerConfig {
	cfg := arbitrageApp.DefaultPathOptimizerConfig()
	if c.Arbitrage.PathOptimizerMaxAlternatives > 0 {
		cfg.MaxAlternativePaths = c.Arbitrage.PathOptimizerMaxAlternatives
	}
	if c.Arbitrage.PathOptimizerSimRounds > 0 {
		cfg.SimulationRounds = c.Arbitrage.PathOptimizerSimRounds
	}
	if c.Arbitrage.PathOptimizerParallelSims > 0 {
		cfg.ParallelSimulations = c.Arbitrage.PathOptimizerParallelSims
	}
	if c.Arbitrage.PathOptimizerRiskTolerance != "" {
		cfg.RiskTolerance = arbitrageApp.RiskTolerance(c.Arbitrage.PathOptimizerRiskTolerance)
	}
	return cfg
}

// RiskAssessorConfig builds the risk assessor's per-chain multipliers
// from the chains section, falling back to the reference defaults for
// chains that don't set one explicitly.
func (c *Config) RiskAssessorConfig() arbitrageApp.RiskAssessorConfig {
	cfg := arbitrageApp.DefaultRiskAssessorConfig()
	for _, ch := range c.Chains {
		if ch.BaseRiskMultiplier > 0 {
			cfg.ChainBaseRiskMultiplier[ch.ID] = ch.BaseRiskMultiplier
		}
	}
	return cfg
}

// FeasibilityAnalyzerConfig builds the feasibility analyzer's
// configuration from the chains section and the capital/gas budget.
func (c *Config) FeasibilityAnalyzerConfig() arbitrageApp.FeasibilityAnalyzerConfig {
	reliability := make(map[uint64]float64, len(c.Chains))
	for _, ch := range c.Chains {
		if ch.Reliability > 0 {
			reliability[ch.ID] = ch.Reliability
		} else {
			reliability[ch.ID] = 90
		}
	}
	capital := c.Arbitrage.AvailableCapitalUSD
	if capital == 0 {
		capital = 50_000
	}
	gasBudget := c.Arbitrage.GasBudgetUSD
	if gasBudget == 0 {
		gasBudget = 500
	}
	return arbitrageApp.FeasibilityAnalyzerConfig{
		ChainReliability:    reliability,
		AvailableCapitalUSD: capital,
		GasBudgetUSD:        gasBudget,
	}
}

// EvaluatorConfig returns the reference evaluator weighting, with the
// minimum net profit gate taken from arbitrage.min_profit_usd.
func (c *Config) EvaluatorConfig() arbitrageApp.EvaluatorConfig {
	cfg := arbitrageApp.DefaultEvaluatorConfig()
	if c.Arbitrage.MinProfitUSD > 0 {
		cfg.MinNetProfitUSD = c.Arbitrage.MinProfitUSD
	}
	return cfg
}

// DomainBridges returns the configured bridge catalog as market domain
// value objects.
func (c *Config) DomainBridges() []marketDomain.BridgeConfig {
	out := make([]marketDomain.BridgeConfig, 0, len(c.Bridges))
	for _, b := range c.Bridges {
		out = append(out, b.ToDomain())
	}
	return out
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Arbitrage
	v.BindEnv("arbitrage.min_profit_usd", "ARB_MIN_PROFIT_USD")
	v.BindEnv("arbitrage.default_notional_usd", "ARB_DEFAULT_NOTIONAL_USD")
	v.BindEnv("arbitrage.tick_interval_ms", "ARB_TICK_INTERVAL_MS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbengine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Default chain set: Ethereum mainnet, Arbitrum, Polygon.
	v.SetDefault("chains", []map[string]any{
		{
			"id": 1, "name": "ethereum",
			"native_symbol": "ETH", "max_reconnects": 0,
			"initial_backoff": "1s", "max_backoff": "30s",
			"swap_venues":         []string{"uniswap_v3", "curve"},
			"typical_swap_time_s": 15, "base_risk_multiplier": 1.0, "reliability": 98,
			"uniswap_quoter_address": "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
		},
		{
			"id": 42161, "name": "arbitrum",
			"native_symbol": "ETH", "max_reconnects": 0,
			"initial_backoff": "1s", "max_backoff": "30s",
			"swap_venues":         []string{"uniswap_v3", "camelot"},
			"typical_swap_time_s": 2, "base_risk_multiplier": 1.1, "reliability": 95,
			"uniswap_quoter_address": "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
		},
		{
			"id": 137, "name": "polygon",
			"native_symbol": "MATIC", "max_reconnects": 0,
			"initial_backoff": "1s", "max_backoff": "30s",
			"swap_venues":         []string{"quickswap", "uniswap_v3"},
			"typical_swap_time_s": 3, "base_risk_multiplier": 1.2, "reliability": 92,
			"uniswap_quoter_address": "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
		},
	})

	// Default bridge catalog.
	v.SetDefault("bridges", []map[string]any{
		{
			"id": "native-bridge", "kind": "canonical",
			"supported_chains":       []uint64{1, 42161},
			"trust_level":            5,
			"avg_processing_seconds": 600,
			"fee_base":               1.0, "fee_percentage": 0.0005, "fee_min": 1.0, "fee_max": 50,
		},
		{
			"id": "stargate", "kind": "liquidity_network",
			"supported_chains":       []uint64{1, 42161, 137},
			"trust_level":            4,
			"avg_processing_seconds": 120,
			"fee_base":               0.5, "fee_percentage": 0.0006, "fee_min": 0.5, "fee_max": 100,
		},
	})

	// Aggregator defaults
	v.SetDefault("aggregator.update_interval_ms", 2000)
	v.SetDefault("aggregator.cache_expiry_seconds", 30)
	v.SetDefault("aggregator.reconnect_delay_ms", 5000)
	v.SetDefault("aggregator.price_validation_threshold", 0.05)
	v.SetDefault("aggregator.source_rate_limit_ms", 200)

	// Arbitrage defaults
	v.SetDefault("arbitrage.min_profit_usd", 25)
	v.SetDefault("arbitrage.default_notional_usd", 10_000)
	v.SetDefault("arbitrage.tick_interval_ms", 2000)
	v.SetDefault("arbitrage.price_max_age_seconds", 60)
	v.SetDefault("arbitrage.max_recent_cache", 500)
	v.SetDefault("arbitrage.monte_carlo_base_seed", 1)
	v.SetDefault("arbitrage.cycle_detector_top_n", 100)
	v.SetDefault("arbitrage.path_optimizer_max_alternatives", 5)
	v.SetDefault("arbitrage.path_optimizer_simulation_rounds", 1000)
	v.SetDefault("arbitrage.path_optimizer_parallel_simulations", 4)
	v.SetDefault("arbitrage.path_optimizer_risk_tolerance", "moderate")
	v.SetDefault("arbitrage.available_capital_usd", 50_000)
	v.SetDefault("arbitrage.gas_budget_usd", 500)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbengine")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one entry under chains is required")
	}
	seen := make(map[uint64]bool, len(c.Chains))
	for _, ch := range c.Chains {
		if ch.HTTPURL == "" {
			return fmt.Errorf("chain %d (%s): http_url is required", ch.ID, ch.Name)
		}
		if seen[ch.ID] {
			return fmt.Errorf("duplicate chain id %d", ch.ID)
		}
		seen[ch.ID] = true
	}
	if c.Arbitrage.MinProfitUSD < 0 {
		return fmt.Errorf("arbitrage.min_profit_usd cannot be negative")
	}
	return nil
}
