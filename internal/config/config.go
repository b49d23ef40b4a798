// Package config loads and validates the analytics configuration: data
// source endpoints, request limits, and the fixed token table.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

// TokenTable is the fixed chain → addresses mapping. Order within each
// chain is preserved and defines the aggregation order.
type TokenTable struct {
	Solana   []string `mapstructure:"solana"`
	Ethereum []string `mapstructure:"ethereum"`
	Tron     []string `mapstructure:"tron"`
}

type Config struct {
	SolanaRPC        string     `mapstructure:"solana_rpc"`
	EthereumRPC      string     `mapstructure:"ethereum_rpc"`
	JupiterURL       string     `mapstructure:"jupiter_url"`
	DexScreenerURL   string     `mapstructure:"dexscreener_url"`
	TronScanURL      string     `mapstructure:"tronscan_url"`
	EthFactory       string     `mapstructure:"eth_factory"`
	EthWETH          string     `mapstructure:"eth_weth"`
	EthPriceFeed     string     `mapstructure:"eth_price_feed"`
	RequestTimeoutMs int        `mapstructure:"request_timeout_ms"`
	Workers          int        `mapstructure:"workers"`
	OutputDir        string     `mapstructure:"output_dir"`
	DebugLogging     bool       `mapstructure:"debug_logging"`
	Tokens           TokenTable `mapstructure:"tokens"`
}

const (
	DefaultSolanaRPC      = "https://api.mainnet-beta.solana.com"
	DefaultEthereumRPC    = "https://cloudflare-eth.com"
	DefaultRequestTimeout = 10000 // ms
	DefaultWorkers        = 4
	DefaultOutputDir      = "output"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"solana_rpc":         DefaultSolanaRPC,
		"ethereum_rpc":       DefaultEthereumRPC,
		"request_timeout_ms": DefaultRequestTimeout,
		"workers":            DefaultWorkers,
		"output_dir":         DefaultOutputDir,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

// RequestTimeout converts the millisecond knob into a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// TokenRefs flattens the token table in the canonical chain-then-address
// order the aggregator folds in.
func (c *Config) TokenRefs() []metrics.TokenRef {
	var refs []metrics.TokenRef
	for _, addr := range c.Tokens.Solana {
		refs = append(refs, metrics.TokenRef{Chain: metrics.ChainSolana, Address: addr})
	}
	for _, addr := range c.Tokens.Ethereum {
		refs = append(refs, metrics.TokenRef{Chain: metrics.ChainEthereum, Address: addr})
	}
	for _, addr := range c.Tokens.Tron {
		refs = append(refs, metrics.TokenRef{Chain: metrics.ChainTron, Address: addr})
	}
	return refs
}

func validateConfig(cfg *Config) error {
	for name, endpoint := range map[string]string{
		"solana_rpc":      cfg.SolanaRPC,
		"ethereum_rpc":    cfg.EthereumRPC,
		"jupiter_url":     cfg.JupiterURL,
		"dexscreener_url": cfg.DexScreenerURL,
		"tronscan_url":    cfg.TronScanURL,
	} {
		if endpoint == "" {
			continue // client packages fall back to their public defaults
		}
		if err := validateHTTPURL(endpoint); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.Workers < 0 {
		return errors.New("invalid workers count")
	}
	if len(cfg.TokenRefs()) == 0 {
		return errors.New("token table is empty")
	}
	for _, ref := range cfg.TokenRefs() {
		if strings.TrimSpace(ref.Address) == "" {
			return fmt.Errorf("empty token address in %s list", ref.Chain)
		}
	}
	return nil
}

func validateHTTPURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("KMOON_ANALYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if rpc := v.GetString("SOLANA_RPC"); rpc != "" {
		cfg.SolanaRPC = rpc
	}
	if rpc := v.GetString("ETHEREUM_RPC"); rpc != "" {
		cfg.EthereumRPC = rpc
	}
}
