package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const DEFAULT_NETWORK = "development"
const DEFAULT_DEPLOY_TIMEOUT = 5 * time.Minute

type Config struct {
	NETWORK  string
	RPC_URL  string
	CHAIN_ID int64 // 0 means ask the node

	KEYSTORE_DIR      string
	KEYSTORE_ID       string
	KEYSTORE_PASSWORD string

	BUILD_DIR      string
	DEPLOYMENTS_DB string
	NETWORKS_FILE  string

	GAS_LIMIT         uint64
	MAX_FEE_GWEI      string
	PRIORITY_FEE_GWEI string

	DEPLOY_TIMEOUT time.Duration

	LOG_LEVEL string
	LOG_FILE  string

	init bool
}

var lock = &sync.Mutex{}

var GlobalConfig Config

// Get returns the process wide config, loading it on first use.
func Get() (*Config, error) {
	lock.Lock()
	defer lock.Unlock()
	if !GlobalConfig.init {
		cfg, err := Load()
		if err != nil {
			return nil, err
		}
		GlobalConfig = *cfg
	}
	return &GlobalConfig, nil
}

// Load reads .env (if present) and the process environment into a fresh Config.
func Load() (*Config, error) {
	godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cfg := &Config{
		NETWORK:           getenv("NETWORK", DEFAULT_NETWORK),
		RPC_URL:           os.Getenv("RPC_URL"),
		KEYSTORE_DIR:      getenv("KEYSTORE_DIR", filepath.Join(home, ".brownie", "accounts")),
		KEYSTORE_ID:       os.Getenv("KEYSTORE_ID"),
		KEYSTORE_PASSWORD: os.Getenv("KEYSTORE_PASSWORD"),
		BUILD_DIR:         getenv("BUILD_DIR", filepath.Join("build", "contracts")),
		DEPLOYMENTS_DB:    getenv("DEPLOYMENTS_DB", filepath.Join("build", "deployments")),
		NETWORKS_FILE:     os.Getenv("NETWORKS_FILE"),
		MAX_FEE_GWEI:      os.Getenv("MAX_FEE_GWEI"),
		PRIORITY_FEE_GWEI: os.Getenv("PRIORITY_FEE_GWEI"),
		DEPLOY_TIMEOUT:    DEFAULT_DEPLOY_TIMEOUT,
		LOG_LEVEL:         getenv("LOG_LEVEL", "info"),
		LOG_FILE:          os.Getenv("LOG_FILE"),
		init:              true,
	}

	if v := os.Getenv("CHAIN_ID"); v != "" {
		cfg.CHAIN_ID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "CHAIN_ID")
		}
	}
	if v := os.Getenv("GAS_LIMIT"); v != "" {
		cfg.GAS_LIMIT, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "GAS_LIMIT")
		}
	}
	if v := os.Getenv("DEPLOY_TIMEOUT"); v != "" {
		cfg.DEPLOY_TIMEOUT, err = time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrap(err, "DEPLOY_TIMEOUT")
		}
	}
	return cfg, nil
}

// Network resolves the selected network. RPC_URL and CHAIN_ID, when set,
// take precedence over the values in the networks file.
func (c *Config) Network() (Network, error) {
	networks, err := LoadNetworks(c.NETWORKS_FILE)
	if err != nil {
		return Network{}, err
	}
	network, err := networks.Find(c.NETWORK)
	if err != nil {
		if c.RPC_URL == "" {
			return Network{}, err
		}
		network = Network{ID: c.NETWORK, Name: c.NETWORK}
	}
	if c.RPC_URL != "" {
		network.Host = c.RPC_URL
	}
	if c.CHAIN_ID != 0 {
		network.ChainID = c.CHAIN_ID
	}
	return network, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
