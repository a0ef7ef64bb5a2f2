package config

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "BILLBOARD"
	configDir  = ".billboard"
	configFile = "config.toml"
)

const (
	KeyRPCURL          = "rpc_url"
	KeyInjectedURL     = "injected_url"
	KeyBridgeURL       = "bridge_url"
	KeyContractAddress = "contract_address"
	KeyTokenID         = "token_id"
	KeyChainID         = "chain_id"
	KeyDeployBlock     = "deploy_block"
	KeyPollInterval    = "poll_interval"
	KeyDropTimeout     = "drop_timeout"
	KeyApprovalTimeout = "approval_timeout"
	KeySessionPath     = "session.path"
	KeyLogLevel        = "log.level"
	KeyOtelEndpoint    = "otel.endpoint"
	KeyOtelDisabled    = "otel.disabled"
)

// Settings is the resolved configuration for one run.
type Settings struct {
	RPCURL          string
	InjectedURL     string
	BridgeURL       string
	ContractAddress string
	TokenID         *big.Int
	ChainID         uint64
	DeployBlock     uint64
	PollInterval    time.Duration
	DropTimeout     time.Duration
	ApprovalTimeout time.Duration
	LogLevel        string
	OtelEndpoint    string
	OtelDisabled    bool
}

// Load reads the config file and BILLBOARD_ environment overrides. An empty
// path means ~/.billboard/config.toml, which may be absent; an explicit path
// must exist.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, configDir, configFile)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRPCURL, "")
	v.SetDefault(KeyInjectedURL, "http://127.0.0.1:1248")
	// No public relay speaks the sealed session protocol, so remote pairing
	// stays off until a bridge is configured.
	v.SetDefault(KeyBridgeURL, "")
	v.SetDefault(KeyContractAddress, "0xA384435C0a70873DA9872f1C5Ae6795e5A4a93A8")
	v.SetDefault(KeyTokenID, "1")
	v.SetDefault(KeyChainID, 4)
	v.SetDefault(KeyDeployBlock, 0)
	v.SetDefault(KeyPollInterval, 4*time.Second)
	v.SetDefault(KeyDropTimeout, 5*time.Minute)
	v.SetDefault(KeyApprovalTimeout, 5*time.Minute)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyOtelEndpoint, "")
	v.SetDefault(KeyOtelDisabled, false)
}

func Resolve(v *viper.Viper) (Settings, error) {
	tokenID, ok := new(big.Int).SetString(strings.TrimSpace(v.GetString(KeyTokenID)), 10)
	if !ok || tokenID.Sign() < 0 {
		return Settings{}, fmt.Errorf("invalid %s %q", KeyTokenID, v.GetString(KeyTokenID))
	}

	settings := Settings{
		RPCURL:          strings.TrimSpace(v.GetString(KeyRPCURL)),
		InjectedURL:     strings.TrimSpace(v.GetString(KeyInjectedURL)),
		BridgeURL:       strings.TrimSpace(v.GetString(KeyBridgeURL)),
		ContractAddress: strings.TrimSpace(v.GetString(KeyContractAddress)),
		TokenID:         tokenID,
		ChainID:         v.GetUint64(KeyChainID),
		DeployBlock:     v.GetUint64(KeyDeployBlock),
		PollInterval:    v.GetDuration(KeyPollInterval),
		DropTimeout:     v.GetDuration(KeyDropTimeout),
		ApprovalTimeout: v.GetDuration(KeyApprovalTimeout),
		LogLevel:        strings.TrimSpace(v.GetString(KeyLogLevel)),
		OtelEndpoint:    strings.TrimSpace(v.GetString(KeyOtelEndpoint)),
		OtelDisabled:    v.GetBool(KeyOtelDisabled),
	}

	if settings.ContractAddress == "" {
		return Settings{}, fmt.Errorf("%s is required", KeyContractAddress)
	}
	if settings.PollInterval <= 0 {
		return Settings{}, fmt.Errorf("%s must be positive", KeyPollInterval)
	}

	return settings, nil
}

// NewLogger builds the structured logger every component receives.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	if level == "" {
		level = "warn"
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", KeyLogLevel, err)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           parsed,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}
