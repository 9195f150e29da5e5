package clientconfig

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config controls the keyring daemon embedding.
type Config struct {
	Keyring KeyringConfig `yaml:"keyring"`
}

type KeyringConfig struct {
	// Persistence enables session envelopes at startup.
	Persistence *bool `yaml:"persistence"`
	// StorePath switches the envelope store from memory to an encrypted
	// file; requires StorePassphrase.
	StorePath       string        `yaml:"storePath"`
	StorePassphrase string        `yaml:"storePassphrase"`
	UnlockRPS       float64       `yaml:"unlockRPS"`
	UnlockBurst     int           `yaml:"unlockBurst"`
	UnlockIdleTTL   time.Duration `yaml:"unlockIdleTTL"`
	MetricsAddr     string        `yaml:"metricsAddr"`
	// RPCAddr is the loopback listen address of the JSON-RPC control
	// surface; empty disables it.
	RPCAddr string `yaml:"rpcAddr"`
}

func Default() KeyringConfig {
	return KeyringConfig{
		UnlockRPS:     1,
		UnlockBurst:   5,
		UnlockIdleTTL: 10 * time.Minute,
		MetricsAddr:   "127.0.0.1:9464",
		RPCAddr:       "127.0.0.1:9470",
	}
}

// LoadFromPath reads the first readable candidate config file, merges it
// over the defaults, then applies env overrides. Missing files are not an
// error; defaults plus env apply.
func LoadFromPath(configPath string) KeyringConfig {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates, "configs/config.yaml")
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		merged := cfg
		Merge(&merged, parsed.Keyring)
		ApplyEnvOverrides(&merged)
		return merged
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

func Merge(dst *KeyringConfig, src KeyringConfig) {
	if src.Persistence != nil {
		dst.Persistence = src.Persistence
	}
	if src.StorePath != "" {
		dst.StorePath = src.StorePath
	}
	if src.StorePassphrase != "" {
		dst.StorePassphrase = src.StorePassphrase
	}
	if src.UnlockRPS != 0 {
		dst.UnlockRPS = src.UnlockRPS
	}
	if src.UnlockBurst != 0 {
		dst.UnlockBurst = src.UnlockBurst
	}
	if src.UnlockIdleTTL != 0 {
		dst.UnlockIdleTTL = src.UnlockIdleTTL
	}
	if src.MetricsAddr != "" {
		dst.MetricsAddr = src.MetricsAddr
	}
	if src.RPCAddr != "" {
		dst.RPCAddr = src.RPCAddr
	}
}

func ApplyEnvOverrides(cfg *KeyringConfig) {
	if path := strings.TrimSpace(os.Getenv("WM_STORE_PATH")); path != "" {
		cfg.StorePath = path
	}
	if pass := os.Getenv("WM_STORE_PASSPHRASE"); pass != "" {
		cfg.StorePassphrase = pass
	}
	if addr := strings.TrimSpace(os.Getenv("WM_RPC_ADDR")); addr != "" {
		cfg.RPCAddr = addr
	}
	raw := strings.TrimSpace(os.Getenv("WM_PERSISTENCE"))
	if raw == "" {
		return
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return
	}
	cfg.Persistence = &v
}
