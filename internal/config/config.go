package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TIPJAR"

// NodeConfig holds the settings shared by every command that talks to the node.
type NodeConfig struct {
	RPCURL          string
	Contract        string
	FromBlock       uint64
	ExpectedChainID uint64
	Concurrency     int
	RPCRPS          float64
}

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	Node     NodeConfig
	Listen   string
	Staff    []StaffEntry
	LogLevel string
}

// HistoryConfig holds configuration for the history command.
type HistoryConfig struct {
	Node        NodeConfig
	APIURL      string
	ExplorerURL string
	LogLevel    string
}

// TipConfig holds configuration for the tip command.
type TipConfig struct {
	Node          NodeConfig
	Staff         []StaffEntry
	PrivateKey    string
	Keystore      string
	Passphrase    string
	AutoApprove   bool
	WatchInterval time.Duration
	Journal       string
	PGDSN         string
	ExplorerURL   string
	LogLevel      string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"listen": ":8080",
	})
	if err != nil {
		return ServeConfig{}, err
	}

	return ServeConfig{
		Node:     nodeConfig(v),
		Listen:   v.GetString("listen"),
		Staff:    ParseStaff(v.Get("staff")),
		LogLevel: v.GetString("log-level"),
	}, nil
}

// LoadHistory merges config file, environment variables, and flags into HistoryConfig.
func LoadHistory(cfgFile string, flags *pflag.FlagSet) (HistoryConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return HistoryConfig{}, err
	}

	return HistoryConfig{
		Node:        nodeConfig(v),
		APIURL:      v.GetString("api"),
		ExplorerURL: v.GetString("explorer"),
		LogLevel:    v.GetString("log-level"),
	}, nil
}

// LoadTip merges config file, environment variables, and flags into TipConfig.
func LoadTip(cfgFile string, flags *pflag.FlagSet) (TipConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"chain-id":       uint64(84532),
		"watch-interval": 5 * time.Second,
		"journal":        "./data/tip_attempts.jsonl",
	})
	if err != nil {
		return TipConfig{}, err
	}

	return TipConfig{
		Node:          nodeConfig(v),
		Staff:         ParseStaff(v.Get("staff")),
		PrivateKey:    v.GetString("private-key"),
		Keystore:      v.GetString("keystore"),
		Passphrase:    v.GetString("passphrase"),
		AutoApprove:   v.GetBool("yes"),
		WatchInterval: v.GetDuration("watch-interval"),
		Journal:       v.GetString("journal"),
		PGDSN:         v.GetString("pg-dsn"),
		ExplorerURL:   v.GetString("explorer"),
		LogLevel:      v.GetString("log-level"),
	}, nil
}

// LoadStaff reads only the staff list, for the staff command.
func LoadStaff(cfgFile string, flags *pflag.FlagSet) ([]StaffEntry, string, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return nil, "", err
	}
	return ParseStaff(v.Get("staff")), v.GetString("log-level"), nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("concurrency", 8)
	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func nodeConfig(v *viper.Viper) NodeConfig {
	return NodeConfig{
		RPCURL:          strings.TrimSpace(v.GetString("rpc")),
		Contract:        strings.TrimSpace(v.GetString("contract")),
		FromBlock:       v.GetUint64("from-block"),
		ExpectedChainID: v.GetUint64("chain-id"),
		Concurrency:     v.GetInt("concurrency"),
		RPCRPS:          v.GetFloat64("rpc-rps"),
	}
}

func toStringSlice(val interface{}) []string {
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
