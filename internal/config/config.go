package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultLogFileName    = "chaindo.log"

	appDirName = "chaindo"
)

type Keymap struct {
	Quit    string `toml:"quit"`
	Connect string `toml:"connect"`
	Refresh string `toml:"refresh"`
	Add     string `toml:"add"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Toggle  string `toml:"toggle"`
	Delete  string `toml:"delete"`
	Detail  string `toml:"detail"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
	Edit    string `toml:"edit"`
	Filter  string `toml:"filter"`
}

// Currency describes the native currency metadata handed to the wallet when
// it has to register the target network.
type Currency struct {
	Name     string `toml:"name"`
	Symbol   string `toml:"symbol"`
	Decimals int    `toml:"decimals"`
}

// Network identifies the one chain the client is willing to operate on.
type Network struct {
	ChainID  string   `toml:"chain_id"`
	Name     string   `toml:"name"`
	RPCURL   string   `toml:"rpc_url"`
	Currency Currency `toml:"currency"`
}

type Config struct {
	WalletURL       string  `toml:"wallet_url"`
	ContractAddress string  `toml:"contract_address"`
	LogPath         string  `toml:"log_path"`
	LogLevel        string  `toml:"log_level"`
	DefaultFilter   string  `toml:"default_filter"`
	Network         Network `toml:"network"`
	Keys            Keymap  `toml:"keys"`
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogFileName
	}
	return cfg, nil
}

// ResolveConfigPath prefers $XDG_CONFIG_HOME/chaindo/config.toml and falls
// back to a config.toml in the working directory.
func ResolveConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, appDirName, DefaultConfigFileName)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.WalletURL) == "" {
		return errors.New("wallet_url is empty")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("contract_address %q is not a valid address", c.ContractAddress)
	}
	if _, err := ParseChainID(c.Network.ChainID); err != nil {
		return fmt.Errorf("network.chain_id: %w", err)
	}
	return nil
}

// ParseChainID decodes a hex quantity chain id ("0x7a69"). Parsing is lenient
// about case and leading zeros; wallets disagree on both.
func ParseChainID(s string) (uint64, error) {
	hex := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if hex == "" {
		return 0, fmt.Errorf("chain id %q is not a hex quantity", s)
	}
	id, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("chain id %q is not a hex quantity", s)
	}
	return id, nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		WalletURL:       "http://127.0.0.1:1248",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		LogPath:         DefaultLogFileName,
		LogLevel:        "info",
		DefaultFilter:   "all",
		Network: Network{
			ChainID: "0x7a69",
			Name:    "Hardhat Local",
			RPCURL:  "http://127.0.0.1:8545",
			Currency: Currency{
				Name:     "ETH",
				Symbol:   "ETH",
				Decimals: 18,
			},
		},
		Keys: Keymap{
			Quit:    "q",
			Connect: "c",
			Refresh: "r",
			Add:     "a",
			Up:      "k",
			Down:    "j",
			Toggle:  " ",
			Delete:  "d",
			Detail:  "enter",
			Confirm: "enter",
			Cancel:  "esc",
			Edit:    "e",
			Filter:  "f",
		},
	}
}
