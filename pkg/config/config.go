package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Chain  ChainConfig  `mapstructure:"chain"`
	Tx     TxConfig     `mapstructure:"tx"`
	Relay  RelayConfig  `mapstructure:"relay"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Events EventsConfig `mapstructure:"events"`
}

type AppConfig struct {
	Env            string        `mapstructure:"env"`
	HttpPort       string        `mapstructure:"http_port"`
	GrpcPort       string        `mapstructure:"grpc_port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CorsOrigins    []string      `mapstructure:"cors_origins"`
	ProbeInterval  time.Duration `mapstructure:"probe_interval"`
}

// ChainConfig identifies the node and the contract. It is read once at
// startup and never mutated afterwards.
type ChainConfig struct {
	RpcUrl          string        `mapstructure:"rpc_url"`
	ChainID         int64         `mapstructure:"chain_id"`
	ContractAddress string        `mapstructure:"contract_address"`
	AbiPath         string        `mapstructure:"abi_path"`    // empty: embedded VotingDAO ABI
	NonceSource     string        `mapstructure:"nonce_source"` // "latest" or "pending"
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
}

type TxConfig struct {
	GasPriceGwei string `mapstructure:"gas_price_gwei"` // decimal string, e.g. "1" or "0.5"
	GasLimit     uint64 `mapstructure:"gas_limit"`
}

type RelayConfig struct {
	SerializeSenders bool          `mapstructure:"serialize_senders"`
	LockBackend      string        `mapstructure:"lock_backend"` // "local" or "redis"
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

type EventsConfig struct {
	Publisher string `mapstructure:"publisher"` // "none", "redis" or "kafka"
	Topic     string `mapstructure:"topic"`
}

const (
	NonceLatest  = "latest"
	NoncePending = "pending"
)

var Global Config

func Init() {
	cfg, err := LoadFile(viper.GetViper(), "")
	if err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	Global = *cfg

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// LoadFile reads path, or config.yaml from . and ./config when path is
// empty, then decodes it with Load. A missing default file is not an error.
func LoadFile(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // name of config file (without extension)
		v.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}
	return Load(v)
}

// Load decodes v (after applying defaults and env bindings) and validates
// the result.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise only fail on the first
// request.
func (c *Config) Validate() error {
	if c.Chain.RpcUrl == "" {
		return errors.New("chain.rpc_url is required")
	}
	if c.Chain.ChainID <= 0 {
		return fmt.Errorf("chain.chain_id must be positive, got %d", c.Chain.ChainID)
	}
	if !common.IsHexAddress(c.Chain.ContractAddress) {
		return fmt.Errorf("chain.contract_address %q is not a hex address", c.Chain.ContractAddress)
	}
	if c.Chain.NonceSource != NonceLatest && c.Chain.NonceSource != NoncePending {
		return fmt.Errorf("chain.nonce_source must be %q or %q", NonceLatest, NoncePending)
	}
	if c.Tx.GasLimit == 0 {
		return errors.New("tx.gas_limit must be positive")
	}
	if _, err := c.Tx.GasPriceWei(); err != nil {
		return err
	}
	if c.Relay.SerializeSenders {
		// the lock is released on mempool acceptance, so the next request
		// must see the pending nonce
		if c.Chain.NonceSource != NoncePending {
			return errors.New("relay.serialize_senders requires chain.nonce_source=pending")
		}
		if c.Relay.LockBackend != "local" && c.Relay.LockBackend != "redis" {
			return fmt.Errorf("relay.lock_backend must be local or redis, got %q", c.Relay.LockBackend)
		}
	}
	switch c.Events.Publisher {
	case "none", "redis", "kafka":
	default:
		return fmt.Errorf("events.publisher must be none, redis or kafka, got %q", c.Events.Publisher)
	}
	return nil
}

// GasPriceWei converts the configured gwei amount to wei.
func (t TxConfig) GasPriceWei() (*decimal.Decimal, error) {
	gwei, err := decimal.NewFromString(t.GasPriceGwei)
	if err != nil {
		return nil, fmt.Errorf("tx.gas_price_gwei %q: %w", t.GasPriceGwei, err)
	}
	wei := gwei.Shift(9)
	if !wei.IsInteger() || wei.Sign() <= 0 {
		return nil, fmt.Errorf("tx.gas_price_gwei %q must be a positive whole number of wei", t.GasPriceGwei)
	}
	return &wei, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")
	v.SetDefault("app.grpc_port", "50051")
	v.SetDefault("app.request_timeout", 30*time.Second)
	v.SetDefault("app.cors_origins", []string{})
	v.SetDefault("app.probe_interval", 15*time.Second)

	v.SetDefault("chain.rpc_url", "https://5165.rpc.thirdweb.com")
	v.SetDefault("chain.chain_id", 5165)
	v.SetDefault("chain.contract_address", "0x29192C5d95BF89B8Db9e4390Bb175b811277b005")
	v.SetDefault("chain.abi_path", "")
	v.SetDefault("chain.nonce_source", NonceLatest)
	v.SetDefault("chain.call_timeout", 10*time.Second)

	v.SetDefault("tx.gas_price_gwei", "1")
	v.SetDefault("tx.gas_limit", 2000000)

	v.SetDefault("relay.serialize_senders", false)
	v.SetDefault("relay.lock_backend", "local")
	v.SetDefault("relay.lock_ttl", 30*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})

	v.SetDefault("events.publisher", "none")
	v.SetDefault("events.topic", "relay_events_tx_submitted")
}
