package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds one node's configuration.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Ring      RingConfig      `json:"ring" yaml:"ring"`
	Intervals IntervalsConfig `json:"intervals" yaml:"intervals"`
	Flood     FloodConfig     `json:"flood" yaml:"flood"`
	Logger    logger.Config   `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Hostname string `json:"hostname" yaml:"hostname"`
	Port     int    `json:"port" yaml:"port"`
	// Bootstrap is the address of any live ring member; empty forms a new
	// singleton ring.
	Bootstrap string `json:"bootstrap" yaml:"bootstrap"`
}

// Addr is the host:port this node binds and advertises to peers.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

type RingConfig struct {
	Bits              uint `json:"bits" yaml:"bits"`
	ReplicationFactor int  `json:"replication_factor" yaml:"replication_factor"`
	SuccessorListSize int  `json:"successor_list_size" yaml:"successor_list_size"`
}

type IntervalsConfig struct {
	Stabilize   time.Duration `json:"stabilize" yaml:"stabilize"`
	FixFingers  time.Duration `json:"fix_fingers" yaml:"fix_fingers"`
	Heartbeat   time.Duration `json:"heartbeat" yaml:"heartbeat"`
	AntiEntropy time.Duration `json:"anti_entropy" yaml:"anti_entropy"`
	Election    time.Duration `json:"election" yaml:"election"`
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`
}

type FloodConfig struct {
	DefaultTTL int `json:"default_ttl" yaml:"default_ttl"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Hostname: "127.0.0.1",
			Port:     5000,
		},
		Ring: RingConfig{
			Bits:              32,
			ReplicationFactor: 3,
			SuccessorListSize: 4,
		},
		Intervals: IntervalsConfig{
			Stabilize:   3 * time.Second,
			FixFingers:  5 * time.Second,
			Heartbeat:   3 * time.Second,
			AntiEntropy: 10 * time.Second,
			Election:    5 * time.Second,
			CallTimeout: 2 * time.Second,
		},
		Flood: FloodConfig{
			DefaultTTL: 5,
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file, falling back to defaults when no path
// was given and the default file is absent.
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "node", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
