package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Server   ServerConfig   `yaml:"server"`
	Nav      NavConfig      `yaml:"nav"`
	Provider ProviderConfig `yaml:"provider"`
	Route    RouteConfig    `yaml:"route"`
}

// LogSettings holds settings for a single log output.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	Events LogSettings `yaml:"events"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// NavConfig holds tuning for the positioning and guidance pipeline.
type NavConfig struct {
	ProcessNoise         float64  `yaml:"process_noise"`
	MaxAccuracy          Distance `yaml:"max_accuracy"`
	OffRouteDistance     Distance `yaml:"off_route_distance"`
	OffRouteAccuracyGate Distance `yaml:"off_route_accuracy_gate"`
	OffRouteTrigger      int      `yaml:"off_route_trigger"`
	ArrivalRadius        Distance `yaml:"arrival_radius"`
	SettleDelay          Duration `yaml:"settle_delay"`
	MinETASpeedKmh       float64  `yaml:"min_eta_speed_kmh"`
	DefaultSpeedKmh      float64  `yaml:"default_speed_kmh"`
}

// ProviderConfig holds settings for the position source.
type ProviderConfig struct {
	Type   string             `yaml:"type"` // "mock", "replay"
	Mock   MockProviderConfig `yaml:"mock"`
	Replay ReplayConfig       `yaml:"replay"`
}

// MockProviderConfig holds settings for the synthetic position source.
type MockProviderConfig struct {
	SpeedKmh float64  `yaml:"speed_kmh"`
	Interval Duration `yaml:"interval"`
	Noise    Distance `yaml:"noise"`
	Accuracy Distance `yaml:"accuracy"`
}

// ReplayConfig holds settings for replaying a recorded fix log.
type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"` // playback rate multiplier, 0 = as fast as possible
}

// RouteConfig holds settings for the active route.
type RouteConfig struct {
	Path string `yaml:"path"` // GeoJSON LineString file
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/smartnav.db",
		},
		Server: ServerConfig{
			Address: "localhost:1920",
		},
		Nav: NavConfig{
			ProcessNoise:         1e-9,
			MaxAccuracy:          Distance(2000),
			OffRouteDistance:     Distance(80),
			OffRouteAccuracyGate: Distance(80),
			OffRouteTrigger:      4,
			ArrivalRadius:        Distance(40),
			SettleDelay:          Duration(10 * time.Second),
			MinETASpeedKmh:       5,
			DefaultSpeedKmh:      30,
		},
		Provider: ProviderConfig{
			Type: "mock",
			Mock: MockProviderConfig{
				SpeedKmh: 50,
				Interval: Duration(1 * time.Second),
				Noise:    Distance(8),
				Accuracy: Distance(10),
			},
			Replay: ReplayConfig{
				Path:  "./data/fixes.jsonl",
				Speed: 1.0,
			},
		},
		Route: RouteConfig{
			Path: "./data/route.geojson",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		applyEnv(cfg)

		if err := validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides values from the environment but never saves them
// back to disk.
func applyEnv(cfg *Config) {
	if addr := os.Getenv("SMARTNAV_ADDR"); addr != "" {
		cfg.Server.Address = addr
	}
	if path := os.Getenv("SMARTNAV_DB_PATH"); path != "" {
		cfg.DB.Path = path
	}
	if path := os.Getenv("SMARTNAV_ROUTE"); path != "" {
		cfg.Route.Path = path
	}
}

func validate(cfg *Config) error {
	switch cfg.Provider.Type {
	case "mock", "replay":
	default:
		return fmt.Errorf("invalid provider type '%s': must be 'mock' or 'replay'", cfg.Provider.Type)
	}
	if cfg.Nav.OffRouteTrigger < 1 {
		return fmt.Errorf("off_route_trigger must be at least 1, got %d", cfg.Nav.OffRouteTrigger)
	}
	if cfg.Nav.ProcessNoise <= 0 {
		return fmt.Errorf("process_noise must be positive, got %g", cfg.Nav.ProcessNoise)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# SmartNav Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us, ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers)

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	reType := regexp.MustCompile(`(?m)^(\s+)type:`)
	data = reType.ReplaceAll(data, []byte("${1}# Options: mock, replay\n${1}type:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
