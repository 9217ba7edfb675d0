// Package cliconfig layers command-line flags, environment variables and an
// optional config file into the run configuration for a scan, via a
// viper+mapstructure pattern trimmed to what a one-shot scan needs: no
// server/cache sections, no HTTP listener.
package cliconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors, surfaced to the user before any scanning
// begins (spec.md §7: configuration errors abort before scanning).
var (
	ErrNameRequired                = errors.New("--name is required")
	ErrCouplingRequiresGit         = errors.New("--coupling requires git (cannot combine with --no-git)")
	ErrCouplingRequiresDetailedGit = errors.New("--coupling requires detailed git (cannot combine with --no-detailed-git)")
	ErrDetailedGitRequiresGit      = errors.New("--no-detailed-git has no effect combined with --no-git")
	ErrInvalidYears                = errors.New("--years must not be negative")
	ErrInvalidBucketDays           = errors.New("--coupling-bucket-days must be positive")
	ErrInvalidMinBursts            = errors.New("--coupling-min-bursts must be positive")
	ErrInvalidMinRatio             = errors.New("--coupling-min-ratio must be in (0, 1]")
)

// Default configuration values.
const (
	DefaultCouplingBucketDays            = 30
	DefaultCouplingMinBursts             = 2
	DefaultCouplingMinRatio              = 0.5
	DefaultCouplingMinActivityGapMinutes = 1
	DefaultCouplingTimeOverlapMinutes    = 60
	DefaultCouplingMinDistance           = 0
)

// Coupling holds the coupling engine's tunables (spec.md §4.6), layered
// from --coupling-* flags.
type Coupling struct {
	BucketDays            int     `mapstructure:"bucket_days"`
	MinBursts             int     `mapstructure:"min_bursts"`
	MinRatio              float64 `mapstructure:"min_ratio"`
	MinActivityGapMinutes int     `mapstructure:"min_activity_gap_minutes"`
	TimeOverlapMinutes    int     `mapstructure:"time_overlap_minutes"`
	MinDistance           int     `mapstructure:"min_distance"`
	MaxCommonRoots        *int    `mapstructure:"max_common_roots"`
}

// Config is the fully resolved run configuration (spec.md §6).
type Config struct {
	Root  string `mapstructure:"root"`
	Name  string `mapstructure:"name"`
	Out   string `mapstructure:"out"`

	NoGit          bool   `mapstructure:"no_git"`
	NoDetailedGit  bool   `mapstructure:"no_detailed_git"`
	NoFileStats    bool   `mapstructure:"no_file_stats"`
	Coupling       bool   `mapstructure:"coupling"`
	FollowSymlinks bool   `mapstructure:"follow_symlinks"`
	Years          int    `mapstructure:"years"`
	CacheDir       string `mapstructure:"cache_dir"`

	CouplingConfig Coupling `mapstructure:"coupling_config"`
}

// Flags mirrors the cobra flag values the CLI binds directly; Load
// translates it into a Config, layering in environment variables and an
// optional config file before validating.
type Flags struct {
	Root           string
	Name           string
	Out            string
	NoGit          bool
	NoDetailedGit  bool
	NoFileStats    bool
	Coupling       bool
	FollowSymlinks bool
	Years          int
	CacheDir       string

	CouplingBucketDays            int
	CouplingMinBursts             int
	CouplingMinRatio              float64
	CouplingMinActivityGapMinutes int
	CouplingTimeOverlapMinutes    int
	CouplingMinDistance           int
	CouplingMaxCommonRoots        int
	CouplingMaxCommonRootsSet     bool

	ConfigFile string
}

// Load builds a Config from flags, a config file (if present) and
// PLGCSCAN_-prefixed environment variables, then validates it.
func Load(flags Flags) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if flags.ConfigFile != "" {
		viperCfg.SetConfigFile(flags.ConfigFile)

		if err := viperCfg.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	viperCfg.SetEnvPrefix("PLGCSCAN")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyFlags(viperCfg, flags)

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if flags.CouplingMaxCommonRootsSet {
		v := flags.CouplingMaxCommonRoots
		cfg.CouplingConfig.MaxCommonRoots = &v
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("root", ".")
	viperCfg.SetDefault("coupling_config.bucket_days", DefaultCouplingBucketDays)
	viperCfg.SetDefault("coupling_config.min_bursts", DefaultCouplingMinBursts)
	viperCfg.SetDefault("coupling_config.min_ratio", DefaultCouplingMinRatio)
	viperCfg.SetDefault("coupling_config.min_activity_gap_minutes", DefaultCouplingMinActivityGapMinutes)
	viperCfg.SetDefault("coupling_config.time_overlap_minutes", DefaultCouplingTimeOverlapMinutes)
	viperCfg.SetDefault("coupling_config.min_distance", DefaultCouplingMinDistance)
}

// applyFlags layers explicitly-set flag values over defaults/env/file.
// Cobra flags are always present on the struct (no notion of "unset" at
// this layer besides zero values), so every flag is set unconditionally;
// callers construct Flags only from flags the user actually passed or
// cobra's own flag defaults, matching pflag's own default-vs-set model.
func applyFlags(viperCfg *viper.Viper, flags Flags) {
	viperCfg.Set("root", flags.Root)
	viperCfg.Set("name", flags.Name)
	viperCfg.Set("out", flags.Out)
	viperCfg.Set("no_git", flags.NoGit)
	viperCfg.Set("no_detailed_git", flags.NoDetailedGit)
	viperCfg.Set("no_file_stats", flags.NoFileStats)
	viperCfg.Set("coupling", flags.Coupling)
	viperCfg.Set("follow_symlinks", flags.FollowSymlinks)
	viperCfg.Set("years", flags.Years)
	viperCfg.Set("cache_dir", flags.CacheDir)

	viperCfg.Set("coupling_config.bucket_days", flags.CouplingBucketDays)
	viperCfg.Set("coupling_config.min_bursts", flags.CouplingMinBursts)
	viperCfg.Set("coupling_config.min_ratio", flags.CouplingMinRatio)
	viperCfg.Set("coupling_config.min_activity_gap_minutes", flags.CouplingMinActivityGapMinutes)
	viperCfg.Set("coupling_config.time_overlap_minutes", flags.CouplingTimeOverlapMinutes)
	viperCfg.Set("coupling_config.min_distance", flags.CouplingMinDistance)
}

// validate rejects invalid flag combinations before any scanning begins
// (spec.md §6, §7).
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return ErrNameRequired
	}

	if cfg.NoGit && cfg.Coupling {
		return ErrCouplingRequiresGit
	}

	if cfg.Coupling && cfg.NoDetailedGit {
		return ErrCouplingRequiresDetailedGit
	}

	if cfg.NoGit && cfg.NoDetailedGit {
		return ErrDetailedGitRequiresGit
	}

	if cfg.Years < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidYears, cfg.Years)
	}

	if cfg.CouplingConfig.BucketDays <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBucketDays, cfg.CouplingConfig.BucketDays)
	}

	if cfg.CouplingConfig.MinBursts <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMinBursts, cfg.CouplingConfig.MinBursts)
	}

	if cfg.CouplingConfig.MinRatio <= 0 || cfg.CouplingConfig.MinRatio > 1 {
		return fmt.Errorf("%w: %f", ErrInvalidMinRatio, cfg.CouplingConfig.MinRatio)
	}

	return nil
}
