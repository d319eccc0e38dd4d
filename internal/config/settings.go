package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/filesift/filesift/internal/common"
	"github.com/filesift/filesift/internal/model"
)

// Settings is the application configuration after defaults, config file,
// environment and flags have been merged by viper.
type Settings struct {
	Rules       []string           `mapstructure:"rules"`
	CustomRules []model.CustomRule `mapstructure:"custom_rules"`
	Operation   string             `mapstructure:"operation"`
	Granularity string             `mapstructure:"date_granularity"`

	ExcludePatterns []string `mapstructure:"exclude_patterns"`
	MinFileSize     int64    `mapstructure:"min_file_size"`
	MaxFileSize     int64    `mapstructure:"max_file_size"`
	SkipMarker      string   `mapstructure:"skip_marker"`
	GroupRelated    bool     `mapstructure:"group_related"`

	Workers       int     `mapstructure:"workers"`
	MonitorDelay  float64 `mapstructure:"monitor_delay"`
	BatchSize     int     `mapstructure:"batch_size"`
	HierarchyMode bool    `mapstructure:"detailed_hierarchy"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	TrashDir string `mapstructure:"trash_dir"`
}

// RegisterDefaults installs the out-of-the-box configuration on a viper
// instance. Every key can still be overridden by file, env or flag.
func RegisterDefaults(v *viper.Viper) {
	v.SetDefault("rules", []string{string(model.RuleByType)})
	v.SetDefault("operation", string(model.OpMove))
	v.SetDefault("date_granularity", string(model.GranularityMonth))
	v.SetDefault("exclude_patterns", []string{
		".*", "Thumbs.db", "Desktop.ini", ".DS_Store", "*.tmp", "*.temp",
	})
	v.SetDefault("min_file_size", 0)
	v.SetDefault("max_file_size", 1024*1024*1024)
	v.SetDefault("skip_marker", ".noclassify")
	v.SetDefault("group_related", false)
	v.SetDefault("workers", 4)
	v.SetDefault("monitor_delay", 1.0)
	v.SetDefault("batch_size", 10)
	v.SetDefault("detailed_hierarchy", false)
	v.SetDefault("database.path", "$HOME/.local/share/filesift/filesift.db")
	v.SetDefault("trash_dir", "$HOME/.local/share/filesift/trash")
}

// Load unmarshals and validates the merged configuration.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects configurations the engine cannot act on.
func (s *Settings) Validate() error {
	if !model.OperationKind(s.Operation).Valid() {
		return fmt.Errorf("%w: operation %q", common.ErrInvalidConfig, s.Operation)
	}
	if len(s.Rules) == 0 {
		return fmt.Errorf("%w: at least one rule is required", common.ErrInvalidConfig)
	}
	for _, name := range s.Rules {
		switch model.RuleName(name) {
		case model.RuleByType, model.RuleByDate, model.RuleBySize,
			model.RuleByCustom, model.RuleByPattern, model.RuleByProject, model.RuleByUsage:
		default:
			return fmt.Errorf("%w: unknown rule %q", common.ErrInvalidConfig, name)
		}
	}
	for _, rule := range s.CustomRules {
		if rule.Enabled && rule.Pattern == "" {
			return fmt.Errorf("%w: custom rule %q has no pattern", common.ErrInvalidConfig, rule.Name)
		}
		if rule.Enabled && rule.TargetFolder == "" {
			return fmt.Errorf("%w: custom rule %q has no target folder", common.ErrInvalidConfig, rule.Name)
		}
	}
	if s.MinFileSize < 0 || (s.MaxFileSize > 0 && s.MaxFileSize < s.MinFileSize) {
		return fmt.Errorf("%w: file size window is inverted", common.ErrInvalidConfig)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// RuleSet converts the configured rule names to the model type.
func (s *Settings) RuleSet() model.RuleSet {
	out := make(model.RuleSet, 0, len(s.Rules))
	for _, name := range s.Rules {
		out = append(out, model.RuleName(name))
	}
	return out
}

// OperationKind converts the configured operation to the model type.
func (s *Settings) OperationKind() model.OperationKind {
	return model.OperationKind(s.Operation)
}

// DateGranularity converts the configured granularity, falling back to
// monthly on unknown values.
func (s *Settings) DateGranularity() model.DateGranularity {
	switch g := model.DateGranularity(s.Granularity); g {
	case model.GranularityYear, model.GranularityQuarter, model.GranularityMonth, model.GranularityWeek:
		return g
	}
	return model.GranularityMonth
}

// Debounce returns the monitor delay as a duration.
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.MonitorDelay * float64(time.Second))
}
