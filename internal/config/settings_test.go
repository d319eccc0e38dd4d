package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	RegisterDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, model.RuleSet{model.RuleByType}, s.RuleSet())
	assert.Equal(t, model.OpMove, s.OperationKind())
	assert.Equal(t, model.GranularityMonth, s.DateGranularity())
	assert.Equal(t, int64(1024*1024*1024), s.MaxFileSize)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, time.Second, s.Debounce())
	assert.Contains(t, s.ExcludePatterns, ".DS_Store")
	assert.Equal(t, ".noclassify", s.SkipMarker)
	assert.False(t, s.GroupRelated)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	RegisterDefaults(v)
	v.Set("rules", []string{"by_type", "by_date"})
	v.Set("operation", "copy")
	v.Set("monitor_delay", 0.5)
	v.Set("custom_rules", []map[string]any{{
		"name":          "backups",
		"pattern":       "*.bak",
		"target_folder": "backups",
		"enabled":       true,
	}})

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, model.RuleSet{model.RuleByType, model.RuleByDate}, s.RuleSet())
	assert.Equal(t, model.OpCopy, s.OperationKind())
	assert.Equal(t, 500*time.Millisecond, s.Debounce())
	require.Len(t, s.CustomRules, 1)
	assert.Equal(t, "*.bak", s.CustomRules[0].Pattern)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		edit func(v *viper.Viper)
	}{
		{"unknown operation", func(v *viper.Viper) { v.Set("operation", "shred") }},
		{"unknown rule", func(v *viper.Viper) { v.Set("rules", []string{"by_vibes"}) }},
		{"empty rules", func(v *viper.Viper) { v.Set("rules", []string{}) }},
		{"inverted size window", func(v *viper.Viper) {
			v.Set("min_file_size", 100)
			v.Set("max_file_size", 10)
		}},
		{"zero workers", func(v *viper.Viper) { v.Set("workers", 0) }},
		{"enabled custom rule without pattern", func(v *viper.Viper) {
			v.Set("custom_rules", []map[string]any{{"name": "broken", "enabled": true}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			RegisterDefaults(v)
			tt.edit(v)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/notes", ExpandPath("~/notes"))
	assert.Equal(t, "/home/tester/data", ExpandPath("$HOME/data"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}
