package model

// RuleName identifies one classification stage.
type RuleName string

// Classification rule constants. The order stages run in is fixed by the
// resolver; a rule set only controls which stages participate.
const (
	RuleByType    RuleName = "by_type"
	RuleByDate    RuleName = "by_date"
	RuleBySize    RuleName = "by_size"
	RuleByCustom  RuleName = "by_custom"
	RuleByPattern RuleName = "by_pattern"
	RuleByProject RuleName = "by_project"
	RuleByUsage   RuleName = "by_usage"
)

// RuleSet is the ordered set of active classification rules.
type RuleSet []RuleName

// Contains reports whether the named rule is active.
func (s RuleSet) Contains(name RuleName) bool {
	for _, r := range s {
		if r == name {
			return true
		}
	}
	return false
}

// DefaultRuleSet matches the out-of-the-box configuration: classify by
// file type only.
func DefaultRuleSet() RuleSet {
	return RuleSet{RuleByType}
}

// CustomRule routes files whose name matches a wildcard pattern to a fixed
// target folder. Matching is case-insensitive; the first enabled match wins
// and short-circuits every other stage.
type CustomRule struct {
	Name         string `json:"name" mapstructure:"name"`
	Pattern      string `json:"pattern" mapstructure:"pattern"`
	TargetFolder string `json:"target_folder" mapstructure:"target_folder"`
	Description  string `json:"description" mapstructure:"description"`
	Enabled      bool   `json:"enabled" mapstructure:"enabled"`
}

// DateGranularity controls how deep the date segment of a target path goes.
type DateGranularity string

// Date granularity constants.
const (
	GranularityYear    DateGranularity = "year"
	GranularityQuarter DateGranularity = "quarter"
	GranularityMonth   DateGranularity = "month"
	GranularityWeek    DateGranularity = "week"
)
