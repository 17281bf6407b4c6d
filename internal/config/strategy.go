package config

import "git.home.luguber.info/inful/assetbuilder/internal/foundation/normalization"

// BundleStrategy selects how a theme's inputs become one stylesheet.
type BundleStrategy string

const (
	// StrategyImportGraph hands a single entry file to the CSS transformer,
	// which follows @import references itself.
	StrategyImportGraph BundleStrategy = "import-graph"
	// StrategyConcat reads an explicit ordered list of files, joins them with
	// source-attribution comments and minifies the result once.
	StrategyConcat BundleStrategy = "concat"
)

var bundleStrategyNormalizer = normalization.NewEnumNormalizer("bundle strategy", map[string]BundleStrategy{
	"import-graph":  StrategyImportGraph,
	"import_graph":  StrategyImportGraph,
	"imports":       StrategyImportGraph,
	"bundle":        StrategyImportGraph,
	"concat":        StrategyConcat,
	"concatenate":   StrategyConcat,
	"concatenation": StrategyConcat,
	"list":          StrategyConcat,
}, "")

// NormalizeBundleStrategy maps user input (case-insensitive, a few aliases) to a
// BundleStrategy. Empty string means unknown.
func NormalizeBundleStrategy(raw string) BundleStrategy {
	return bundleStrategyNormalizer.Normalize(raw)
}

// BundleStrategyValues lists every accepted spelling.
func BundleStrategyValues() []string {
	return bundleStrategyNormalizer.ValidValues()
}

// Valid reports whether s is a known strategy.
func (s BundleStrategy) Valid() bool {
	return s == StrategyImportGraph || s == StrategyConcat
}

func (s BundleStrategy) String() string { return string(s) }
