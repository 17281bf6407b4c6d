// Package theme bundles the configured CSS themes.
//
// Each theme is resolved with its strategy (import-graph or concatenation),
// minified once by the CSS engine, prefixed with a banner naming the theme and
// written below the output root. A theme that cannot be built is reported in
// its Result and never stops the remaining themes.
package theme
