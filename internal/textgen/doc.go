// Package textgen implements the stage that generates per-clip titles,
// descriptions, and hashtags.
package textgen
