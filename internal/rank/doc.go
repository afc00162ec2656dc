// Package rank scores scene runs and selects the clip candidates to render.
package rank
