// Package captions compiles timed transcript segments and style preferences
// into a renderable subtitle script. Compilation is deterministic: the same
// segments, offset, and preferences always produce byte-identical output.
package captions
