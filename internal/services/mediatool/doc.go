// Package mediatool wraps the external media-processing binary used for
// probing, downloading, scene detection, clip cutting, and caption burn-in.
package mediatool
