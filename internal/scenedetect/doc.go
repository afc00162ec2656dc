// Package scenedetect implements the scene boundary detection stage,
// combining visual cut detection with transcript silence gaps.
package scenedetect
