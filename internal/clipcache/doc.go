// Package clipcache persists minimal clip descriptors so a single clip can
// be regenerated with new caption settings without rerunning the pipeline.
// The cache is a derived projection: losing it only disables the shortcut.
package clipcache
