// Package render cuts selected clips to vertical format and burns compiled
// caption scripts into them.
package render
