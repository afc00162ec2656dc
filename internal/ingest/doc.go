// Package ingest implements the first pipeline stage: fetching the source
// video, probing its media properties, and extracting the audio track.
package ingest
