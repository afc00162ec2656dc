// Package transcribe implements the speech-to-text pipeline stage.
package transcribe
