package config

import "clipforge/internal/captions"

// CaptionPreferences builds the default caption style from configuration.
// Callers may override individual fields per job before compilation.
func (c *Config) CaptionPreferences() captions.Preferences {
	prefs := captions.DefaultPreferences()
	if c.Captions.Position != "" {
		prefs.Position = captions.Position(c.Captions.Position)
	}
	if c.Captions.Format != "" {
		prefs.Format = captions.Format(c.Captions.Format)
	}
	if c.Captions.FontFamily != "" {
		prefs.FontFamily = c.Captions.FontFamily
	}
	if c.Captions.FontSize > 0 {
		prefs.FontSize = c.Captions.FontSize
	}
	if c.Captions.FontColor != "" {
		prefs.FontColor = c.Captions.FontColor
	}
	if c.Captions.BackgroundColor != "" {
		prefs.BackgroundColor = c.Captions.BackgroundColor
	}
	prefs.BackgroundOpacity = c.Captions.BackgroundOpacity
	if c.Captions.MaxCharsPerLine > 0 {
		prefs.MaxCharsPerLine = c.Captions.MaxCharsPerLine
	}
	if c.Captions.VerticalMargin > 0 {
		prefs.VerticalMargin = c.Captions.VerticalMargin
	}
	return prefs
}
