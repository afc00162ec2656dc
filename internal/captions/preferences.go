package captions

import (
	"fmt"
	"strings"
)

// Position anchors the caption block vertically on the frame.
type Position string

const (
	PositionTop    Position = "top"
	PositionCenter Position = "center"
	PositionBottom Position = "bottom"
)

// Format selects how events are rendered.
type Format string

const (
	FormatSingleLine  Format = "single-line"
	FormatMultiLine   Format = "multi-line"
	FormatKaraoke     Format = "karaoke"
	FormatProgressive Format = "progressive"
)

const (
	MinFontSize     = 16
	MaxFontSize     = 48
	MinOutlineWidth = 1
	MaxOutlineWidth = 5
	MinCharsPerLine = 20
	MaxCharsPerLine = 60
)

// Preferences holds the caller-supplied styling for a compiled script.
type Preferences struct {
	Position          Position `json:"position"`
	Format            Format   `json:"format"`
	FontFamily        string   `json:"font_family"`
	FontSize          int      `json:"font_size"`
	FontColor         string   `json:"font_color"`
	BackgroundColor   string   `json:"background_color"`
	BackgroundOpacity float64  `json:"background_opacity"`
	Bold              bool     `json:"bold"`
	Italic            bool     `json:"italic"`
	Outline           bool     `json:"outline"`
	OutlineColor      string   `json:"outline_color"`
	OutlineWidth      int      `json:"outline_width"`
	Shadow            bool     `json:"shadow"`
	ShadowColor       string   `json:"shadow_color"`
	MaxCharsPerLine   int      `json:"max_chars_per_line"`
	VerticalMargin    int      `json:"vertical_margin"`
}

// DefaultPreferences returns a usable baseline style.
func DefaultPreferences() Preferences {
	return Preferences{
		Position:          PositionBottom,
		Format:            FormatMultiLine,
		FontFamily:        "Arial",
		FontSize:          28,
		FontColor:         "#FFFFFF",
		BackgroundColor:   "#000000",
		BackgroundOpacity: 0.5,
		Outline:           true,
		OutlineColor:      "#000000",
		OutlineWidth:      2,
		MaxCharsPerLine:   32,
		VerticalMargin:    40,
	}
}

// Validate rejects preferences whose values fall outside the supported
// ranges. Compilation refuses to run on an invalid set.
func (p Preferences) Validate() error {
	switch p.Position {
	case PositionTop, PositionCenter, PositionBottom:
	default:
		return fmt.Errorf("position must be top, center, or bottom (got %q)", p.Position)
	}
	switch p.Format {
	case FormatSingleLine, FormatMultiLine, FormatKaraoke, FormatProgressive:
	default:
		return fmt.Errorf("format must be single-line, multi-line, karaoke, or progressive (got %q)", p.Format)
	}
	if strings.TrimSpace(p.FontFamily) == "" {
		return fmt.Errorf("font family is required")
	}
	if p.FontSize < MinFontSize || p.FontSize > MaxFontSize {
		return fmt.Errorf("font size must be between %d and %d (got %d)", MinFontSize, MaxFontSize, p.FontSize)
	}
	if p.BackgroundOpacity < 0 || p.BackgroundOpacity > 1 {
		return fmt.Errorf("background opacity must be between 0 and 1 (got %g)", p.BackgroundOpacity)
	}
	if p.Outline && (p.OutlineWidth < MinOutlineWidth || p.OutlineWidth > MaxOutlineWidth) {
		return fmt.Errorf("outline width must be between %d and %d (got %d)", MinOutlineWidth, MaxOutlineWidth, p.OutlineWidth)
	}
	if p.MaxCharsPerLine < MinCharsPerLine || p.MaxCharsPerLine > MaxCharsPerLine {
		return fmt.Errorf("max characters per line must be between %d and %d (got %d)", MinCharsPerLine, MaxCharsPerLine, p.MaxCharsPerLine)
	}
	if p.VerticalMargin < 0 {
		return fmt.Errorf("vertical margin must not be negative (got %d)", p.VerticalMargin)
	}
	if _, err := parseHexColor(p.FontColor); err != nil {
		return fmt.Errorf("font color: %w", err)
	}
	if _, err := parseHexColor(p.BackgroundColor); err != nil {
		return fmt.Errorf("background color: %w", err)
	}
	if p.Outline {
		if _, err := parseHexColor(p.OutlineColor); err != nil {
			return fmt.Errorf("outline color: %w", err)
		}
	}
	if p.Shadow {
		if _, err := parseHexColor(p.ShadowColor); err != nil {
			return fmt.Errorf("shadow color: %w", err)
		}
	}
	return nil
}

// alignmentCode maps position to the script's numpad anchor code. Only the
// three centered anchors are supported.
func (p Preferences) alignmentCode() int {
	switch p.Position {
	case PositionTop:
		return 8
	case PositionCenter:
		return 5
	default:
		return 2
	}
}
