package captions

import (
	"fmt"
	"math"
	"strings"

	"clipforge/internal/jobdata"
)

// Event is one timed, styled text entry in a compiled script.
type Event struct {
	Start float64
	End   float64
	Text  string
}

// Script is a compiled caption document: a style header plus ordered events.
type Script struct {
	Preferences Preferences
	Events      []Event
}

// Compile turns transcript segments into a caption script. The offset re-bases
// segment timing onto the clip's own timeline; segments entirely before the
// offset are clamped to start at zero. Preferences are validated first and an
// invalid set aborts compilation.
func Compile(segments []jobdata.Segment, offset float64, prefs Preferences) (*Script, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	script := &Script{Preferences: prefs}
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start := seg.Start - offset
		if start < 0 {
			start = 0
		}
		end := seg.End - offset
		if end < 0 {
			end = 0
		}
		rendered := renderText(text, seg.End-seg.Start, prefs)
		if rendered == "" {
			continue
		}
		script.Events = append(script.Events, Event{Start: start, End: end, Text: rendered})
	}
	return script, nil
}

func renderText(text string, duration float64, prefs Preferences) string {
	switch prefs.Format {
	case FormatKaraoke:
		return renderKaraoke(text, duration)
	case FormatProgressive:
		return `{\fad(200,200)}` + joinWrapped(text, prefs.MaxCharsPerLine)
	default:
		return joinWrapped(text, prefs.MaxCharsPerLine)
	}
}

func joinWrapped(text string, maxChars int) string {
	return strings.Join(wrapText(text, maxChars), `\N`)
}

// renderKaraoke assigns each word an even share of the segment duration as a
// highlight tag in centiseconds. Word-level timing is an approximation; the
// transcript carries no per-word timestamps.
func renderKaraoke(text string, duration float64) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	per := int(math.Round(duration / float64(len(words)) * 100))
	var b strings.Builder
	for i, word := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, `{\k%d}%s`, per, word)
	}
	return b.String()
}

// formatTimestamp renders seconds as H:MM:SS.CC, truncating (not rounding)
// to centiseconds.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	centis := int(math.Round(seconds*1000)) / 10
	h := centis / 360000
	m := centis / 6000 % 60
	s := centis / 100 % 60
	cc := centis % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cc)
}

// Render serializes the script into its text document form.
func (s *Script) Render() string {
	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("Title: clipforge captions\n")
	b.WriteString("ScriptType: v4.00+\n")
	b.WriteString("WrapStyle: 0\n")
	b.WriteString("PlayResX: 1080\n")
	b.WriteString("PlayResY: 1920\n")
	b.WriteString("ScaledBorderAndShadow: yes\n")
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV\n")
	b.WriteString(s.styleLine())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, ev := range s.Events {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatTimestamp(ev.Start), formatTimestamp(ev.End), ev.Text)
	}
	return b.String()
}

func (s *Script) styleLine() string {
	p := s.Preferences
	primary, _ := EncodeColor(p.FontColor, 1)
	back, _ := EncodeColor(p.BackgroundColor, p.BackgroundOpacity)
	outlineColor := back
	outlineWidth := 0
	if p.Outline {
		outlineColor, _ = EncodeColor(p.OutlineColor, 1)
		outlineWidth = p.OutlineWidth
	}
	shadow := 0
	if p.Shadow {
		shadow = 1
	}
	return fmt.Sprintf("Style: Default,%s,%d,%s,%s,%s,%s,%d,%d,1,%d,%d,%d,10,10,%d\n",
		p.FontFamily, p.FontSize, primary, primary, outlineColor, back,
		assBool(p.Bold), assBool(p.Italic), outlineWidth, shadow,
		p.alignmentCode(), p.VerticalMargin)
}

// assBool encodes a flag as the format's -1/0 convention.
func assBool(v bool) int {
	if v {
		return -1
	}
	return 0
}
