package captions

import "testing"

func TestDefaultPreferencesValidate(t *testing.T) {
	if err := DefaultPreferences().Validate(); err != nil {
		t.Fatalf("default preferences invalid: %v", err)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Preferences)
	}{
		{"font size too small", func(p *Preferences) { p.FontSize = 15 }},
		{"font size too large", func(p *Preferences) { p.FontSize = 60 }},
		{"opacity below zero", func(p *Preferences) { p.BackgroundOpacity = -0.1 }},
		{"opacity above one", func(p *Preferences) { p.BackgroundOpacity = 1.1 }},
		{"outline width too small", func(p *Preferences) { p.OutlineWidth = 0 }},
		{"outline width too large", func(p *Preferences) { p.OutlineWidth = 6 }},
		{"max chars too small", func(p *Preferences) { p.MaxCharsPerLine = 19 }},
		{"max chars too large", func(p *Preferences) { p.MaxCharsPerLine = 61 }},
		{"bad position", func(p *Preferences) { p.Position = "left" }},
		{"bad format", func(p *Preferences) { p.Format = "scrolling" }},
		{"missing font family", func(p *Preferences) { p.FontFamily = " " }},
		{"bad font color", func(p *Preferences) { p.FontColor = "red" }},
		{"negative margin", func(p *Preferences) { p.VerticalMargin = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultPreferences()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateSkipsOutlineWidthWhenDisabled(t *testing.T) {
	p := DefaultPreferences()
	p.Outline = false
	p.OutlineWidth = 0
	if err := p.Validate(); err != nil {
		t.Fatalf("disabled outline should skip width check: %v", err)
	}
}
