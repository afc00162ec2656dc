package captions

// AdjustFontSize tunes a base font size to the reading speed of a caption.
// Dense text (over 15 characters per second) shrinks the size by 4 down to
// the minimum; sparse text (under 5 characters per second) grows it by 2 up
// to the maximum.
func AdjustFontSize(charCount int, durationSeconds float64, base int) int {
	if durationSeconds <= 0 || charCount <= 0 {
		return base
	}
	cps := float64(charCount) / durationSeconds
	switch {
	case cps > 15:
		size := base - 4
		if size < MinFontSize {
			return MinFontSize
		}
		return size
	case cps < 5:
		size := base + 2
		if size > MaxFontSize {
			return MaxFontSize
		}
		return size
	default:
		return base
	}
}
