package captions

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type rgb struct {
	r, g, b uint8
}

func parseHexColor(value string) (rgb, error) {
	value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "#"))
	if len(value) != 6 {
		return rgb{}, fmt.Errorf("expected #RRGGBB hex color, got %q", value)
	}
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("invalid hex color %q", value)
	}
	return rgb{
		r: uint8(n >> 16),
		g: uint8(n >> 8),
		b: uint8(n),
	}, nil
}

// alphaFromOpacity maps visible opacity to the format's inverted alpha
// channel, where 0x00 is fully opaque and 0xFF fully transparent.
func alphaFromOpacity(opacity float64) uint8 {
	return uint8(math.Round((1 - opacity) * 255))
}

// encodeColor renders a color as &HAABBGGRR: alpha first, then the color
// bytes in reverse order.
func encodeColor(c rgb, opacity float64) string {
	return fmt.Sprintf("&H%02X%02X%02X%02X", alphaFromOpacity(opacity), c.b, c.g, c.r)
}

// EncodeColor converts a #RRGGBB hex color plus an opacity into the script's
// reversed-byte encoding.
func EncodeColor(hex string, opacity float64) (string, error) {
	c, err := parseHexColor(hex)
	if err != nil {
		return "", err
	}
	return encodeColor(c, opacity), nil
}
