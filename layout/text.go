package layout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const DefaultFontSize = 16

var (
	ErrBadTextResource = errors.New("text resource must look like <size>/<color>/<text>")
	ErrBadColor        = errors.New("color must be #RRGGBB or #AARRGGBB")
)

// Color is packed as 0xAARRGGBB
type Color uint32

func (c Color) Hex() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(b []byte) (err error) {
	*c, err = ParseColor(string(b))
	return
}

// ParseColor accepts #RRGGBB (opaque) and #AARRGGBB
func ParseColor(s string) (Color, error) {
	if !strings.HasPrefix(s, "#") {
		return 0, ErrBadColor
	}
	s = s[1:]
	if len(s) != 6 && len(s) != 8 {
		return 0, ErrBadColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, ErrBadColor
	}
	if len(s) == 6 {
		v |= 0xFF000000
	}
	return Color(v), nil
}

// TextStyle is what a text field element keeps in its resource string
type TextStyle struct {
	FontSize float64 `json:"font_size"`
	Color    Color   `json:"color"`
	Text     string  `json:"text"`
}

// EncodeText packs the style into "<size>/#AARRGGBB/<text>"
func EncodeText(s TextStyle) string {
	return strconv.FormatFloat(s.FontSize, 'f', -1, 64) + "/" + s.Color.Hex() + "/" + s.Text
}

// DecodeText is the inverse of EncodeText. Only the first two slashes are separators,
// the text itself may contain more.
func DecodeText(resource string) (TextStyle, error) {
	parts := strings.SplitN(resource, "/", 3)
	if len(parts) != 3 {
		return TextStyle{}, ErrBadTextResource
	}
	size, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return TextStyle{}, ErrBadTextResource
	}
	color, err := ParseColor(parts[1])
	if err != nil {
		return TextStyle{}, err
	}
	return TextStyle{FontSize: size, Color: color, Text: parts[2]}, nil
}
