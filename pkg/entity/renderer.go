// pkg/entity/renderer.go
package entity

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// Sprite names an image the presentation layer knows how to draw
type Sprite string

const (
	SpriteAnchor Sprite = "anchor"
	SpriteBody   Sprite = "body"
)

// Renderer is the drawing surface entities render themselves onto.
// Positions are world coordinates; size is the on-screen diameter.
type Renderer interface {
	DrawSprite(sprite Sprite, center physics.Vector2D, size float64)
	DrawLine(from, to physics.Vector2D, c color.RGBA, width float64)
	DrawText(text string, pos physics.Vector2D, c color.RGBA)
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" into an opaque or translucent RGBA
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	hex := strings.TrimPrefix(s, "#")

	var err error
	switch len(hex) {
	case 6:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected #RRGGBB or #RRGGBBAA", s)
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
