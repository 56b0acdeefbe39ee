// pkg/render/engo/assets.go
package engo

import (
	"image"
	"image/color"
	"math"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/entity"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
)

// Sizes of the built-in sprites, in pixels
const (
	anchorTextureSize = 64
	bodyTextureSize   = 32
)

// AssetManager handles loading and managing sprite textures. With no
// asset directory it draws its own.
type AssetManager struct {
	dir   string
	files map[entity.Sprite]string

	sprites map[entity.Sprite]common.Drawable
}

// NewAssetManager creates an asset manager for cfg
func NewAssetManager(cfg config.AssetsConfig) *AssetManager {
	am := &AssetManager{
		dir:     cfg.Dir,
		files:   make(map[entity.Sprite]string),
		sprites: make(map[entity.Sprite]common.Drawable),
	}
	if cfg.Dir != "" {
		am.files[entity.SpriteAnchor] = cfg.Planet
		am.files[entity.SpriteBody] = cfg.Body
	}
	return am
}

// Procedural reports whether built-in sprites are used
func (am *AssetManager) Procedural() bool {
	return am.dir == ""
}

// Preload reads configured image files from the asset directory. A
// missing or unreadable file is a startup failure.
func (am *AssetManager) Preload() error {
	if am.Procedural() {
		return nil
	}
	engo.Files.SetRoot(am.dir)
	for sprite, name := range am.files {
		if err := engo.Files.Load(name); err != nil {
			return logging.WrapError(err, "failed to load %s sprite %s from %s", sprite, name, am.dir)
		}
	}
	return nil
}

// LoadAssets turns images into textures. It needs a GL context.
func (am *AssetManager) LoadAssets() error {
	if am.Procedural() {
		am.sprites[entity.SpriteAnchor] = toTexture(planetImage(anchorTextureSize))
		am.sprites[entity.SpriteBody] = toTexture(meteorImage(bodyTextureSize))
		return nil
	}

	for sprite, name := range am.files {
		texture, err := common.LoadedSprite(name)
		if err != nil {
			return logging.WrapError(err, "failed to create %s texture", sprite)
		}
		am.sprites[sprite] = texture
	}
	return nil
}

// Sprite returns the drawable for s, or nil before LoadAssets
func (am *AssetManager) Sprite(s entity.Sprite) common.Drawable {
	return am.sprites[s]
}

func toTexture(img *image.NRGBA) common.Drawable {
	return common.NewTextureSingle(common.NewImageObject(img))
}

// planetImage draws a shaded blue disc with a lighter rim
func planetImage(size int) *image.NRGBA {
	return disc(size, func(d float64) color.NRGBA {
		if d > 0.85 {
			return color.NRGBA{R: 120, G: 180, B: 255, A: 255}
		}
		shade := uint8(200 - 120*d)
		return color.NRGBA{R: 30, G: 90, B: shade, A: 255}
	})
}

// meteorImage draws a brown disc with a darker crater band
func meteorImage(size int) *image.NRGBA {
	return disc(size, func(d float64) color.NRGBA {
		if d > 0.4 && d < 0.55 {
			return color.NRGBA{R: 90, G: 60, B: 40, A: 255}
		}
		return color.NRGBA{R: 150, G: 110, B: 70, A: 255}
	})
}

// disc fills a transparent size x size image with a circle, shading each
// pixel by its normalized distance from the center.
func disc(size int, shade func(d float64) color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			d := math.Hypot(dx, dy) / r
			if d <= 1 {
				img.SetNRGBA(x, y, shade(d))
			}
		}
	}
	return img
}
