package extract

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/dgallion1/pdfextract/internal/document"
	"github.com/dgallion1/pdfextract/internal/surface"
	"golang.org/x/image/draw"
)

// ExtractImages materialises every embedded image of a page, in listed order,
// as a base64 PNG payload.
func ExtractImages(page surface.Page) ([]document.Image, error) {
	refs, err := page.ImageRefs()
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	images := make([]document.Image, 0, len(refs))
	for _, ref := range refs {
		pix, err := page.Pixmap(ref)
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", ref.Name, err)
		}
		data, err := EncodePNG(NormalizeColor(pix))
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", ref.Name, err)
		}
		images = append(images, document.Image{Data: base64.StdEncoding.EncodeToString(data)})
	}
	return images, nil
}

// NormalizeColor returns the pixmap image unchanged for gray and RGB colour
// spaces and converted to RGB for everything else.
func NormalizeColor(p surface.Pixmap) image.Image {
	switch p.ColorSpace {
	case "DeviceGray", "DeviceRGB":
		return p.Image
	}
	return toRGB(p.Image)
}

func toRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
