package formats

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // PNG decoder registration

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// Image is a decoded texture as packed 8-bit RGB, rows top to bottom.
type Image struct {
	Width  int
	Height int
	RGB    []byte
}

// ParseImage decodes a PNG or BMP file to packed RGB. Alpha is dropped.
func ParseImage(data []byte) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	b := img.Bounds()
	out := &Image{Width: b.Dx(), Height: b.Dy(), RGB: make([]byte, 0, 3*b.Dx()*b.Dy())}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.RGB = append(out.RGB, c.R, c.G, c.B)
		}
	}
	return out, nil
}
