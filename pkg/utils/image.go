package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// NormalizeToJPG prepares a site photo for storage: decode jpeg/png/webp,
// apply the EXIF orientation phones record instead of rotating pixels,
// downscale to maxWidth when wider, and re-encode as JPEG.
func NormalizeToJPG(input []byte, maxWidth int, quality int) ([]byte, error) {
	if len(input) == 0 {
		return nil, errors.New("empty image")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	img, err := decodeImage(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	img = applyOrientation(img, readOrientation(bytes.NewReader(input)))

	if maxWidth > 0 {
		img = resizeMaxWidth(img, maxWidth)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodeImage(r *bytes.Reader) (image.Image, error) {
	if img, err := jpeg.Decode(r); err == nil {
		return img, nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if img, err := png.Decode(r); err == nil {
		return img, nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if img, err := webp.Decode(r); err == nil {
		return img, nil
	}
	return nil, errors.New("unsupported image format (jpeg/png/webp)")
}

// readOrientation returns the EXIF orientation tag, 1 when absent.
func readOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	ori, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return ori
}

func applyOrientation(src image.Image, ori int) image.Image {
	switch ori {
	case 2:
		return flipHorizontal(src)
	case 3:
		return rotate180(src)
	case 4:
		return flipHorizontal(rotate180(src))
	case 5:
		return rotate90CW(flipHorizontal(src))
	case 6:
		return rotate90CW(src)
	case 7:
		return rotate90CCW(flipHorizontal(src))
	case 8:
		return rotate90CCW(src)
	default:
		return src
	}
}

func resizeMaxWidth(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW || w <= 0 || h <= 0 {
		return src
	}

	scale := float64(maxW) / float64(w)
	newH := int(math.Round(float64(h) * scale))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func rotate90CW(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(h-1-y, x, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate90CCW(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(y, w-1-x, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate180(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, h-1-y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func flipHorizontal(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
