package heightmap

import (
	"image"
)

// Mask expands single-channel heights into RGBA pixels.
//
// Every 0 becomes transparent {0,0,0,0}; every other value, however small,
// becomes opaque white {255,255,255,255}. The result has 4*len(heights)
// bytes.
func Mask(heights []byte) []byte {
	out := make([]byte, 4*len(heights))
	for i, v := range heights {
		if v == 0 {
			continue
		}
		px := out[4*i : 4*i+4]
		px[0], px[1], px[2], px[3] = 255, 255, 255, 255
	}
	return out
}

// MaskImage returns the Mask of a width×height buffer as an image.
// It panics if len(heights) != width*height.
func MaskImage(heights []byte, width, height int) *image.RGBA {
	checkDims(heights, width, height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, Mask(heights))
	return img
}

// GrayImage wraps a copy of a width×height buffer as a grayscale image.
// It panics if len(heights) != width*height.
func GrayImage(heights []byte, width, height int) *image.Gray {
	checkDims(heights, width, height)
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, heights)
	return img
}

func checkDims(buf []byte, width, height int) {
	if width < 0 || height < 0 || len(buf) != width*height {
		panic("heightmap: buffer length does not match dimensions")
	}
}
