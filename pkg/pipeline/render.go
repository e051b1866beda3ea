package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/heightwalk/pkg/heightmap"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

// Metadata is the document written by the json format.
type Metadata struct {
	ID        string      `json:"id"`
	Seed      uint64      `json:"seed"`
	SeedHex   string      `json:"seed_hex"`
	Params    walk.Params `json:"params"`
	MaxAge    uint64      `json:"max_age"`
	Visited   int         `json:"visited"`
	Blurred   bool        `json:"blurred"`
	Radius    int         `json:"radius,omitempty"`
	DetailMax *int        `json:"detail_max,omitempty"`
	Policy    string      `json:"policy,omitempty"`
	Histogram []int       `json:"histogram"`
}

// Render encodes the result's final heightmap in every requested format.
func Render(result *Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	scale := max(opts.Scale, 1)
	size := result.Size()
	out := result.Output()

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatRaw:
			data = bytes.Clone(out)
		case FormatRGBA:
			data = heightmap.Mask(out)
		case FormatPNG:
			data, err = encodePNG(upscale(heightmap.GrayImage(out, size, size), scale))
		case FormatMask:
			data, err = encodePNG(upscale(heightmap.MaskImage(out, size, size), scale))
		case FormatTIFF:
			data, err = encodeTIFF(upscale(heightmap.GrayImage(out, size, size), scale))
		case FormatJSON:
			data, err = json.MarshalIndent(metadata(result, opts), "", "  ")
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func metadata(result *Result, opts Options) Metadata {
	m := Metadata{
		ID:        result.ID,
		Seed:      result.Seed,
		SeedHex:   fmt.Sprintf("%016x", result.Seed),
		Params:    result.Params,
		MaxAge:    result.MaxAge,
		Visited:   result.Stats.Visited,
		Blurred:   result.Blurred != nil,
		Histogram: Histogram(result.Output()),
	}
	if m.Blurred {
		m.Radius = opts.Radius
		m.DetailMax = opts.DetailMax
		if opts.DetailMax != nil {
			m.Policy = heightmap.Wrap.String()
			if opts.Saturate {
				m.Policy = heightmap.Saturate.String()
			}
		}
	}
	return m
}

// Histogram counts the samples at each of the 256 height levels.
func Histogram(heights []byte) []int {
	h := make([]int, 256)
	for _, v := range heights {
		h[v]++
	}
	return h
}

// upscale enlarges img by an integer factor with nearest-neighbour sampling
// so that cell edges stay sharp.
func upscale(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	r := image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale)

	var dst draw.Image
	switch img.(type) {
	case *image.Gray:
		dst = image.NewGray(r)
	default:
		dst = image.NewRGBA(r)
	}
	draw.NearestNeighbor.Scale(dst, r, img, b, draw.Src, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeTIFF(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
