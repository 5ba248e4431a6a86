// Package palette implements a local color palette extractor: a coarse
// histogram over downsampled pixels picks the dominant colors of a
// reference image. No external service is involved, so extraction is cheap
// enough to run inline in the pipeline.
package palette

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sort"

	// Decoders for the formats reference searches return.
	_ "image/jpeg"
	_ "image/png"

	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/provider"
)

// maxSamples bounds the number of pixels inspected per image.
const maxSamples = 10000

// bucket accumulates pixels quantized to 4 bits per channel.
type bucket struct {
	count   int
	r, g, b uint64
}

// Extractor implements provider.PaletteExtractor locally.
type Extractor struct{}

// New returns a new Extractor.
func New() *Extractor { return &Extractor{} }

// Extract implements provider.PaletteExtractor. It decodes the payload,
// histograms a downsampled grid and picks four mutually distinct dominant
// colors, topping up from the neutral default palette when the image is too
// uniform to yield four.
func (e *Extractor) Extract(_ context.Context, payload []byte) (*core.Palette, error) {
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decoding reference image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty reference image")
	}

	stride := 1
	for (w/stride)*(h/stride) > maxSamples {
		stride++
	}

	buckets := make(map[uint16]*bucket)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue // skip mostly transparent pixels
			}
			r8, g8, b8 := r>>8, g>>8, b>>8
			key := uint16(r8>>4)<<8 | uint16(g8>>4)<<4 | uint16(b8>>4)
			bk, ok := buckets[key]
			if !ok {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += uint64(r8)
			bk.g += uint64(g8)
			bk.b += uint64(b8)
		}
	}
	if len(buckets) == 0 {
		return nil, fmt.Errorf("reference image is fully transparent")
	}

	ranked := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		ranked = append(ranked, bk)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })

	var colors [][3]int
	for _, bk := range ranked {
		c := [3]int{
			int(bk.r / uint64(bk.count)),
			int(bk.g / uint64(bk.count)),
			int(bk.b / uint64(bk.count)),
		}
		if !distinct(colors, c) {
			continue
		}
		colors = append(colors, c)
		if len(colors) == 4 {
			break
		}
	}

	// Too uniform: top up from the neutral default so the palette is
	// always fully populated.
	fallback := provider.DefaultPalette("")
	out := [4]string{fallback.Primary, fallback.Secondary, fallback.Accent, fallback.Background}
	for i, c := range colors {
		out[i] = fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2])
	}

	return &core.Palette{
		Primary:    out[0],
		Secondary:  out[1],
		Accent:     out[2],
		Background: out[3],
	}, nil
}

// distinct reports whether c is far enough (manhattan distance in RGB)
// from every already picked color.
func distinct(picked [][3]int, c [3]int) bool {
	const minDistance = 96
	for _, p := range picked {
		d := abs(p[0]-c[0]) + abs(p[1]-c[1]) + abs(p[2]-c[2])
		if d < minDistance {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
