package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
)

var ErrNoFont = errors.New("word cloud font path is not set")

var palette = []color.Color{
	color.RGBA{R: 0x54, G: 0x70, B: 0xc6, A: 0xff},
	color.RGBA{R: 0x91, G: 0xcc, B: 0x75, A: 0xff},
	color.RGBA{R: 0xfa, G: 0xc8, B: 0x58, A: 0xff},
	color.RGBA{R: 0xee, G: 0x66, B: 0x66, A: 0xff},
	color.RGBA{R: 0x73, G: 0xc0, B: 0xde, A: 0xff},
	color.RGBA{R: 0x3b, G: 0xa2, B: 0x72, A: 0xff},
	color.RGBA{R: 0xfc, G: 0x84, B: 0x52, A: 0xff},
	color.RGBA{R: 0x9a, G: 0x60, B: 0xb4, A: 0xff},
}

type WordCloudOptions struct {
	FontPath    string
	Width       int
	Height      int
	MinFontSize float64
	MaxFontSize float64
}

// WordCloudPresenter draws a frequency map as a PNG word cloud.
type WordCloudPresenter struct {
	opts WordCloudOptions
}

func NewWordCloudPresenter(o WordCloudOptions) *WordCloudPresenter {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	if o.MinFontSize <= 0 {
		o.MinFontSize = 14
	}
	if o.MaxFontSize < o.MinFontSize {
		o.MaxFontSize = math.Max(72, o.MinFontSize)
	}
	return &WordCloudPresenter{opts: o}
}

type placed struct {
	x, y, w, h float64
}

func (p placed) overlaps(o placed) bool {
	return p.x < o.x+o.w && o.x < p.x+p.w && p.y < o.y+o.h && o.y < p.y+p.h
}

// Render lays the words out on a spiral from the centre, largest first, and
// returns the PNG bytes. Words that do not fit are skipped.
func (p *WordCloudPresenter) Render(freq map[string]int) ([]byte, error) {
	if p.opts.FontPath == "" {
		return nil, ErrNoFont
	}
	raw, err := os.ReadFile(p.opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	font, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", p.opts.FontPath, err)
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	minCount, maxCount := 0, 0
	if len(words) > 0 {
		maxCount = freq[words[0]]
		minCount = freq[words[len(words)-1]]
	}

	width, height := float64(p.opts.Width), float64(p.opts.Height)
	dc := gg.NewContext(p.opts.Width, p.opts.Height)
	dc.SetColor(color.White)
	dc.Clear()

	var boxes []placed
	for i, word := range words {
		size := p.fontSize(freq[word], minCount, maxCount)
		dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))
		tw, th := dc.MeasureString(word)
		if tw == 0 || tw > width || th > height {
			continue
		}

		box, ok := findSpot(boxes, tw, th, width, height)
		if !ok {
			continue
		}
		boxes = append(boxes, box)

		dc.SetColor(palette[i%len(palette)])
		dc.DrawString(word, box.x, box.y+th)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *WordCloudPresenter) fontSize(count, minCount, maxCount int) float64 {
	if maxCount <= minCount {
		return p.opts.MaxFontSize
	}
	ratio := float64(count-minCount) / float64(maxCount-minCount)
	return p.opts.MinFontSize + ratio*(p.opts.MaxFontSize-p.opts.MinFontSize)
}

// findSpot walks an Archimedean spiral outwards until the box fits inside
// the canvas without touching an earlier word.
func findSpot(boxes []placed, w, h, width, height float64) (placed, bool) {
	cx, cy := width/2, height/2
	maxRadius := math.Hypot(cx, cy)
	for t := 0.0; ; t += 0.1 {
		r := 2 * t
		if r > maxRadius {
			return placed{}, false
		}
		cand := placed{
			x: cx + r*math.Cos(t) - w/2,
			y: cy + r*math.Sin(t) - h/2,
			w: w,
			h: h,
		}
		if cand.x < 0 || cand.y < 0 || cand.x+w > width || cand.y+h > height {
			continue
		}
		free := true
		for _, b := range boxes {
			if cand.overlaps(b) {
				free = false
				break
			}
		}
		if free {
			return cand, true
		}
	}
}
