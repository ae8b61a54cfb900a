// Package imagemin compresses raster and vector images.
package imagemin

import (
	"bytes"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/tdewolff/minify/v2"
	cssmin "github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const svgMediaType = "image/svg+xml"

var _ ports.ImageOptimizer = (*Optimizer)(nil)

// Optimizer implements ports.ImageOptimizer.
type Optimizer struct {
	quality  int
	minifier *minify.M
}

// NewOptimizer creates an Optimizer encoding JPEG images at the given quality.
func NewOptimizer(opts domain.ImageOptions) *Optimizer {
	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = domain.DefaultJPEGQuality
	}

	m := minify.New()
	m.AddFunc("text/css", cssmin.Minify)
	m.Add(svgMediaType, &svg.Minifier{})

	return &Optimizer{quality: quality, minifier: m}
}

// Optimize compresses the asset according to its extension. The result is
// only used when it is smaller than the input.
func (o *Optimizer) Optimize(asset domain.Asset) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch asset.Ext() {
	case ".png":
		out, err = o.png(asset.Contents)
	case ".jpg", ".jpeg":
		out, err = o.jpeg(asset.Contents)
	case ".gif":
		out, err = o.gif(asset.Contents)
	case ".svg":
		out, err = o.svg(asset.Contents)
	default:
		return asset.Contents, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrImageOptimizeFailed.Error()), "file", asset.Path)
	}

	if len(out) >= len(asset.Contents) {
		return asset.Contents, nil
	}
	return out, nil
}

func (o *Optimizer) png(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Optimizer) jpeg(data []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: o.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gif re-encodes every frame interlaced.
func (o *Optimizer) gif(data []byte) ([]byte, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for i, frame := range g.Image {
		g.Image[i] = interlaceFrame(frame)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, err
	}
	return markInterlaced(buf.Bytes())
}

func (o *Optimizer) svg(data []byte) ([]byte, error) {
	out, err := o.minifier.Bytes(svgMediaType, data)
	if err != nil {
		return nil, err
	}
	return removeViewBox(out), nil
}
