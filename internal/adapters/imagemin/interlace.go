package imagemin

import (
	"image"

	"go.trai.ch/zerr"
)

const (
	gifHeaderLen     = 13
	gifExtension     = 0x21
	gifDescriptor    = 0x2C
	gifTrailer       = 0x3B
	gifColorTable    = 0x80
	gifInterlaced    = 0x40
	gifDescriptorLen = 10
)

var errMalformedGIF = zerr.New("malformed gif stream")

// interlacedRows lists the rows of an image of the given height in the order
// of the four GIF interlace passes.
func interlacedRows(height int) []int {
	rows := make([]int, 0, height)
	for _, pass := range [...]struct{ start, step int }{{0, 8}, {4, 8}, {2, 4}, {1, 2}} {
		for y := pass.start; y < height; y += pass.step {
			rows = append(rows, y)
		}
	}
	return rows
}

// interlaceFrame returns a copy of p with its rows stored in pass order.
// The copy only decodes correctly once its descriptor is marked interlaced.
func interlaceFrame(p *image.Paletted) *image.Paletted {
	b := p.Bounds()
	out := image.NewPaletted(b, p.Palette)
	width := b.Dx()
	for i, y := range interlacedRows(b.Dy()) {
		copy(out.Pix[i*out.Stride:i*out.Stride+width], p.Pix[y*p.Stride:y*p.Stride+width])
	}
	return out
}

// markInterlaced sets the interlace flag of every image descriptor in an
// encoded GIF stream.
func markInterlaced(data []byte) ([]byte, error) {
	if len(data) < gifHeaderLen {
		return nil, errMalformedGIF
	}
	pos := gifHeaderLen
	if flags := data[10]; flags&gifColorTable != 0 {
		pos += colorTableLen(flags)
	}

	var err error
	for pos < len(data) {
		switch data[pos] {
		case gifExtension:
			pos, err = skipSubBlocks(data, pos+2)
		case gifDescriptor:
			if pos+gifDescriptorLen > len(data) {
				return nil, errMalformedGIF
			}
			data[pos+9] |= gifInterlaced
			flags := data[pos+9]
			pos += gifDescriptorLen
			if flags&gifColorTable != 0 {
				pos += colorTableLen(flags)
			}
			// Skip the LZW minimum code size.
			pos, err = skipSubBlocks(data, pos+1)
		case gifTrailer:
			return data, nil
		default:
			return nil, zerr.With(errMalformedGIF, "offset", pos)
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, errMalformedGIF
}

func colorTableLen(flags byte) int {
	return 3 << ((flags & 0x07) + 1)
}

func skipSubBlocks(data []byte, pos int) (int, error) {
	for pos < len(data) {
		n := int(data[pos])
		pos++
		if n == 0 {
			return pos, nil
		}
		pos += n
	}
	return 0, errMalformedGIF
}
