// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pixel

import (
	"github.com/dcmfx/dcmfx-sub000/dicom"
)

// SampleKind discriminates MonochromeImage's internal typed storage
// variant, per spec.md §4.8.
type SampleKind int

const (
	SampleBitmap SampleKind = iota
	SampleI8
	SampleU8
	SampleI16
	SampleU16
	SampleI32
	SampleU32
)

// MonochromeImage is a single-channel grayscale frame, stored in whichever
// width/signedness its source bit depth calls for (spec.md §4.8).
type MonochromeImage struct {
	Width, Height int
	BitsStored    int
	IsMonochrome1 bool
	Kind          SampleKind

	bitmap       []byte // packed, LSB-first, one bit per pixel
	bitmapSigned bool
	samples      []int64 // widened storage for I8/U8/I16/U16/I32/U32
}

// NewMonochromeImageFromStoredValues builds a MonochromeImage from a flat
// row-major array of stored pixel values, choosing the narrowest Kind that
// fits bitsStored and signedness.
func NewMonochromeImageFromStoredValues(width, height, bitsStored int, signed bool, values []int64) *MonochromeImage {
	img := &MonochromeImage{Width: width, Height: height, BitsStored: bitsStored, samples: values}
	switch {
	case bitsStored == 1:
		img.Kind = SampleBitmap
		img.bitmapSigned = signed
		img.bitmap = packBits(values)
	case bitsStored <= 8 && signed:
		img.Kind = SampleI8
	case bitsStored <= 8:
		img.Kind = SampleU8
	case bitsStored <= 16 && signed:
		img.Kind = SampleI16
	case bitsStored <= 16:
		img.Kind = SampleU16
	case signed:
		img.Kind = SampleI32
	default:
		img.Kind = SampleU32
	}
	return img
}

func packBits(values []int64) []byte {
	out := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v != 0 {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// ToStoredValues widens the image's native storage back to a flat i64
// array, per spec.md §4.8.
func (m *MonochromeImage) ToStoredValues() []int64 {
	if m.Kind == SampleBitmap {
		out := make([]int64, m.Width*m.Height)
		for i := range out {
			bit := (m.bitmap[i/8] >> uint(i%8)) & 1
			out[i] = int64(bit)
		}
		return out
	}
	return m.samples
}

// Crop returns the sub-rectangle [x,y,x+w,y+h) as a new image.
func (m *MonochromeImage) Crop(x, y, w, h int) (*MonochromeImage, error) {
	if x < 0 || y < 0 || x+w > m.Width || y+h > m.Height {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataNotSupported, Details: "crop rectangle out of bounds"}
	}
	values := m.ToStoredValues()
	out := make([]int64, 0, w*h)
	for row := 0; row < h; row++ {
		srcStart := (y+row)*m.Width + x
		out = append(out, values[srcStart:srcStart+w]...)
	}
	signed := m.Kind == SampleI8 || m.Kind == SampleI16 || m.Kind == SampleI32 || m.bitmapSigned
	return NewMonochromeImageFromStoredValues(w, h, m.BitsStored, signed, out), nil
}

// ChangeMonochromeRepresentation inverts stored values into the
// complementary MONOCHROME1/2 representation: newValue = maxValue - value
// (spec.md §4.8; applying this twice is the identity, per spec.md §8 law 8).
func (m *MonochromeImage) ChangeMonochromeRepresentation() *MonochromeImage {
	maxVal := int64(1)<<uint(m.BitsStored) - 1
	values := m.ToStoredValues()
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = maxVal - v
	}
	signed := m.Kind == SampleI8 || m.Kind == SampleI16 || m.Kind == SampleI32 || m.bitmapSigned
	result := NewMonochromeImageFromStoredValues(m.Width, m.Height, m.BitsStored, signed, out)
	result.IsMonochrome1 = !m.IsMonochrome1
	return result
}

// ToGrayU8Image applies the Modality LUT -> VOI LUT -> Presentation LUT
// pipeline and returns 8-bit grayscale bytes, one per pixel.
func (m *MonochromeImage) ToGrayU8Image(modality *dicom.ModalityLutModule, voi *dicom.VoiLutModule) []byte {
	return m.toGrayImage(modality, voi, 255)
}

// ToGrayU16Image is ToGrayU8Image's 16-bit-output counterpart, packed
// little-endian two bytes per pixel.
func (m *MonochromeImage) ToGrayU16Image(modality *dicom.ModalityLutModule, voi *dicom.VoiLutModule) []byte {
	values := m.toGrayValues(modality, voi, 65535)
	out := make([]byte, len(values)*2)
	for i, v := range values {
		out[i*2] = byte(uint16(v))
		out[i*2+1] = byte(uint16(v) >> 8)
	}
	return out
}

func (m *MonochromeImage) toGrayImage(modality *dicom.ModalityLutModule, voi *dicom.VoiLutModule, outputMax float64) []byte {
	values := m.toGrayValues(modality, voi, outputMax)
	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = byte(v)
	}
	return out
}

func (m *MonochromeImage) toGrayValues(modality *dicom.ModalityLutModule, voi *dicom.VoiLutModule, outputMax float64) []int64 {
	stored := m.ToStoredValues()
	out := make([]int64, len(stored))
	for i, sv := range stored {
		modVal := sv
		var f float64
		if modality != nil {
			f = modality.Apply(sv)
		} else {
			f = float64(modVal)
		}
		if voi != nil {
			f = voi.Apply(f, outputMax)
		}
		if m.IsMonochrome1 {
			f = outputMax - f
		}
		out[i] = int64(f)
	}
	return out
}

// ColorKind discriminates ColorImage's internal storage, per spec.md §4.8.
type ColorKind int

const (
	ColorPaletteU8 ColorKind = iota
	ColorPaletteU16
	ColorRGBU8
	ColorRGBU16
	ColorRGBU32
	ColorYBRFull
	ColorYBRFull422
	ColorXYB
)

// ColorImage is a multi-channel color frame (spec.md §4.8).
type ColorImage struct {
	Width, Height int
	Kind          ColorKind
	Data          []byte // interleaved samples, or palette indices for the Palette kinds
	Palette       *dicom.PaletteColorLookupTableModule
}

// ToRGB expands palette-indexed or YBR data to interleaved 8-bit RGB.
func (c *ColorImage) ToRGB() (*ColorImage, error) {
	switch c.Kind {
	case ColorRGBU8:
		return c, nil
	case ColorPaletteU8:
		return c.expandPalette8()
	case ColorYBRFull:
		return c.ybrFullToRGB()
	case ColorYBRFull422:
		expanded, err := c.ybr422to444()
		if err != nil {
			return nil, err
		}
		return expanded.ybrFullToRGB()
	default:
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataNotSupported, Details: "unsupported color kind for RGB conversion"}
	}
}

func (c *ColorImage) expandPalette8() (*ColorImage, error) {
	if c.Palette == nil {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataNotSupported, Details: "palette color image has no palette"}
	}
	out := make([]byte, 0, len(c.Data)*3)
	for _, idx := range c.Data {
		i := int(idx)
		out = append(out, lutByte(c.Palette.Red, i), lutByte(c.Palette.Green, i), lutByte(c.Palette.Blue, i))
	}
	return &ColorImage{Width: c.Width, Height: c.Height, Kind: ColorRGBU8, Data: out}, nil
}

func lutByte(lut []uint16, i int) byte {
	if i < 0 {
		i = 0
	}
	if i >= len(lut) {
		i = len(lut) - 1
	}
	if len(lut) == 0 {
		return 0
	}
	return byte(lut[i] >> 8)
}

// RGBToYBRFull converts interleaved 8-bit RGB to YBR_FULL using the BT.601
// equations (spec.md §4.8).
func RGBToYBRFull(rgb []byte) []byte {
	out := make([]byte, len(rgb))
	for i := 0; i+2 < len(rgb); i += 3 {
		r, g, b := float64(rgb[i]), float64(rgb[i+1]), float64(rgb[i+2])
		y := 0.299*r + 0.587*g + 0.114*b
		cb := -0.168736*r - 0.331264*g + 0.5*b + 128
		cr := 0.5*r - 0.418688*g - 0.081312*b + 128
		out[i] = clamp8(y)
		out[i+1] = clamp8(cb)
		out[i+2] = clamp8(cr)
	}
	return out
}

// YBRFullToRGB is RGBToYBRFull's inverse (spec.md §8 law 9 bounds the
// round-trip error at <= 1 per channel).
func YBRFullToRGB(ybr []byte) []byte {
	out := make([]byte, len(ybr))
	for i := 0; i+2 < len(ybr); i += 3 {
		y, cb, cr := float64(ybr[i]), float64(ybr[i+1])-128, float64(ybr[i+2])-128
		r := y + 1.402*cr
		g := y - 0.344136*cb - 0.714136*cr
		b := y + 1.772*cb
		out[i] = clamp8(r)
		out[i+1] = clamp8(g)
		out[i+2] = clamp8(b)
	}
	return out
}

func clamp8(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

func (c *ColorImage) ybrFullToRGB() (*ColorImage, error) {
	return &ColorImage{Width: c.Width, Height: c.Height, Kind: ColorRGBU8, Data: YBRFullToRGB(c.Data)}, nil
}

// ybr422to444 expands subsampled YBR_FULL_422 (one Cb/Cr pair per 2
// horizontal luma samples, stored Y0 Y1 Cb Cr) to full YBR_FULL, erroring
// on odd width per spec.md §4.8.
func (c *ColorImage) ybr422to444() (*ColorImage, error) {
	if c.Width%2 != 0 {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataNotSupported, Details: "YBR_FULL_422 requires even width"}
	}
	out := make([]byte, c.Width*c.Height*3)
	rowBytes422 := c.Width * 2
	for y := 0; y < c.Height; y++ {
		src := c.Data[y*rowBytes422 : (y+1)*rowBytes422]
		for x := 0; x < c.Width; x += 2 {
			si := x * 2
			y0, y1, cb, cr := src[si], src[si+1], src[si+2], src[si+3]
			di := (y*c.Width + x) * 3
			out[di], out[di+1], out[di+2] = y0, cb, cr
			out[di+3], out[di+4], out[di+5] = y1, cb, cr
		}
	}
	return &ColorImage{Width: c.Width, Height: c.Height, Kind: ColorYBRFull, Data: out}, nil
}

// YBRFullToYBRFull422 subsamples full YBR_FULL chroma horizontally, keeping
// the first pixel's Cb/Cr of each pair and writing it as Y0 Y1 Cb Cr,
// erroring on odd width.
func YBRFullToYBRFull422(width, height int, ybrFull []byte) ([]byte, error) {
	if width%2 != 0 {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataNotSupported, Details: "YBR_FULL_422 requires even width"}
	}
	out := make([]byte, width*height*2)
	for y := 0; y < height; y++ {
		srcRow := ybrFull[y*width*3 : (y+1)*width*3]
		dst := out[y*width*2 : (y+1)*width*2]
		for x := 0; x < width; x += 2 {
			si := x * 3
			dst[x*2] = srcRow[si]
			dst[x*2+1] = srcRow[si+3]
			dst[x*2+2] = srcRow[si+1]
			dst[x*2+3] = srcRow[si+2]
		}
	}
	return out, nil
}

// Crop returns the sub-rectangle [x,y,x+w,y+h) of an interleaved-sample
// color image (RGB/YBR_FULL kinds; palette and YBR_FULL_422 must be
// expanded first).
func (c *ColorImage) Crop(x, y, w, h int) (*ColorImage, error) {
	if x < 0 || y < 0 || x+w > c.Width || y+h > c.Height {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataNotSupported, Details: "crop rectangle out of bounds"}
	}
	out := make([]byte, 0, w*h*3)
	for row := 0; row < h; row++ {
		srcStart := ((y+row)*c.Width + x) * 3
		out = append(out, c.Data[srcStart:srcStart+w*3]...)
	}
	return &ColorImage{Width: w, Height: h, Kind: c.Kind, Data: out, Palette: c.Palette}, nil
}
