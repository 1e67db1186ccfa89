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
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/dcmfx/dcmfx-sub000/dicom"
)

// jpegBaselineCodec wraps stdlib image/jpeg behind the Decoder/Encoder
// interface for JPEG Baseline (Process 1) and Extended (Processes 2 & 4)
// 8-bit pixel data.
type jpegBaselineCodec struct{ uid string }

func (c jpegBaselineCodec) TransferSyntaxUID() string { return c.uid }

func (c jpegBaselineCodec) Decode(fragment []byte, info *PixelInfo) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(fragment))
	if err != nil {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataDecodeError, Details: "jpeg decode: " + err.Error()}
	}
	bounds := img.Bounds()
	if bounds.Dx() != int(info.Columns) || bounds.Dy() != int(info.Rows) {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataDecodeError, Details: "decoded jpeg dimensions do not match Image Pixel Module"}
	}

	switch info.SamplesPerPixel {
	case 1:
		return grayBytes(img), nil
	case 3:
		return rgbBytes(img), nil
	default:
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataDecodeError, Details: "jpeg codec only supports 1 or 3 samples per pixel"}
	}
}

func (c jpegBaselineCodec) Encode(native []byte, info *PixelInfo) ([]byte, error) {
	rect := image.Rect(0, 0, int(info.Columns), int(info.Rows))
	var img image.Image
	switch info.SamplesPerPixel {
	case 1:
		gray := image.NewGray(rect)
		copy(gray.Pix, native)
		img = gray
	case 3:
		rgba := image.NewRGBA(rect)
		for i := 0; i*3+2 < len(native); i++ {
			rgba.Pix[i*4] = native[i*3]
			rgba.Pix[i*4+1] = native[i*3+1]
			rgba.Pix[i*4+2] = native[i*3+2]
			rgba.Pix[i*4+3] = 0xFF
		}
		img = rgba
	default:
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataEncodeError, Details: "jpeg codec only supports 1 or 3 samples per pixel"}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataEncodeError, Details: "jpeg encode: " + err.Error()}
	}
	return buf.Bytes(), nil
}

func grayBytes(img image.Image) []byte {
	if g, ok := img.(*image.Gray); ok {
		return append([]byte(nil), g.Pix...)
	}
	bounds := img.Bounds()
	out := make([]byte, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out = append(out, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
	return out
}

func rgbBytes(img image.Image) []byte {
	bounds := img.Bounds()
	out := make([]byte, 0, bounds.Dx()*bounds.Dy()*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out = append(out, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}
	return out
}

func init() {
	for _, uid := range []string{dicom.JPEGBaselineUID, dicom.JPEGExtendedUID} {
		c := jpegBaselineCodec{uid: uid}
		RegisterDecoder(uid, c)
		RegisterEncoder(uid, c)
	}
}
