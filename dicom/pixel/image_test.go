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
	"testing"

	"github.com/dcmfx/dcmfx-sub000/dicom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonochromeImageStoredValuesRoundTrip(t *testing.T) {
	values := []int64{0, 100, 4095, 2048}
	img := NewMonochromeImageFromStoredValues(2, 2, 12, false, values)
	assert.Equal(t, SampleU16, img.Kind)
	assert.Equal(t, values, img.ToStoredValues())
}

func TestMonochromeImageBitmapKind(t *testing.T) {
	values := []int64{1, 0, 1, 1, 0, 0, 1, 0, 1}
	img := NewMonochromeImageFromStoredValues(3, 3, 1, false, values)
	assert.Equal(t, SampleBitmap, img.Kind)
	assert.Equal(t, values, img.ToStoredValues())
}

func TestMonochromeImageChangeRepresentationIsInvolution(t *testing.T) {
	values := []int64{0, 10, 255, 128}
	img := NewMonochromeImageFromStoredValues(2, 2, 8, false, values)

	once := img.ChangeMonochromeRepresentation()
	twice := once.ChangeMonochromeRepresentation()

	assert.Equal(t, img.ToStoredValues(), twice.ToStoredValues())
	assert.Equal(t, img.IsMonochrome1, twice.IsMonochrome1)
}

func TestMonochromeImageChangeRepresentationInvertsValues(t *testing.T) {
	img := NewMonochromeImageFromStoredValues(1, 1, 8, false, []int64{10})
	inverted := img.ChangeMonochromeRepresentation()
	assert.Equal(t, []int64{245}, inverted.ToStoredValues())
}

func TestMonochromeImageCrop(t *testing.T) {
	values := []int64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	img := NewMonochromeImageFromStoredValues(3, 3, 8, false, values)

	cropped, err := img.Crop(1, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cropped.Width)
	assert.Equal(t, 2, cropped.Height)
	assert.Equal(t, []int64{5, 6, 8, 9}, cropped.ToStoredValues())
}

func TestMonochromeImageCropOutOfBounds(t *testing.T) {
	img := NewMonochromeImageFromStoredValues(2, 2, 8, false, []int64{1, 2, 3, 4})
	_, err := img.Crop(1, 1, 5, 5)
	require.Error(t, err)
}

func TestRGBYBRFullRoundTripBoundedError(t *testing.T) {
	rgb := []byte{0, 0, 0, 255, 255, 255, 12, 200, 40, 90, 90, 90}

	ybr := RGBToYBRFull(rgb)
	back := YBRFullToRGB(ybr)

	for i := range rgb {
		diff := int(rgb[i]) - int(back[i])
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, 1, "channel %d round-trip error exceeds 1", i)
	}
}

func TestYBRFull422RoundTrip(t *testing.T) {
	// A 2x1 image: two luma samples sharing one Cb/Cr pair.
	full := []byte{10, 128, 128, 20, 128, 128}
	subsampled, err := YBRFullToYBRFull422(2, 1, full)
	require.NoError(t, err)

	img := &ColorImage{Width: 2, Height: 1, Kind: ColorYBRFull422, Data: subsampled}
	rgb, err := img.ToRGB()
	require.NoError(t, err)
	assert.Equal(t, ColorRGBU8, rgb.Kind)
	assert.Len(t, rgb.Data, 6)
}

func TestYBRFull422RejectsOddWidth(t *testing.T) {
	_, err := YBRFullToYBRFull422(3, 1, make([]byte, 9))
	require.Error(t, err)

	img := &ColorImage{Width: 3, Height: 1, Kind: ColorYBRFull422, Data: make([]byte, 6)}
	_, err = img.ToRGB()
	require.Error(t, err)
}

func TestColorImagePaletteExpansion(t *testing.T) {
	palette := &dicom.PaletteColorLookupTableModule{
		Red:   []uint16{0x1100, 0x2200},
		Green: []uint16{0x3300, 0x4400},
		Blue:  []uint16{0x5500, 0x6600},
	}
	img := &ColorImage{Width: 2, Height: 1, Kind: ColorPaletteU8, Data: []byte{0, 1}, Palette: palette}

	rgb, err := img.ToRGB()
	require.NoError(t, err)
	assert.Equal(t, ColorRGBU8, rgb.Kind)
	assert.Equal(t, []byte{0x11, 0x33, 0x55, 0x22, 0x44, 0x66}, rgb.Data)
}

func TestColorImageCropInterleaved(t *testing.T) {
	// 2x2 RGB image.
	data := []byte{
		1, 1, 1, 2, 2, 2,
		3, 3, 3, 4, 4, 4,
	}
	img := &ColorImage{Width: 2, Height: 2, Kind: ColorRGBU8, Data: data}

	cropped, err := img.Crop(1, 0, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 2, 2, 4, 4, 4}, cropped.Data)
}
