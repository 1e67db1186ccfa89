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

package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePixelModuleInsertThenExtractRoundTrips(t *testing.T) {
	m := &ImagePixelModule{
		SamplesPerPixel:           1,
		PhotometricInterpretation: "MONOCHROME2",
		Rows:                      512,
		Columns:                   512,
		BitsAllocated:             16,
		BitsStored:                12,
		HighBit:                   11,
		PixelRepresentation:       0,
	}

	ds := NewDataSet()
	require.NoError(t, InsertImagePixelModule(ds, m))

	got, err := ExtractImagePixelModule(ds)
	require.NoError(t, err)
	assert.Equal(t, m.SamplesPerPixel, got.SamplesPerPixel)
	assert.Equal(t, m.PhotometricInterpretation, got.PhotometricInterpretation)
	assert.Equal(t, m.Rows, got.Rows)
	assert.Equal(t, m.BitsStored, got.BitsStored)
	assert.Equal(t, m.HighBit, got.HighBit)
}

func TestExtractImagePixelModuleRejectsBadHighBit(t *testing.T) {
	m := &ImagePixelModule{
		SamplesPerPixel: 1, PhotometricInterpretation: "MONOCHROME2",
		Rows: 8, Columns: 8, BitsAllocated: 16, BitsStored: 12, HighBit: 15,
	}
	ds := NewDataSet()
	require.NoError(t, InsertImagePixelModule(ds, m))

	_, err := ExtractImagePixelModule(ds)
	require.Error(t, err)
}

func TestModalityLutModuleDefaultIdentity(t *testing.T) {
	m, err := ExtractModalityLutModule(NewDataSet())
	require.NoError(t, err)
	assert.Equal(t, float64(42), m.Apply(42))
}

func TestModalityLutModuleRescale(t *testing.T) {
	ds := NewDataSet()
	slope, _ := NewBinaryValue(DSVR, []byte("2.0"))
	intercept, _ := NewBinaryValue(DSVR, []byte("-1024"))
	ds.Set(TagRescaleSlope, slope)
	ds.Set(TagRescaleIntercept, intercept)

	m, err := ExtractModalityLutModule(ds)
	require.NoError(t, err)
	assert.Equal(t, float64(2*100-1024), m.Apply(100))
}

func TestVoiLutModuleWindowing(t *testing.T) {
	ds := NewDataSet()
	center, _ := NewBinaryValue(DSVR, []byte("0"))
	width, _ := NewBinaryValue(DSVR, []byte("200"))
	ds.Set(TagWindowCenter, center)
	ds.Set(TagWindowWidth, width)

	m, err := ExtractVoiLutModule(ds)
	require.NoError(t, err)

	// Below the window floor clamps to 0, above the ceiling clamps to
	// outputMax, and the center maps to the midpoint.
	assert.Equal(t, float64(0), m.Apply(-200, 255))
	assert.Equal(t, float64(255), m.Apply(200, 255))
	assert.InDelta(t, 127.5, m.Apply(0, 255), 1)
}

func TestExtractOverlayPlaneModuleScansRepeatingGroups(t *testing.T) {
	ds := NewDataSet()
	group := uint16(0x6002)
	rows, _ := NewBinaryValue(USVR, []byte{0x04, 0x00})
	cols, _ := NewBinaryValue(USVR, []byte{0x04, 0x00})
	typ, _ := NewBinaryValue(CSVR, []byte("G "))
	data, _ := NewBinaryValue(OWVR, []byte{0xFF, 0xFF})
	ds.Set(NewTag(group, overlayElementRows), rows)
	ds.Set(NewTag(group, overlayElementColumns), cols)
	ds.Set(NewTag(group, overlayElementType), typ)
	ds.Set(NewTag(group, overlayElementData), data)

	m, err := ExtractOverlayPlaneModule(ds)
	require.NoError(t, err)
	require.Len(t, m.Overlays, 1)
	assert.Equal(t, group, m.Overlays[0].Group)
	assert.Equal(t, uint16(4), m.Overlays[0].Rows)
}
