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

func imagePixelDataSet(t *testing.T, rows, cols uint16, bitsAllocated uint16, numberOfFrames int) *dicom.DataSet {
	t.Helper()
	ds := dicom.NewDataSet()
	require.NoError(t, dicom.InsertImagePixelModule(ds, &dicom.ImagePixelModule{
		SamplesPerPixel:           1,
		PhotometricInterpretation: "MONOCHROME2",
		Rows:                      rows,
		Columns:                   cols,
		BitsAllocated:             bitsAllocated,
		BitsStored:                bitsAllocated,
		HighBit:                   bitsAllocated - 1,
	}))
	if numberOfFrames > 1 {
		nof, err := dicom.NewBinaryValue(dicom.ISVR, []byte("2 "))
		require.NoError(t, err)
		ds.Set(dicom.TagNumberOfFrames, nof)
	}
	return ds
}

func TestExtractFramesNativeSingleFrame(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 16, 1)
	data := make([]byte, 2*2*1*2) // rows*cols*samples*bytesPerSample
	for i := range data {
		data[i] = byte(i)
	}
	v, err := dicom.NewBinaryValue(dicom.OWVR, data)
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, data, frames[0].Bytes())
}

func TestExtractFramesNativeMultiFrame(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 8, 2)
	frame0 := []byte{1, 2, 3, 4}
	frame1 := []byte{5, 6, 7, 8}
	v, err := dicom.NewBinaryValue(dicom.OBVR, append(append([]byte{}, frame0...), frame1...))
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, frame0, frames[0].Bytes())
	assert.Equal(t, frame1, frames[1].Bytes())
}

func TestExtractFramesNativeLengthMismatchErrors(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 16, 1)
	v, err := dicom.NewBinaryValue(dicom.OWVR, []byte{0x00, 0x01}) // too short
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	_, err = ExtractFrames(ds)
	require.Error(t, err)
}

func TestExtractFramesEncapsulatedZeroOffsetTableSingleFrame(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 8, 1)
	frag := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	v, err := dicom.NewEncapsulatedPixelDataValue(dicom.OBVR, [][]byte{{}, frag})
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, frag, frames[0].Bytes())
}

func TestExtractFramesEncapsulatedZeroOffsetTableOneFragmentPerFrame(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 8, 2)
	frag0 := []byte{0x01, 0x02}
	frag1 := []byte{0x03, 0x04}
	v, err := dicom.NewEncapsulatedPixelDataValue(dicom.OBVR, [][]byte{{}, frag0, frag1})
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, frag0, frames[0].Bytes())
	assert.Equal(t, frag1, frames[1].Bytes())
}

func TestExtractFramesEncapsulatedBasicOffsetTable(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 8, 2)
	frag0 := []byte{0x01, 0x02, 0x03, 0x04} // 4 bytes + 8-byte item header = 12
	frag1 := []byte{0x05, 0x06}

	bot := []byte{
		0x00, 0x00, 0x00, 0x00, // frame 0 at offset 0
		0x0C, 0x00, 0x00, 0x00, // frame 1 at offset 12
	}
	v, err := dicom.NewEncapsulatedPixelDataValue(dicom.OBVR, [][]byte{bot, frag0, frag1})
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, frag0, frames[0].Bytes())
	assert.Equal(t, frag1, frames[1].Bytes())
}

func TestExtractFramesBasicOffsetTableRejectsNonzeroFirstOffset(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 8, 1)
	bot := []byte{0x04, 0x00, 0x00, 0x00}
	v, err := dicom.NewEncapsulatedPixelDataValue(dicom.OBVR, [][]byte{bot, {0x01, 0x02}})
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	_, err = ExtractFrames(ds)
	require.Error(t, err)
}

func TestExtractFramesBasicOffsetTableRejectsNonAscendingOffsets(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 8, 2)
	bot := []byte{
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	v, err := dicom.NewEncapsulatedPixelDataValue(dicom.OBVR, [][]byte{bot, {0x01, 0x02}, {0x03, 0x04}})
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	_, err = ExtractFrames(ds)
	require.Error(t, err)
}

func TestExtractFramesExtendedOffsetTable(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 8, 2)
	frag0 := []byte{0x01, 0x02, 0x03, 0x04}
	frag1 := []byte{0x05, 0x06}

	offsets := make([]byte, 16)
	// offset[0] = 0, offset[1] = 12 (4 data bytes + 8-byte item header)
	offsets[8] = 0x0C

	lengths := make([]byte, 16)
	lengths[0] = 0x04 // frag0 length
	lengths[8] = 0x02 // frag1 length

	extOffsets, err := dicom.NewBinaryValue(dicom.OVVR, offsets)
	require.NoError(t, err)
	extLengths, err := dicom.NewBinaryValue(dicom.OVVR, lengths)
	require.NoError(t, err)
	ds.Set(dicom.TagExtendedOffsetTable, extOffsets)
	ds.Set(dicom.TagExtendedOffsetTableLengths, extLengths)

	v, err := dicom.NewEncapsulatedPixelDataValue(dicom.OBVR, [][]byte{{}, frag0, frag1})
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, frag0, frames[0].Bytes())
	assert.Equal(t, frag1, frames[1].Bytes())
}

func TestExtractFramesExtendedOffsetTableRejectsShortFragment(t *testing.T) {
	ds := imagePixelDataSet(t, 2, 2, 8, 1)
	offsets := make([]byte, 8)
	lengths := make([]byte, 8)
	lengths[0] = 0x10 // declares 16 bytes but fragment only has 2

	extOffsets, err := dicom.NewBinaryValue(dicom.OVVR, offsets)
	require.NoError(t, err)
	extLengths, err := dicom.NewBinaryValue(dicom.OVVR, lengths)
	require.NoError(t, err)
	ds.Set(dicom.TagExtendedOffsetTable, extOffsets)
	ds.Set(dicom.TagExtendedOffsetTableLengths, extLengths)

	v, err := dicom.NewEncapsulatedPixelDataValue(dicom.OBVR, [][]byte{{}, {0x01, 0x02}})
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)

	_, err = ExtractFrames(ds)
	require.Error(t, err)
}
