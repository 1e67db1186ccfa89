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

func explicitVRDataSet(t *testing.T, native []byte) *dicom.DataSet {
	t.Helper()
	ds := dicom.NewDataSet()
	require.NoError(t, dicom.InsertImagePixelModule(ds, &dicom.ImagePixelModule{
		SamplesPerPixel:           1,
		PhotometricInterpretation: "MONOCHROME2",
		Rows:                      2,
		Columns:                   2,
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
	}))
	v, err := dicom.NewBinaryValue(dicom.OBVR, native)
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)
	ts, err := dicom.NewBinaryValue(dicom.UIVR, []byte(dicom.ExplicitVRLittleEndianUID))
	require.NoError(t, err)
	ds.Set(dicom.TagTransferSyntaxUID, ts)
	return ds
}

func TestTranscodeNativeToRLELossless(t *testing.T) {
	native := []byte{10, 20, 30, 40}
	ds := explicitVRDataSet(t, native)

	require.NoError(t, Transcode(ds, dicom.RLELosslessUID, nil))

	tsVal, ok := ds.Get(dicom.TagTransferSyntaxUID)
	require.True(t, ok)
	got, err := tsVal.String()
	require.NoError(t, err)
	assert.Equal(t, dicom.RLELosslessUID, got)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	decoder, err := GetDecoder(dicom.RLELosslessUID)
	require.NoError(t, err)
	decoded, err := decoder.Decode(frames[0].Bytes(), &PixelInfo{Rows: 2, Columns: 2, BitsAllocated: 8, SamplesPerPixel: 1})
	require.NoError(t, err)
	assert.Equal(t, native, decoded)
}

func TestTranscodeAppliesProcessHook(t *testing.T) {
	native := []byte{1, 2, 3, 4}
	ds := explicitVRDataSet(t, native)

	var sawRows uint16
	err := Transcode(ds, dicom.RLELosslessUID, func(native []byte, info *PixelInfo) ([]byte, error) {
		sawRows = info.Rows
		out := make([]byte, len(native))
		for i, b := range native {
			out[i] = b * 2
		}
		return out, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint16(2), sawRows)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)

	decoder, err := GetDecoder(dicom.RLELosslessUID)
	require.NoError(t, err)
	decoded, err := decoder.Decode(frames[0].Bytes(), &PixelInfo{Rows: 2, Columns: 2, BitsAllocated: 8, SamplesPerPixel: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 4, 6, 8}, decoded)
}

func TestTranscodeJPEGRecompressionFastPath(t *testing.T) {
	ds := dicom.NewDataSet()
	require.NoError(t, dicom.InsertImagePixelModule(ds, &dicom.ImagePixelModule{
		SamplesPerPixel: 1, PhotometricInterpretation: "MONOCHROME2",
		Rows: 2, Columns: 2, BitsAllocated: 8, BitsStored: 8, HighBit: 7,
	}))
	fragment := []byte{0xFF, 0xD8, 0xFF, 0xD9} // stand-in JPEG bytes
	v, err := dicom.NewEncapsulatedPixelDataValue(dicom.OBVR, [][]byte{{}, fragment})
	require.NoError(t, err)
	ds.Set(dicom.TagPixelData, v)
	ts, err := dicom.NewBinaryValue(dicom.UIVR, []byte(dicom.JPEGBaselineUID))
	require.NoError(t, err)
	ds.Set(dicom.TagTransferSyntaxUID, ts)

	require.NoError(t, Transcode(ds, dicom.JPEGXLJPEGRecompressionUID, nil))

	tsVal, ok := ds.Get(dicom.TagTransferSyntaxUID)
	require.True(t, ok)
	got, err := tsVal.String()
	require.NoError(t, err)
	assert.Equal(t, dicom.JPEGXLJPEGRecompressionUID, got)

	frames, err := ExtractFrames(ds)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, fragment, frames[0].Bytes())
}

func TestTranscodeUnsupportedTargetErrors(t *testing.T) {
	ds := explicitVRDataSet(t, []byte{1, 2, 3, 4})
	err := Transcode(ds, "1.2.840.10008.9.9.9", nil)
	require.Error(t, err)
}
