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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleDataSet(t *testing.T) *DataSet {
	t.Helper()
	ds := NewDataSet()

	patientName, err := NewBinaryValue(PNVR, []byte("Doe^Jane"))
	require.NoError(t, err)
	ds.Set(NewTag(0x0010, 0x0010), patientName)

	rows, err := NewBinaryValue(USVR, []byte{0x40, 0x00})
	require.NoError(t, err)
	ds.Set(TagRows, rows)

	item := NewDataSet()
	codeValue, err := NewBinaryValue(SHVR, []byte("T-D00501"))
	require.NoError(t, err)
	item.Set(NewTag(0x0008, 0x0100), codeValue)
	ds.Set(NewTag(0x0008, 0x1140), NewSequenceValue([]*DataSet{item}))

	return ds
}

func TestConstructParseRoundTripExplicitVRLittleEndian(t *testing.T) {
	ds := buildSampleDataSet(t)

	var buf bytes.Buffer
	require.NoError(t, Construct(&buf, NewDataSet(), ds, ExplicitVRLittleEndian))

	got, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, ds.Equal(got), "round-tripped data set should equal the original")
}

// TestConstructParseRoundTripImplicitVRLittleEndian uses only tags this
// package's seed dictionary (dictionary.go) resolves, since implicit VR
// decoding of an unregistered tag falls back to UN rather than its true VR.
func TestConstructParseRoundTripImplicitVRLittleEndian(t *testing.T) {
	ds := NewDataSet()
	rows, err := NewBinaryValue(USVR, []byte{0x40, 0x00})
	require.NoError(t, err)
	ds.Set(TagRows, rows)
	photometric, err := NewBinaryValue(CSVR, []byte("MONOCHROME2 "))
	require.NoError(t, err)
	ds.Set(TagPhotometricInterpretation, photometric)

	var buf bytes.Buffer
	require.NoError(t, Construct(&buf, NewDataSet(), ds, ImplicitVRLittleEndian))

	got, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, ds.Equal(got), "round-tripped data set should equal the original")
}

func TestConstructParseRoundTripExplicitVRBigEndian(t *testing.T) {
	ds := buildSampleDataSet(t)

	var buf bytes.Buffer
	require.NoError(t, Construct(&buf, NewDataSet(), ds, ExplicitVRBigEndian))

	got, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, ds.Equal(got), "round-tripped data set should equal the original")

	rowsValue, ok := got.Get(TagRows)
	require.True(t, ok)
	rowsInt, err := rowsValue.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(0x0040), rowsInt)
}

// TestTranscodeAcrossByteOrderIsLossless exercises spec.md's lossless
// round trip property across the byte-order boundary specifically:
// construct under Explicit VR Big Endian, parse, then reconstruct the same
// data set under Explicit VR Little Endian and confirm the numeric value
// transcodes without its bytes silently staying big-endian.
func TestTranscodeAcrossByteOrderIsLossless(t *testing.T) {
	ds := NewDataSet()
	rows, err := NewBinaryValue(USVR, []byte{0x01, 0x02})
	require.NoError(t, err)
	ds.Set(TagRows, rows)
	tag, err := NewBinaryValue(ATVR, []byte{0x10, 0x00, 0x20, 0x00})
	require.NoError(t, err)
	ds.Set(TagFrameIncrementPointer, tag)

	var beBuf bytes.Buffer
	require.NoError(t, Construct(&beBuf, NewDataSet(), ds, ExplicitVRBigEndian))

	fromBE, err := Parse(bytes.NewReader(beBuf.Bytes()))
	require.NoError(t, err)
	assert.True(t, ds.Equal(fromBE))

	var leBuf bytes.Buffer
	require.NoError(t, Construct(&leBuf, NewDataSet(), fromBE, ExplicitVRLittleEndian))

	fromLE, err := Parse(bytes.NewReader(leBuf.Bytes()))
	require.NoError(t, err)
	assert.True(t, ds.Equal(fromLE))

	rowsValue, ok := fromLE.Get(TagRows)
	require.True(t, ok)
	n, err := rowsValue.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(0x0201), n)
}

func TestRoundTripHelper(t *testing.T) {
	ds := buildSampleDataSet(t)

	var buf bytes.Buffer
	require.NoError(t, Construct(&buf, NewDataSet(), ds, ExplicitVRLittleEndian))

	again, err := RoundTrip(buf.Bytes())
	require.NoError(t, err)

	reparsed, err := Parse(bytes.NewReader(again))
	require.NoError(t, err)
	assert.True(t, ds.Equal(reparsed))
}

func TestRoundTripIsIdempotent(t *testing.T) {
	ds := buildSampleDataSet(t)

	var buf bytes.Buffer
	require.NoError(t, Construct(&buf, NewDataSet(), ds, ExplicitVRLittleEndian))

	once, err := RoundTrip(buf.Bytes())
	require.NoError(t, err)
	twice, err := RoundTrip(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}
