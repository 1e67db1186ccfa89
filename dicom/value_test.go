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

func TestValueStrings(t *testing.T) {
	v, err := NewBinaryValue(PNVR, []byte("Doe^Jane \\Smith^John"))
	require.NoError(t, err)

	got, err := v.Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"Doe^Jane", "Smith^John"}, got)
}

func TestValueStringRejectsMultiplicity(t *testing.T) {
	v, err := NewBinaryValue(CSVR, []byte("ONE\\TWO"))
	require.NoError(t, err)

	_, err = v.String()
	require.Error(t, err)
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, MultiplicityMismatch, dataErr.Kind)
}

func TestValueIntsUnsignedShort(t *testing.T) {
	v, err := NewBinaryValue(USVR, []byte{0x01, 0x00, 0x02, 0x00})
	require.NoError(t, err)

	got, err := v.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got)
}

func TestValueIntsSignedShort(t *testing.T) {
	v, err := NewBinaryValue(SSVR, []byte{0xFF, 0xFF})
	require.NoError(t, err)

	got, err := v.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)
}

func TestValueIntsUnsignedVeryLong(t *testing.T) {
	v, err := NewBinaryValue(UVVR, []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	require.NoError(t, err)

	got, err := v.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, got)
}

func TestValueFloatsDecimalString(t *testing.T) {
	v, err := NewBinaryValue(DSVR, []byte("3.5\\-2.25"))
	require.NoError(t, err)

	got, err := v.Floats()
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5, -2.25}, got)
}

func TestLookupTableDescriptorFields(t *testing.T) {
	bytes := [6]byte{0x00, 0x01, 0x00, 0x00, 0x10, 0x00}
	v, err := NewLookupTableDescriptorValue(USVR, bytes)
	require.NoError(t, err)

	entries, firstInput, bitsPerEntry, err := v.LookupTableDescriptorFields()
	require.NoError(t, err)
	assert.Equal(t, uint16(256), entries)
	assert.Equal(t, int32(0), firstInput)
	assert.Equal(t, uint16(16), bitsPerEntry)
}

func TestValueEqual(t *testing.T) {
	a, _ := NewBinaryValue(CSVR, []byte("ABC"))
	b, _ := NewBinaryValue(CSVR, []byte("ABC"))
	c, _ := NewBinaryValue(CSVR, []byte("XYZ"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestNewEncapsulatedPixelDataValueRejectsOddLength(t *testing.T) {
	_, err := NewEncapsulatedPixelDataValue(OBVR, [][]byte{{}, {0x01, 0x02, 0x03}})
	require.Error(t, err)
}
