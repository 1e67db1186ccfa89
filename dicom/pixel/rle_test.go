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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBitsRoundTripLiteralRun(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	encoded := encodePackBits(data)
	decoded, err := decodePackBits(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestPackBitsRoundTripLongRun(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i)
	}
	encoded := encodePackBits(data)
	decoded, err := decodePackBits(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestDecodePackBitsRepeatRun(t *testing.T) {
	// control byte -3 (0xFD) means repeat the next byte 4 times.
	encoded := []byte{0xFD, 0x7A}
	decoded, err := decodePackBits(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x7A, 0x7A, 0x7A, 0x7A}, decoded)
}

func TestRLECodecRoundTripSingleSamplePerPixel(t *testing.T) {
	info := &PixelInfo{Rows: 2, Columns: 2, BitsAllocated: 16, SamplesPerPixel: 1}
	native := []byte{
		0x00, 0x01, // pixel 0: 0x0100
		0x02, 0x03, // pixel 1: 0x0302
		0x04, 0x05, // pixel 2
		0x06, 0x07, // pixel 3
	}

	codec := rleCodec{}
	encoded, err := codec.Encode(native, info)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded, info)
	require.NoError(t, err)
	assert.Equal(t, native, decoded)
}

func TestRLECodecRoundTripMultiSamplePerPixel(t *testing.T) {
	info := &PixelInfo{Rows: 2, Columns: 1, BitsAllocated: 8, SamplesPerPixel: 3}
	native := []byte{
		10, 20, 30, // pixel 0: R, G, B
		40, 50, 60, // pixel 1: R, G, B
	}

	codec := rleCodec{}
	encoded, err := codec.Encode(native, info)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded, info)
	require.NoError(t, err)
	assert.Equal(t, native, decoded)
}

func TestRLECodecEncodeRejectsWrongLength(t *testing.T) {
	info := &PixelInfo{Rows: 2, Columns: 2, BitsAllocated: 16, SamplesPerPixel: 1}
	codec := rleCodec{}
	_, err := codec.Encode([]byte{0x00, 0x01}, info)
	require.Error(t, err)
}

func TestRLECodecDecodeRejectsShortFragment(t *testing.T) {
	info := &PixelInfo{Rows: 2, Columns: 2, BitsAllocated: 16, SamplesPerPixel: 1}
	codec := rleCodec{}
	_, err := codec.Decode([]byte{0x00, 0x01, 0x02}, info)
	require.Error(t, err)
}
