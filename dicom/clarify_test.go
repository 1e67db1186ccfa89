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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveImplicitVRPixelDataUndefinedLengthIsOB(t *testing.T) {
	vr := resolveImplicitVR(TagPixelData, UndefinedLength, nil)
	assert.Equal(t, OBVR, vr)
}

func TestResolveImplicitVRPixelDataDefinedLengthIsOW(t *testing.T) {
	vr := resolveImplicitVR(TagPixelData, 100, nil)
	assert.Equal(t, OWVR, vr)
}

func TestResolveImplicitVRSmallestImagePixelValueFollowsPixelRepresentation(t *testing.T) {
	unsigned := resolveImplicitVR(TagSmallestImagePixelValue, 2, &ClarifyingElements{PixelRepresentation: 0})
	assert.Equal(t, USVR, unsigned)

	signed := resolveImplicitVR(TagSmallestImagePixelValue, 2, &ClarifyingElements{PixelRepresentation: 1})
	assert.Equal(t, SSVR, signed)
}

func TestResolveImplicitVRWaveformDataFollowsBitsAllocated(t *testing.T) {
	eightBit := resolveImplicitVR(NewTag(0x5400, 0x1010), 10, &ClarifyingElements{WaveformBitsAllocated: 8})
	assert.Equal(t, OBVR, eightBit)

	sixteenBit := resolveImplicitVR(NewTag(0x5400, 0x1010), 10, &ClarifyingElements{WaveformBitsAllocated: 16})
	assert.Equal(t, OWVR, sixteenBit)
}

func TestIsOverlayDataTagMatchesAnyRepeatingGroup(t *testing.T) {
	assert.True(t, isOverlayDataTag(NewTag(0x6000, 0x3000)))
	assert.True(t, isOverlayDataTag(NewTag(0x601E, 0x3000)))
	assert.False(t, isOverlayDataTag(NewTag(0x6001, 0x3000))) // odd group isn't a repeating overlay group
	assert.False(t, isOverlayDataTag(NewTag(0x6000, 0x3001)))
}

func TestClarifyingElementsObserveBitsAllocated(t *testing.T) {
	c := newClarifyingElements()
	c.observe(TagBitsAllocated, binary.LittleEndian, []byte{0x10, 0x00})
	assert.Equal(t, uint16(16), c.BitsAllocated)
}

func TestClarifyingElementsCopyForItemIsIndependent(t *testing.T) {
	c := newClarifyingElements()
	c.PrivateCreators[NewTag(0x0009, 0x0010)] = "ACME"

	cp := c.copyForItem()
	cp.PrivateCreators[NewTag(0x0009, 0x0011)] = "OTHER"

	assert.Len(t, c.PrivateCreators, 1)
	assert.Len(t, cp.PrivateCreators, 2)
}
