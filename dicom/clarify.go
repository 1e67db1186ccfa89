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

import "encoding/binary"

// ClarifyingElements is the per-scope state spec.md §4.5 requires a reader
// location to carry: a handful of previously-read elements that change how
// a later dual-VR tag in the same scope must be interpreted under Implicit
// VR Little Endian. It propagates to a nested sequence item by value copy
// on item entry, so an item may override it for its own descendants without
// affecting siblings.
type ClarifyingElements struct {
	SpecificCharacterSet  string
	BitsAllocated         uint16
	PixelRepresentation   uint16
	WaveformBitsStored    uint16
	WaveformBitsAllocated uint16
	PrivateCreators       map[Tag]string
}

func newClarifyingElements() *ClarifyingElements {
	return &ClarifyingElements{PrivateCreators: map[Tag]string{}}
}

// copyForItem returns a value-copy of c suitable for a newly entered
// sequence item, per spec.md §4.5's propagate-by-copy rule.
func (c *ClarifyingElements) copyForItem() *ClarifyingElements {
	if c == nil {
		return newClarifyingElements()
	}
	creators := make(map[Tag]string, len(c.PrivateCreators))
	for k, v := range c.PrivateCreators {
		creators[k] = v
	}
	cp := *c
	cp.PrivateCreators = creators
	return &cp
}

// observe updates c from a just-read element's tag and raw (pre-transcode)
// value bytes, for the small set of tags the VR-inference table in §4.5
// depends on.
func (c *ClarifyingElements) observe(tag Tag, order binary.ByteOrder, raw []byte) {
	switch tag {
	case TagBitsAllocated:
		if len(raw) >= 2 {
			c.BitsAllocated = order.Uint16(raw)
		}
	case TagPixelRepresentation:
		if len(raw) >= 2 {
			c.PixelRepresentation = order.Uint16(raw)
		}
	case TagWaveformBitsStored:
		if len(raw) >= 2 {
			c.WaveformBitsStored = order.Uint16(raw)
		}
	case TagWaveformBitsAllocated:
		if len(raw) >= 2 {
			c.WaveformBitsAllocated = order.Uint16(raw)
		}
	case TagSpecificCharacterSet:
		c.SpecificCharacterSet = string(raw)
	default:
		if tag.IsPrivateCreator() {
			c.PrivateCreators[tag] = string(raw)
		}
	}
}

// resolveImplicitVR resolves tag's VR under Implicit VR Little Endian,
// applying the dual-VR inference table of spec.md §4.5 before falling back
// to the plain dictionary lookup.
func resolveImplicitVR(tag Tag, length uint32, c *ClarifyingElements) *VR {
	switch tag {
	case TagPixelData:
		if length == UndefinedLength {
			return OBVR
		}
		return OWVR
	case TagSmallestImagePixelValue, TagLargestImagePixelValue,
		TagRedPaletteColorLUTDescriptor, TagGreenPaletteColorLUTDescriptor, TagBluePaletteColorLUTDescriptor:
		if c != nil && c.PixelRepresentation == 1 {
			return SSVR
		}
		return USVR
	case TagRedPaletteColorLUTData, TagGreenPaletteColorLUTData, TagBluePaletteColorLUTData:
		return OWVR
	}
	if tag.Group == 0x5400 && (tag.Element == 0x0110 || tag.Element == 0x0112) {
		// Channel Minimum/Maximum Value: 8-bit stored waveform samples use
		// OB, 16-bit use OW.
		if c != nil && c.WaveformBitsStored == 8 {
			return OBVR
		}
		return OWVR
	}
	if tag.Group == 0x5400 && (tag.Element == 0x100A || tag.Element == 0x1010) {
		// Waveform Padding Value / Waveform Data: 8-bit allocated waveform
		// samples use OB, 16-bit use OW.
		if c != nil && c.WaveformBitsAllocated == 8 {
			return OBVR
		}
		return OWVR
	}
	if isOverlayDataTag(tag) {
		return OWVR
	}
	return lookupImplicitVR(tag)
}

// isOverlayDataTag is true for the Overlay Data element (60xx,3000) of any
// repeating overlay group.
func isOverlayDataTag(tag Tag) bool {
	return tag.Group >= 0x6000 && tag.Group <= 0x601E && tag.Group%2 == 0 && tag.Element == 0x3000
}
