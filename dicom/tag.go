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

import "fmt"

// Tag is the unordered pair (group, element) that uniquely identifies a Data
// Element, as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10.
type Tag struct {
	Group   uint16
	Element uint16
}

// NewTag builds a Tag from its group and element numbers.
func NewTag(group, element uint16) Tag {
	return Tag{Group: group, Element: element}
}

// IsPrivate is true for tags with an odd group number.
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// IsPrivateCreator is true for a private creator tag: odd group, element in
// 0x0010-0x00FF.
func (t Tag) IsPrivateCreator() bool {
	return t.IsPrivate() && t.Element >= 0x0010 && t.Element <= 0x00FF
}

// IsGroupLength is true for the group-length element (gggg,0000) of any
// group.
func (t Tag) IsGroupLength() bool {
	return t.Element == 0x0000
}

// IsFileMetaInformation is true for tags in group 0x0002.
func (t Tag) IsFileMetaInformation() bool {
	return t.Group == 0x0002
}

// Less implements the lexicographic (group, element) ordering spec.md §3
// requires of a DataSet.
func (t Tag) Less(other Tag) bool {
	if t.Group != other.Group {
		return t.Group < other.Group
	}
	return t.Element < other.Element
}

// Compare returns -1, 0, or 1 as t is less than, equal to, or greater than
// other, ordered lexicographically on (group, element).
func (t Tag) Compare(other Tag) int {
	switch {
	case t.Less(other):
		return -1
	case other.Less(t):
		return 1
	default:
		return 0
	}
}

// String renders the tag in the standard "(gggg,eeee)" form.
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// packed returns the tag as a uint32 with group in the high 16 bits, used
// for compact map keys and wire-format AT values.
func (t Tag) packed() uint32 {
	return uint32(t.Group)<<16 | uint32(t.Element)
}

func tagFromPacked(v uint32) Tag {
	return Tag{Group: uint16(v >> 16), Element: uint16(v)}
}

// Well-known tags referenced throughout the reader, writer, and pixel
// pipeline.
var (
	TagFileMetaInformationGroupLength = NewTag(0x0002, 0x0000)
	TagTransferSyntaxUID              = NewTag(0x0002, 0x0010)
	TagImplementationVersionName      = NewTag(0x0002, 0x0013)

	TagSpecificCharacterSet = NewTag(0x0008, 0x0005)

	TagItem                       = NewTag(0xFFFE, 0xE000)
	TagItemDelimitationItem       = NewTag(0xFFFE, 0xE00D)
	TagSequenceDelimitationItem   = NewTag(0xFFFE, 0xE0DD)
	TagDataSetTrailingPadding     = NewTag(0xFFFC, 0xFFFC)

	TagPixelData           = NewTag(0x7FE0, 0x0010)
	TagExtendedOffsetTable = NewTag(0x7FE0, 0x0001)
	TagExtendedOffsetTableLengths = NewTag(0x7FE0, 0x0002)

	TagSamplesPerPixel           = NewTag(0x0028, 0x0002)
	TagPhotometricInterpretation = NewTag(0x0028, 0x0004)
	TagPlanarConfiguration       = NewTag(0x0028, 0x0006)
	TagNumberOfFrames            = NewTag(0x0028, 0x0008)
	TagRows                      = NewTag(0x0028, 0x0010)
	TagColumns                   = NewTag(0x0028, 0x0011)
	TagPixelAspectRatio          = NewTag(0x0028, 0x0034)
	TagBitsAllocated             = NewTag(0x0028, 0x0100)
	TagBitsStored                = NewTag(0x0028, 0x0101)
	TagHighBit                   = NewTag(0x0028, 0x0102)
	TagPixelRepresentation       = NewTag(0x0028, 0x0103)
	TagSmallestImagePixelValue   = NewTag(0x0028, 0x0106)
	TagLargestImagePixelValue    = NewTag(0x0028, 0x0107)
	TagRedPaletteColorLUTDescriptor   = NewTag(0x0028, 0x1101)
	TagGreenPaletteColorLUTDescriptor = NewTag(0x0028, 0x1102)
	TagBluePaletteColorLUTDescriptor  = NewTag(0x0028, 0x1103)
	TagRedPaletteColorLUTData    = NewTag(0x0028, 0x1201)
	TagGreenPaletteColorLUTData  = NewTag(0x0028, 0x1202)
	TagBluePaletteColorLUTData   = NewTag(0x0028, 0x1203)
	TagICCProfile                = NewTag(0x0028, 0x2000)
	TagColorSpace                = NewTag(0x0028, 0x2002)
	TagLossyImageCompression     = NewTag(0x0028, 0x2110)

	TagWaveformBitsAllocated = NewTag(0x5400, 0x1004)
	TagWaveformBitsStored    = NewTag(0x5400, 0x1006)

	TagCineRate        = NewTag(0x0018, 0x0040)
	TagFrameTime        = NewTag(0x0018, 0x1063)
	TagFrameTimeVector  = NewTag(0x0018, 0x1065)
	TagFrameIncrementPointer = NewTag(0x0028, 0x0009)

	TagRescaleIntercept = NewTag(0x0028, 0x1052)
	TagRescaleSlope      = NewTag(0x0028, 0x1053)
	TagRescaleType       = NewTag(0x0028, 0x1054)

	TagWindowCenter            = NewTag(0x0028, 0x1050)
	TagWindowWidth             = NewTag(0x0028, 0x1051)
	TagWindowCenterWidthExplanation = NewTag(0x0028, 0x1055)

	TagModalityLUTSequence = NewTag(0x0028, 0x3000)
	TagVOILUTSequence      = NewTag(0x0028, 0x3010)
	TagLUTDescriptor       = NewTag(0x0028, 0x3002)
	TagLUTExplanation      = NewTag(0x0028, 0x3003)
	TagLUTData             = NewTag(0x0028, 0x3006)

	TagSegmentedRedPaletteColorLUTData   = NewTag(0x0028, 0x1221)
	TagSegmentedGreenPaletteColorLUTData = NewTag(0x0028, 0x1222)
	TagSegmentedBluePaletteColorLUTData  = NewTag(0x0028, 0x1223)
)

// Overlay plane element offsets within a repeating group 60xx, per
// overlayTag.
const (
	overlayElementRows                    = 0x0010
	overlayElementColumns                 = 0x0011
	overlayElementType                    = 0x0040
	overlayElementSubtype                 = 0x0045
	overlayElementOrigin                  = 0x0050
	overlayElementBitsAllocated           = 0x0100
	overlayElementBitPosition             = 0x0102
	overlayElementData                    = 0x3000
	overlayElementDescription             = 0x0022
	overlayElementLabel                   = 0x1500
	overlayElementROIArea                 = 0x1301
	overlayElementROIMean                 = 0x1302
	overlayElementROIStandardDeviation    = 0x1303
	overlayElementNumberOfFramesInOverlay = 0x0015
	overlayElementFrameOrigin             = 0x0051
)

// overlayTag builds the tag for element within the repeating overlay group
// 0x6000-0x601E (step 2), index in [0, 16).
func overlayTag(index int, element uint16) Tag {
	return NewTag(uint16(0x6000+2*index), element)
}
