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

import "sync"

// dictionary resolves a Tag's VR when reading Implicit VR Little Endian,
// whose element headers carry no VR of their own. spec.md §1 scopes this
// package to the mechanics of P10 parsing rather than a full generated data
// dictionary (part06 lists several thousand public tags); this seed table
// covers the tags this package's own modules (File Meta Information, Image
// Pixel, LUT, Overlay Plane, Cine) need to interpret correctly, plus
// RegisterVR for callers that need more.
var (
	dictionaryMu sync.RWMutex
	dictionary   = buildDictionary()
)

// RegisterVR adds or overrides the VR a tag resolves to under Implicit VR
// Little Endian. Intended for callers that embed a fuller data dictionary
// than this package ships.
func RegisterVR(tag Tag, vr *VR) {
	dictionaryMu.Lock()
	defer dictionaryMu.Unlock()
	dictionary[tag] = vr
}

// lookupImplicitVR resolves tag's VR for implicit-VR decoding. Private
// creator elements default to LO, group-length elements to UL, and any
// other unrecognized tag to UN -- each a safe, round-trippable default per
// spec.md §4.5.
func lookupImplicitVR(tag Tag) *VR {
	dictionaryMu.RLock()
	vr, ok := dictionary[tag]
	dictionaryMu.RUnlock()
	if ok {
		return vr
	}
	switch {
	case tag.IsGroupLength():
		return ULVR
	case tag.IsPrivateCreator():
		return LOVR
	default:
		return UNVR
	}
}

func buildDictionary() map[Tag]*VR {
	return map[Tag]*VR{
		TagFileMetaInformationGroupLength: ULVR,
		TagTransferSyntaxUID:              UIVR,
		TagImplementationVersionName:      SHVR,
		TagSpecificCharacterSet:           CSVR,

		TagSamplesPerPixel:           USVR,
		TagPhotometricInterpretation: CSVR,
		TagPlanarConfiguration:       USVR,
		TagNumberOfFrames:            ISVR,
		TagRows:                      USVR,
		TagColumns:                   USVR,
		TagPixelAspectRatio:          ISVR,
		TagBitsAllocated:             USVR,
		TagBitsStored:                USVR,
		TagHighBit:                   USVR,
		TagPixelRepresentation:       USVR,
		TagSmallestImagePixelValue:   USVR,
		TagLargestImagePixelValue:    USVR,
		TagPixelData:                 OWVR,
		TagExtendedOffsetTable:        OVVR,
		TagExtendedOffsetTableLengths: OVVR,

		TagRedPaletteColorLUTDescriptor:   USVR,
		TagGreenPaletteColorLUTDescriptor: USVR,
		TagBluePaletteColorLUTDescriptor:  USVR,
		TagRedPaletteColorLUTData:         OWVR,
		TagGreenPaletteColorLUTData:       OWVR,
		TagBluePaletteColorLUTData:        OWVR,
		TagICCProfile:                     OBVR,
		TagColorSpace:                     CSVR,
		TagLossyImageCompression:          CSVR,

		TagWaveformBitsAllocated: USVR,
		TagWaveformBitsStored:    USVR,

		TagCineRate:       ISVR,
		TagFrameTime:       DSVR,
		TagFrameTimeVector: DSVR,
		TagFrameIncrementPointer: ATVR,

		TagRescaleIntercept: DSVR,
		TagRescaleSlope:      DSVR,
		TagRescaleType:       LOVR,

		TagWindowCenter:            DSVR,
		TagWindowWidth:             DSVR,
		TagWindowCenterWidthExplanation: LOVR,

		TagModalityLUTSequence: SQVR,
		TagVOILUTSequence:      SQVR,
		TagLUTDescriptor:       USVR,
		TagLUTExplanation:      LOVR,
		TagLUTData:             OWVR,

		TagSegmentedRedPaletteColorLUTData:   OWVR,
		TagSegmentedGreenPaletteColorLUTData: OWVR,
		TagSegmentedBluePaletteColorLUTData:  OWVR,
	}
}
