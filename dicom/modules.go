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

// ImagePixelModule is the typed view of the Image Pixel Module (PS3.3
// C.7.6.3), extracted via CustomTypeTransform's sibling accessor functions
// rather than the generic struct-tag machinery because several of its
// fields (palette LUTs, pixel aspect ratio) don't fit a flat field set.
type ImagePixelModule struct {
	SamplesPerPixel           uint16
	PhotometricInterpretation string
	Rows                      uint16
	Columns                   uint16
	BitsAllocated             uint16
	BitsStored                uint16
	HighBit                   uint16
	PixelRepresentation       uint16
	PlanarConfiguration       uint16

	PixelAspectRatio       []int64
	SmallestImagePixelValue *int64
	LargestImagePixelValue  *int64
	ICCProfile              []byte
	ColorSpace              string

	Palette *PaletteColorLookupTableModule
}

// ExtractImagePixelModule reads the Image Pixel Module from ds, validating
// the invariants spec.md §6 requires: 0 < bitsStored <= bitsAllocated, and
// highBit = bitsStored - 1.
func ExtractImagePixelModule(ds *DataSet) (*ImagePixelModule, error) {
	m := &ImagePixelModule{}

	var err error
	if m.SamplesPerPixel, err = requireUint16(ds, TagSamplesPerPixel); err != nil {
		return nil, err
	}
	if m.PhotometricInterpretation, err = requireString(ds, TagPhotometricInterpretation); err != nil {
		return nil, err
	}
	if m.Rows, err = requireUint16(ds, TagRows); err != nil {
		return nil, err
	}
	if m.Columns, err = requireUint16(ds, TagColumns); err != nil {
		return nil, err
	}
	if m.BitsAllocated, err = requireUint16(ds, TagBitsAllocated); err != nil {
		return nil, err
	}
	if m.BitsStored, err = requireUint16(ds, TagBitsStored); err != nil {
		return nil, err
	}
	if m.HighBit, err = requireUint16(ds, TagHighBit); err != nil {
		return nil, err
	}
	if m.PixelRepresentation, err = requireUint16(ds, TagPixelRepresentation); err != nil {
		return nil, err
	}
	m.PlanarConfiguration = optionalUint16(ds, TagPlanarConfiguration, 0)

	if v, ok := ds.Get(TagPixelAspectRatio); ok {
		m.PixelAspectRatio, _ = v.Ints()
	}
	if v, ok := ds.Get(TagSmallestImagePixelValue); ok {
		if n, err := v.Int(); err == nil {
			m.SmallestImagePixelValue = &n
		}
	}
	if v, ok := ds.Get(TagLargestImagePixelValue); ok {
		if n, err := v.Int(); err == nil {
			m.LargestImagePixelValue = &n
		}
	}
	if v, ok := ds.Get(TagICCProfile); ok {
		m.ICCProfile = v.Bytes
	}
	if v, ok := ds.Get(TagColorSpace); ok {
		m.ColorSpace, _ = v.String()
	}

	if m.BitsStored == 0 || m.BitsStored > m.BitsAllocated {
		return nil, &DataError{Kind: ValueInvalid, Tag: TagBitsStored, Details: "bitsStored must be in (0, bitsAllocated]"}
	}
	if m.HighBit != m.BitsStored-1 {
		return nil, &DataError{Kind: ValueInvalid, Tag: TagHighBit, Details: "highBit must equal bitsStored-1"}
	}

	if m.PhotometricInterpretation == "PALETTE COLOR" {
		palette, err := ExtractPaletteColorLookupTableModule(ds)
		if err != nil {
			return nil, err
		}
		m.Palette = palette
	}

	return m, nil
}

// InsertImagePixelModule writes m's elements into ds with DataSet.Set,
// replacing any existing values for those tags.
func InsertImagePixelModule(ds *DataSet, m *ImagePixelModule) error {
	set := func(tag Tag, vr *VR, bytes []byte) error {
		v, err := NewBinaryValue(vr, bytes)
		if err != nil {
			return err
		}
		ds.Set(tag, v)
		return nil
	}
	if err := set(TagSamplesPerPixel, USVR, uint16LE(m.SamplesPerPixel)); err != nil {
		return err
	}
	if err := set(TagPhotometricInterpretation, CSVR, padString(m.PhotometricInterpretation, CSVR)); err != nil {
		return err
	}
	if err := set(TagRows, USVR, uint16LE(m.Rows)); err != nil {
		return err
	}
	if err := set(TagColumns, USVR, uint16LE(m.Columns)); err != nil {
		return err
	}
	if err := set(TagBitsAllocated, USVR, uint16LE(m.BitsAllocated)); err != nil {
		return err
	}
	if err := set(TagBitsStored, USVR, uint16LE(m.BitsStored)); err != nil {
		return err
	}
	if err := set(TagHighBit, USVR, uint16LE(m.HighBit)); err != nil {
		return err
	}
	if err := set(TagPixelRepresentation, USVR, uint16LE(m.PixelRepresentation)); err != nil {
		return err
	}
	if m.PlanarConfiguration != 0 {
		if err := set(TagPlanarConfiguration, USVR, uint16LE(m.PlanarConfiguration)); err != nil {
			return err
		}
	}
	return nil
}

// PaletteColorLookupTableModule is the Palette Color Lookup Table Module
// (PS3.3 C.7.6.3.1.5-6): three descriptors and three data arrays, with
// segmented variants resolved to plain per-entry data.
type PaletteColorLookupTableModule struct {
	RedDescriptor, GreenDescriptor, BlueDescriptor LUTDescriptor
	Red, Green, Blue                               []uint16
}

// LUTDescriptor is the 3-field header shared by every palette/LUT sequence
// entry: entry count, first input value, bits per entry.
type LUTDescriptor struct {
	EntryCount   uint16
	FirstInput   int32
	BitsPerEntry uint16
}

// ExtractPaletteColorLookupTableModule reads all three LUT channels,
// expanding segmented LUT data (PS3.3 C.7.6.3.1.6) to flat per-entry arrays.
func ExtractPaletteColorLookupTableModule(ds *DataSet) (*PaletteColorLookupTableModule, error) {
	m := &PaletteColorLookupTableModule{}
	var err error
	if m.RedDescriptor, m.Red, err = extractPaletteChannel(ds, TagRedPaletteColorLUTDescriptor, TagRedPaletteColorLUTData, TagSegmentedRedPaletteColorLUTData); err != nil {
		return nil, err
	}
	if m.GreenDescriptor, m.Green, err = extractPaletteChannel(ds, TagGreenPaletteColorLUTDescriptor, TagGreenPaletteColorLUTData, TagSegmentedGreenPaletteColorLUTData); err != nil {
		return nil, err
	}
	if m.BlueDescriptor, m.Blue, err = extractPaletteChannel(ds, TagBluePaletteColorLUTDescriptor, TagBluePaletteColorLUTData, TagSegmentedBluePaletteColorLUTData); err != nil {
		return nil, err
	}
	return m, nil
}

func extractPaletteChannel(ds *DataSet, descriptorTag, dataTag, segmentedTag Tag) (LUTDescriptor, []uint16, error) {
	descVal, ok := ds.Get(descriptorTag)
	if !ok {
		return LUTDescriptor{}, nil, &DataError{Kind: TagNotPresent, Tag: descriptorTag}
	}
	entries, firstInput, bits, err := descVal.LookupTableDescriptorFields()
	if err != nil {
		return LUTDescriptor{}, nil, err
	}
	descriptor := LUTDescriptor{EntryCount: entries, FirstInput: firstInput, BitsPerEntry: bits}

	if dataVal, ok := ds.Get(dataTag); ok {
		data, err := lutDataToUint16(dataVal)
		if err != nil {
			return descriptor, nil, err
		}
		return descriptor, data, nil
	}
	if segVal, ok := ds.Get(segmentedTag); ok {
		raw, err := lutDataToUint16(segVal)
		if err != nil {
			return descriptor, nil, err
		}
		expanded, err := expandSegmentedLUT(raw)
		if err != nil {
			return descriptor, nil, err
		}
		return descriptor, expanded, nil
	}
	return descriptor, nil, &DataError{Kind: TagNotPresent, Tag: dataTag, Details: "neither plain nor segmented LUT data present"}
}

func lutDataToUint16(v *Value) ([]uint16, error) {
	if v.Kind != KindBinary {
		return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: "lut data must be a binary value"}
	}
	if len(v.Bytes)%2 != 0 {
		return nil, &DataError{Kind: ValueLengthInvalid, VR: v.VR, Length: uint32(len(v.Bytes)), Details: "lut data must have even length"}
	}
	out := make([]uint16, len(v.Bytes)/2)
	for i := range out {
		out[i] = uint16(v.Bytes[i*2]) | uint16(v.Bytes[i*2+1])<<8
	}
	return out, nil
}

// expandSegmentedLUT resolves PS3.3 C.7.6.3.1.6 segment opcodes (discrete,
// linear) into a flat entry array. Indirect segments are not supported.
func expandSegmentedLUT(raw []uint16) ([]uint16, error) {
	out := make([]uint16, 0, len(raw))
	i := 0
	for i < len(raw) {
		if i+2 > len(raw) {
			return nil, &DataError{Kind: ValueInvalid, Details: "truncated segmented lut opcode"}
		}
		opcode, count := raw[i], raw[i+1]
		i += 2
		switch opcode {
		case 0: // discrete
			if i+int(count) > len(raw) {
				return nil, &DataError{Kind: ValueInvalid, Details: "truncated discrete lut segment"}
			}
			out = append(out, raw[i:i+int(count)]...)
			i += int(count)
		case 1: // linear
			if i >= len(raw) {
				return nil, &DataError{Kind: ValueInvalid, Details: "truncated linear lut segment"}
			}
			target := raw[i]
			i++
			var start uint16
			if len(out) > 0 {
				start = out[len(out)-1]
			}
			for n := uint16(0); n < count; n++ {
				frac := float64(n+1) / float64(count)
				out = append(out, uint16(float64(start)+frac*(float64(target)-float64(start))))
			}
		default:
			return nil, &DataError{Kind: ValueInvalid, Details: fmt.Sprintf("unsupported segmented lut opcode %d", opcode)}
		}
	}
	return out, nil
}

// ModalityLutModule is the Modality LUT Module (PS3.3 C.11.1): either a
// linear rescale (slope/intercept) or an explicit lookup table.
type ModalityLutModule struct {
	RescaleSlope     float64
	RescaleIntercept float64
	RescaleType      string

	LUT           []uint16
	LUTDescriptor LUTDescriptor
}

// ExtractModalityLutModule reads the Modality LUT Module, preferring the
// Modality LUT Sequence when present over Rescale Slope/Intercept, per
// PS3.3 C.11.1.1.2.
func ExtractModalityLutModule(ds *DataSet) (*ModalityLutModule, error) {
	m := &ModalityLutModule{RescaleSlope: 1, RescaleIntercept: 0}
	if v, ok := ds.Get(TagModalityLUTSequence); ok && v.Kind == KindSequence && len(v.DataSets) > 0 {
		item := v.DataSets[0]
		descVal, ok := item.Get(TagLUTDescriptor)
		if !ok {
			return nil, &DataError{Kind: TagNotPresent, Tag: TagLUTDescriptor}
		}
		entries, firstInput, bits, err := descVal.LookupTableDescriptorFields()
		if err != nil {
			return nil, err
		}
		m.LUTDescriptor = LUTDescriptor{EntryCount: entries, FirstInput: firstInput, BitsPerEntry: bits}
		dataVal, ok := item.Get(TagLUTData)
		if !ok {
			return nil, &DataError{Kind: TagNotPresent, Tag: TagLUTData}
		}
		lut, err := lutDataToUint16(dataVal)
		if err != nil {
			return nil, err
		}
		m.LUT = lut
		return m, nil
	}
	if v, ok := ds.Get(TagRescaleSlope); ok {
		f, err := v.Floats()
		if err == nil && len(f) == 1 {
			m.RescaleSlope = f[0]
		}
	}
	if v, ok := ds.Get(TagRescaleIntercept); ok {
		f, err := v.Floats()
		if err == nil && len(f) == 1 {
			m.RescaleIntercept = f[0]
		}
	}
	if v, ok := ds.Get(TagRescaleType); ok {
		m.RescaleType, _ = v.String()
	}
	return m, nil
}

// Apply transforms a stored pixel value per the module's pipeline.
func (m *ModalityLutModule) Apply(value int64) float64 {
	if len(m.LUT) > 0 {
		idx := int64(value) - int64(m.LUTDescriptor.FirstInput)
		if idx < 0 {
			idx = 0
		}
		if idx >= int64(len(m.LUT)) {
			idx = int64(len(m.LUT)) - 1
		}
		return float64(m.LUT[idx])
	}
	return m.RescaleSlope*float64(value) + m.RescaleIntercept
}

// VoiLutModule is the VOI LUT Module (PS3.3 C.11.2): either window
// center/width or an explicit lookup table.
type VoiLutModule struct {
	WindowCenter []float64
	WindowWidth  []float64
	Explanation  []string

	LUT           []uint16
	LUTDescriptor LUTDescriptor
}

// ExtractVoiLutModule reads the VOI LUT Module, preferring the VOI LUT
// Sequence over Window Center/Width when both are present.
func ExtractVoiLutModule(ds *DataSet) (*VoiLutModule, error) {
	m := &VoiLutModule{}
	if v, ok := ds.Get(TagVOILUTSequence); ok && v.Kind == KindSequence && len(v.DataSets) > 0 {
		item := v.DataSets[0]
		descVal, ok := item.Get(TagLUTDescriptor)
		if !ok {
			return nil, &DataError{Kind: TagNotPresent, Tag: TagLUTDescriptor}
		}
		entries, firstInput, bits, err := descVal.LookupTableDescriptorFields()
		if err != nil {
			return nil, err
		}
		m.LUTDescriptor = LUTDescriptor{EntryCount: entries, FirstInput: firstInput, BitsPerEntry: bits}
		dataVal, ok := item.Get(TagLUTData)
		if !ok {
			return nil, &DataError{Kind: TagNotPresent, Tag: TagLUTData}
		}
		lut, err := lutDataToUint16(dataVal)
		if err != nil {
			return nil, err
		}
		m.LUT = lut
		return m, nil
	}
	if v, ok := ds.Get(TagWindowCenter); ok {
		m.WindowCenter, _ = v.Floats()
	}
	if v, ok := ds.Get(TagWindowWidth); ok {
		m.WindowWidth, _ = v.Floats()
	}
	if v, ok := ds.Get(TagWindowCenterWidthExplanation); ok {
		m.Explanation, _ = v.Strings()
	}
	return m, nil
}

// Apply maps a modality-unit value to an output value in [0, outputMax]
// using the first window/LUT defined, per PS3.3 C.11.2.1.2.
func (m *VoiLutModule) Apply(value float64, outputMax float64) float64 {
	if len(m.LUT) > 0 {
		idx := int64(value) - int64(m.LUTDescriptor.FirstInput)
		if idx < 0 {
			idx = 0
		}
		if idx >= int64(len(m.LUT)) {
			idx = int64(len(m.LUT)) - 1
		}
		return float64(m.LUT[idx])
	}
	if len(m.WindowCenter) == 0 || len(m.WindowWidth) == 0 || m.WindowWidth[0] <= 0 {
		return value
	}
	center, width := m.WindowCenter[0], m.WindowWidth[0]
	lower, upper := center-width/2, center+width/2
	switch {
	case value <= lower:
		return 0
	case value >= upper:
		return outputMax
	default:
		return (value - lower) / (upper - lower) * outputMax
	}
}

// OverlayPlane is one overlay of the Overlay Plane Module (PS3.3 C.9.2),
// keyed by its repeating group index 0-15.
type OverlayPlane struct {
	Group                uint16
	Rows, Columns        uint16
	Type, Subtype        string
	OriginRow, OriginCol int16
	Label, Description   string
	ROIArea              *int64
	ROIMean, ROIStdDev   *float64
	FrameOrigin          int64
	FramesInOverlay      int64
	Data                 []byte
}

// OverlayPlaneModule holds up to 16 overlays (PS3.3 C.9.2).
type OverlayPlaneModule struct {
	Overlays []OverlayPlane
}

// ExtractOverlayPlaneModule scans all 16 repeating overlay groups, skipping
// any group with no Overlay Rows element present.
func ExtractOverlayPlaneModule(ds *DataSet) (*OverlayPlaneModule, error) {
	m := &OverlayPlaneModule{}
	for i := 0; i < 16; i++ {
		group := uint16(0x6000 + 2*i)
		rowsTag := NewTag(group, overlayElementRows)
		if _, ok := ds.Get(rowsTag); !ok {
			continue
		}
		o := OverlayPlane{Group: group}
		var err error
		if o.Rows, err = requireUint16(ds, rowsTag); err != nil {
			return nil, err
		}
		if o.Columns, err = requireUint16(ds, NewTag(group, overlayElementColumns)); err != nil {
			return nil, err
		}
		if o.Type, err = requireString(ds, NewTag(group, overlayElementType)); err != nil {
			return nil, err
		}
		if v, ok := ds.Get(NewTag(group, overlayElementSubtype)); ok {
			o.Subtype, _ = v.String()
		}
		if v, ok := ds.Get(NewTag(group, overlayElementOrigin)); ok {
			ints, err := v.Ints()
			if err == nil && len(ints) == 2 {
				o.OriginRow, o.OriginCol = int16(ints[0]), int16(ints[1])
			}
		}
		if v, ok := ds.Get(NewTag(group, overlayElementLabel)); ok {
			o.Label, _ = v.String()
		}
		if v, ok := ds.Get(NewTag(group, overlayElementDescription)); ok {
			o.Description, _ = v.String()
		}
		if v, ok := ds.Get(NewTag(group, overlayElementROIArea)); ok {
			if n, err := v.Int(); err == nil {
				o.ROIArea = &n
			}
		}
		if v, ok := ds.Get(NewTag(group, overlayElementROIMean)); ok {
			if f, err := v.Floats(); err == nil && len(f) == 1 {
				o.ROIMean = &f[0]
			}
		}
		if v, ok := ds.Get(NewTag(group, overlayElementROIStandardDeviation)); ok {
			if f, err := v.Floats(); err == nil && len(f) == 1 {
				o.ROIStdDev = &f[0]
			}
		}
		if v, ok := ds.Get(NewTag(group, overlayElementFrameOrigin)); ok {
			if n, err := v.Int(); err == nil {
				o.FrameOrigin = n
			}
		}
		if v, ok := ds.Get(NewTag(group, overlayElementNumberOfFramesInOverlay)); ok {
			if n, err := v.Int(); err == nil {
				o.FramesInOverlay = n
			}
		}
		dataVal, ok := ds.Get(NewTag(group, overlayElementData))
		if !ok {
			return nil, &DataError{Kind: TagNotPresent, Tag: NewTag(group, overlayElementData)}
		}
		o.Data = dataVal.Bytes
		m.Overlays = append(m.Overlays, o)
	}
	return m, nil
}

// MultiFrameModule is the Multi-frame Module (PS3.3 C.7.6.6): the number
// of frames and the Frame Increment Pointer, plus the Cine Module's
// frame-rate fields. Trimmed frame ranges are not read.
type MultiFrameModule struct {
	NumberOfFrames        int64
	FrameIncrementPointer  []Tag
	Cine                  CineModule
}

// CineModule holds the Cine Module's (PS3.3 C.7.6.5) frame-rate fields.
type CineModule struct {
	CineRate       *float64
	FrameTime      *float64
	FrameTimeVector []float64
}

// ExtractMultiFrameModule reads the Multi-frame and Cine modules together,
// since the former's Frame Increment Pointer selects which Cine field is
// authoritative.
func ExtractMultiFrameModule(ds *DataSet) (*MultiFrameModule, error) {
	m := &MultiFrameModule{NumberOfFrames: 1}
	if v, ok := ds.Get(TagNumberOfFrames); ok {
		if n, err := v.Int(); err == nil {
			m.NumberOfFrames = n
		}
	}
	if v, ok := ds.Get(TagFrameIncrementPointer); ok && v.VR == ATVR {
		for i := 0; i+4 <= len(v.Bytes); i += 4 {
			group := uint16(v.Bytes[i]) | uint16(v.Bytes[i+1])<<8
			elem := uint16(v.Bytes[i+2]) | uint16(v.Bytes[i+3])<<8
			m.FrameIncrementPointer = append(m.FrameIncrementPointer, NewTag(group, elem))
		}
	}
	if v, ok := ds.Get(TagCineRate); ok {
		if n, err := v.Int(); err == nil {
			f := float64(n)
			m.Cine.CineRate = &f
		}
	}
	if v, ok := ds.Get(TagFrameTime); ok {
		if f, err := v.Floats(); err == nil && len(f) == 1 {
			m.Cine.FrameTime = &f[0]
		}
	}
	if v, ok := ds.Get(TagFrameTimeVector); ok {
		m.Cine.FrameTimeVector, _ = v.Floats()
	}
	return m, nil
}

// EffectiveFrameRate derives frames-per-second from whichever Cine field is
// populated, preferring CineRate, then a constant FrameTime, then the mean
// of FrameTimeVector.
func (c CineModule) EffectiveFrameRate() (float64, bool) {
	switch {
	case c.CineRate != nil && *c.CineRate > 0:
		return *c.CineRate, true
	case c.FrameTime != nil && *c.FrameTime > 0:
		return 1000.0 / *c.FrameTime, true
	case len(c.FrameTimeVector) > 0:
		var total float64
		for _, t := range c.FrameTimeVector {
			total += t
		}
		mean := total / float64(len(c.FrameTimeVector))
		if mean > 0 {
			return 1000.0 / mean, true
		}
	}
	return 0, false
}

func requireUint16(ds *DataSet, tag Tag) (uint16, error) {
	v, ok := ds.Get(tag)
	if !ok {
		return 0, &DataError{Kind: TagNotPresent, Tag: tag}
	}
	n, err := v.Int()
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

func optionalUint16(ds *DataSet, tag Tag, fallback uint16) uint16 {
	v, ok := ds.Get(tag)
	if !ok {
		return fallback
	}
	n, err := v.Int()
	if err != nil {
		return fallback
	}
	return uint16(n)
}

func requireString(ds *DataSet, tag Tag) (string, error) {
	v, ok := ds.Get(tag)
	if !ok {
		return "", &DataError{Kind: TagNotPresent, Tag: tag}
	}
	return v.String()
}

func uint16LE(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

func padString(s string, vr *VR) []byte {
	if len(s)%2 != 0 {
		s += " "
	}
	return []byte(s)
}
