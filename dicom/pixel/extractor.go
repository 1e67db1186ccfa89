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
	"encoding/binary"

	"github.com/dcmfx/dcmfx-sub000/dicom"
)

// ExtractFrames splits ds's Pixel Data element into per-frame Frames, per
// spec.md §4.6. It detects encapsulation from the element's Value.Kind
// (KindEncapsulatedPixelData vs KindBinary) rather than from the raw token
// kind, since it operates on an already-materialized DataSet; the frame
// semantics (native sizing, Basic/Extended Offset Table resolution) match
// the token-stream description exactly.
func ExtractFrames(ds *dicom.DataSet) ([]Frame, error) {
	module, err := dicom.ExtractImagePixelModule(ds)
	if err != nil {
		return nil, err
	}
	numberOfFrames := 1
	if v, ok := ds.Get(dicom.TagNumberOfFrames); ok {
		if n, err := v.Int(); err == nil && n > 0 {
			numberOfFrames = int(n)
		}
	}

	pixelData, ok := ds.Get(dicom.TagPixelData)
	if !ok {
		return nil, &dicom.DataError{Kind: dicom.TagNotPresent, Tag: dicom.TagPixelData}
	}

	switch pixelData.Kind {
	case dicom.KindEncapsulatedPixelData:
		return extractEncapsulatedFrames(ds, pixelData, numberOfFrames)
	case dicom.KindBinary:
		return extractNativeFrames(pixelData.Bytes, module, numberOfFrames)
	default:
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataDecodeError, Details: "pixel data value has unexpected kind"}
	}
}

// bitsPerFrame returns N, the bit count of one frame used by native frame
// sizing: rows*columns*samplesPerPixel*bitsAllocated, or
// rows*columns*2*bitsAllocated for YBR_FULL_422 (spec.md §4.6).
func bitsPerFrame(m *dicom.ImagePixelModule) int64 {
	samples := int64(m.SamplesPerPixel)
	if m.PhotometricInterpretation == "YBR_FULL_422" {
		samples = 2
	}
	return int64(m.Rows) * int64(m.Columns) * samples * int64(m.BitsAllocated)
}

func extractNativeFrames(data []byte, m *dicom.ImagePixelModule, numberOfFrames int) ([]Frame, error) {
	n := bitsPerFrame(m)
	total := n * int64(numberOfFrames)
	totalBytes := (total + 7) / 8
	if int64(len(data)) != totalBytes {
		return nil, &dicom.DataError{Kind: dicom.ValueInvalid, Tag: dicom.TagPixelData, Details: "pixel data length does not match rows*columns*samplesPerPixel*bitsAllocated*frames"}
	}

	frames := make([]Frame, 0, numberOfFrames)
	for i := 0; i < numberOfFrames; i++ {
		startBit := int64(i) * n
		endBit := startBit + n
		startByte := startBit / 8
		endByte := (endBit + 7) / 8
		frames = append(frames, Frame{
			Index:        i,
			Chunks:       [][]byte{data[startByte:endByte]},
			BitOffset:    int(startBit % 8),
			LengthInBits: n,
		})
	}
	return frames, nil
}

// extractEncapsulatedFrames resolves frames from encapsulated pixel data,
// whose Items[0] is the Basic Offset Table and whose later items are the
// fragments.
func extractEncapsulatedFrames(ds *dicom.DataSet, v *dicom.Value, numberOfFrames int) ([]Frame, error) {
	if len(v.Items) == 0 {
		return nil, &dicom.DataInvalidError{When: "extracting encapsulated pixel data", Details: "no basic offset table item present"}
	}
	bot := v.Items[0]
	fragments := v.Items[1:]

	if extOffsets, ok := ds.Get(dicom.TagExtendedOffsetTable); ok && len(bot) == 0 {
		extLengths, ok2 := ds.Get(dicom.TagExtendedOffsetTableLengths)
		if !ok2 {
			return nil, &dicom.DataInvalidError{When: "extracting encapsulated pixel data", Details: "extended offset table present without lengths"}
		}
		return extractFramesFromExtendedOffsetTable(fragments, extOffsets.Bytes, extLengths.Bytes)
	}

	if len(bot) == 0 {
		if numberOfFrames <= 1 {
			return []Frame{{Index: 0, Chunks: fragments, LengthInBits: totalLenBits(fragments)}}, nil
		}
		frames := make([]Frame, len(fragments))
		for i, frag := range fragments {
			frames[i] = Frame{Index: i, Chunks: [][]byte{frag}, LengthInBits: int64(len(frag)) * 8}
		}
		return frames, nil
	}

	offsets, err := parseOffsetTable32(bot)
	if err != nil {
		return nil, err
	}
	return extractFramesFromOffsets(fragments, offsets)
}

func totalLenBits(fragments [][]byte) int64 {
	var n int64
	for _, f := range fragments {
		n += int64(len(f)) * 8
	}
	return n
}

func parseOffsetTable32(raw []byte) ([]uint64, error) {
	if len(raw)%4 != 0 {
		return nil, &dicom.DataInvalidError{When: "parsing basic offset table", Details: "length is not a multiple of 4"}
	}
	offsets := make([]uint64, len(raw)/4)
	for i := range offsets {
		offsets[i] = uint64(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return validateOffsets(offsets)
}

func validateOffsets(offsets []uint64) ([]uint64, error) {
	if len(offsets) == 0 {
		return offsets, nil
	}
	if offsets[0] != 0 {
		return nil, &dicom.DataInvalidError{When: "validating offset table", Details: "first offset must be zero"}
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			return nil, &dicom.DataInvalidError{When: "validating offset table", Details: "offsets must be ascending"}
		}
	}
	return offsets, nil
}

// extractFramesFromOffsets resolves frames from the Basic Offset Table,
// where each offset is measured in bytes from the start of the first
// fragment's 8-byte item header (spec.md §4.6).
func extractFramesFromOffsets(fragments [][]byte, offsets []uint64) ([]Frame, error) {
	const itemHeaderSize = 8
	frames := make([]Frame, 0, len(offsets))

	fragOffset := uint64(0) // byte offset (incl. item headers) of the next unconsumed fragment
	fragIndex := 0
	for frameIdx, offset := range offsets {
		if offset != fragOffset {
			return nil, &dicom.DataInvalidError{When: "resolving basic offset table frame", Details: "offset does not align to a fragment boundary"}
		}
		var endOffset uint64
		if frameIdx+1 < len(offsets) {
			endOffset = offsets[frameIdx+1]
		} else {
			for i := fragIndex; i < len(fragments); i++ {
				endOffset += itemHeaderSize + uint64(len(fragments[i]))
			}
			endOffset += fragOffset
		}

		var chunks [][]byte
		for fragOffset < endOffset {
			if fragIndex >= len(fragments) {
				return nil, &dicom.DataInvalidError{When: "resolving basic offset table frame", Details: "offset table references more fragments than present"}
			}
			chunks = append(chunks, fragments[fragIndex])
			fragOffset += itemHeaderSize + uint64(len(fragments[fragIndex]))
			fragIndex++
		}
		if fragOffset != endOffset {
			return nil, &dicom.DataInvalidError{When: "resolving basic offset table frame", Details: "fragment boundary does not match next offset"}
		}
		frames = append(frames, Frame{Index: frameIdx, Chunks: chunks, LengthInBits: totalLenBits(chunks)})
	}
	return frames, nil
}

// extractFramesFromExtendedOffsetTable resolves frames using (7FE0,0001)
// offsets and (7FE0,0002) lengths, each an array of little-endian u64
// (spec.md §4.6).
func extractFramesFromExtendedOffsetTable(fragments [][]byte, offsetBytes, lengthBytes []byte) ([]Frame, error) {
	if len(offsetBytes)%8 != 0 || len(lengthBytes)%8 != 0 {
		return nil, &dicom.DataInvalidError{When: "parsing extended offset table", Details: "length is not a multiple of 8"}
	}
	offsets := make([]uint64, len(offsetBytes)/8)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint64(offsetBytes[i*8:])
	}
	lengths := make([]uint64, len(lengthBytes)/8)
	for i := range lengths {
		lengths[i] = binary.LittleEndian.Uint64(lengthBytes[i*8:])
	}
	if len(offsets) != len(lengths) {
		return nil, &dicom.DataInvalidError{When: "parsing extended offset table", Details: "offsets and lengths arrays have different lengths"}
	}
	if _, err := validateOffsets(offsets); err != nil {
		return nil, err
	}

	const itemHeaderSize = 8
	frames := make([]Frame, 0, len(offsets))
	fragOffset := uint64(0)
	fragIndex := 0
	for frameIdx, offset := range offsets {
		if offset != fragOffset {
			return nil, &dicom.DataInvalidError{When: "resolving extended offset table frame", Details: "offset does not align to a fragment boundary"}
		}
		if fragIndex >= len(fragments) {
			return nil, &dicom.DataInvalidError{When: "resolving extended offset table frame", Details: "offset table references more fragments than present"}
		}
		frag := fragments[fragIndex]
		want := lengths[frameIdx]
		if uint64(len(frag)) < want {
			return nil, &dicom.DataInvalidError{When: "resolving extended offset table frame", Details: "fragment shorter than declared length"}
		}
		trimmed := frag[:want]
		fragOffset += itemHeaderSize + uint64(len(frag))
		fragIndex++
		frames = append(frames, Frame{Index: frameIdx, Chunks: [][]byte{trimmed}, LengthInBits: int64(want) * 8})
	}
	return frames, nil
}
