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
	"fmt"

	"github.com/dcmfx/dcmfx-sub000/dicom"
)

// rleCodec implements RLE Lossless (PS3.5 Annex G) decode/encode: PackBits
// compression of up to 15 byte-position segments, addressed by a 64-byte
// header (segment count + 15 little-endian u32 offsets).
type rleCodec struct{}

func (rleCodec) TransferSyntaxUID() string { return dicom.RLELosslessUID }

func (rleCodec) Decode(fragment []byte, info *PixelInfo) ([]byte, error) {
	if len(fragment) < 64 {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataDecodeError, Details: fmt.Sprintf("RLE fragment too small: %d bytes", len(fragment))}
	}
	numSegments := binary.LittleEndian.Uint32(fragment[0:4])
	if numSegments == 0 || numSegments > 15 {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataDecodeError, Details: fmt.Sprintf("invalid rle segment count %d", numSegments)}
	}
	offsets := make([]uint32, 15)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(fragment[4+i*4 : 8+i*4])
	}

	bytesPerSample := (int(info.BitsAllocated) + 7) / 8
	samplesPerFrame := int(info.Rows) * int(info.Columns) * int(info.SamplesPerPixel)
	output := make([]byte, samplesPerFrame*bytesPerSample)

	for seg := 0; seg < int(numSegments); seg++ {
		start := int(offsets[seg])
		end := len(fragment)
		if seg+1 < int(numSegments) {
			end = int(offsets[seg+1])
		}
		if start < 0 || end > len(fragment) || start > end {
			return nil, &dicom.PixelDataError{Kind: dicom.PixelDataDecodeError, Details: fmt.Sprintf("rle segment %d out of bounds", seg)}
		}
		decoded, err := decodePackBits(fragment[start:end])
		if err != nil {
			return nil, &dicom.PixelDataError{Kind: dicom.PixelDataDecodeError, Details: err.Error()}
		}
		bytePos := seg % bytesPerSample
		for i := 0; i < len(decoded) && i < samplesPerFrame; i++ {
			// RLE segments store the most-significant byte first; the last
			// segment for a sample holds its least-significant byte.
			out := i*bytesPerSample + (bytesPerSample - 1 - bytePos)
			if out < len(output) {
				output[out] = decoded[i]
			}
		}
	}
	return output, nil
}

func (rleCodec) Encode(native []byte, info *PixelInfo) ([]byte, error) {
	bytesPerSample := (int(info.BitsAllocated) + 7) / 8
	samplesPerFrame := int(info.Rows) * int(info.Columns) * int(info.SamplesPerPixel)
	if len(native) != samplesPerFrame*bytesPerSample {
		return nil, &dicom.PixelDataError{Kind: dicom.PixelDataEncodeError, Details: "native buffer length does not match rows*columns*samplesPerPixel*bytesPerSample"}
	}

	segments := make([][]byte, bytesPerSample)
	for bytePos := 0; bytePos < bytesPerSample; bytePos++ {
		plane := make([]byte, samplesPerFrame)
		for i := 0; i < samplesPerFrame; i++ {
			plane[i] = native[i*bytesPerSample+(bytesPerSample-1-bytePos)]
		}
		segments[bytePos] = encodePackBits(plane)
	}

	header := make([]byte, 64)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(segments)))
	offset := uint32(64)
	for i, seg := range segments {
		binary.LittleEndian.PutUint32(header[4+i*4:8+i*4], offset)
		offset += uint32(len(seg))
	}
	out := make([]byte, 0, offset)
	out = append(out, header...)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return out, nil
}

// decodePackBits implements Apple PackBits as used by DICOM RLE (PS3.5
// Annex G): control bytes in [0,127] mean "copy next n+1 literal bytes",
// [129,255] mean "repeat next byte (257-n) times", 128 is a no-op. A lone
// zero byte at the very end is taken as even-length padding and ignored.
func decodePackBits(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	pos := 0
	for pos < len(data) {
		control := int8(data[pos])
		pos++
		switch {
		case control >= 0:
			count := int(control) + 1
			if pos+count > len(data) {
				if control == 0 && pos == len(data) {
					return out, nil
				}
				return nil, fmt.Errorf("literal run extends beyond data")
			}
			out = append(out, data[pos:pos+count]...)
			pos += count
		case control != -128:
			count := 1 - int(control)
			if pos >= len(data) {
				return nil, fmt.Errorf("repeat run missing data byte")
			}
			b := data[pos]
			pos++
			for i := 0; i < count; i++ {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

// encodePackBits compresses data using only literal runs capped at 128
// bytes -- simple, always-valid PackBits output; not run-length optimal,
// but DICOM RLE only requires a conformant encoding, not a minimal one.
func encodePackBits(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/128+1)
	for len(data) > 0 {
		n := len(data)
		if n > 128 {
			n = 128
		}
		out = append(out, byte(n-1))
		out = append(out, data[:n]...)
		data = data[n:]
	}
	return out
}

func init() {
	RegisterDecoder(dicom.RLELosslessUID, rleCodec{})
	RegisterEncoder(dicom.RLELosslessUID, rleCodec{})
}
