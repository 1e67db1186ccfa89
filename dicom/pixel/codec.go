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
	"sync"

	"github.com/dcmfx/dcmfx-sub000/dicom"
)

// PixelInfo carries the Image Pixel Module fields a codec needs to decode
// or encode one frame's bytes.
type PixelInfo struct {
	Rows, Columns             uint16
	BitsAllocated, BitsStored uint16
	HighBit                   uint16
	PixelRepresentation       uint16
	SamplesPerPixel           uint16
	PhotometricInterpretation string
	PlanarConfiguration       uint16
}

// Decoder decompresses one frame of encapsulated pixel data into native
// bytes. Implementations must be safe for concurrent use (spec.md §5: a
// caller may decode frames of one already-materialized token stream in
// parallel provided the codec is thread-safe).
type Decoder interface {
	Decode(fragment []byte, info *PixelInfo) ([]byte, error)
	TransferSyntaxUID() string
}

// Encoder compresses one frame of native bytes into an encapsulated
// fragment.
type Encoder interface {
	Encode(native []byte, info *PixelInfo) ([]byte, error)
	TransferSyntaxUID() string
}

var (
	registryMu sync.RWMutex
	decoders   = map[string]Decoder{}
	encoders   = map[string]Encoder{}
)

// RegisterDecoder registers decoder for transferSyntaxUID, replacing any
// existing registration.
func RegisterDecoder(transferSyntaxUID string, decoder Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	decoders[transferSyntaxUID] = decoder
}

// RegisterEncoder registers encoder for transferSyntaxUID, replacing any
// existing registration.
func RegisterEncoder(transferSyntaxUID string, encoder Encoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	encoders[transferSyntaxUID] = encoder
}

// GetDecoder returns the registered decoder for transferSyntaxUID.
func GetDecoder(transferSyntaxUID string) (Decoder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := decoders[transferSyntaxUID]
	if !ok {
		return nil, &dicom.TransferSyntaxNotSupportedError{When: "looking up pixel decoder", UID: transferSyntaxUID}
	}
	return d, nil
}

// GetEncoder returns the registered encoder for transferSyntaxUID.
func GetEncoder(transferSyntaxUID string) (Encoder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := encoders[transferSyntaxUID]
	if !ok {
		return nil, &dicom.TransferSyntaxNotSupportedError{When: "looking up pixel encoder", UID: transferSyntaxUID}
	}
	return e, nil
}

// ExpectedNativeSize returns rows*columns*samplesPerPixel*(bitsAllocated/8),
// rounding bitsAllocated up to a whole byte -- the size a decoder's output
// (or an encoder's input) for one frame must match.
func ExpectedNativeSize(info *PixelInfo) int {
	bytesPerSample := (int(info.BitsAllocated) + 7) / 8
	return int(info.Rows) * int(info.Columns) * int(info.SamplesPerPixel) * bytesPerSample
}
