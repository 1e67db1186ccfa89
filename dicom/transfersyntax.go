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

// list of transfer syntaxes obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
const (
	ImplicitVRLittleEndianUID         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndianUID         = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndianUID            = "1.2.840.10008.1.2.2"
	DeflatedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.99"
	RLELosslessUID                    = "1.2.840.10008.1.2.5"

	JPEGBaselineUID                = "1.2.840.10008.1.2.4.50"
	JPEGExtendedUID                = "1.2.840.10008.1.2.4.51"
	JPEGLosslessNonHierarchicalUID = "1.2.840.10008.1.2.4.57"
	JPEGLosslessSV1UID             = "1.2.840.10008.1.2.4.70"
	JPEGLSLosslessUID              = "1.2.840.10008.1.2.4.80"
	JPEGLSLossyUID                 = "1.2.840.10008.1.2.4.81"
	JPEG2000LosslessUID            = "1.2.840.10008.1.2.4.90"
	JPEG2000UID                    = "1.2.840.10008.1.2.4.91"
	JPEG2000MultiComponentLosslessUID = "1.2.840.10008.1.2.4.92"
	JPEG2000MultiComponentUID      = "1.2.840.10008.1.2.4.93"
	HTJ2KLosslessUID               = "1.2.840.10008.1.2.4.201"
	HTJ2KLosslessRPCLUID           = "1.2.840.10008.1.2.4.202"
	HTJ2KUID                       = "1.2.840.10008.1.2.4.203"

	JPEGXLLosslessUID          = "1.2.840.10008.1.2.4.110"
	JPEGXLJPEGRecompressionUID = "1.2.840.10008.1.2.4.111"
	JPEGXLUID                  = "1.2.840.10008.1.2.4.112"

	MPEG2MainProfileUID       = "1.2.840.10008.1.2.4.100"
	MPEG4AVCH264HighProfileUID = "1.2.840.10008.1.2.4.102"

	EncapsulatedUncompressedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.98"
	DeflatedImageFrameCompressionUID                  = "1.2.840.10008.1.2.8.1"
)

// TransferSyntax is the static record backing a DICOM transfer syntax: UID,
// endianness, VR serialization, encapsulation, and deflate properties, as
// specified in spec.md §3. Instances are pointer-comparable members of the
// global registry.
type TransferSyntax struct {
	UID string

	// Name is a short human-readable label. ParseTransferSyntaxArg's aliases
	// are separate kebab-case keys and do not use it.
	Name string

	ByteOrder    binary.ByteOrder
	Implicit     bool
	Deflated     bool
	Encapsulated bool

	// LossyAdjustable is true when the encoded bitstream may declare its own
	// lossy compression ratio/method (JPEG-family lossy syntaxes).
	LossyAdjustable bool
}

func (ts *TransferSyntax) byteOrder() binary.ByteOrder {
	if ts.ByteOrder == nil {
		return binary.LittleEndian
	}
	return ts.ByteOrder
}

var (
	ImplicitVRLittleEndian         = &TransferSyntax{UID: ImplicitVRLittleEndianUID, Name: "Implicit VR Little Endian", ByteOrder: binary.LittleEndian, Implicit: true}
	ExplicitVRLittleEndian         = &TransferSyntax{UID: ExplicitVRLittleEndianUID, Name: "Explicit VR Little Endian", ByteOrder: binary.LittleEndian}
	ExplicitVRBigEndian            = &TransferSyntax{UID: ExplicitVRBigEndianUID, Name: "Explicit VR Big Endian", ByteOrder: binary.BigEndian}
	DeflatedExplicitVRLittleEndian = &TransferSyntax{UID: DeflatedExplicitVRLittleEndianUID, Name: "Deflated Explicit VR Little Endian", ByteOrder: binary.LittleEndian, Deflated: true}
	RLELossless                    = &TransferSyntax{UID: RLELosslessUID, Name: "RLE Lossless", ByteOrder: binary.LittleEndian, Encapsulated: true}

	JPEGBaseline                   = &TransferSyntax{UID: JPEGBaselineUID, Name: "JPEG Baseline 8-bit", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}
	JPEGExtended                   = &TransferSyntax{UID: JPEGExtendedUID, Name: "JPEG Extended 12-bit", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}
	JPEGLosslessNonHierarchical    = &TransferSyntax{UID: JPEGLosslessNonHierarchicalUID, Name: "JPEG Lossless Non-Hierarchical", ByteOrder: binary.LittleEndian, Encapsulated: true}
	JPEGLosslessSV1                = &TransferSyntax{UID: JPEGLosslessSV1UID, Name: "JPEG Lossless", ByteOrder: binary.LittleEndian, Encapsulated: true}
	JPEGLSLossless                 = &TransferSyntax{UID: JPEGLSLosslessUID, Name: "JPEG-LS Lossless", ByteOrder: binary.LittleEndian, Encapsulated: true}
	JPEGLSLossy                    = &TransferSyntax{UID: JPEGLSLossyUID, Name: "JPEG-LS Lossy", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}
	JPEG2000Lossless               = &TransferSyntax{UID: JPEG2000LosslessUID, Name: "JPEG 2000 Lossless", ByteOrder: binary.LittleEndian, Encapsulated: true}
	JPEG2000                       = &TransferSyntax{UID: JPEG2000UID, Name: "JPEG 2000", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}
	JPEG2000MultiComponentLossless = &TransferSyntax{UID: JPEG2000MultiComponentLosslessUID, Name: "JPEG 2000 Multi-Component Lossless", ByteOrder: binary.LittleEndian, Encapsulated: true}
	JPEG2000MultiComponent         = &TransferSyntax{UID: JPEG2000MultiComponentUID, Name: "JPEG 2000 Multi-Component", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}
	HTJ2KLossless                  = &TransferSyntax{UID: HTJ2KLosslessUID, Name: "High-Throughput JPEG 2000 Lossless", ByteOrder: binary.LittleEndian, Encapsulated: true}
	HTJ2KLosslessRPCL              = &TransferSyntax{UID: HTJ2KLosslessRPCLUID, Name: "High-Throughput JPEG 2000 Lossless RPCL", ByteOrder: binary.LittleEndian, Encapsulated: true}
	HTJ2K                          = &TransferSyntax{UID: HTJ2KUID, Name: "High-Throughput JPEG 2000", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}

	JPEGXLLossless          = &TransferSyntax{UID: JPEGXLLosslessUID, Name: "JPEG XL Lossless", ByteOrder: binary.LittleEndian, Encapsulated: true}
	JPEGXL                  = &TransferSyntax{UID: JPEGXLUID, Name: "JPEG XL", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}
	JPEGXLJPEGRecompression = &TransferSyntax{UID: JPEGXLJPEGRecompressionUID, Name: "JPEG XL JPEG Recompression", ByteOrder: binary.LittleEndian, Encapsulated: true}

	MPEG2MainProfile        = &TransferSyntax{UID: MPEG2MainProfileUID, Name: "MPEG2 Main Profile", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}
	MPEG4AVCH264HighProfile = &TransferSyntax{UID: MPEG4AVCH264HighProfileUID, Name: "MPEG-4 AVC/H.264 High Profile", ByteOrder: binary.LittleEndian, Encapsulated: true, LossyAdjustable: true}

	EncapsulatedUncompressedExplicitVRLittleEndian = &TransferSyntax{UID: EncapsulatedUncompressedExplicitVRLittleEndianUID, Name: "Encapsulated Uncompressed Explicit VR Little Endian", ByteOrder: binary.LittleEndian, Encapsulated: true}
	DeflatedImageFrameCompression                  = &TransferSyntax{UID: DeflatedImageFrameCompressionUID, Name: "Deflated Image Frame Compression", ByteOrder: binary.LittleEndian, Deflated: true, Encapsulated: true}
)

var transferSyntaxRegistry = buildTransferSyntaxRegistry()

func buildTransferSyntaxRegistry() map[string]*TransferSyntax {
	all := []*TransferSyntax{
		ImplicitVRLittleEndian, ExplicitVRLittleEndian, ExplicitVRBigEndian,
		DeflatedExplicitVRLittleEndian, RLELossless,
		JPEGBaseline, JPEGExtended, JPEGLosslessNonHierarchical, JPEGLosslessSV1,
		JPEGLSLossless, JPEGLSLossy,
		JPEG2000Lossless, JPEG2000, JPEG2000MultiComponentLossless, JPEG2000MultiComponent,
		HTJ2KLossless, HTJ2KLosslessRPCL, HTJ2K,
		JPEGXLLossless, JPEGXL, JPEGXLJPEGRecompression,
		MPEG2MainProfile, MPEG4AVCH264HighProfile,
		EncapsulatedUncompressedExplicitVRLittleEndian, DeflatedImageFrameCompression,
	}
	reg := make(map[string]*TransferSyntax, len(all))
	for _, ts := range all {
		reg[ts.UID] = ts
	}
	return reg
}

// LookupTransferSyntax resolves a UID against the global registry. ok is
// false for unknown UIDs; callers (typically the reader) turn that into a
// TransferSyntaxNotSupported error.
func LookupTransferSyntax(uid string) (ts *TransferSyntax, ok bool) {
	ts, ok = transferSyntaxRegistry[uid]
	return ts, ok
}
