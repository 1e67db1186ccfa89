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

// transferSyntaxArgAliases maps the kebab-case names a CLI caller types to
// the transfer syntax they select. "pass-through" resolves to (nil, nil):
// keep whatever transfer syntax the input already has.
var transferSyntaxArgAliases = map[string]*TransferSyntax{
	"implicit-vr-little-endian":                          ImplicitVRLittleEndian,
	"explicit-vr-little-endian":                           ExplicitVRLittleEndian,
	"explicit-vr-big-endian":                              ExplicitVRBigEndian,
	"encapsulated-uncompressed-explicit-vr-little-endian": EncapsulatedUncompressedExplicitVRLittleEndian,
	"deflated-explicit-vr-little-endian":                  DeflatedExplicitVRLittleEndian,
	"deflated-image-frame-compression":                    DeflatedImageFrameCompression,
	"rle-lossless":                                        RLELossless,
	"jpeg-baseline-8bit":                                  JPEGBaseline,
	"jpeg-extended-12bit":                                 JPEGExtended,
	"jpeg-ls-lossless":                                     JPEGLSLossless,
	"jpeg-ls-lossy-near-lossless":                          JPEGLSLossy,
	"jpeg-2k-lossless-only":                                JPEG2000Lossless,
	"jpeg-2k":                                              JPEG2000,
	"high-throughput-jpeg-2k-lossless-only":                HTJ2KLossless,
	"high-throughput-jpeg-2k":                              HTJ2K,
	"jpeg-xl-lossless":                                      JPEGXLLossless,
	"jpeg-xl-jpeg-recompression":                            JPEGXLJPEGRecompression,
	"jpeg-xl":                                               JPEGXL,
}

// ParseTransferSyntaxArg resolves a CLI-style transfer syntax name (e.g.
// "jpeg-2k-lossless-only") to its *TransferSyntax. "pass-through" is
// special-cased to (nil, nil): the caller should interpret that as "keep
// the source file's own transfer syntax" rather than transcoding.
func ParseTransferSyntaxArg(s string) (*TransferSyntax, error) {
	if s == "pass-through" {
		return nil, nil
	}
	ts, ok := transferSyntaxArgAliases[s]
	if !ok {
		return nil, fmt.Errorf("unrecognized transfer syntax argument: %q", s)
	}
	return ts, nil
}
