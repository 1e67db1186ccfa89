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

// Token is the shared vocabulary that flows between Reader, Writer, Builder
// and the Transforms chain (spec.md §4.1). A P10 stream lowers to, and a P10
// stream is produced from, a sequence of Tokens; nothing else crosses the
// boundary between those components.
//
// Token is a closed set: the isToken method exists only to prevent other
// packages from adding variants the rest of this package does not expect.
type Token interface {
	isToken()
}

// FilePreambleAndDICMPrefixToken is always the first token of a stream that
// includes the 128 byte preamble and "DICM" magic.
type FilePreambleAndDICMPrefixToken struct {
	Preamble [128]byte
}

func (FilePreambleAndDICMPrefixToken) isToken() {}

// FileMetaInformationToken carries the fully decoded File Meta Information
// group as a DataSet, plus the TransferSyntax it selects for the rest of the
// stream.
type FileMetaInformationToken struct {
	DataSet        *DataSet
	TransferSyntax *TransferSyntax
}

func (FileMetaInformationToken) isToken() {}

// DataElementHeaderToken announces an upcoming data element: its tag, VR,
// and declared value length. Sequences and encapsulated pixel data are
// opened by SequenceStartToken instead.
type DataElementHeaderToken struct {
	Tag    Tag
	VR     *VR
	Length uint32
	Path   Path
}

func (DataElementHeaderToken) isToken() {}

// DataElementValueBytesToken carries a chunk of a data element's value. A
// single element's value may be split across multiple tokens so that no
// single token need hold more than MaxTokenSize bytes; Final marks the last
// chunk.
type DataElementValueBytesToken struct {
	Tag   Tag
	VR    *VR
	Bytes []byte
	Final bool
	Path  Path
}

func (DataElementValueBytesToken) isToken() {}

// SequenceStartToken opens a Sequence (SQ) element. Length is UndefinedLength
// when the sequence is delimited rather than length-prefixed.
type SequenceStartToken struct {
	Tag    Tag
	VR     *VR
	Length uint32
	Path   Path
}

func (SequenceStartToken) isToken() {}

// SequenceDelimiterToken closes the most recently opened sequence.
type SequenceDelimiterToken struct {
	Tag  Tag
	Path Path
}

func (SequenceDelimiterToken) isToken() {}

// SequenceItemStartToken opens one item of a sequence. Fragments of
// encapsulated pixel data are carried by PixelDataItemToken instead.
type SequenceItemStartToken struct {
	Length uint32
	Path   Path
}

func (SequenceItemStartToken) isToken() {}

// SequenceItemDelimiterToken closes the most recently opened sequence item.
type SequenceItemDelimiterToken struct {
	Path Path
}

func (SequenceItemDelimiterToken) isToken() {}

// PixelDataItemToken wraps one item of encapsulated pixel data (the Basic
// Offset Table first, then each fragment) as a single materialized value;
// fragments are never split into DataElementValueBytesTokens.
type PixelDataItemToken struct {
	Bytes []byte
	Path  Path
}

func (PixelDataItemToken) isToken() {}

// EndToken is always the last token of a complete stream.
type EndToken struct{}

func (EndToken) isToken() {}
