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

import "io"

// ConstructOption configures Construct; every ConstructOption is a
// WriterOption, kept as a distinct named type to mirror ParseOption.
type ConstructOption = WriterOption

// Construct serializes fileMeta and ds to w as a complete P10 stream under
// transfer syntax ts, the Writer-driving counterpart of Parse. fileMeta
// should not include (0002,0010) Transfer Syntax UID or (0002,0000) Group
// Length; Construct derives both from ts and the rest of fileMeta.
func Construct(w io.Writer, fileMeta *DataSet, ds *DataSet, ts *TransferSyntax, opts ...ConstructOption) error {
	writer := NewWriter(opts...)

	uidBytes := []byte(ts.UID)
	if len(uidBytes)%2 != 0 {
		uidBytes = append(uidBytes, 0)
	}
	uid, err := NewBinaryValue(UIVR, uidBytes)
	if err != nil {
		return err
	}
	fmi := NewDataSet()
	fileMeta.ForEach(func(tag Tag, v *Value) bool {
		fmi.Set(tag, v)
		return true
	})
	fmi.Set(TagTransferSyntaxUID, uid)

	tokens := []Token{
		FilePreambleAndDICMPrefixToken{},
		FileMetaInformationToken{DataSet: fmi, TransferSyntax: ts},
	}
	tokens = appendDataSetTokens(tokens, ds, Path{})
	tokens = append(tokens, EndToken{})

	for _, tok := range tokens {
		if err := writer.WriteToken(tok); err != nil {
			return err
		}
		if _, ioErr := w.Write(writer.Bytes()); ioErr != nil {
			return &FileError{When: "writing output", Details: ioErr.Error()}
		}
	}
	return nil
}

// appendDataSetTokens lowers ds's elements, in ascending tag order, onto the
// Token vocabulary Writer consumes, recursing into nested sequences and
// encapsulated pixel data.
func appendDataSetTokens(tokens []Token, ds *DataSet, path Path) []Token {
	ds.ForEach(func(tag Tag, v *Value) bool {
		elementPath := path.WithElement(tag)
		switch v.Kind {
		case KindBinary, KindLookupTableDescriptor:
			tokens = append(tokens, DataElementHeaderToken{Tag: tag, VR: v.VR, Length: uint32(len(v.Bytes)), Path: elementPath})
			tokens = append(tokens, splitValueChunks(tag, v.VR, elementPath, v.Bytes, 0)...)
		case KindSequence:
			tokens = append(tokens, SequenceStartToken{Tag: tag, VR: v.VR, Length: UndefinedLength, Path: elementPath})
			for i, item := range v.DataSets {
				itemPath := elementPath.WithItem(i)
				tokens = append(tokens, SequenceItemStartToken{Length: UndefinedLength, Path: itemPath})
				tokens = appendDataSetTokens(tokens, item, itemPath)
				tokens = append(tokens, SequenceItemDelimiterToken{Path: itemPath})
			}
			tokens = append(tokens, SequenceDelimiterToken{Tag: TagSequenceDelimitationItem, Path: elementPath})
		case KindEncapsulatedPixelData:
			tokens = append(tokens, SequenceStartToken{Tag: tag, VR: v.VR, Length: UndefinedLength, Path: elementPath})
			for i, item := range v.Items {
				tokens = append(tokens, PixelDataItemToken{Bytes: item, Path: elementPath.WithItem(i)})
			}
			tokens = append(tokens, SequenceDelimiterToken{Tag: TagSequenceDelimitationItem, Path: elementPath})
		}
		return true
	})
	return tokens
}
