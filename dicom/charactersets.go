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

import (
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var defaultCharacterRepertoire = &namedEncoding{charmap.Windows1252, "windows-1252"}

// lookupLabelByTerm maps specific character set defined terms to golang
// charset labels.
// http://dicom.nema.org/medical/dicom/current/output/chtml/part02/sect_D.6.2.html
var lookupLabelByTerm = map[string]string{
	"ISO_IR 100": "iso-ir-100",
	"ISO_IR 101": "iso-ir-101",
	"ISO_IR 109": "iso-ir-109",
	"ISO_IR 110": "iso-ir-110",
	"ISO_IR 144": "iso-ir-144",
	"ISO_IR 127": "iso-ir-127",
	"ISO_IR 126": "iso-ir-126",
	"ISO_IR 138": "iso-ir-138",
	"ISO_IR 148": "iso-ir-148",
	"ISO_IR 13":  "shift-jis",
	"ISO_IR 166": "tis-620",
	"ISO_IR 192": "utf-8",
	"GB18030":    "gb18030",
	"GBK":        "gbk",
	"ISO 2022 IR 6":   "us-ascii",
	"":                "us-ascii", // empty value maps to default character repertoire in DICOM standard
	"ISO 2022 IR 100": "iso-ir-100",
	"ISO 2022 IR 101": "iso-ir-101",
	"ISO 2022 IR 109": "iso-ir-109",
	"ISO 2022 IR 110": "iso-ir-110",
	"ISO 2022 IR 144": "iso-ir-144",
	"ISO 2022 IR 127": "iso-ir-127",
	"ISO 2022 IR 126": "iso-ir-126",
	"ISO 2022 IR 138": "iso-ir-138",
	"ISO 2022 IR 148": "iso-ir-148",
	"ISO 2022 IR 13":  "shift-jis",
	"ISO 2022 IR 166": "tis-620",
	"ISO 2022 IR 87":  "iso-2022-jp",
	"ISO 2022 IR 159": "iso-2022-jp",
	"ISO 2022 IR 149": "euc-kr",
}

type namedEncoding struct {
	encoding.Encoding
	canonicalName string
}

func lookupEncoding(term string) (*namedEncoding, error) {
	label, ok := lookupLabelByTerm[term]
	if !ok {
		return nil, &SpecificCharacterSetInvalidError{When: "looking up defined term", Term: term}
	}

	coding, canonicalName := charset.Lookup(label)
	if coding == nil {
		return nil, &SpecificCharacterSetInvalidError{When: "resolving charset label", Term: term}
	}
	return &namedEncoding{Encoding: coding, canonicalName: canonicalName}, nil
}

// characterSetDecoder decodes textual data elements to UTF-8 for the scope
// (root data set, sequence item) that owns it. The encoding is defined by
// the potentially multi-valued Specific Character Set (0008,0005) element.
// http://dicom.nema.org/medical/dicom/current/output/html/part03.html#sect_C.12.1.1.2
// Person Name (PN) is the only VR that consumes all three slots (alphabetic,
// ideographic, phonetic).
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2.1.2
type characterSetDecoder struct {
	encodings [3]*namedEncoding
}

func defaultCharacterSetDecoder() *characterSetDecoder {
	return &characterSetDecoder{
		encodings: [3]*namedEncoding{
			defaultCharacterRepertoire,
			defaultCharacterRepertoire,
			defaultCharacterRepertoire,
		},
	}
}

// newCharacterSetDecoder builds a decoder from the raw (not yet decoded)
// backslash-separated value of a Specific Character Set element.
func newCharacterSetDecoder(rawValue string) (*characterSetDecoder, error) {
	decoder := defaultCharacterSetDecoder()

	if rawValue == "" {
		return decoder, nil
	}

	terms := strings.Split(rawValue, "\\")
	for i, term := range terms {
		term = strings.TrimSpace(term)
		coding, err := lookupEncoding(term)
		if err != nil {
			return nil, err
		}
		if i >= len(decoder.encodings) {
			break
		}
		decoder.encodings[i] = coding
	}

	if len(terms) == 1 {
		decoder.encodings[1] = decoder.encodings[0]
		decoder.encodings[2] = decoder.encodings[0]
	} else if len(terms) == 2 {
		decoder.encodings[2] = decoder.encodings[1]
	}

	return decoder, nil
}

// decodePersonName decodes each component group (alphabetic=ideographic=phonetic,
// "=" delimited) of a raw PN value using the matching encoding slot.
func (c *characterSetDecoder) decodePersonName(raw string) string {
	groups := strings.Split(raw, "=")
	for i, group := range groups {
		if i >= len(c.encodings) {
			break
		}
		groups[i] = decodeString(group, c.encodings[i])
	}
	return strings.Join(groups, "=")
}

// decodeText decodes a single LO/SH/ST/LT/UC/UT value using the primary
// (alphabetic) encoding slot.
func (c *characterSetDecoder) decodeText(raw string) string {
	return decodeString(raw, c.encodings[0])
}

func decodeString(s string, coding *namedEncoding) string {
	decoded, err := coding.NewDecoder().String(s)
	if err != nil {
		// If decoding fails for some reason fallback to the original bytes
		// instead of failing the whole read.
		return s
	}

	if coding.canonicalName == "euc-kr" {
		// The go charset library does not support the ISO 2022 escape
		// sequence to the GR version of KS X 1001; strip it after decoding
		// as EUC-KR, matching the approach pydicom takes.
		decoded = strings.Replace(decoded, "\x1B\x24\x29\x43", "", -1)
	}

	return decoded
}

// isEncodedStringVR reports whether a VR's bytes are subject to Specific
// Character Set transcoding, mirroring the VR.IsEncodedString contract for
// the small set that has extra per-VR decode behavior (PN's multi-slot
// handling).
func isEncodedStringVR(vr *VR) bool {
	return vr != nil && vr.IsEncodedString()
}
