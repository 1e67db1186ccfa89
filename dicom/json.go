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
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxSafeJSONInt is the largest magnitude a JSON number can hold without
// losing precision when decoded by a float64-based parser (2^53-1, per
// spec.md §4.4); integers outside this range are emitted as strings instead.
const maxSafeJSONInt = 1<<53 - 1

// jsonElement is one member of the DICOM JSON model of
// http://dicom.nema.org/medical/dicom/current/output/html/part18.html#sect_F.2.
// Only one of Value or InlineBinary is ever populated, matching the
// standard's mutual exclusivity.
type jsonElement struct {
	VR           string        `json:"vr"`
	Value        []interface{} `json:"Value,omitempty"`
	InlineBinary string        `json:"InlineBinary,omitempty"`
}

// ToJSON renders ds as DICOM JSON (spec.md §4, C8's JSON Transform). encoding/json
// sorts map keys when marshaling a map[string]T, which for fixed-width
// zero-padded hex tag keys happens to coincide with ascending tag order, so
// the emitted object's member order matches ds's own.
func ToJSON(ds *DataSet) ([]byte, error) {
	obj, err := dataSetToJSONMap(ds)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

func dataSetToJSONMap(ds *DataSet) (map[string]*jsonElement, error) {
	obj := map[string]*jsonElement{}
	var outerErr error
	ds.ForEach(func(tag Tag, v *Value) bool {
		if tag.IsGroupLength() || tag == TagSpecificCharacterSet {
			return true
		}
		key := fmt.Sprintf("%04X%04X", tag.Group, tag.Element)
		el, err := valueToJSONElement(v)
		if err != nil {
			outerErr = fmt.Errorf("tag %v: %w", tag, err)
			return false
		}
		obj[key] = el
		return true
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return obj, nil
}

func valueToJSONElement(v *Value) (*jsonElement, error) {
	el := &jsonElement{VR: v.VR.Name}
	switch v.Kind {
	case KindSequence:
		items := make([]interface{}, len(v.DataSets))
		for i, item := range v.DataSets {
			m, err := dataSetToJSONMap(item)
			if err != nil {
				return nil, err
			}
			items[i] = m
		}
		el.Value = items
		return el, nil
	case KindEncapsulatedPixelData:
		// The DICOM JSON model has no native representation for
		// encapsulated (compressed) pixel data fragments; only the last
		// item's bytes are emitted as inline binary, without item headers.
		// The other items, including the Basic Offset Table, are not
		// emitted, so multi-item pixel data does not round-trip.
		if len(v.Items) > 0 {
			el.InlineBinary = base64.StdEncoding.EncodeToString(v.Items[len(v.Items)-1])
		}
		return el, nil
	case KindLookupTableDescriptor:
		entries, firstInput, bits, err := v.LookupTableDescriptorFields()
		if err != nil {
			return nil, err
		}
		el.Value = []interface{}{float64(entries), float64(firstInput), float64(bits)}
		return el, nil
	}

	if v.VR.IsBulkBinary() {
		el.InlineBinary = base64.StdEncoding.EncodeToString(v.Bytes)
		return el, nil
	}

	if v.VR == ATVR {
		el.Value = attributeTagsToJSON(v.Bytes)
		return el, nil
	}

	if v.VR.IsNumberBinary() {
		nums, err := numberBinaryToJSON(v)
		if err != nil {
			return nil, err
		}
		el.Value = nums
		return el, nil
	}

	if v.VR == PNVR {
		strs, err := v.Strings()
		if err != nil {
			return nil, err
		}
		names := make([]interface{}, len(strs))
		for i, s := range strs {
			names[i] = personNameComponentGroups(s)
		}
		el.Value = names
		return el, nil
	}

	strs, err := v.Strings()
	if err != nil {
		return nil, err
	}
	if isNumericStringVR(v.VR) {
		nums := make([]interface{}, len(strs))
		for i, s := range strs {
			n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: err.Error()}
			}
			nums[i] = n
		}
		el.Value = nums
		return el, nil
	}
	vals := make([]interface{}, len(strs))
	for i, s := range strs {
		vals[i] = s
	}
	el.Value = vals
	return el, nil
}

// numberBinaryToJSON renders a fixed-width numeric Value's elements per
// spec.md §4.4: ordinary JSON numbers, except a magnitude beyond
// maxSafeJSONInt or a non-finite float is emitted as a string.
func numberBinaryToJSON(v *Value) ([]interface{}, error) {
	if v.VR == FLVR || v.VR == FDVR {
		floats, err := v.Floats()
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(floats))
		for i, f := range floats {
			switch {
			case math.IsNaN(f):
				out[i] = "NaN"
			case math.IsInf(f, 1):
				out[i] = "Infinity"
			case math.IsInf(f, -1):
				out[i] = "-Infinity"
			default:
				out[i] = f
			}
		}
		return out, nil
	}
	ints, err := v.Ints()
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(ints))
	for i, n := range ints {
		if n > maxSafeJSONInt || n < -maxSafeJSONInt {
			out[i] = strconv.FormatInt(n, 10)
		} else {
			out[i] = n
		}
	}
	return out, nil
}

// attributeTagsToJSON renders an AT value's tag pairs as 8-hex-digit
// strings, per spec.md §4.4. Bytes are always little-endian per Value's
// storage invariant.
func attributeTagsToJSON(data []byte) []interface{} {
	out := make([]interface{}, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		group := binary.LittleEndian.Uint16(data[i : i+2])
		element := binary.LittleEndian.Uint16(data[i+2 : i+4])
		out = append(out, fmt.Sprintf("%04X%04X", group, element))
	}
	return out
}

// personNameComponentGroups splits one PN value into its backslash-free,
// "="-delimited alphabetic\ideographic\phonetic component groups and
// returns the DICOM JSON object form, including only the groups actually
// present.
func personNameComponentGroups(raw string) map[string]string {
	groups := strings.SplitN(raw, "=", 3)
	keys := [3]string{"Alphabetic", "Ideographic", "Phonetic"}
	obj := map[string]string{}
	for i, g := range groups {
		if g != "" {
			obj[keys[i]] = g
		}
	}
	return obj
}

func isNumericStringVR(vr *VR) bool {
	return vr == DSVR || vr == ISVR
}

// attributeTagsFromJSON parses AT values back from their 8-hex-digit string
// form into little-endian group/element byte pairs.
func attributeTagsFromJSON(values []interface{}) ([]byte, error) {
	out := make([]byte, 0, len(values)*4)
	for _, raw := range values {
		s, ok := raw.(string)
		if !ok || len(s) != 8 {
			return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "expected an 8-hex-digit attribute tag string"}
		}
		group, err1 := strconv.ParseUint(s[0:4], 16, 16)
		element, err2 := strconv.ParseUint(s[4:8], 16, 16)
		if err1 != nil || err2 != nil {
			return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "malformed attribute tag " + s}
		}
		var pair [4]byte
		binary.LittleEndian.PutUint16(pair[0:2], uint16(group))
		binary.LittleEndian.PutUint16(pair[2:4], uint16(element))
		out = append(out, pair[:]...)
	}
	return out, nil
}

// numberBinaryFromJSON parses a fixed-width numeric VR's JSON values (plain
// numbers, or the large-magnitude/non-finite string forms of numberBinaryToJSON)
// back into little-endian value bytes.
func numberBinaryFromJSON(vr *VR, values []interface{}) ([]byte, error) {
	toFloat := func(raw interface{}) (float64, error) {
		switch x := raw.(type) {
		case float64:
			return x, nil
		case string:
			switch x {
			case "NaN":
				return math.NaN(), nil
			case "Infinity":
				return math.Inf(1), nil
			case "-Infinity":
				return math.Inf(-1), nil
			default:
				n, err := strconv.ParseFloat(x, 64)
				if err != nil {
					return 0, &DataInvalidError{When: "parsing DICOM JSON", Details: "malformed numeric value " + x}
				}
				return n, nil
			}
		default:
			return 0, &DataInvalidError{When: "parsing DICOM JSON", Details: "expected a numeric value"}
		}
	}

	switch vr {
	case FLVR:
		out := make([]byte, len(values)*4)
		for i, raw := range values {
			f, err := toFloat(raw)
			if err != nil {
				return nil, err
			}
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(f)))
		}
		return out, nil
	case FDVR:
		out := make([]byte, len(values)*8)
		for i, raw := range values {
			f, err := toFloat(raw)
			if err != nil {
				return nil, err
			}
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(f))
		}
		return out, nil
	}

	toInt := func(raw interface{}) (int64, error) {
		switch x := raw.(type) {
		case float64:
			return int64(x), nil
		case string:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return 0, &DataInvalidError{When: "parsing DICOM JSON", Details: "malformed numeric value " + x}
			}
			return n, nil
		default:
			return 0, &DataInvalidError{When: "parsing DICOM JSON", Details: "expected a numeric value"}
		}
	}

	width := valueByteSwapWidth(vr)
	out := make([]byte, len(values)*width)
	for i, raw := range values {
		n, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		switch width {
		case 2:
			binary.LittleEndian.PutUint16(out[i*2:], uint16(n))
		case 4:
			binary.LittleEndian.PutUint32(out[i*4:], uint32(n))
		case 8:
			binary.LittleEndian.PutUint64(out[i*8:], uint64(n))
		}
	}
	return out, nil
}

// personNameFromComponentGroups reassembles one PN value's "="-delimited
// component groups from the DICOM JSON object form, dropping any trailing
// groups that were never present.
func personNameFromComponentGroups(m map[string]interface{}) string {
	var groups [3]string
	var present [3]bool
	if s, ok := m["Alphabetic"].(string); ok {
		groups[0], present[0] = s, true
	}
	if s, ok := m["Ideographic"].(string); ok {
		groups[1], present[1] = s, true
	}
	if s, ok := m["Phonetic"].(string); ok {
		groups[2], present[2] = s, true
	}
	last := -1
	for i := 2; i >= 0; i-- {
		if present[i] {
			last = i
			break
		}
	}
	return strings.Join(groups[:last+1], "=")
}

// FromJSON parses DICOM JSON into a *DataSet, the inverse of ToJSON.
func FromJSON(data []byte) (*DataSet, error) {
	var obj map[string]*jsonElement
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: err.Error()}
	}
	return jsonMapToDataSet(obj)
}

func jsonMapToDataSet(obj map[string]*jsonElement) (*DataSet, error) {
	ds := NewDataSet()
	for key, el := range obj {
		if len(key) != 8 {
			return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "malformed tag key " + key}
		}
		group, err1 := strconv.ParseUint(key[0:4], 16, 16)
		element, err2 := strconv.ParseUint(key[4:8], 16, 16)
		if err1 != nil || err2 != nil {
			return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "malformed tag key " + key}
		}
		tag := NewTag(uint16(group), uint16(element))

		vr, ok := LookupVR(el.VR)
		if !ok {
			return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "unknown vr " + el.VR}
		}

		value, err := jsonElementToValue(vr, el)
		if err != nil {
			return nil, err
		}
		ds.Set(tag, value)
	}
	return ds, nil
}

func jsonElementToValue(vr *VR, el *jsonElement) (*Value, error) {
	if vr == SQVR {
		items := make([]*DataSet, len(el.Value))
		for i, raw := range el.Value {
			m, ok := raw.(map[string]interface{})
			if !ok {
				return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "sequence item is not an object"}
			}
			reencoded, err := json.Marshal(m)
			if err != nil {
				return nil, err
			}
			var nested map[string]*jsonElement
			if err := json.Unmarshal(reencoded, &nested); err != nil {
				return nil, err
			}
			item, err := jsonMapToDataSet(nested)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return NewSequenceValue(items), nil
	}

	if el.InlineBinary != "" {
		raw, err := base64.StdEncoding.DecodeString(el.InlineBinary)
		if err != nil {
			return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: err.Error()}
		}
		return NewBinaryValue(vr, raw)
	}

	if isNumericStringVR(vr) {
		parts := make([]string, len(el.Value))
		for i, raw := range el.Value {
			n, ok := raw.(float64)
			if !ok {
				return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "expected numeric value"}
			}
			parts[i] = strconv.FormatFloat(n, 'g', -1, 64)
		}
		return NewBinaryValue(vr, []byte(strings.Join(parts, "\\")))
	}

	if vr == ATVR {
		raw, err := attributeTagsFromJSON(el.Value)
		if err != nil {
			return nil, err
		}
		return NewBinaryValue(vr, raw)
	}

	if vr.IsNumberBinary() {
		raw, err := numberBinaryFromJSON(vr, el.Value)
		if err != nil {
			return nil, err
		}
		return NewBinaryValue(vr, raw)
	}

	if vr == PNVR {
		parts := make([]string, len(el.Value))
		for i, raw := range el.Value {
			m, ok := raw.(map[string]interface{})
			if !ok {
				return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "person name value is not an object"}
			}
			parts[i] = personNameFromComponentGroups(m)
		}
		return NewBinaryValue(vr, []byte(strings.Join(parts, "\\")))
	}

	if vr.IsBulkBinary() {
		return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "bulk binary vr requires InlineBinary, not a Value array"}
	}

	parts := make([]string, len(el.Value))
	for i, raw := range el.Value {
		s, ok := raw.(string)
		if !ok {
			return nil, &DataInvalidError{When: "parsing DICOM JSON", Details: "expected string value"}
		}
		parts[i] = s
	}
	return NewBinaryValue(vr, []byte(strings.Join(parts, "\\")))
}
