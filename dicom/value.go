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
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the four variants of Value's tagged union, per
// spec.md §3.
type ValueKind int

const (
	// KindBinary is the common case: vr + little-endian bytes.
	KindBinary ValueKind = iota
	// KindLookupTableDescriptor is the three 16-bit-field LUT descriptor.
	KindLookupTableDescriptor
	// KindEncapsulatedPixelData is a Basic Offset Table + frame fragments.
	KindEncapsulatedPixelData
	// KindSequence is a nested list of DataSets.
	KindSequence
)

// Value is the polymorphic Data Element value: exactly one of Binary,
// LookupTableDescriptor, EncapsulatedPixelData, or Sequence is populated,
// selected by Kind.
type Value struct {
	Kind ValueKind
	VR   *VR

	// Bytes holds the value for KindBinary and KindLookupTableDescriptor
	// (always little-endian, 6 bytes for the descriptor).
	Bytes []byte

	// Items holds encapsulated pixel-data item fragments for
	// KindEncapsulatedPixelData (first is the Basic Offset Table); DataSets
	// holds the nested data sets for KindSequence.
	Items    [][]byte
	DataSets []*DataSet
}

// NewBinaryValue constructs and validates a Binary value.
func NewBinaryValue(vr *VR, bytes []byte) (*Value, error) {
	if err := validateLength(vr, len(bytes)); err != nil {
		return nil, err
	}
	return &Value{Kind: KindBinary, VR: vr, Bytes: bytes}, nil
}

// NewLookupTableDescriptorValue constructs a LUT descriptor value. vr must
// be SS or US; the middle 16-bit field's signedness follows vr, the first
// and last fields are always unsigned.
func NewLookupTableDescriptorValue(vr *VR, bytes [6]byte) (*Value, error) {
	if vr != SSVR && vr != USVR {
		return nil, &DataError{Kind: ValueInvalid, VR: vr, Details: "lookup table descriptor vr must be SS or US"}
	}
	return &Value{Kind: KindLookupTableDescriptor, VR: vr, Bytes: bytes[:]}, nil
}

// NewEncapsulatedPixelDataValue constructs an encapsulated pixel data value.
// vr must be OB or OW; items[0] is the Basic Offset Table (possibly empty),
// the rest are frame fragments. Every item length must be even and
// <= 2^32-2.
func NewEncapsulatedPixelDataValue(vr *VR, items [][]byte) (*Value, error) {
	if vr != OBVR && vr != OWVR {
		return nil, &DataError{Kind: ValueInvalid, VR: vr, Details: "encapsulated pixel data vr must be OB or OW"}
	}
	for i, item := range items {
		if len(item)%2 != 0 {
			return nil, &DataError{Kind: ValueLengthInvalid, VR: vr, Length: uint32(len(item)), Details: fmt.Sprintf("item %d has odd length", i)}
		}
		if uint64(len(item)) > uint64(UndefinedLength)-1 {
			return nil, &DataError{Kind: ValueLengthInvalid, VR: vr, Length: uint32(len(item)), Details: fmt.Sprintf("item %d exceeds maximum length", i)}
		}
	}
	return &Value{Kind: KindEncapsulatedPixelData, VR: vr, Items: items}, nil
}

// NewSequenceValue constructs a Sequence value from nested data sets.
func NewSequenceValue(items []*DataSet) *Value {
	return &Value{Kind: KindSequence, VR: SQVR, DataSets: items}
}

func validateLength(vr *VR, n int) error {
	if vr == nil {
		return nil
	}
	if vr.MaxLength != 0 && uint32(n) > vr.MaxLength {
		return &DataError{Kind: ValueLengthInvalid, VR: vr, Length: uint32(n), Details: "exceeds maximum value length"}
	}
	if vr.RequiredMultiple > 1 && uint32(n)%vr.RequiredMultiple != 0 {
		return &DataError{Kind: ValueLengthInvalid, VR: vr, Length: uint32(n), Details: fmt.Sprintf("not a multiple of %d", vr.RequiredMultiple)}
	}
	return nil
}

// Strings returns the backslash-delimited string values of a textual Value.
func (v *Value) Strings() ([]string, error) {
	if v.Kind != KindBinary || !v.VR.IsString() {
		return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: "not a string value"}
	}
	if len(v.Bytes) == 0 {
		return nil, nil
	}
	raw := string(v.Bytes)
	parts := strings.Split(raw, "\\")
	for i, p := range parts {
		parts[i] = trimPad(p, v.VR)
	}
	return parts, nil
}

// String returns the sole string value, erroring on multiplicity > 1.
func (v *Value) String() (string, error) {
	parts, err := v.Strings()
	if err != nil {
		return "", err
	}
	if len(parts) != 1 {
		return "", &DataError{Kind: MultiplicityMismatch, VR: v.VR, Details: fmt.Sprintf("want 1 value, got %d", len(parts))}
	}
	return parts[0], nil
}

func trimPad(s string, vr *VR) string {
	switch vr {
	case UTVR, STVR, LTVR:
		return strings.TrimRight(s, " \x00")
	default:
		return strings.Trim(s, " \x00")
	}
}

// Ints returns the binary Value's numeric elements widened to int64, valid
// for SS/US/SL/UL/SV/UV and the IS/DS strings (DS values are truncated
// toward zero). FL/FD return an error; use Floats.
func (v *Value) Ints() ([]int64, error) {
	if v.Kind != KindBinary {
		return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: "not a binary value"}
	}
	switch v.VR {
	case SSVR:
		out := make([]int64, len(v.Bytes)/2)
		for i := range out {
			out[i] = int64(int16(binary.LittleEndian.Uint16(v.Bytes[i*2:])))
		}
		return out, nil
	case USVR:
		out := make([]int64, len(v.Bytes)/2)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint16(v.Bytes[i*2:]))
		}
		return out, nil
	case SLVR:
		out := make([]int64, len(v.Bytes)/4)
		for i := range out {
			out[i] = int64(int32(binary.LittleEndian.Uint32(v.Bytes[i*4:])))
		}
		return out, nil
	case ULVR:
		out := make([]int64, len(v.Bytes)/4)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint32(v.Bytes[i*4:]))
		}
		return out, nil
	case SVVR:
		out := make([]int64, len(v.Bytes)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(v.Bytes[i*8:]))
		}
		return out, nil
	case UVVR:
		out := make([]int64, len(v.Bytes)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(v.Bytes[i*8:]))
		}
		return out, nil
	case ISVR, DSVR:
		strs, err := v.Strings()
		if err != nil {
			return nil, err
		}
		out := make([]int64, len(strs))
		for i, s := range strs {
			n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: err.Error()}
			}
			out[i] = int64(n)
		}
		return out, nil
	default:
		return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: "vr has no integer representation"}
	}
}

// Int returns the sole integer value, erroring on multiplicity > 1.
func (v *Value) Int() (int64, error) {
	ints, err := v.Ints()
	if err != nil {
		return 0, err
	}
	if len(ints) != 1 {
		return 0, &DataError{Kind: MultiplicityMismatch, VR: v.VR, Details: fmt.Sprintf("want 1 value, got %d", len(ints))}
	}
	return ints[0], nil
}

// Floats returns the binary Value's numeric elements widened to float64,
// valid for FL/FD/DS.
func (v *Value) Floats() ([]float64, error) {
	if v.Kind != KindBinary {
		return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: "not a binary value"}
	}
	switch v.VR {
	case FLVR:
		out := make([]float64, len(v.Bytes)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(v.Bytes[i*4:])))
		}
		return out, nil
	case FDVR:
		out := make([]float64, len(v.Bytes)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(v.Bytes[i*8:]))
		}
		return out, nil
	case DSVR:
		strs, err := v.Strings()
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(strs))
		for i, s := range strs {
			n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: err.Error()}
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, &DataError{Kind: ValueInvalid, VR: v.VR, Details: "vr has no float representation"}
	}
}

// LookupTableDescriptorFields returns the three fields of a LUT descriptor:
// entry count (unsigned), first input value (signed per vr), bits per entry
// (unsigned).
func (v *Value) LookupTableDescriptorFields() (entries uint16, firstInput int32, bitsPerEntry uint16, err error) {
	if v.Kind != KindLookupTableDescriptor || len(v.Bytes) != 6 {
		return 0, 0, 0, &DataError{Kind: ValueInvalid, VR: v.VR, Details: "not a lookup table descriptor value"}
	}
	entries = binary.LittleEndian.Uint16(v.Bytes[0:2])
	if v.VR == SSVR {
		firstInput = int32(int16(binary.LittleEndian.Uint16(v.Bytes[2:4])))
	} else {
		firstInput = int32(binary.LittleEndian.Uint16(v.Bytes[2:4]))
	}
	bitsPerEntry = binary.LittleEndian.Uint16(v.Bytes[4:6])
	return entries, firstInput, bitsPerEntry, nil
}

// Equal reports structural equality between two values, used by DataSet
// equality (spec.md §8 round-trip law).
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Kind != other.Kind || v.VR != other.VR {
		return false
	}
	switch v.Kind {
	case KindBinary, KindLookupTableDescriptor:
		return string(v.Bytes) == string(other.Bytes)
	case KindEncapsulatedPixelData:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if string(v.Items[i]) != string(other.Items[i]) {
				return false
			}
		}
		return true
	case KindSequence:
		if len(v.DataSets) != len(other.DataSets) {
			return false
		}
		for i := range v.DataSets {
			if !v.DataSets[i].Equal(other.DataSets[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
