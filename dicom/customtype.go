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
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// CustomTypeTransform[M] is one of the Transforms of spec.md §4 (C8): it
// maps a *DataSet to and from a plain Go struct M whose fields are tagged
// with the data elements they bind to, e.g.:
//
//	type Patient struct {
//	    Name string   `dicom:"0010,0010"`
//	    ID   string   `dicom:"0010,0020"`
//	    Tags []string `dicom:"0008,0020,multi"`
//	}
//
// Supported field kinds are string, []string, int64 and the sized int
// kinds, float64, and a nested struct or []struct for SQ elements. M is
// only a type parameter so Decode/Encode read naturally at call sites;
// CustomTypeTransform itself carries no state.
type CustomTypeTransform[M any] struct{}

// Decode extracts an M from ds.
func (CustomTypeTransform[M]) Decode(ds *DataSet) (M, error) {
	var m M
	v := reflect.ValueOf(&m).Elem()
	if err := decodeStruct(ds, v); err != nil {
		return m, err
	}
	return m, nil
}

// Encode builds a *DataSet from m.
func (CustomTypeTransform[M]) Encode(m M) (*DataSet, error) {
	ds := NewDataSet()
	v := reflect.ValueOf(m)
	if err := encodeStruct(ds, v); err != nil {
		return nil, err
	}
	return ds, nil
}

type fieldTag struct {
	tag   Tag
	multi bool
}

func parseFieldTag(raw string) (fieldTag, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return fieldTag{}, false
	}
	group, err1 := strconv.ParseUint(strings.TrimSpace(parts[0]), 16, 16)
	element, err2 := strconv.ParseUint(strings.TrimSpace(parts[1]), 16, 16)
	if err1 != nil || err2 != nil {
		return fieldTag{}, false
	}
	ft := fieldTag{tag: NewTag(uint16(group), uint16(element))}
	for _, opt := range parts[2:] {
		if strings.TrimSpace(opt) == "multi" {
			ft.multi = true
		}
	}
	return ft, true
}

func decodeStruct(ds *DataSet, structVal reflect.Value) error {
	t := structVal.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		ft, ok := parseFieldTag(field.Tag.Get("dicom"))
		if !ok {
			continue
		}
		value, present := ds.Get(ft.tag)
		fv := structVal.Field(i)
		if !present {
			continue
		}
		if err := decodeField(value, fv); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func decodeField(value *Value, fv reflect.Value) error {
	switch fv.Kind() {
	case reflect.String:
		s, err := value.String()
		if err != nil {
			return err
		}
		fv.SetString(s)
	case reflect.Slice:
		switch fv.Type().Elem().Kind() {
		case reflect.String:
			strs, err := value.Strings()
			if err != nil {
				return err
			}
			fv.Set(reflect.ValueOf(strs))
		case reflect.Struct:
			if value.Kind != KindSequence {
				return &DataError{Kind: ValueInvalid, Tag: Tag{}, Details: "field expects a sequence"}
			}
			out := reflect.MakeSlice(fv.Type(), len(value.DataSets), len(value.DataSets))
			for i, item := range value.DataSets {
				if err := decodeStruct(item, out.Index(i)); err != nil {
					return err
				}
			}
			fv.Set(out)
		default:
			return fmt.Errorf("unsupported slice element kind %s", fv.Type().Elem().Kind())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := value.Int()
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Float32, reflect.Float64:
		floats, err := value.Floats()
		if err != nil {
			return err
		}
		if len(floats) != 1 {
			return &DataError{Kind: MultiplicityMismatch, Details: "want 1 value"}
		}
		fv.SetFloat(floats[0])
	case reflect.Struct:
		if value.Kind != KindSequence || len(value.DataSets) == 0 {
			return &DataError{Kind: ValueInvalid, Details: "field expects a sequence with at least one item"}
		}
		return decodeStruct(value.DataSets[0], fv)
	default:
		return fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
	return nil
}

func encodeStruct(ds *DataSet, structVal reflect.Value) error {
	t := structVal.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		ft, ok := parseFieldTag(field.Tag.Get("dicom"))
		if !ok {
			continue
		}
		value, err := encodeField(ft, structVal.Field(i))
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		if value != nil {
			ds.Set(ft.tag, value)
		}
	}
	return nil
}

func encodeField(ft fieldTag, fv reflect.Value) (*Value, error) {
	switch fv.Kind() {
	case reflect.String:
		return NewBinaryValue(LOVR, []byte(fv.String()))
	case reflect.Slice:
		switch fv.Type().Elem().Kind() {
		case reflect.String:
			strs := make([]string, fv.Len())
			for i := range strs {
				strs[i] = fv.Index(i).String()
			}
			return NewBinaryValue(LOVR, []byte(strings.Join(strs, "\\")))
		case reflect.Struct:
			items := make([]*DataSet, fv.Len())
			for i := range items {
				items[i] = NewDataSet()
				if err := encodeStruct(items[i], fv.Index(i)); err != nil {
					return nil, err
				}
			}
			return NewSequenceValue(items), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewBinaryValue(ISVR, []byte(strconv.FormatInt(fv.Int(), 10)))
	case reflect.Float32, reflect.Float64:
		return NewBinaryValue(DSVR, []byte(strconv.FormatFloat(fv.Float(), 'g', -1, 64)))
	case reflect.Struct:
		item := NewDataSet()
		if err := encodeStruct(item, fv); err != nil {
			return nil, err
		}
		return NewSequenceValue([]*DataSet{item}), nil
	}
	return nil, fmt.Errorf("unsupported field kind %s", fv.Kind())
}
