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

import "sort"

// DataSet models a DICOM Data Set as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10:
// an ordered mapping from Tag to Value, preserving ascending tag order. Two
// data sets compare equal iff they contain the same tags with equal values
// in the same order.
type DataSet struct {
	order  []Tag
	values map[Tag]*Value
}

// NewDataSet returns an empty DataSet.
func NewDataSet() *DataSet {
	return &DataSet{values: map[Tag]*Value{}}
}

// Set inserts or replaces the value for tag, keeping the tag order list
// ascending.
func (ds *DataSet) Set(tag Tag, value *Value) {
	if _, exists := ds.values[tag]; !exists {
		i := sort.Search(len(ds.order), func(i int) bool { return !ds.order[i].Less(tag) })
		ds.order = append(ds.order, Tag{})
		copy(ds.order[i+1:], ds.order[i:])
		ds.order[i] = tag
	}
	ds.values[tag] = value
}

// Get returns the value for tag, if present.
func (ds *DataSet) Get(tag Tag) (*Value, bool) {
	v, ok := ds.values[tag]
	return v, ok
}

// Delete removes tag from the data set, if present.
func (ds *DataSet) Delete(tag Tag) {
	if _, ok := ds.values[tag]; !ok {
		return
	}
	delete(ds.values, tag)
	for i, t := range ds.order {
		if t == tag {
			ds.order = append(ds.order[:i], ds.order[i+1:]...)
			break
		}
	}
}

// Tags returns the data set's tags in ascending order.
func (ds *DataSet) Tags() []Tag {
	out := make([]Tag, len(ds.order))
	copy(out, ds.order)
	return out
}

// Len returns the number of elements at this level of the data set.
func (ds *DataSet) Len() int {
	return len(ds.order)
}

// ForEach calls fn for every element in ascending tag order, stopping early
// if fn returns false.
func (ds *DataSet) ForEach(fn func(tag Tag, value *Value) bool) {
	for _, tag := range ds.order {
		if !fn(tag, ds.values[tag]) {
			return
		}
	}
}

// Equal reports whether ds and other contain the same tags, in the same
// order, with equal values -- recursively through nested sequences.
func (ds *DataSet) Equal(other *DataSet) bool {
	if ds == nil || other == nil {
		return ds == other
	}
	if len(ds.order) != len(other.order) {
		return false
	}
	for i, tag := range ds.order {
		if other.order[i] != tag {
			return false
		}
		if !ds.values[tag].Equal(other.values[tag]) {
			return false
		}
	}
	return true
}

// ByteSize returns the total encoded byte size of the data set's values,
// recursing into sequences. It does not account for element headers; it is
// intended as a cheap size estimate for allocation and backpressure
// decisions, not a byte-exact wire length.
func (ds *DataSet) ByteSize() int64 {
	var total int64
	ds.ForEach(func(_ Tag, v *Value) bool {
		switch v.Kind {
		case KindBinary, KindLookupTableDescriptor:
			total += int64(len(v.Bytes))
		case KindEncapsulatedPixelData:
			for _, item := range v.Items {
				total += int64(len(item))
			}
		case KindSequence:
			for _, item := range v.DataSets {
				total += item.ByteSize()
			}
		}
		return true
	})
	return total
}

// AtPath walks path's Element steps through nested sequences (each Item step
// selects the sequence item at its index), returning the value at the end of the
// path. This is a convenience for tests and simple selective lookups; full
// per-item traversal should walk Items() directly.
func (ds *DataSet) AtPath(path Path) (*Value, bool) {
	current := ds
	var value *Value
	var ok bool
	for _, entry := range path.Entries() {
		switch entry.Kind {
		case PathElement:
			value, ok = current.Get(entry.Tag)
			if !ok {
				return nil, false
			}
		case PathItem:
			if value == nil || value.Kind != KindSequence || entry.Index >= len(value.DataSets) {
				return nil, false
			}
			current = value.DataSets[entry.Index]
		}
	}
	return value, ok
}
