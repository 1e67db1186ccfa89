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

// KeepFunc decides whether the element at path/tag should survive a Filter
// pass. It is called for every element at every level, including elements
// inside sequence items; returning false for a sequence or encapsulated
// pixel data element drops the entire subtree without recursing into it.
type KeepFunc func(path Path, tag Tag, value *Value) bool

// Filter rebuilds ds keeping only the elements (and, recursively, sequence
// items) for which keep returns true. It is one of the Transforms of
// spec.md §4 (C8): a common use is stripping bulk data (Filter(ds, func(_
// Path, tag Tag, _ *Value) bool { return tag != TagPixelData })) before further
// processing or logging.
func Filter(ds *DataSet, keep KeepFunc) *DataSet {
	return filterAt(ds, Path{}, keep)
}

func filterAt(ds *DataSet, path Path, keep KeepFunc) *DataSet {
	out := NewDataSet()
	ds.ForEach(func(tag Tag, v *Value) bool {
		elementPath := path.WithElement(tag)
		if !keep(elementPath, tag, v) {
			return true
		}
		if v.Kind == KindSequence {
			items := make([]*DataSet, len(v.DataSets))
			for i, item := range v.DataSets {
				items[i] = filterAt(item, elementPath.WithItem(i), keep)
			}
			out.Set(tag, NewSequenceValue(items))
			return true
		}
		out.Set(tag, v)
		return true
	})
	return out
}
