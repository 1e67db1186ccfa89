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

// Insert sets tag to value inside the DataSet that scopePath navigates to,
// creating it if necessary. scopePath's Item steps must reference existing
// sequence items (Insert does not grow sequences); its final step, if any,
// must be an Item step -- to set a tag directly in root, pass the zero
// Path.
func Insert(root *DataSet, scopePath Path, tag Tag, value *Value) error {
	target, err := resolveScope(root, scopePath)
	if err != nil {
		return err
	}
	target.Set(tag, value)
	return nil
}

// Remove deletes tag from the DataSet scopePath navigates to.
func Remove(root *DataSet, scopePath Path, tag Tag) error {
	target, err := resolveScope(root, scopePath)
	if err != nil {
		return err
	}
	target.Delete(tag)
	return nil
}

// resolveScope walks scopePath's Element/Item steps, returning the *DataSet
// the path arrives at. An Element step descends into that tag's sole
// sequence item only implicitly through a following Item step; Element
// steps without a following Item step are rejected, since a data element
// itself is not a scope.
func resolveScope(root *DataSet, scopePath Path) (*DataSet, error) {
	current := root
	var pendingTag *Tag
	for _, entry := range scopePath.Entries() {
		switch entry.Kind {
		case PathElement:
			t := entry.Tag
			pendingTag = &t
		case PathItem:
			if pendingTag == nil {
				return nil, &DataInvalidError{When: "resolving scope path", Details: "item step with no preceding element step"}
			}
			v, ok := current.Get(*pendingTag)
			if !ok || v.Kind != KindSequence {
				return nil, &DataError{Kind: TagNotPresent, Tag: *pendingTag}
			}
			if entry.Index < 0 || entry.Index >= len(v.DataSets) {
				return nil, &DataInvalidError{When: "resolving scope path", Details: "sequence item index out of range"}
			}
			current = v.DataSets[entry.Index]
			pendingTag = nil
		}
	}
	if pendingTag != nil {
		return nil, &DataInvalidError{When: "resolving scope path", Details: "path ends on an element step, not a scope"}
	}
	return current, nil
}
