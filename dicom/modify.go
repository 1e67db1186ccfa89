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

// ModifyEdit is one change applied by Modify: either Value is non-nil and
// Tag is set under ScopePath (an Insert), or Value is nil and Tag is
// removed from ScopePath (a Remove).
type ModifyEdit struct {
	ScopePath Path
	Tag       Tag
	Value     *Value
}

// ModifyOptions configures Modify's pipeline stages.
type ModifyOptions struct {
	// Keep, if non-nil, runs as a Filter pass before edits are applied.
	Keep KeepFunc

	// Edits run, in order, after the Keep pass.
	Edits []ModifyEdit
}

// Modify applies an edit pipeline to ds -- an optional Filter pass followed
// by an ordered list of Insert/Remove edits -- returning a new *DataSet.
// This composes the C8 Transform primitives (Filter, Insert, Remove) into
// the single "anonymize/redact/patch a file" operation a caller typically
// wants, rather than requiring each Transform to be driven separately.
func Modify(ds *DataSet, opts ModifyOptions) (*DataSet, error) {
	result := ds
	if opts.Keep != nil {
		result = Filter(result, opts.Keep)
	} else {
		result = Filter(result, func(Path, Tag, *Value) bool { return true })
	}

	for _, edit := range opts.Edits {
		if edit.Value != nil {
			if err := Insert(result, edit.ScopePath, edit.Tag, edit.Value); err != nil {
				return nil, err
			}
		} else {
			if err := Remove(result, edit.ScopePath, edit.Tag); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}
