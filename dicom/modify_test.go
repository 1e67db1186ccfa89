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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModifyRemovesFilteredAndAppliesEdits(t *testing.T) {
	ds := NewDataSet()
	patientName, _ := NewBinaryValue(PNVR, []byte("Doe^Jane"))
	rows, _ := NewBinaryValue(USVR, []byte{0x40, 0x00})
	ds.Set(NewTag(0x0010, 0x0010), patientName)
	ds.Set(TagRows, rows)

	replacement, err := NewBinaryValue(PNVR, []byte("Anonymous"))
	require.NoError(t, err)

	got, err := Modify(ds, ModifyOptions{
		Edits: []ModifyEdit{
			{Tag: NewTag(0x0010, 0x0010), Value: replacement},
		},
	})
	require.NoError(t, err)

	v, ok := got.Get(NewTag(0x0010, 0x0010))
	require.True(t, ok)
	s, err := v.String()
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", s)

	_, ok = got.Get(TagRows)
	assert.True(t, ok, "edits not targeting Rows should leave it untouched")
}

func TestModifyKeepFilterDropsTags(t *testing.T) {
	ds := NewDataSet()
	patientName, _ := NewBinaryValue(PNVR, []byte("Doe^Jane"))
	rows, _ := NewBinaryValue(USVR, []byte{0x40, 0x00})
	patientTag := NewTag(0x0010, 0x0010)
	ds.Set(patientTag, patientName)
	ds.Set(TagRows, rows)

	got, err := Modify(ds, ModifyOptions{
		Keep: func(_ Path, tag Tag, _ *Value) bool { return tag != patientTag },
	})
	require.NoError(t, err)

	_, ok := got.Get(patientTag)
	assert.False(t, ok)
	_, ok = got.Get(TagRows)
	assert.True(t, ok)
}

func TestModifyRemoveEdit(t *testing.T) {
	ds := NewDataSet()
	rows, _ := NewBinaryValue(USVR, []byte{0x40, 0x00})
	ds.Set(TagRows, rows)

	got, err := Modify(ds, ModifyOptions{
		Edits: []ModifyEdit{{Tag: TagRows, Value: nil}},
	})
	require.NoError(t, err)

	_, ok := got.Get(TagRows)
	assert.False(t, ok)
}
