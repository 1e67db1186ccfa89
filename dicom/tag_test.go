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
)

func TestTagIsPrivate(t *testing.T) {
	assert.True(t, NewTag(0x0009, 0x0010).IsPrivate())
	assert.False(t, NewTag(0x0008, 0x0010).IsPrivate())
}

func TestTagIsPrivateCreator(t *testing.T) {
	assert.True(t, NewTag(0x0009, 0x0010).IsPrivateCreator())
	assert.False(t, NewTag(0x0009, 0x1000).IsPrivateCreator(), "element outside 0x0010-0x00FF is not a creator slot")
	assert.False(t, NewTag(0x0008, 0x0010).IsPrivateCreator(), "even group is never private")
}

func TestTagIsGroupLength(t *testing.T) {
	assert.True(t, NewTag(0x0008, 0x0000).IsGroupLength())
	assert.False(t, NewTag(0x0008, 0x0010).IsGroupLength())
}

func TestTagIsFileMetaInformation(t *testing.T) {
	assert.True(t, NewTag(0x0002, 0x0010).IsFileMetaInformation())
	assert.False(t, NewTag(0x0008, 0x0010).IsFileMetaInformation())
}

func TestTagOrdering(t *testing.T) {
	a := NewTag(0x0008, 0x0018)
	b := NewTag(0x0010, 0x0010)

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "(0008,0018)", NewTag(0x0008, 0x0018).String())
}
