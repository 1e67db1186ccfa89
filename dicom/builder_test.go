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

// TestBuilderRewritesSpecificCharacterSetToUTF8 feeds a Latin-1-declared
// element through the builder and confirms both the element's value is
// transcoded to UTF-8 and the SpecificCharacterSet element itself is
// rewritten to declare that, so the materialized data set isn't left
// claiming a character set its own values no longer use.
func TestBuilderRewritesSpecificCharacterSetToUTF8(t *testing.T) {
	b := NewBuilder()

	require.NoError(t, b.AddToken(DataElementHeaderToken{Tag: TagSpecificCharacterSet, VR: CSVR, Length: 10}))
	require.NoError(t, b.AddToken(DataElementValueBytesToken{Tag: TagSpecificCharacterSet, VR: CSVR, Bytes: []byte("ISO_IR 100"), Final: true}))

	comment := NewTag(0x0020, 0x4000)
	latin1 := []byte{0xE9} // 'é' in ISO 8859-1
	require.NoError(t, b.AddToken(DataElementHeaderToken{Tag: comment, VR: LTVR, Length: uint32(len(latin1))}))
	require.NoError(t, b.AddToken(DataElementValueBytesToken{Tag: comment, VR: LTVR, Bytes: latin1, Final: true}))

	require.NoError(t, b.AddToken(EndToken{}))

	ds := b.Result()

	charset, ok := ds.Get(TagSpecificCharacterSet)
	require.True(t, ok)
	got, err := charset.String()
	require.NoError(t, err)
	assert.Equal(t, "ISO_IR 192", got)

	value, ok := ds.Get(comment)
	require.True(t, ok)
	text, err := value.String()
	require.NoError(t, err)
	assert.Equal(t, "é", text)
}
