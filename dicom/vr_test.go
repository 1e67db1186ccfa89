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

func TestLookupVRKnownCode(t *testing.T) {
	vr, ok := LookupVR("PN")
	require.True(t, ok)
	assert.Same(t, PNVR, vr)
}

func TestLookupVRUnknownCode(t *testing.T) {
	_, ok := LookupVR("ZZ")
	assert.False(t, ok)
}

func TestVRIsStringClassifiesCorrectly(t *testing.T) {
	assert.True(t, CSVR.IsString())
	assert.True(t, PNVR.IsString())
	assert.True(t, UIVR.IsString())
	assert.False(t, USVR.IsString())
}

func TestVRIsBinaryClassifiesCorrectly(t *testing.T) {
	assert.True(t, USVR.IsBinary())
	assert.True(t, OBVR.IsBinary())
	assert.False(t, CSVR.IsBinary())
}

func TestVRIsEncodedString(t *testing.T) {
	assert.True(t, PNVR.IsEncodedString())
	assert.False(t, CSVR.IsEncodedString())
}

func TestPadLength(t *testing.T) {
	assert.Equal(t, 0, padLength(4))
	assert.Equal(t, 1, padLength(5))
}
