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

func TestParseTransferSyntaxArgResolvesAlias(t *testing.T) {
	ts, err := ParseTransferSyntaxArg("rle-lossless")
	require.NoError(t, err)
	assert.Same(t, RLELossless, ts)
}

func TestParseTransferSyntaxArgPassThrough(t *testing.T) {
	ts, err := ParseTransferSyntaxArg("pass-through")
	require.NoError(t, err)
	assert.Nil(t, ts)
}

func TestParseTransferSyntaxArgUnknown(t *testing.T) {
	_, err := ParseTransferSyntaxArg("not-a-real-syntax")
	require.Error(t, err)
}
