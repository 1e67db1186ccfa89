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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUIDHasExpectedRoot(t *testing.T) {
	uid := NewUID()
	assert.True(t, strings.HasPrefix(uid, "2.25."))
}

func TestNewUIDIsUniquePerCall(t *testing.T) {
	a := NewUID()
	b := NewUID()
	assert.NotEqual(t, a, b)
}

func TestNewUIDWithinMaximumLength(t *testing.T) {
	uid := NewUID()
	assert.LessOrEqual(t, len(uid), 64, "UI VR values must not exceed 64 characters")
}
