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

func TestValueByteSwapWidth(t *testing.T) {
	assert.Equal(t, 2, valueByteSwapWidth(USVR))
	assert.Equal(t, 2, valueByteSwapWidth(ATVR))
	assert.Equal(t, 4, valueByteSwapWidth(ULVR))
	assert.Equal(t, 8, valueByteSwapWidth(FDVR))
	assert.Equal(t, 1, valueByteSwapWidth(OBVR))
	assert.Equal(t, 1, valueByteSwapWidth(CSVR))
}

func TestSwapByteOrderReversesEachUnit(t *testing.T) {
	got := swapByteOrder([]byte{0x00, 0x40, 0x01, 0x02}, 2)
	assert.Equal(t, []byte{0x40, 0x00, 0x02, 0x01}, got)
}

func TestSwapByteOrderLeavesSourceUntouched(t *testing.T) {
	src := []byte{0x00, 0x40}
	got := swapByteOrder(src, 2)
	assert.Equal(t, []byte{0x40, 0x00}, got)
	assert.Equal(t, []byte{0x00, 0x40}, src)
}

func TestSwapByteOrderNoopForByteWidth(t *testing.T) {
	src := []byte{0x01, 0x02, 0x03}
	assert.Equal(t, src, swapByteOrder(src, 1))
}
