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
	"math/big"

	"github.com/google/uuid"
)

// uuidDerivedUIDRoot is the "2.25" arc PS3.5 Annex B.2 reserves for UIDs
// built directly from a UUID, so callers don't need a registered org root
// to mint synthetic UIDs for fixtures or anonymization.
const uuidDerivedUIDRoot = "2.25."

// NewUID generates a synthetic DICOM UID under the 2.25 UUID arc: "2.25."
// followed by the decimal value of a fresh random UUID. Two calls never
// collide in practice, and the result needs no registered organizational
// root -- used by tests and by anonymization workflows that must replace
// identifying UIDs with fresh ones while keeping the file well-formed.
func NewUID() string {
	id := uuid.New()
	n := new(big.Int).SetBytes(id[:])
	return uuidDerivedUIDRoot + n.String()
}
