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
	"fmt"
	"strings"
)

// PathEntryKind distinguishes the two kinds of step a Path may take.
type PathEntryKind int

const (
	// PathElement steps into a data element identified by tag.
	PathElement PathEntryKind = iota
	// PathItem steps into a zero-based sequence or pixel-data item index.
	PathItem
)

// PathEntry is one step of a Path: either Element(tag) or Item(index).
type PathEntry struct {
	Kind  PathEntryKind
	Tag   Tag
	Index int
}

// Path is a sequence of Element/Item steps from the data set root, used for
// error reporting and selective filtering. The zero value is the empty root
// path.
type Path struct {
	entries []PathEntry
}

// WithElement returns a new Path with an additional Element(tag) step.
func (p Path) WithElement(tag Tag) Path {
	return Path{entries: append(append([]PathEntry{}, p.entries...), PathEntry{Kind: PathElement, Tag: tag})}
}

// WithItem returns a new Path with an additional Item(index) step.
func (p Path) WithItem(index int) Path {
	return Path{entries: append(append([]PathEntry{}, p.entries...), PathEntry{Kind: PathItem, Index: index})}
}

// Entries returns the path's steps in root-to-leaf order.
func (p Path) Entries() []PathEntry {
	return p.entries
}

// IsRoot is true for the empty path.
func (p Path) IsRoot() bool {
	return len(p.entries) == 0
}

// String renders the path as e.g. "(0008,1140)[0].(0008,1150)".
func (p Path) String() string {
	var b strings.Builder
	for i, e := range p.entries {
		switch e.Kind {
		case PathElement:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(e.Tag.String())
		case PathItem:
			fmt.Fprintf(&b, "[%d]", e.Index)
		}
	}
	return b.String()
}
