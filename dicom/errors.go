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

import "fmt"

// DataRequiredError is returned by Reader.ReadTokens when the byte stream
// does not yet hold enough bytes to make progress; the caller should call
// WriteBytes with more data and try again.
type DataRequiredError struct {
	When string
}

func (e *DataRequiredError) Error() string {
	return fmt.Sprintf("data required: %s", e.When)
}

// DataEndedUnexpectedlyError is returned when the byte stream was marked
// final but ended in the middle of an element, sequence, or item.
type DataEndedUnexpectedlyError struct {
	When   string
	Path   Path
	Offset int64
}

func (e *DataEndedUnexpectedlyError) Error() string {
	return fmt.Sprintf("data ended unexpectedly: %s (path %v, offset %d)", e.When, e.Path, e.Offset)
}

// DataInvalidError reports a structural violation: bad VR, non-ascending tag
// order, an item tag outside a sequence, a File Meta Information element
// seen in the main data set, a malformed offset table, and similar.
type DataInvalidError struct {
	When   string
	Path   Path
	Offset int64
	Details string
}

func (e *DataInvalidError) Error() string {
	msg := fmt.Sprintf("data invalid: %s (path %v, offset %d)", e.When, e.Path, e.Offset)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// MaximumExceededError reports that a configured bound (token size, string
// size, or sequence depth) was exceeded.
type MaximumExceededError struct {
	When   string
	Path   Path
	Limit  int64
	Actual int64
}

func (e *MaximumExceededError) Error() string {
	return fmt.Sprintf("maximum exceeded: %s (limit %d, actual %d, path %v)", e.When, e.Limit, e.Actual, e.Path)
}

// TransferSyntaxNotSupportedError reports an unknown transfer syntax UID in
// File Meta Information.
type TransferSyntaxNotSupportedError struct {
	When string
	UID  string
}

func (e *TransferSyntaxNotSupportedError) Error() string {
	return fmt.Sprintf("transfer syntax not supported: %s (uid %q)", e.When, e.UID)
}

// DicmPrefixNotPresentError reports that the 128 byte preamble was not
// followed by the "DICM" magic and the reader configuration requires it.
type DicmPrefixNotPresentError struct {
	When string
}

func (e *DicmPrefixNotPresentError) Error() string {
	return fmt.Sprintf("DICM prefix not present: %s", e.When)
}

// SpecificCharacterSetInvalidError reports an unrecognized Specific
// Character Set defined term.
type SpecificCharacterSetInvalidError struct {
	When string
	Term string
}

func (e *SpecificCharacterSetInvalidError) Error() string {
	return fmt.Sprintf("specific character set invalid: %s (term %q)", e.When, e.Term)
}

// FileError reports an I/O failure outside the token machine itself (file
// open, read, write).
type FileError struct {
	When    string
	Details string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.When, e.Details)
}

// WriteAfterCompletionError reports a call to Reader.WriteBytes after a
// final chunk has already been written, or a Writer call after End has been
// written.
type WriteAfterCompletionError struct {
	When string
}

func (e *WriteAfterCompletionError) Error() string {
	return fmt.Sprintf("write after completion: %s", e.When)
}

// TokenStreamInvalidError is raised by Builder and the stream Transforms
// when a token arrives in a position their state machine cannot accept.
type TokenStreamInvalidError struct {
	When  string
	Token Token
}

func (e *TokenStreamInvalidError) Error() string {
	return fmt.Sprintf("token stream invalid: %s (got %T)", e.When, e.Token)
}

// DataErrorKind enumerates the ways a typed value lookup or conversion can
// fail, per spec.md §7's DataError variants.
type DataErrorKind int

const (
	TagNotPresent DataErrorKind = iota
	ValueInvalid
	ValueNotPresent
	MultiplicityMismatch
	ValueLengthInvalid
)

// DataError reports a value-level failure: a missing tag, an invalid value
// for its VR, a wrong value count, or a length that violates the VR's static
// record.
type DataError struct {
	Kind    DataErrorKind
	Tag     Tag
	VR      *VR
	Length  uint32
	Details string
}

func (e *DataError) Error() string {
	switch e.Kind {
	case TagNotPresent:
		return fmt.Sprintf("tag not present: %v", e.Tag)
	case ValueInvalid:
		return fmt.Sprintf("value invalid for %v: %s", e.Tag, e.Details)
	case ValueNotPresent:
		return fmt.Sprintf("value not present: %v", e.Tag)
	case MultiplicityMismatch:
		return fmt.Sprintf("multiplicity mismatch for %v: %s", e.Tag, e.Details)
	case ValueLengthInvalid:
		vrName := ""
		if e.VR != nil {
			vrName = e.VR.Name
		}
		return fmt.Sprintf("value length invalid for %v (vr %s, length %d): %s", e.Tag, vrName, e.Length, e.Details)
	default:
		return fmt.Sprintf("data error: %s", e.Details)
	}
}

// PixelDataErrorKind enumerates pixel-pipeline failure modes.
type PixelDataErrorKind int

const (
	PixelDataDecodeError PixelDataErrorKind = iota
	PixelDataEncodeError
	PixelDataNotSupported
)

// PixelDataError reports a failure decoding, encoding, or otherwise handling
// pixel data or images (C9-C11).
type PixelDataError struct {
	Kind    PixelDataErrorKind
	Details string
}

func (e *PixelDataError) Error() string {
	switch e.Kind {
	case PixelDataDecodeError:
		return fmt.Sprintf("pixel data decode error: %s", e.Details)
	case PixelDataEncodeError:
		return fmt.Sprintf("pixel data encode error: %s", e.Details)
	case PixelDataNotSupported:
		return fmt.Sprintf("not supported: %s", e.Details)
	default:
		return fmt.Sprintf("pixel data error: %s", e.Details)
	}
}
