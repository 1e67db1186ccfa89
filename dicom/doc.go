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

// Package dicom provides functions and data structures for reading, writing,
// and transforming DICOM Part 10 (P10) files.
//
// The package is built around a push-based Token stream. Reader consumes
// raw bytes fed to it in arbitrarily sized chunks via WriteBytes and produces
// a sequence of Tokens via ReadTokens; Writer consumes the same Token
// vocabulary and produces raw bytes. Between the two, a Builder materializes
// Tokens into an in-memory DataSet tree. The Transforms (Filter, Insert,
// Remove, CustomTypeTransform, ToJSON/FromJSON) operate on a materialized
// DataSet; they do not consume the Token stream directly.
//
// Parse and Construct are convenience wrappers for callers who already have
// the entire file in memory and want a DataSet without driving the token
// machine themselves.
package dicom
