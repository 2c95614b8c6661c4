// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"encoding/hex"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// UnknownField is substituted for a missing stable field so the fingerprint
// function stays total over partially populated listings.
const UnknownField = "unknown"

// ComputeFingerprint derives the grouping key for a listing from its stable
// identity fields only: organization, breed, age bucket, gender, size.
//
// The function is pure: identical stable fields always yield the same
// 16-character hex digest regardless of source, volatile text, or process
// restarts. Missing fields are treated as the literal "unknown". Returns
// ErrNoStableFields when every stable field is missing; such listings cannot
// be grouped and are treated as unique by the dedup engine.
func ComputeFingerprint(l *Listing) (string, error) {
	fields := []string{l.Organization, l.Breed, l.Age, l.Gender, l.Size}

	populated := false
	for i, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			f = UnknownField
		} else {
			populated = true
		}
		fields[i] = f
	}
	if !populated {
		return "", ErrNoStableFields
	}

	h, _ := blake2b.New(8, nil) // 8 bytes = 16 hex characters
	h.Write([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(h.Sum(nil)), nil
}
