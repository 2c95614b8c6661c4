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


// Package similarity provides the pairwise similarity primitives used to
// decide whether two listings describe the same animal: normalized edit
// distance for names and descriptions, cosine similarity for image
// embeddings, and a weighted composite of the two.
package similarity

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Text computes a normalized edit-distance similarity between two strings,
// case-insensitive: 1 - levenshtein(a,b)/max(len(a),len(b)).
//
// Two empty strings score 0.0, not 1.0: missing data is no evidence of
// similarity. Identical non-empty strings score 1.0.
func Text(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == "" && b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	dist := levenshtein.ComputeDistance(a, b)
	sim := 1.0 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0.0
	}
	return sim
}

// Image computes the cosine similarity of two image embedding vectors,
// clamped to [0,1]. Vectors of mismatched length are compared over the
// shorter prefix; a zero-magnitude vector scores 0.
//
// Absent vectors are the caller's concern: callers must treat the component
// as unavailable and renormalize weights (see Weights.Composite), never drop
// the pair from consideration.
func Image(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if sim < 0 {
		return 0.0
	}
	if sim > 1 {
		return 1.0
	}
	return sim
}
