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


// Package search ranks cached listings against a user profile.
//
// A query embeds the profile's personality text, pulls an oversized
// candidate pool by vector similarity, removes candidates failing the
// profile's hard constraints, and scores the survivors by blending the
// semantic similarity with a soft-preference attribute score. Preferred
// colors and breeds are free-text user terms; they are normalized into
// each source's vocabulary before being compared against listings.
//
// Every match carries a human-readable explanation plus explicit lists
// of the preferences it satisfies and misses.
//
// Use the Monitor interface to observe intermediate stages of a query.
package search
