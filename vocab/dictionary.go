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


package vocab

import (
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/adoptmatch/core"
	"gopkg.in/yaml.v3"
)

// Dictionary maps free-text synonyms to canonical vocabulary values, per
// category. Keys are lowercase terms; a term may map to several canonical
// candidates, which the normalizer later filters against a source's live
// vocabulary.
type Dictionary map[core.VocabularyCategory]map[string][]string

// DefaultDictionary returns the built-in synonym dictionary. The entries
// cover the free-text color and breed shorthand people actually type.
func DefaultDictionary() Dictionary {
	return Dictionary{
		core.CategoryColor: {
			"tuxedo":       {"Black & White / Tuxedo"},
			"black and white": {"Black & White / Tuxedo"},
			"ginger":       {"Orange", "Orange / Red"},
			"red":          {"Orange / Red", "Red"},
			"grey":         {"Gray", "Gray / Blue / Silver"},
			"silver":       {"Gray / Blue / Silver", "Silver"},
			"blue":         {"Gray / Blue / Silver", "Blue"},
			"tortie":       {"Tortoiseshell"},
			"torti":        {"Tortoiseshell"},
			"calico":       {"Calico", "Calico / Tricolor"},
			"tricolor":     {"Calico / Tricolor"},
			"tabby":        {"Tabby", "Brown Tabby", "Gray Tabby"},
			"brindle":      {"Brindle"},
			"cream":        {"Cream / Ivory", "Cream"},
			"tan":          {"Tan / Fawn", "Tan"},
			"fawn":         {"Tan / Fawn"},
			"chocolate":    {"Brown / Chocolate"},
			"brown":        {"Brown / Chocolate", "Brown"},
		},
		core.CategoryBreed: {
			"sphinx":    {"Sphynx"},
			"dsh":       {"Domestic Short Hair"},
			"dmh":       {"Domestic Medium Hair"},
			"dlh":       {"Domestic Long Hair"},
			"shorthair": {"Domestic Short Hair", "British Shorthair", "American Shorthair"},
			"longhair":  {"Domestic Long Hair"},
			"lab":       {"Labrador Retriever"},
			"gsd":       {"German Shepherd Dog"},
			"alsatian":  {"German Shepherd Dog"},
			"pittie":    {"Pit Bull Terrier"},
			"pitbull":   {"Pit Bull Terrier"},
			"staffy":    {"Staffordshire Bull Terrier"},
			"heeler":    {"Australian Cattle Dog / Blue Heeler"},
			"doxie":     {"Dachshund"},
			"weiner dog": {"Dachshund"},
			"chiweenie": {"Chiweenie"},
			"husky":     {"Siberian Husky", "Husky"},
		},
	}
}

// Lookup returns the canonical candidates for a term, or nil when the
// dictionary has no entry. The term is matched case-insensitively.
func (d Dictionary) Lookup(category core.VocabularyCategory, term string) []string {
	terms := d[category]
	if terms == nil {
		return nil
	}
	return terms[strings.ToLower(strings.TrimSpace(term))]
}

// Merge overlays other onto d. Terms present in both keep other's values.
func (d Dictionary) Merge(other Dictionary) {
	for category, terms := range other {
		if d[category] == nil {
			d[category] = make(map[string][]string, len(terms))
		}
		for term, values := range terms {
			d[category][strings.ToLower(term)] = values
		}
	}
}

// LoadDictionaryFile reads synonym overrides from a YAML file. The layout
// mirrors Dictionary:
//
//	color:
//	  tuxedo:
//	    - Black & White / Tuxedo
//	breed:
//	  dsh:
//	    - Domestic Short Hair
func LoadDictionaryFile(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("vocab: parsing dictionary file %s: %w", path, err)
	}

	dict := make(Dictionary, len(raw))
	for categoryName, terms := range raw {
		category := core.VocabularyCategory(categoryName)
		if err := core.ValidateCategory(category); err != nil {
			return nil, fmt.Errorf("vocab: dictionary file %s: %w", path, err)
		}
		dict[category] = make(map[string][]string, len(terms))
		for term, values := range terms {
			dict[category][strings.ToLower(term)] = values
		}
	}
	return dict, nil
}
