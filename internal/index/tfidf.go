// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package index

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// VectorizerConfig controls TF-IDF feature extraction.
type VectorizerConfig struct {
	// MaxFeatures caps the vocabulary; the most document-frequent terms are
	// kept, ties broken lexicographically for determinism. Default: 2000.
	MaxFeatures int `koanf:"max_features" json:"max_features"`

	// MinDocFreq drops terms appearing in fewer documents. Default: 1.
	MinDocFreq int `koanf:"min_doc_freq" json:"min_doc_freq"`

	// MaxDocRatio drops near-universal terms appearing in more than this
	// fraction of documents. Default: 0.9.
	MaxDocRatio float64 `koanf:"max_doc_ratio" json:"max_doc_ratio"`
}

// DefaultVectorizerConfig returns the default vectorizer parameters.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures: 2000,
		MinDocFreq:  1,
		MaxDocRatio: 0.9,
	}
}

// Validate checks construction-time invariants.
func (c *VectorizerConfig) Validate() error {
	if c.MaxFeatures <= 0 {
		return fmt.Errorf("max features must be positive, got %d", c.MaxFeatures)
	}
	if c.MinDocFreq <= 0 {
		return fmt.Errorf("min doc freq must be positive, got %d", c.MinDocFreq)
	}
	if c.MaxDocRatio <= 0 || c.MaxDocRatio > 1 {
		return fmt.Errorf("max doc ratio must be in (0, 1], got %f", c.MaxDocRatio)
	}
	return nil
}

// Vector is a sparse L2-normalized feature vector: term index -> weight.
type Vector map[int]float64

// Dot returns the dot product of two sparse vectors. For normalized vectors
// this is the cosine similarity.
func (v Vector) Dot(o Vector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	sum := 0.0
	for i, w := range v {
		if ow, ok := o[i]; ok {
			sum += w * ow
		}
	}
	return sum
}

// normalize scales v to unit length in place. A zero vector stays zero.
func (v Vector) normalize() {
	sum := 0.0
	for _, w := range v {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}

// tokenize splits normalized text into word unigrams and bigrams. Single
// characters carry no signal and are dropped before n-gram assembly.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' && r <= 127
	})
	kept := words[:0]
	for _, w := range words {
		if len(w) >= 2 {
			kept = append(kept, w)
		}
	}

	terms := make([]string, 0, len(kept)*2)
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// vectorize builds L2-normalized TF-IDF vectors for the given documents.
// Documents must already be in their final, deterministic order.
func vectorize(docs [][]string, cfg VectorizerConfig) []Vector {
	n := len(docs)

	// Document frequency per term.
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	// Frequency cutoffs. With a single document the max-ratio cutoff would
	// reject every term, so it only applies to multi-document corpora.
	maxDF := n
	if n > 1 {
		maxDF = int(math.Floor(cfg.MaxDocRatio * float64(n)))
		if maxDF < cfg.MinDocFreq {
			maxDF = cfg.MinDocFreq
		}
	}
	candidates := make([]string, 0, len(df))
	for term, freq := range df {
		if freq >= cfg.MinDocFreq && freq <= maxDF {
			candidates = append(candidates, term)
		}
	}

	// Vocabulary cap: highest document frequency first, lexicographic tiebreak.
	sort.Slice(candidates, func(i, j int) bool {
		if df[candidates[i]] != df[candidates[j]] {
			return df[candidates[i]] > df[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > cfg.MaxFeatures {
		candidates = candidates[:cfg.MaxFeatures]
	}
	sort.Strings(candidates)

	vocab := make(map[string]int, len(candidates))
	idf := make([]float64, len(candidates))
	for i, term := range candidates {
		vocab[term] = i
		// Smoothed idf, matching the convention that keeps single-document
		// corpora non-degenerate.
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	vectors := make([]Vector, n)
	for d, doc := range docs {
		vec := make(Vector)
		for _, term := range doc {
			if i, ok := vocab[term]; ok {
				vec[i] += idf[i]
			}
		}
		vec.normalize()
		vectors[d] = vec
	}
	return vectors
}
