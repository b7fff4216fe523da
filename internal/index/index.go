// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

// Package index builds immutable product-similarity snapshots. Each snapshot
// vectorizes the catalog's feature text with TF-IDF and answers cosine
// similarity lookups; rebuilding produces a fresh snapshot that callers swap
// in via the Holder, never mutating one in place.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/procurehq/procurerec/internal/catalog"
)

// ErrNoProducts is returned when a build is attempted over an empty catalog.
var ErrNoProducts = errors.New("index: no products to index")

// Price-tier boundaries for the tier feature token. Fixed by convention, not
// configuration: the tiers only need to be stable across snapshots.
const (
	tierBudgetMax = 3000
	tierMidMax    = 10000
)

func tierToken(price float64) string {
	switch {
	case price < tierBudgetMax:
		return "tier_budget"
	case price < tierMidMax:
		return "tier_mid"
	default:
		return "tier_premium"
	}
}

// TemplateHint carries external bundle-template knowledge into feature text:
// products that recur in a named template get the template's name tokens
// appended proportionally to their typical frequency.
type TemplateHint struct {
	Name        string         `json:"name"`
	Frequencies map[string]int `json:"frequencies"`
}

// Option customizes a snapshot build.
type Option func(*buildOptions)

type buildOptions struct {
	vectorizer VectorizerConfig
	hints      []TemplateHint
}

// WithVectorizer overrides the default vectorizer parameters.
func WithVectorizer(cfg VectorizerConfig) Option {
	return func(o *buildOptions) { o.vectorizer = cfg }
}

// WithTemplateHints enriches product feature text with template signals.
func WithTemplateHints(hints []TemplateHint) Option {
	return func(o *buildOptions) { o.hints = hints }
}

// Index is one immutable similarity snapshot. All methods are safe for
// unsynchronized concurrent use; nothing mutates an Index after Build.
type Index struct {
	ids       []string
	rows      map[string]int
	vectors   []Vector
	builtAt   time.Time
	vocabSize int
}

// Build vectorizes the catalog into a new snapshot. Products are ordered by
// id so identical input yields an identical snapshot. ctx is checked between
// documents; a canceled build returns ctx.Err().
func Build(ctx context.Context, products map[string]*catalog.Product, opts ...Option) (*Index, error) {
	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	o := buildOptions{vectorizer: DefaultVectorizerConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.vectorizer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vectorizer config: %w", err)
	}

	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	hintTokens := templateTokens(o.hints)

	docs := make([][]string, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs[i] = tokenize(featureString(products[id], hintTokens[id]))
	}

	vectors := vectorize(docs, o.vectorizer)

	rows := make(map[string]int, len(ids))
	for i, id := range ids {
		rows[id] = i
	}

	vocab := make(map[int]struct{})
	for _, vec := range vectors {
		for term := range vec {
			vocab[term] = struct{}{}
		}
	}

	return &Index{
		ids:       ids,
		rows:      rows,
		vectors:   vectors,
		builtAt:   time.Now(),
		vocabSize: len(vocab),
	}, nil
}

// featureString composes the text a product is vectorized from: normalized
// name, category token, price tier token, and any template enrichment.
func featureString(p *catalog.Product, extra []string) string {
	parts := []string{p.FeatureText, tierToken(p.PriceEstimate)}
	parts = append(parts, extra...)
	return strings.Join(parts, " ")
}

// templateTokens expands hints into per-product token lists. A product's
// template name tokens repeat min(frequency, 3) times so habitual template
// members cluster without one template dominating the vocabulary.
func templateTokens(hints []TemplateHint) map[string][]string {
	if len(hints) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, hint := range hints {
		token := strings.Join(tokenize(hint.Name), " ")
		if token == "" {
			continue
		}
		for id, freq := range hint.Frequencies {
			repeat := freq
			if repeat > 3 {
				repeat = 3
			}
			for i := 0; i < repeat; i++ {
				out[id] = append(out[id], token)
			}
		}
	}
	return out
}

// Len returns the number of indexed products.
func (ix *Index) Len() int { return len(ix.ids) }

// VocabSize returns the number of active vocabulary terms.
func (ix *Index) VocabSize() int { return ix.vocabSize }

// BuiltAt returns the snapshot build time.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// IDs returns the indexed product ids in row order. The returned slice is
// shared; callers must not modify it.
func (ix *Index) IDs() []string { return ix.ids }

// Has reports whether id is indexed.
func (ix *Index) Has(id string) bool {
	_, ok := ix.rows[id]
	return ok
}

// Vector returns the vector for id, or (nil, false) for an unindexed id.
func (ix *Index) Vector(id string) (Vector, bool) {
	row, ok := ix.rows[id]
	if !ok {
		return nil, false
	}
	return ix.vectors[row], true
}

// Similarity returns the cosine similarity of two products in [-1, 1].
// An id absent from the index yields 0: products known only from history
// templates are an expected, recoverable condition, not an error.
func (ix *Index) Similarity(a, b string) float64 {
	va, ok := ix.Vector(a)
	if !ok {
		return 0
	}
	vb, ok := ix.Vector(b)
	if !ok {
		return 0
	}
	return va.Dot(vb)
}

// Centroid returns the weighted, re-normalized mean vector of the indexed
// products in weights, or nil if none of them is indexed.
func (ix *Index) Centroid(weights map[string]float64) Vector {
	centroid := make(Vector)
	total := 0.0
	for id, w := range weights {
		if w <= 0 {
			continue
		}
		vec, ok := ix.Vector(id)
		if !ok {
			continue
		}
		for term, val := range vec {
			centroid[term] += val * w
		}
		total += w
	}
	if total == 0 || len(centroid) == 0 {
		return nil
	}
	for term := range centroid {
		centroid[term] /= total
	}
	centroid.normalize()
	return centroid
}
