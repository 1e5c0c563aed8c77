// Package selection weighs candidates and draws one at random.
//
// Library candidates are weighted by completion ratio with boosts for titles
// being watched and titles related to something already completed. Trending
// catalog candidates get a small base weight nudged up by overlap with the
// user's completed genres, tags and studios, capped at GlobalCap. In the
// random discovery scope every candidate weighs the same.
package selection

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"anipick/internal/catalog"
	"anipick/internal/models"
)

var (
	// ErrEmptyPool means no candidate survived filtering.
	ErrEmptyPool = errors.New("no candidates to pick from")
	// ErrZeroWeight means the pool has candidates but every weight is zero.
	ErrZeroWeight = errors.New("every candidate has zero weight")
	// ErrSelectionExhausted means the draw walked the whole pool without a
	// hit. It indicates a weighting bug, not bad input.
	ErrSelectionExhausted = errors.New("weighted draw exhausted the pool")
)

// Weighted is a candidate with its weight and the reasons behind it.
type Weighted struct {
	Candidate models.CandidateEntry
	Weight    float64
	Reasons   []string
}

// Pool is the ordered weighted candidate sequence for one draw.
type Pool []Weighted

// Total sums the weights.
func (p Pool) Total() float64 {
	total := 0.0
	for _, w := range p {
		total += w.Weight
	}
	return total
}

// Pick is the outcome of one draw.
type Pick struct {
	Weighted
	PoolSize  int
	PoolTotal float64
}

// Engine assigns weights and draws.
type Engine struct {
	weights Weights
	uniform func(max float64) float64
}

type Option func(*Engine)

// WithUniform replaces the random source. f must return a value in [0, max).
func WithUniform(f func(max float64) float64) Option {
	return func(e *Engine) {
		e.uniform = f
	}
}

func NewEngine(w Weights, opts ...Option) *Engine {
	e := &Engine{
		weights: w,
		uniform: func(max float64) float64 { return rand.Float64() * max },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the engine's tunables.
func (e *Engine) Weights() Weights {
	return e.weights
}

// AssignWeights builds the pool for scope. COMPLETED and DROPPED library
// entries never enter it, nor do global candidates already completed.
func (e *Engine) AssignWeights(candidates []models.CandidateEntry, scope models.Scope) Pool {
	pool := make(Pool, 0, len(candidates))

	if scope == models.ScopeRandomGlobal {
		for _, c := range candidates {
			if c.IsExcluded() {
				continue
			}
			pool = append(pool, Weighted{
				Candidate: c,
				Weight:    e.weights.DiscoveryWeight,
				Reasons:   []string{"random discovery"},
			})
		}
		return pool
	}

	completed := catalog.CompletedIDs(candidates)
	var profile *catalog.Profile

	for _, c := range candidates {
		switch c.Provenance {
		case models.ProvenanceLibrary:
			if c.IsExcluded() {
				continue
			}
			weight, reasons := e.libraryWeight(c, completed)
			pool = append(pool, Weighted{Candidate: c, Weight: weight, Reasons: reasons})

		case models.ProvenanceGlobal:
			if scope != models.ScopeLibraryAndTrending {
				continue
			}
			if _, done := completed[c.Media.ID]; done {
				continue
			}
			if profile == nil {
				p := catalog.BuildProfile(candidates)
				profile = &p
			}
			weight, reasons := e.globalWeight(c, *profile)
			pool = append(pool, Weighted{Candidate: c, Weight: weight, Reasons: reasons})
		}
	}

	return pool
}

func (e *Engine) libraryWeight(c models.CandidateEntry, completed map[int]struct{}) (float64, []string) {
	episodes := c.Media.Episodes
	if episodes < 1 {
		episodes = 1
	}
	weight := float64(c.Entry.Progress) / float64(episodes)
	reasons := []string{fmt.Sprintf("progress %d/%d", c.Entry.Progress, episodes)}

	if c.Entry.Status == models.StatusCurrent {
		weight *= e.weights.CurrentBoost
		reasons = append(reasons, fmt.Sprintf("currently watching ×%g", e.weights.CurrentBoost))
	}

	for _, id := range c.Media.Relations {
		if _, ok := completed[id]; ok {
			weight *= e.weights.SequelBoost
			reasons = append(reasons, fmt.Sprintf("related to a completed title ×%g", e.weights.SequelBoost))
			break
		}
	}

	return weight, reasons
}

func (e *Engine) globalWeight(c models.CandidateEntry, profile catalog.Profile) (float64, []string) {
	genres, tags, studios := profile.Overlap(c.Media)
	overlaps := genres + tags + studios

	weight := e.weights.GlobalBase + e.weights.OverlapIncrement*float64(overlaps)
	reasons := []string{"trending now"}
	if overlaps > 0 {
		reasons = append(reasons, fmt.Sprintf("matches your taste (%d genres, %d tags, %d studios)", genres, tags, studios))
	}
	if weight > e.weights.GlobalCap {
		weight = e.weights.GlobalCap
	}

	return weight, reasons
}

// DrawOne returns one candidate with probability proportional to its weight.
func (e *Engine) DrawOne(pool Pool) (models.CandidateEntry, error) {
	w, err := e.draw(pool)
	if err != nil {
		return models.CandidateEntry{}, err
	}
	return w.Candidate, nil
}

// Pick weighs candidates and draws one.
func (e *Engine) Pick(candidates []models.CandidateEntry, scope models.Scope) (Pick, error) {
	pool := e.AssignWeights(candidates, scope)
	w, err := e.draw(pool)
	if err != nil {
		return Pick{}, err
	}
	return Pick{Weighted: w, PoolSize: len(pool), PoolTotal: pool.Total()}, nil
}

func (e *Engine) draw(pool Pool) (Weighted, error) {
	if len(pool) == 0 {
		return Weighted{}, ErrEmptyPool
	}
	for _, w := range pool {
		if w.Weight < 0 || math.IsNaN(w.Weight) || math.IsInf(w.Weight, 0) {
			return Weighted{}, fmt.Errorf("%w: invalid weight %v for media %d", ErrSelectionExhausted, w.Weight, w.Candidate.Media.ID)
		}
	}
	total := pool.Total()
	if total <= 0 {
		return Weighted{}, ErrZeroWeight
	}

	r := e.uniform(total)
	upto := 0.0
	for _, w := range pool {
		// Zero-weight entries are never a hit, even when r is 0.
		if w.Weight > 0 && upto+w.Weight >= r {
			return w, nil
		}
		upto += w.Weight
	}

	return Weighted{}, fmt.Errorf("%w: r=%g total=%g", ErrSelectionExhausted, r, total)
}
