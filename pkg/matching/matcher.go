// Package matching ranks candidate experts against a help request.
//
// The matcher is a pure function over its inputs: no I/O, no retained state,
// no randomness. Identical inputs always produce identical ordered output,
// which the HTTP layer and the dispatch pipeline both rely on.
package matching

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Default option values. Weights deliberately favor tag overlap over rating:
// a perfectly rated but irrelevant expert must rank below a relevantly
// tagged lower-rated one (0.7*1+0.3*0 > 0.7*0+0.3*1).
const (
	DefaultMinMatchScore  = 0.1
	DefaultMaxResults     = 10
	DefaultTagMatchWeight = 0.7
	DefaultRatingWeight   = 0.3
)

// HelpRequest is the matcher's read-only view of a help request. When Tags
// is non-empty it is used verbatim; otherwise tags are derived from the
// title and description via the vocabulary scan.
type HelpRequest struct {
	Title       string
	Description string
	Tags        []string
}

// ExpertCandidate is a snapshot of one expert supplied fresh per call.
type ExpertCandidate struct {
	ID               uuid.UUID
	Tags             []string
	Available        bool
	Rating           float64 // 0-5
	HasPayoutAccount bool
	TotalSessions    int
}

// MatchResult is one ranked match. Score is in [0,1]; MatchedTags is the
// subset of the request's tags the candidate covers, in request order.
type MatchResult struct {
	ExpertID    uuid.UUID `json:"expert_id"`
	Score       float64   `json:"score"`
	MatchedTags []string  `json:"matched_tags"`
}

// Options tunes the ranking. The zero value is usable; DefaultOptions fills
// in the documented defaults. Malformed values (negative weights, negative
// MaxResults) are clamped rather than rejected; validation belongs to the
// request handler, not here.
type Options struct {
	MinMatchScore        float64
	MaxResults           int
	RequirePayoutAccount bool
	TagMatchWeight       float64
	RatingWeight         float64
}

func DefaultOptions() Options {
	return Options{
		MinMatchScore:  DefaultMinMatchScore,
		MaxResults:     DefaultMaxResults,
		TagMatchWeight: DefaultTagMatchWeight,
		RatingWeight:   DefaultRatingWeight,
	}
}

// normalized clamps malformed values and restores default weights when the
// caller supplied none (both zero or negative).
func (o Options) normalized() Options {
	if o.MinMatchScore < 0 {
		o.MinMatchScore = 0
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.TagMatchWeight < 0 {
		o.TagMatchWeight = 0
	}
	if o.RatingWeight < 0 {
		o.RatingWeight = 0
	}
	if o.TagMatchWeight == 0 && o.RatingWeight == 0 {
		o.TagMatchWeight = DefaultTagMatchWeight
		o.RatingWeight = DefaultRatingWeight
	}
	return o
}

// ExtractTags returns the ordered, deduplicated, lowercased tag set for a
// request. An explicit tag list wins; otherwise the title and description
// are scanned against DefaultVocabulary and matched terms are ordered by
// first occurrence in the text.
func ExtractTags(req HelpRequest) []string {
	if len(req.Tags) > 0 {
		return normalizeTags(req.Tags)
	}

	text := strings.ToLower(req.Title + " " + req.Description)

	type hit struct {
		term   string
		offset int
		rank   int // vocabulary position, tie-breaker for equal offsets
	}
	var hits []hit
	for rank, term := range DefaultVocabulary {
		if off := termOffset(text, term); off >= 0 {
			hits = append(hits, hit{term: term, offset: off, rank: rank})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].offset != hits[j].offset {
			return hits[i].offset < hits[j].offset
		}
		return hits[i].rank < hits[j].rank
	})

	tags := make([]string, 0, len(hits))
	for _, h := range hits {
		tags = append(tags, h.term)
	}
	return dedupe(tags)
}

// Score computes the weighted score of one candidate against the request
// tags, in [0,1]. Weights need not sum to 1; they are normalized by their
// sum. With no request tags the overlap component is zero and the score
// reduces to the weighted rating component.
func Score(candidate ExpertCandidate, requestTags []string, opts Options) (float64, []string) {
	opts = opts.normalized()

	matched := intersect(candidate.Tags, requestTags)

	overlap := 0.0
	if len(requestTags) > 0 {
		overlap = float64(len(matched)) / float64(len(requestTags))
	}

	rating := candidate.Rating / 5.0
	if rating < 0 {
		rating = 0
	}
	if rating > 1 {
		rating = 1
	}

	score := (opts.TagMatchWeight*overlap + opts.RatingWeight*rating) /
		(opts.TagMatchWeight + opts.RatingWeight)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, matched
}

// MatchExperts ranks candidates against a help request. Unavailable
// candidates are dropped, as are candidates without a payout account when
// RequirePayoutAccount is set and candidates scoring below MinMatchScore.
// Results are sorted by score descending, ties broken by higher rating,
// then by higher completed-session count, and capped at MaxResults.
// An empty candidate pool yields an empty (non-nil) result list.
func MatchExperts(candidates []ExpertCandidate, req HelpRequest, opts Options) []MatchResult {
	return MatchExpertsByTags(candidates, ExtractTags(req), opts)
}

// MatchExpertsByTags is the same pipeline with a caller-supplied tag list,
// skipping extraction. With an empty tag list and MinMatchScore of zero,
// every available candidate is returned sorted by rating alone.
func MatchExpertsByTags(candidates []ExpertCandidate, tags []string, opts Options) []MatchResult {
	opts = opts.normalized()
	tags = normalizeTags(tags)

	type scored struct {
		result        MatchResult
		rating        float64
		totalSessions int
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if !c.Available {
			continue
		}
		if opts.RequirePayoutAccount && !c.HasPayoutAccount {
			continue
		}
		score, matched := Score(c, tags, opts)
		if score < opts.MinMatchScore {
			continue
		}
		ranked = append(ranked, scored{
			result:        MatchResult{ExpertID: c.ID, Score: score, MatchedTags: matched},
			rating:        c.Rating,
			totalSessions: c.TotalSessions,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].result.Score != ranked[j].result.Score {
			return ranked[i].result.Score > ranked[j].result.Score
		}
		if ranked[i].rating != ranked[j].rating {
			return ranked[i].rating > ranked[j].rating
		}
		return ranked[i].totalSessions > ranked[j].totalSessions
	})

	if len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
	}

	results := make([]MatchResult, 0, len(ranked))
	for _, s := range ranked {
		results = append(results, s.result)
	}
	return results
}

// normalizeTags lowercases and deduplicates, preserving first-occurrence order.
func normalizeTags(tags []string) []string {
	lowered := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lowered = append(lowered, t)
		}
	}
	return dedupe(lowered)
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// intersect returns the members of requestTags the candidate covers, in
// request order. Candidate tags are compared case-insensitively.
func intersect(candidateTags, requestTags []string) []string {
	set := make(map[string]struct{}, len(candidateTags))
	for _, t := range candidateTags {
		set[strings.ToLower(t)] = struct{}{}
	}
	matched := make([]string, 0, len(requestTags))
	for _, t := range requestTags {
		if _, ok := set[t]; ok {
			matched = append(matched, t)
		}
	}
	return matched
}
