// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores individual sources on a 0-100 scale from their
// metadata. The score blends five weighted factors (source type, domain
// reputation, freshness, authority, content signals) and carries a
// confidence value reflecting how much metadata was available.
package quality

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/events"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Default freshness decay parameters.
const (
	defaultHalfLife   = 365 * 24 * time.Hour
	defaultMaxPenalty = 30.0
)

// typeScores maps a source classification to its fixed type sub-score.
var typeScores = map[types.SourceType]float64{
	types.SourceAcademic:      100,
	types.SourceGovernment:    95,
	types.SourceInstitutional: 88,
	types.SourceNewsTier1:     85,
	types.SourceEncyclopedia:  80,
	types.SourceTechnicalDocs: 78,
	types.SourceNewsTier2:     70,
	types.SourceCorporate:     60,
	types.SourceForum:         45,
	types.SourceBlog:          40,
	types.SourceSocialMedia:   30,
	types.SourceUnknown:       25,
}

// hostFallbackRe extracts a hostname-ish token from a malformed URL.
var hostFallbackRe = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.-]*://)?([^/:?#\s]+)`)

// Scorer computes quality scores for sources. Safe for concurrent use; the
// reputation table and result cache sit behind one lock.
type Scorer struct {
	weights    types.QualityWeights
	halfLife   time.Duration
	maxPenalty float64

	bus *events.Bus
	log *zap.Logger

	// now is the clock; tests substitute a fixed time.
	now func() time.Time

	mu          sync.RWMutex
	reputations map[string]types.DomainReputation
	cache       map[string]types.QualityScore
}

// NewScorer builds a scorer from cfg. Custom reputations are merged over the
// built-in table; zero-valued weights and freshness settings fall back to
// defaults. bus and logger may be nil.
func NewScorer(cfg types.QualityConfig, bus *events.Bus, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}

	weights := cfg.Weights
	if weights == (types.QualityWeights{}) {
		weights = types.DefaultQualityWeights()
	}

	halfLife := cfg.FreshnessHalfLife
	if halfLife <= 0 {
		halfLife = defaultHalfLife
	}
	maxPenalty := cfg.FreshnessMaxPenalty
	if maxPenalty <= 0 {
		maxPenalty = defaultMaxPenalty
	}

	s := &Scorer{
		weights:     weights,
		halfLife:    halfLife,
		maxPenalty:  maxPenalty,
		bus:         bus,
		log:         logger,
		now:         time.Now,
		reputations: make(map[string]types.DomainReputation),
		cache:       make(map[string]types.QualityScore),
	}

	for _, rep := range builtinReputations() {
		s.reputations[rep.Domain] = rep
	}
	for _, rep := range cfg.CustomReputations {
		domain := strings.ToLower(strings.TrimPrefix(rep.Domain, "www."))
		if domain == "" {
			continue
		}
		rep.Domain = domain
		s.reputations[domain] = rep
	}

	return s
}

// ExtractDomain returns the lowercase hostname of rawURL with any port and a
// leading "www." removed. Malformed URLs degrade to a best-effort token from
// the raw string; this never fails.
func ExtractDomain(rawURL string) string {
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
		host := strings.ToLower(parsed.Hostname())
		return strings.TrimPrefix(host, "www.")
	}

	if m := hostFallbackRe.FindStringSubmatch(rawURL); m != nil {
		host := strings.ToLower(m[1])
		return strings.TrimPrefix(host, "www.")
	}

	return strings.ToLower(rawURL)
}

// ScoreSource computes the quality score for one source. Results are cached
// per (url, publishedDate, lastUpdated); identical metadata yields identical
// scores.
func (s *Scorer) ScoreSource(meta types.SourceMetadata) types.QualityScore {
	key := cacheKey(meta)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	score := s.computeScore(meta)

	s.mu.Lock()
	s.cache[key] = score
	s.mu.Unlock()

	s.log.Debug("source scored",
		zap.String("url", meta.URL),
		zap.Float64("overall", score.Overall),
		zap.String("type", string(score.Type)))
	s.bus.Publish(events.SourceScored, meta.URL, score)

	return score
}

// ClassifySource determines the source type: reputation table lookup first,
// then URL heuristics.
func (s *Scorer) ClassifySource(meta types.SourceMetadata) types.SourceType {
	domain := meta.Domain
	if domain == "" {
		domain = ExtractDomain(meta.URL)
	}

	if rep, ok := s.lookupReputation(domain); ok {
		return rep.Type
	}
	return classifyByURL(domain, meta.URL)
}

func (s *Scorer) computeScore(meta types.SourceMetadata) types.QualityScore {
	domain := meta.Domain
	if domain == "" {
		domain = ExtractDomain(meta.URL)
	}

	sourceType := s.ClassifySource(meta)

	typeScore, typeFactor := s.scoreType(sourceType)
	domainScore, domainFactor, domainKnown := s.scoreDomain(domain)
	freshScore, freshFactor := s.scoreFreshness(meta)
	authScore, authFactor := s.scoreAuthority(meta)
	contentScore, contentFactor := s.scoreContent(meta)

	overall := typeScore*s.weights.Type +
		domainScore*s.weights.Domain +
		freshScore*s.weights.Freshness +
		authScore*s.weights.Authority +
		contentScore*s.weights.Content
	overall = clamp(overall, 0, 100)

	confidence := 0.5
	if !meta.PublishedDate.IsZero() || !meta.LastUpdated.IsZero() {
		confidence += 0.1
	}
	if meta.Author != "" {
		confidence += 0.1
	}
	if meta.CitationCount > 0 {
		confidence += 0.1
	}
	if domainKnown {
		confidence += 0.1
	}
	confidence = math.Min(confidence, 1.0)

	return types.QualityScore{
		Overall: overall,
		Type:    sourceType,
		Factors: []types.QualityFactor{
			typeFactor, domainFactor, freshFactor, authFactor, contentFactor,
		},
		Confidence: confidence,
	}
}

func (s *Scorer) scoreType(st types.SourceType) (float64, types.QualityFactor) {
	score, ok := typeScores[st]
	if !ok {
		score = typeScores[types.SourceUnknown]
	}
	return score, types.QualityFactor{
		Name:   "type",
		Score:  score,
		Weight: s.weights.Type,
		Reason: fmt.Sprintf("classified as %s", st),
	}
}

func (s *Scorer) scoreDomain(domain string) (float64, types.QualityFactor, bool) {
	if rep, ok := s.lookupReputation(domain); ok {
		return rep.BaseScore, types.QualityFactor{
			Name:   "domain",
			Score:  rep.BaseScore,
			Weight: s.weights.Domain,
			Reason: fmt.Sprintf("known domain %s (tier %d, %s trust)", rep.Domain, rep.Tier, rep.Trust),
		}, true
	}

	score := 50.0
	reason := "unknown domain, base score"
	switch {
	case strings.HasSuffix(domain, ".gov"):
		score += 30
		reason = "unknown domain with .gov TLD"
	case strings.HasSuffix(domain, ".edu"):
		score += 25
		reason = "unknown domain with .edu TLD"
	case strings.HasSuffix(domain, ".org"):
		score += 10
		reason = "unknown domain with .org TLD"
	}

	return score, types.QualityFactor{
		Name:   "domain",
		Score:  score,
		Weight: s.weights.Domain,
		Reason: reason,
	}, false
}

// scoreFreshness applies exponential decay to the source age:
// penalty = maxPenalty * (1 - 0.5^(age/halfLife)). Sources without any date
// default to 70.
func (s *Scorer) scoreFreshness(meta types.SourceMetadata) (float64, types.QualityFactor) {
	date := meta.LastUpdated
	if date.IsZero() {
		date = meta.PublishedDate
	}

	if date.IsZero() {
		return 70, types.QualityFactor{
			Name:   "freshness",
			Score:  70,
			Weight: s.weights.Freshness,
			Reason: "no publication date available",
		}
	}

	age := s.now().Sub(date)
	if age < 0 {
		age = 0
	}
	penalty := s.maxPenalty * (1 - math.Pow(0.5, float64(age)/float64(s.halfLife)))
	score := clamp(100-penalty, 0, 100)

	return score, types.QualityFactor{
		Name:   "freshness",
		Score:  score,
		Weight: s.weights.Freshness,
		Reason: fmt.Sprintf("source age %d days", int(age.Hours()/24)),
	}
}

func (s *Scorer) scoreAuthority(meta types.SourceMetadata) (float64, types.QualityFactor) {
	score := 50.0
	var signals []string

	switch {
	case meta.CitationCount > 100:
		score += 30
		signals = append(signals, "heavily cited")
	case meta.CitationCount > 10:
		score += 20
		signals = append(signals, "well cited")
	case meta.CitationCount > 0:
		score += 10
		signals = append(signals, "cited")
	}

	switch {
	case meta.Backlinks > 1000:
		score += 15
		signals = append(signals, "many backlinks")
	case meta.Backlinks > 100:
		score += 10
		signals = append(signals, "some backlinks")
	case meta.Backlinks > 0:
		score += 5
		signals = append(signals, "few backlinks")
	}

	if meta.PageRank > 0 {
		score += math.Min(20, meta.PageRank*2)
		signals = append(signals, "page rank")
	}

	if meta.Author != "" {
		score += 10
		signals = append(signals, "named author")
	}

	reason := "no authority signals"
	if len(signals) > 0 {
		reason = strings.Join(signals, ", ")
	}

	return clamp(score, 0, 100), types.QualityFactor{
		Name:   "authority",
		Score:  clamp(score, 0, 100),
		Weight: s.weights.Authority,
		Reason: reason,
	}
}

func (s *Scorer) scoreContent(meta types.SourceMetadata) (float64, types.QualityFactor) {
	score := 50.0
	var signals []string

	if meta.HasReferences {
		score += 25
		signals = append(signals, "cites references")
	}

	switch {
	case meta.WordCount >= 2000:
		score += 15
		signals = append(signals, "long form")
	case meta.WordCount >= 800:
		score += 10
		signals = append(signals, "substantial length")
	case meta.WordCount > 0 && meta.WordCount < 200:
		score -= 10
		signals = append(signals, "very short")
	}

	if !meta.IsPaywalled {
		score += 5
		signals = append(signals, "open access")
	}
	if meta.Language == "" || strings.EqualFold(meta.Language, "en") {
		score += 5
	}

	reason := "no content signals"
	if len(signals) > 0 {
		reason = strings.Join(signals, ", ")
	}

	return clamp(score, 0, 100), types.QualityFactor{
		Name:   "content",
		Score:  clamp(score, 0, 100),
		Weight: s.weights.Content,
		Reason: reason,
	}
}

// classifyByURL is the heuristic fallback when the domain is not in the
// reputation table.
func classifyByURL(domain, rawURL string) types.SourceType {
	lower := strings.ToLower(rawURL)

	switch {
	case strings.HasSuffix(domain, ".edu") || strings.Contains(domain, ".edu."):
		return types.SourceAcademic
	case strings.HasSuffix(domain, ".gov") || strings.Contains(domain, ".gov."):
		return types.SourceGovernment
	case strings.Contains(lower, "/docs") || strings.Contains(lower, "/documentation") ||
		strings.HasPrefix(domain, "docs."):
		return types.SourceTechnicalDocs
	case strings.Contains(lower, "/news") || strings.HasPrefix(domain, "news."):
		return types.SourceNewsTier2
	case strings.Contains(lower, "/blog") || strings.HasPrefix(domain, "blog."):
		return types.SourceBlog
	case strings.Contains(lower, "/forum") || strings.Contains(lower, "/thread"):
		return types.SourceForum
	default:
		return types.SourceUnknown
	}
}

func cacheKey(meta types.SourceMetadata) string {
	return meta.URL + "|" + meta.PublishedDate.UTC().Format(time.RFC3339) +
		"|" + meta.LastUpdated.UTC().Format(time.RFC3339)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
