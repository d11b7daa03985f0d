// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"strings"

	"github.com/pdiddy/deep-research/pkg/types"
)

// builtinReputations is the default domain reputation table. Entries use bare
// hostnames without a "www." prefix; lookup falls back from exact domain to
// parent-domain suffix to TLD.
func builtinReputations() []types.DomainReputation {
	return []types.DomainReputation{
		// Academic publishers and indexes.
		{Domain: "nature.com", Type: types.SourceAcademic, BaseScore: 95, Tier: 1, Trust: types.TrustHigh},
		{Domain: "science.org", Type: types.SourceAcademic, BaseScore: 95, Tier: 1, Trust: types.TrustHigh},
		{Domain: "arxiv.org", Type: types.SourceAcademic, BaseScore: 88, Tier: 1, Trust: types.TrustHigh},
		{Domain: "pubmed.ncbi.nlm.nih.gov", Type: types.SourceAcademic, BaseScore: 93, Tier: 1, Trust: types.TrustHigh},
		{Domain: "scholar.google.com", Type: types.SourceAcademic, BaseScore: 85, Tier: 1, Trust: types.TrustHigh},
		{Domain: "ieee.org", Type: types.SourceAcademic, BaseScore: 92, Tier: 1, Trust: types.TrustHigh},
		{Domain: "acm.org", Type: types.SourceAcademic, BaseScore: 92, Tier: 1, Trust: types.TrustHigh},
		{Domain: "sciencedirect.com", Type: types.SourceAcademic, BaseScore: 90, Tier: 1, Trust: types.TrustHigh},
		{Domain: "springer.com", Type: types.SourceAcademic, BaseScore: 90, Tier: 1, Trust: types.TrustHigh},
		{Domain: "jstor.org", Type: types.SourceAcademic, BaseScore: 90, Tier: 1, Trust: types.TrustHigh},

		// Government and intergovernmental bodies.
		{Domain: "nih.gov", Type: types.SourceGovernment, BaseScore: 95, Tier: 1, Trust: types.TrustHigh},
		{Domain: "cdc.gov", Type: types.SourceGovernment, BaseScore: 95, Tier: 1, Trust: types.TrustHigh},
		{Domain: "nasa.gov", Type: types.SourceGovernment, BaseScore: 94, Tier: 1, Trust: types.TrustHigh},
		{Domain: "noaa.gov", Type: types.SourceGovernment, BaseScore: 93, Tier: 1, Trust: types.TrustHigh},
		{Domain: "europa.eu", Type: types.SourceGovernment, BaseScore: 90, Tier: 1, Trust: types.TrustHigh},
		{Domain: "who.int", Type: types.SourceInstitutional, BaseScore: 92, Tier: 1, Trust: types.TrustHigh},
		{Domain: "un.org", Type: types.SourceInstitutional, BaseScore: 90, Tier: 1, Trust: types.TrustHigh},
		{Domain: "worldbank.org", Type: types.SourceInstitutional, BaseScore: 88, Tier: 1, Trust: types.TrustHigh},
		{Domain: "imf.org", Type: types.SourceInstitutional, BaseScore: 88, Tier: 1, Trust: types.TrustHigh},

		// Tier-1 news.
		{Domain: "reuters.com", Type: types.SourceNewsTier1, BaseScore: 85, Tier: 1, Trust: types.TrustHigh},
		{Domain: "apnews.com", Type: types.SourceNewsTier1, BaseScore: 85, Tier: 1, Trust: types.TrustHigh},
		{Domain: "bbc.com", Type: types.SourceNewsTier1, BaseScore: 82, Tier: 1, Trust: types.TrustHigh},
		{Domain: "bbc.co.uk", Type: types.SourceNewsTier1, BaseScore: 82, Tier: 1, Trust: types.TrustHigh},
		{Domain: "nytimes.com", Type: types.SourceNewsTier1, BaseScore: 80, Tier: 1, Trust: types.TrustHigh},
		{Domain: "wsj.com", Type: types.SourceNewsTier1, BaseScore: 80, Tier: 1, Trust: types.TrustHigh},
		{Domain: "economist.com", Type: types.SourceNewsTier1, BaseScore: 80, Tier: 1, Trust: types.TrustHigh},
		{Domain: "ft.com", Type: types.SourceNewsTier1, BaseScore: 80, Tier: 1, Trust: types.TrustHigh},

		// Tier-2 news.
		{Domain: "theguardian.com", Type: types.SourceNewsTier2, BaseScore: 75, Tier: 2, Trust: types.TrustMedium},
		{Domain: "cnn.com", Type: types.SourceNewsTier2, BaseScore: 70, Tier: 2, Trust: types.TrustMedium},
		{Domain: "washingtonpost.com", Type: types.SourceNewsTier2, BaseScore: 75, Tier: 2, Trust: types.TrustMedium},
		{Domain: "bloomberg.com", Type: types.SourceNewsTier2, BaseScore: 75, Tier: 2, Trust: types.TrustMedium},
		{Domain: "forbes.com", Type: types.SourceNewsTier2, BaseScore: 65, Tier: 2, Trust: types.TrustMedium},

		// Encyclopedias.
		{Domain: "wikipedia.org", Type: types.SourceEncyclopedia, BaseScore: 75, Tier: 2, Trust: types.TrustMedium},
		{Domain: "britannica.com", Type: types.SourceEncyclopedia, BaseScore: 80, Tier: 1, Trust: types.TrustHigh},

		// Technical documentation.
		{Domain: "developer.mozilla.org", Type: types.SourceTechnicalDocs, BaseScore: 85, Tier: 1, Trust: types.TrustHigh},
		{Domain: "docs.python.org", Type: types.SourceTechnicalDocs, BaseScore: 85, Tier: 1, Trust: types.TrustHigh},
		{Domain: "go.dev", Type: types.SourceTechnicalDocs, BaseScore: 85, Tier: 1, Trust: types.TrustHigh},
		{Domain: "github.com", Type: types.SourceTechnicalDocs, BaseScore: 70, Tier: 2, Trust: types.TrustMedium},
		{Domain: "stackoverflow.com", Type: types.SourceForum, BaseScore: 65, Tier: 2, Trust: types.TrustMedium},

		// Forums and social media.
		{Domain: "reddit.com", Type: types.SourceForum, BaseScore: 45, Tier: 3, Trust: types.TrustLow},
		{Domain: "news.ycombinator.com", Type: types.SourceForum, BaseScore: 55, Tier: 3, Trust: types.TrustLow},
		{Domain: "quora.com", Type: types.SourceForum, BaseScore: 40, Tier: 3, Trust: types.TrustLow},
		{Domain: "twitter.com", Type: types.SourceSocialMedia, BaseScore: 30, Tier: 3, Trust: types.TrustLow},
		{Domain: "x.com", Type: types.SourceSocialMedia, BaseScore: 30, Tier: 3, Trust: types.TrustLow},
		{Domain: "facebook.com", Type: types.SourceSocialMedia, BaseScore: 25, Tier: 3, Trust: types.TrustLow},
		{Domain: "tiktok.com", Type: types.SourceSocialMedia, BaseScore: 20, Tier: 3, Trust: types.TrustLow},
		{Domain: "linkedin.com", Type: types.SourceSocialMedia, BaseScore: 40, Tier: 3, Trust: types.TrustLow},

		// Blog platforms.
		{Domain: "medium.com", Type: types.SourceBlog, BaseScore: 45, Tier: 3, Trust: types.TrustLow},
		{Domain: "substack.com", Type: types.SourceBlog, BaseScore: 45, Tier: 3, Trust: types.TrustLow},
		{Domain: "wordpress.com", Type: types.SourceBlog, BaseScore: 35, Tier: 3, Trust: types.TrustLow},
		{Domain: "blogspot.com", Type: types.SourceBlog, BaseScore: 30, Tier: 3, Trust: types.TrustLow},
	}
}

// lookupReputation resolves a domain against the table: exact match first,
// then parent-domain suffixes (blog.example.com → example.com), then bare TLD
// entries. Returns false when nothing matches.
func (s *Scorer) lookupReputation(domain string) (types.DomainReputation, bool) {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if rep, ok := s.reputations[domain]; ok {
		return rep, true
	}

	// Parent-domain suffix: walk labels left to right.
	labels := strings.Split(domain, ".")
	for i := 1; i < len(labels)-1; i++ {
		parent := strings.Join(labels[i:], ".")
		if rep, ok := s.reputations[parent]; ok {
			return rep, true
		}
	}

	// Bare TLD entries like "gov" or "edu".
	if len(labels) > 1 {
		if rep, ok := s.reputations[labels[len(labels)-1]]; ok {
			return rep, true
		}
	}

	return types.DomainReputation{}, false
}

// AddDomainReputation registers or replaces a reputation entry at runtime.
// Cached scores computed before the change are not invalidated.
func (s *Scorer) AddDomainReputation(rep types.DomainReputation) {
	domain := strings.ToLower(strings.TrimPrefix(rep.Domain, "www."))
	if domain == "" {
		return
	}
	rep.Domain = domain

	s.mu.Lock()
	s.reputations[domain] = rep
	s.mu.Unlock()
}
