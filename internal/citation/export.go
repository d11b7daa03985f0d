// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

// ExportFormat names a supported citation export format.
type ExportFormat string

const (
	FormatJSON   ExportFormat = "json"
	FormatYAML   ExportFormat = "yaml"
	FormatBibTeX ExportFormat = "bibtex"
	FormatAPA    ExportFormat = "apa"
	FormatMLA    ExportFormat = "mla"
)

// Export renders all registered citations in the given format. Output is
// ordered by URL so repeated exports are stable. Formatting has no side
// effects on the registry.
func (t *Tracker) Export(format ExportFormat) (string, error) {
	return Format(t.Citations(), format)
}

// Format renders a citation list in the given format, ordered by URL. It
// serves exports of archived sessions where no live tracker exists.
func Format(cites []types.Citation, format ExportFormat) (string, error) {
	cites = append([]types.Citation(nil), cites...)
	sort.Slice(cites, func(i, j int) bool { return cites[i].URL < cites[j].URL })

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(cites, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling JSON: %w", err)
		}
		return string(data), nil
	case FormatYAML:
		data, err := yaml.Marshal(cites)
		if err != nil {
			return "", fmt.Errorf("marshaling YAML: %w", err)
		}
		return string(data), nil
	case FormatBibTeX:
		return formatBibTeX(cites), nil
	case FormatAPA:
		return formatAPA(cites), nil
	case FormatMLA:
		return formatMLA(cites), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

func formatBibTeX(cites []types.Citation) string {
	var b strings.Builder
	for i, c := range cites {
		key := bibKey(c, i)
		fmt.Fprintf(&b, "@misc{%s,\n", key)
		if c.Title != "" {
			fmt.Fprintf(&b, "  title = {%s},\n", c.Title)
		}
		if c.Author != "" {
			fmt.Fprintf(&b, "  author = {%s},\n", c.Author)
		}
		if !c.PublishedDate.IsZero() {
			fmt.Fprintf(&b, "  year = {%d},\n", c.PublishedDate.Year())
		}
		fmt.Fprintf(&b, "  howpublished = {\\url{%s}},\n", c.URL)
		if !c.AccessedAt.IsZero() {
			fmt.Fprintf(&b, "  note = {Accessed %s},\n", c.AccessedAt.Format("2006-01-02"))
		}
		b.WriteString("}\n")
		if i < len(cites)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatAPA(cites []types.Citation) string {
	var b strings.Builder
	for _, c := range cites {
		author := c.Author
		if author == "" {
			author = c.Metadata.Domain
		}
		year := "n.d."
		if !c.PublishedDate.IsZero() {
			year = fmt.Sprintf("%d", c.PublishedDate.Year())
		}
		title := c.Title
		if title == "" {
			title = c.URL
		}
		fmt.Fprintf(&b, "%s. (%s). %s. %s\n", author, year, title, c.URL)
	}
	return b.String()
}

func formatMLA(cites []types.Citation) string {
	var b strings.Builder
	for _, c := range cites {
		author := c.Author
		if author == "" {
			author = c.Metadata.Domain
		}
		title := c.Title
		if title == "" {
			title = c.URL
		}
		if !c.PublishedDate.IsZero() {
			fmt.Fprintf(&b, "%s. \"%s.\" %s, %d, %s.\n",
				author, title, c.Metadata.Domain, c.PublishedDate.Year(), c.URL)
		} else {
			fmt.Fprintf(&b, "%s. \"%s.\" %s, %s.\n",
				author, title, c.Metadata.Domain, c.URL)
		}
	}
	return b.String()
}

// bibKey derives a stable BibTeX entry key from the author or domain plus
// year, with a positional suffix to guarantee uniqueness.
func bibKey(c types.Citation, i int) string {
	base := c.Author
	if base == "" {
		base = c.Metadata.Domain
	}
	if base == "" {
		base = "source"
	}

	var clean strings.Builder
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			clean.WriteRune(r)
		}
	}
	key := clean.String()
	if key == "" {
		key = "source"
	}

	if !c.PublishedDate.IsZero() {
		key = fmt.Sprintf("%s%d", key, c.PublishedDate.Year())
	}
	return fmt.Sprintf("%s_%d", key, i+1)
}
