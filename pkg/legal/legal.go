// Package legal finds statute article links of the form
// [DISPLAY](article://CODE/ARTICLE) in assistant content.
package legal

import (
	"regexp"
)

// Scheme is the URI scheme of article links
const Scheme = "article"

var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(article://([^/)\s]+)/([^)\s]+)\)`)

// Reference is one article link
type Reference struct {
	Code        string `json:"code" yaml:"code"`
	Article     string `json:"article" yaml:"article"`
	DisplayText string `json:"displayText" yaml:"displayText"`
}

// URI rebuilds the article link target
func (r Reference) URI() string {
	return Scheme + "://" + r.Code + "/" + r.Article
}

// HasReferences reports whether content contains at least one article link
func HasReferences(content string) bool {
	return linkPattern.MatchString(content)
}

// Extract returns every article link in document order. Repeated links
// yield one reference per occurrence. Content is not modified.
func Extract(content string) []Reference {
	matches := linkPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{
			DisplayText: m[1],
			Code:        m[2],
			Article:     m[3],
		})
	}
	return refs
}
