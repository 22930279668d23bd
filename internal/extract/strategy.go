// Package extract pulls candidate fixture blocks out of raw competition-page
// markup. Competition pages come in several structural flavors, so extraction
// is a fixed-priority list of strategies, each matching one flavor. The first
// strategy whose blocks survive record building wins for that document;
// a document no strategy can read is empty, not broken.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

// Channel is one broadcaster entry as found in the markup. CountryText is
// whatever the page carried (a flag-image label, usually) and may be the
// unresolved marker; classification happens at query time.
type Channel struct {
	CountryText string
	Name        string
}

// Candidate is one raw fixture block. Either MatchText ("Team1 vs Team2",
// possibly with an embedded live score) or HomeText/AwayText is set,
// depending on which strategy produced it. All fields are unnormalized.
type Candidate struct {
	Strategy  string
	MatchText string
	HomeText  string
	AwayText  string
	DateText  string
	TimeText  string
	VenueText string
	Channels  []Channel
}

// Strategy is one self-contained markup-parsing algorithm.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) []Candidate
}

// Strategies returns the extraction strategies in priority order: tagged
// match rows, then generic schedule tables, then generic match containers.
func Strategies() []Strategy {
	return []Strategy{
		matchRowStrategy{},
		scheduleTableStrategy{},
		matchDivStrategy{},
	}
}

// Document parses one raw HTML document.
func Document(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "parse document")
	}
	return doc, nil
}

func hrefContains(sub string) func(int, *goquery.Selection) bool {
	return func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		return ok && strings.Contains(href, sub)
	}
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
