package extract

import "github.com/PuerkitoBio/goquery"

// matchDivStrategy is the last-resort layout: generic item containers with
// team-name spans and, when lucky, a date element. No time, venue or channel
// information survives in this flavor.
type matchDivStrategy struct{}

func (matchDivStrategy) Name() string { return "match_divs" }

func (matchDivStrategy) Extract(doc *goquery.Document) []Candidate {
	var out []Candidate

	doc.Find("div.match, div.fixture, div.game").Each(func(_ int, div *goquery.Selection) {
		teams := div.Find("span.team, div.team, span.team-name, div.team-name")
		if teams.Length() < 2 {
			return
		}

		out = append(out, Candidate{
			Strategy: "match_divs",
			HomeText: text(teams.Eq(0)),
			AwayText: text(teams.Eq(1)),
			DateText: firstText(div, "span.date", "div.date", "span.match-date", "div.match-date"),
		})
	})

	return out
}
