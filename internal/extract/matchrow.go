package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/soccer-fixtures/internal/domain/broadcast"
)

// matchRowStrategy reads the site's primary listing layout: one tr.matchrow
// per fixture, a /match/ link holding the team text, kickoff time in span.ts,
// channels under td#channels, and the calendar date on the nearest preceding
// tr.drow date-separator row as a /schedules/YYYY-MM-DD/ link.
type matchRowStrategy struct{}

func (matchRowStrategy) Name() string { return "match_rows" }

func (matchRowStrategy) Extract(doc *goquery.Document) []Candidate {
	var out []Candidate

	doc.Find("tr.matchrow").Each(func(_ int, row *goquery.Selection) {
		matchLink := row.Find("a").FilterFunction(hrefContains("/match/")).First()
		if matchLink.Length() == 0 {
			return
		}

		cand := Candidate{
			Strategy:  "match_rows",
			MatchText: text(matchLink),
			TimeText:  text(row.Find("span.ts").First()),
		}

		dateRow := row.PrevAllFiltered("tr.drow").First()
		if dateRow.Length() > 0 {
			dateLink := dateRow.Find("a").FilterFunction(hrefContains("/schedules/")).First()
			if href, ok := dateLink.Attr("href"); ok {
				// ISO date embedded in the schedule URL.
				cand.DateText = href
			}
		}

		row.Find("td#channels a").FilterFunction(hrefContains("/channels/")).Each(func(_ int, link *goquery.Selection) {
			name := text(link)
			if len(name) > 1 {
				cand.Channels = append(cand.Channels, Channel{
					CountryText: broadcast.CountryVarious,
					Name:        name,
				})
			}
		})

		out = append(out, cand)
	})

	return out
}
