package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/soccer-fixtures/internal/domain/broadcast"
)

// scheduleTableStrategy reads the older schedule-table layout: rows inside
// table.schedules with /teams/ links for both sides, dedicated date, time and
// venue cells, and broadcaster cells whose flag image names the country.
type scheduleTableStrategy struct{}

func (scheduleTableStrategy) Name() string { return "schedule_tables" }

func (scheduleTableStrategy) Extract(doc *goquery.Document) []Candidate {
	var out []Candidate

	doc.Find("table.schedules tr").Each(func(_ int, row *goquery.Selection) {
		teamLinks := row.Find("a").FilterFunction(hrefContains("/teams/"))
		if teamLinks.Length() < 2 {
			return
		}

		cand := Candidate{
			Strategy:  "schedule_tables",
			HomeText:  text(teamLinks.Eq(0)),
			AwayText:  text(teamLinks.Eq(1)),
			DateText:  firstText(row, "td.date", "span.date"),
			TimeText:  firstText(row, "span.time", "td.time"),
			VenueText: firstText(row, "span.venue", "td.venue"),
		}

		row.Find("td.broadcaster").Each(func(_ int, cell *goquery.Selection) {
			country := broadcast.CountryVarious
			if alt, ok := cell.Find("img[alt]").First().Attr("alt"); ok && alt != "" {
				country = alt
			}
			cell.Find("a").Each(func(_ int, link *goquery.Selection) {
				name := text(link)
				if len(name) > 1 {
					cand.Channels = append(cand.Channels, Channel{
						CountryText: country,
						Name:        name,
					})
				}
			})
		})

		out = append(out, cand)
	})

	return out
}

func firstText(row *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if found := row.Find(sel).First(); found.Length() > 0 {
			return text(found)
		}
	}
	return ""
}
