package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const matchRowHTML = `
<html><body><table>
<tr class="drow"><td><a href="/schedules/2026-01-17/">Sat 17 Jan</a></td></tr>
<tr class="matchrow">
  <td><span class="ts">15:00</span></td>
  <td><a href="/match/12345/arsenal-vs-chelsea/">Arsenal vs Chelsea</a></td>
  <td id="channels">
    <a href="/channels/1/sky-sports-main-event/">Sky Sports Main Event</a>
    <a href="/channels/2/peacock/">Peacock</a>
    <a href="/channels/3/x/">X</a>
  </td>
</tr>
<tr class="drow"><td><a href="/schedules/2026-01-18/">Sun 18 Jan</a></td></tr>
<tr class="matchrow">
  <td><span class="ts">17:30</span></td>
  <td><a href="/match/12346/liverpool-vs-everton/">Liverpool 2 - 1 Everton</a></td>
</tr>
</table></body></html>`

func TestMatchRowStrategy(t *testing.T) {
	doc, err := Document(matchRowHTML)
	require.NoError(t, err)

	cands := matchRowStrategy{}.Extract(doc)
	require.Len(t, cands, 2)

	first := cands[0]
	require.Equal(t, "Arsenal vs Chelsea", first.MatchText)
	require.Equal(t, "15:00", first.TimeText)
	require.Contains(t, first.DateText, "2026-01-17")
	// Single-letter channel names are noise and dropped.
	require.Len(t, first.Channels, 2)
	require.Equal(t, "Sky Sports Main Event", first.Channels[0].Name)
	require.Equal(t, "Various", first.Channels[0].CountryText)

	second := cands[1]
	require.Equal(t, "Liverpool 2 - 1 Everton", second.MatchText)
	require.Contains(t, second.DateText, "2026-01-18")
	require.Empty(t, second.Channels)
}

const scheduleTableHTML = `
<html><body>
<table class="schedules">
<tr>
  <td class="date">Mon 13 Jan</td>
  <td><a href="/teams/1/arsenal/">Arsenal</a></td>
  <td><a href="/teams/2/chelsea/">Chelsea</a></td>
  <td class="time">20:00</td>
  <td class="venue">Emirates Stadium</td>
  <td class="broadcaster"><img alt="UK"/><a href="#">Sky Sports</a></td>
  <td class="broadcaster"><img alt="USA"/><a href="#">NBC Sports</a><a href="#">Peacock</a></td>
</tr>
<tr><td>header row, no team links</td></tr>
</table>
</body></html>`

func TestScheduleTableStrategy(t *testing.T) {
	doc, err := Document(scheduleTableHTML)
	require.NoError(t, err)

	cands := scheduleTableStrategy{}.Extract(doc)
	require.Len(t, cands, 1)

	c := cands[0]
	require.Equal(t, "Arsenal", c.HomeText)
	require.Equal(t, "Chelsea", c.AwayText)
	require.Equal(t, "Mon 13 Jan", c.DateText)
	require.Equal(t, "20:00", c.TimeText)
	require.Equal(t, "Emirates Stadium", c.VenueText)
	require.Len(t, c.Channels, 3)
	require.Equal(t, Channel{CountryText: "UK", Name: "Sky Sports"}, c.Channels[0])
	require.Equal(t, Channel{CountryText: "USA", Name: "NBC Sports"}, c.Channels[1])
	require.Equal(t, Channel{CountryText: "USA", Name: "Peacock"}, c.Channels[2])
}

const matchDivHTML = `
<html><body>
<div class="fixture">
  <span class="team">Bayern</span>
  <span class="team">Dortmund</span>
  <span class="date">Today</span>
</div>
<div class="match"><span class="team">only one team</span></div>
</body></html>`

func TestMatchDivStrategy(t *testing.T) {
	doc, err := Document(matchDivHTML)
	require.NoError(t, err)

	cands := matchDivStrategy{}.Extract(doc)
	require.Len(t, cands, 1)
	require.Equal(t, "Bayern", cands[0].HomeText)
	require.Equal(t, "Dortmund", cands[0].AwayText)
	require.Equal(t, "Today", cands[0].DateText)
}

func TestStrategiesOrder(t *testing.T) {
	names := make([]string, 0, 3)
	for _, s := range Strategies() {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"match_rows", "schedule_tables", "match_divs"}, names)
}

func TestStrategiesOnEmptyDocument(t *testing.T) {
	doc, err := Document("<html><body><p>Just a moment...</p></body></html>")
	require.NoError(t, err)

	for _, s := range Strategies() {
		require.Empty(t, s.Extract(doc), "strategy %s", s.Name())
	}
}
