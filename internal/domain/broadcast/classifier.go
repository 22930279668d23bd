package broadcast

import "strings"

// CountryVarious marks a channel the classifier could not resolve. It is a
// reporting bucket, never an error.
const CountryVarious = "Various"

type channelMapping struct {
	channel string
	country string
}

// channelCountries maps known channel names to their broadcast country.
// Order matters: the substring fallback scans entries top to bottom and the
// first hit wins, so broader names ("Sky Sport") must come after the more
// specific variants of other markets that embed them.
var channelCountries = []channelMapping{
	// USA
	{"NBC", "USA"}, {"NBC Sports", "USA"}, {"Peacock", "USA"}, {"Peacock Premium", "USA"},
	{"USA Network", "USA"}, {"Universo", "USA"}, {"ESPN", "USA"}, {"ESPN+", "USA"},
	{"ESPN Deportes", "USA"}, {"CBS Sports", "USA"}, {"CBS Sports Network", "USA"},
	{"CBS Sports Golazo Network", "USA"}, {"Paramount+", "USA"}, {"beIN Sports", "USA"},
	{"beIN Sports USA", "USA"}, {"beIN Sports en Español", "USA"},

	// UK
	{"Sky Sports", "UK"}, {"Sky Sports Premier League", "UK"}, {"Sky Sports Main Event", "UK"},
	{"Sky Sports Ultra HDR", "UK"}, {"Sky Sports 4K", "UK"}, {"TNT Sports", "UK"},
	{"TNT Sports 1", "UK"}, {"TNT Sports 2", "UK"}, {"TNT Sports 3", "UK"}, {"TNT Sports 4", "UK"},
	{"LaLigaTV", "UK"}, {"Premier Sports", "UK"}, {"Premier Sports 1", "UK"}, {"Premier Sports 2", "UK"},

	// Spain
	{"DAZN España", "Spain"}, {"DAZN Spain", "Spain"}, {"DAZN LaLiga", "Spain"}, {"DAZN1 Spain", "Spain"},
	{"Movistar", "Spain"}, {"Movistar+", "Spain"}, {"Movistar LaLiga", "Spain"},
	{"Movistar+ Deportes", "Spain"}, {"Movistar+ Deportes 2", "Spain"},
	{"LaLiga TV Bar", "Spain"},

	// Germany
	{"Sky Sport", "Germany"}, {"Sky Sport Premier League", "Germany"},
	{"DAZN Germany", "Germany"}, {"WOW", "Germany"},

	// Austria
	{"Sky Sport Austria", "Austria"}, {"DAZN Austria", "Austria"},

	// Italy
	{"DAZN Italia", "Italy"},

	// Portugal
	{"DAZN Portugal", "Portugal"}, {"DAZN1 Portugal", "Portugal"},

	// Albania
	{"SuperSport 2 Digitalb", "Albania"}, {"SuperSport 3 Digitalb", "Albania"},
	{"Tring", "Albania"}, {"Tring Sport 1", "Albania"},

	// France
	{"Canal+ France", "France"}, {"Canal+ Sport", "France"},

	// International
	{"Bet365", "International"},
	{"DAZN", "International"},
}

var exactChannelCountry = func() map[string]string {
	m := make(map[string]string, len(channelCountries))
	for _, e := range channelCountries {
		if _, ok := m[e.channel]; !ok {
			m[e.channel] = e.country
		}
	}
	return m
}()

// CountryForChannel resolves a channel name to its broadcast country.
// Resolution order: exact table match, then a case-insensitive substring scan
// in table-declaration order (first declared key found wins), then
// CountryVarious. Best effort, never an error.
func CountryForChannel(channel string) string {
	if country, ok := exactChannelCountry[channel]; ok {
		return country
	}

	lower := strings.ToLower(channel)
	for _, e := range channelCountries {
		if strings.Contains(lower, strings.ToLower(e.channel)) {
			return e.country
		}
	}

	return CountryVarious
}

// Resolved reports whether a country value is a real classification rather
// than the unresolved marker.
func Resolved(country string) bool {
	return country != "" && country != CountryVarious
}
