package normalize

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnsplittableTeams is returned when a match description does not yield
// exactly two non-empty team names.
var ErrUnsplittableTeams = errors.New("match text does not name two teams")

// Live listings embed the running score between the team names, e.g.
// "Arsenal 2 - 1 Chelsea". The score is replaced with a neutral separator
// before splitting.
var scoreRe = regexp.MustCompile(`\s+\d+\s*-\s*\d+\s+`)

const teamSeparator = " vs "

// SplitTeams extracts (home, away) from a match description such as
// "Arsenal vs Chelsea" or "Arsenal 2 - 1 Chelsea".
func SplitTeams(text string) (string, string, error) {
	cleaned := scoreRe.ReplaceAllString(text, teamSeparator)

	if !strings.Contains(cleaned, teamSeparator) {
		return "", "", errors.Wrapf(ErrUnsplittableTeams, "no separator in %q", text)
	}

	parts := strings.SplitN(cleaned, teamSeparator, 3)
	if len(parts) != 2 {
		return "", "", errors.Wrapf(ErrUnsplittableTeams, "%d segments in %q", len(parts), text)
	}

	home := strings.TrimSpace(parts[0])
	away := strings.TrimSpace(parts[1])
	if home == "" || away == "" {
		return "", "", errors.Wrapf(ErrUnsplittableTeams, "empty team in %q", text)
	}
	return home, away, nil
}

// Team canonicalizes a single team name.
func Team(text string) string {
	return strings.TrimSpace(text)
}
