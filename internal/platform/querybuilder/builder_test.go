package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("f.id", "f.home_team").
		From("fixtures f").
		Join("broadcasters b ON b.fixture_id = f.id").
		Where(
			Eq("f.competition", "Premier League"),
			Like("UPPER(b.country)", "%UK%"),
		).
		OrderBy("f.fixture_date", "f.fixture_time").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}

	want := "SELECT f.id, f.home_team FROM fixtures f" +
		" JOIN broadcasters b ON b.fixture_id = f.id" +
		" WHERE f.competition = ? AND UPPER(b.country) LIKE ?" +
		" ORDER BY f.fixture_date, f.fixture_time LIMIT 10"
	if query != want {
		t.Fatalf("query mismatch:\n got %s\nwant %s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"Premier League", "%UK%"}) {
		t.Fatalf("args mismatch: %v", args)
	}
}

func TestSelectBuilderGroupHaving(t *testing.T) {
	query, args, err := Select("competition", "COUNT(*) AS n").
		From("fixtures").
		GroupBy("competition").
		Having("COUNT(*) > 1").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	want := "SELECT competition, COUNT(*) AS n FROM fixtures GROUP BY competition HAVING COUNT(*) > 1"
	if query != want {
		t.Fatalf("query mismatch: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestSelectBuilderValidation(t *testing.T) {
	if _, _, err := Select().From("fixtures").ToSQL(); err == nil {
		t.Fatal("expected error for missing columns")
	}
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("broadcasters").
		Columns("fixture_id", "country", "channel").
		Values(int64(7), "UK", "Sky Sports").
		Values(int64(7), "USA", "Peacock").
		Suffix("ON CONFLICT(fixture_id, country, channel) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}

	want := "INSERT INTO broadcasters (fixture_id, country, channel) VALUES (?, ?, ?), (?, ?, ?)" +
		" ON CONFLICT(fixture_id, country, channel) DO NOTHING"
	if query != want {
		t.Fatalf("query mismatch: %s", query)
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %v", args)
	}
}

func TestInsertBuilderRowArity(t *testing.T) {
	_, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL()
	if err == nil {
		t.Fatal("expected arity error")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("fixtures").
		Where(Lt("fixture_date", "2026-01-16")).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if query != "DELETE FROM fixtures WHERE fixture_date < ?" {
		t.Fatalf("query mismatch: %s", query)
	}
	if !reflect.DeepEqual(args, []any{"2026-01-16"}) {
		t.Fatalf("args mismatch: %v", args)
	}
}
