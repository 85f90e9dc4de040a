package schedule

import (
	"testing"
	"time"
)

var wildcats = TeamIdentity{Name: "Kansas State", Abbreviation: "KSU"}

func TestOpponent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		game     Game
		wantName string
		wantOK   bool
	}{
		{
			name: "home game",
			game: Game{Competitors: []Competitor{
				{DisplayName: "Kansas State Wildcats", Abbreviation: "KSU", HomeAway: "home"},
				{DisplayName: "Iowa State Cyclones", Abbreviation: "ISU", HomeAway: "away"},
			}},
			wantName: "Iowa State Cyclones",
			wantOK:   true,
		},
		{
			name: "away game order reversed",
			game: Game{Competitors: []Competitor{
				{DisplayName: "Texas Tech Red Raiders", Abbreviation: "TTU", HomeAway: "home"},
				{DisplayName: "Kansas State Wildcats", Abbreviation: "KSU", HomeAway: "away"},
			}},
			wantName: "Texas Tech Red Raiders",
			wantOK:   true,
		},
		{
			name: "abbreviation match only",
			game: Game{Competitors: []Competitor{
				{DisplayName: "K-State", Abbreviation: "KSU", HomeAway: "home"},
				{DisplayName: "Kansas Jayhawks", Abbreviation: "KU", HomeAway: "away"},
			}},
			wantName: "Kansas Jayhawks",
			wantOK:   true,
		},
		{
			name: "no competitor matches",
			game: Game{Competitors: []Competitor{
				{DisplayName: "Kansas Jayhawks", Abbreviation: "KU", HomeAway: "home"},
				{DisplayName: "Baylor Bears", Abbreviation: "BAY", HomeAway: "away"},
			}},
			wantOK: false,
		},
		{
			name: "both competitors match",
			game: Game{Competitors: []Competitor{
				{DisplayName: "Kansas State Wildcats", Abbreviation: "KSU", HomeAway: "home"},
				{DisplayName: "Kansas State Club", Abbreviation: "KSC", HomeAway: "away"},
			}},
			wantOK: false,
		},
		{
			name:   "no competitors at all",
			game:   Game{},
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Opponent(tc.game, wildcats)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got.DisplayName != tc.wantName {
				t.Fatalf("opponent = %q, want %q", got.DisplayName, tc.wantName)
			}
		})
	}
}

func TestIsHomeGame(t *testing.T) {
	t.Parallel()

	g := Game{Competitors: []Competitor{
		{DisplayName: "Kansas State Wildcats", HomeAway: "away"},
		{DisplayName: "Oklahoma State Cowboys", HomeAway: "home"},
	}}
	home, ok := IsHomeGame(g, wildcats)
	if !ok {
		t.Fatal("team not identified")
	}
	if home {
		t.Fatal("expected away game")
	}

	if _, ok := IsHomeGame(Game{}, wildcats); ok {
		t.Fatal("expected not ok for empty competitors")
	}
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{
			name: "same local day",
			a:    time.Date(2025, 9, 6, 9, 0, 0, 0, est),
			b:    time.Date(2025, 9, 6, 22, 30, 0, 0, est),
			want: true,
		},
		{
			name: "one minute past local midnight",
			a:    time.Date(2025, 9, 6, 23, 59, 0, 0, est),
			b:    time.Date(2025, 9, 7, 0, 1, 0, 0, est),
			want: false,
		},
		{
			name: "utc evening is same local day",
			// 23:30 UTC is 19:30 EDT on the same date.
			a:    time.Date(2025, 9, 6, 23, 30, 0, 0, time.UTC),
			b:    time.Date(2025, 9, 6, 12, 0, 0, 0, est),
			want: true,
		},
		{
			name: "utc early morning is previous local day",
			// 02:00 UTC Sep 7 is 22:00 EDT Sep 6.
			a:    time.Date(2025, 9, 7, 2, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 9, 7, 12, 0, 0, 0, est),
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SameDay(tc.a, tc.b, est); got != tc.want {
				t.Fatalf("SameDay = %v, want %v", got, tc.want)
			}
		})
	}
}
