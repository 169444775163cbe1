package search

import (
	"testing"

	"github.com/winfind/winfind/internal/models"
)

func item(title, owner, subtitle string) models.Item {
	return models.Item{
		Title:     title,
		OwnerName: owner,
		Subtitle:  subtitle,
	}
}

func TestScoreEmptyQuery(t *testing.T) {
	if got := Score("", item("Terminal", "Terminal", "Window")); got != 0 {
		t.Errorf("Score(empty) = %f, want 0", got)
	}
}

func TestScoreNoMatchIsZero(t *testing.T) {
	got := Score("zzz", item("Activity Monitor", "Activity Monitor", "Window"))
	if got != 0 {
		t.Errorf("Score(no match) = %f, want 0", got)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	lower := Score("chrome", item("Google Chrome", "Google Chrome", ""))
	// Callers lower-case the query, the item fields may be any case.
	if lower <= 0 {
		t.Fatalf("Score = %f, want > 0", lower)
	}
}

func TestExactOutscoresSubstring(t *testing.T) {
	it := item("Mail", "Mail", "Window")
	exact := Score("mail", it)
	substring := Score("ai", it)
	if exact <= substring {
		t.Errorf("exact match %f should outscore substring match %f", exact, substring)
	}
}

func TestAcronymMatch(t *testing.T) {
	chrome := item("Google Chrome", "Google Chrome", "")
	monitor := item("Activity Monitor", "Activity Monitor", "")

	chromeScore := Score("gc", chrome)
	monitorScore := Score("gc", monitor)

	if chromeScore <= 0 {
		t.Fatalf("'gc' should match 'Google Chrome' by acronym, got %f", chromeScore)
	}
	if monitorScore >= chromeScore {
		t.Errorf("'Google Chrome' (%f) should outrank 'Activity Monitor' (%f) for 'gc'", chromeScore, monitorScore)
	}
}

func TestRelativeRankingForCode(t *testing.T) {
	vscode := item("Visual Studio Code", "Visual Studio Code", "")
	xcode := item("Xcode", "Xcode", "")
	terminal := item("Terminal", "Terminal", "Command Line")

	vs := Score("code", vscode)
	xc := Score("code", xcode)
	term := Score("code", terminal)

	if vs <= xc {
		t.Errorf("'Visual Studio Code' (%f) should outrank 'Xcode' (%f)", vs, xc)
	}
	if xc <= term {
		t.Errorf("'Xcode' (%f) should outrank 'Terminal' (%f)", xc, term)
	}
	if term < 0 {
		t.Errorf("'Terminal' scored negative: %f", term)
	}
}

func TestTitleWeighsMoreThanSubtitle(t *testing.T) {
	inTitle := Score("report", item("Report Editor", "App", "Window"))
	inSubtitle := Score("report", item("Editor", "App", "Report Draft"))
	if inTitle <= inSubtitle {
		t.Errorf("title match %f should outscore subtitle match %f", inTitle, inSubtitle)
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  string // "zero", "positive"
	}{
		{"full subsequence", "trm", "terminal", "positive"},
		{"incomplete subsequence", "xyz", "terminal", "zero"},
		{"exact run", "term", "terminal", "positive"},
		{"empty text", "a", "", "zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fuzzyMatch(tt.query, tt.text)
			switch tt.want {
			case "zero":
				if got != 0 {
					t.Errorf("fuzzyMatch(%q, %q) = %f, want 0", tt.query, tt.text, got)
				}
			case "positive":
				if got <= 0 {
					t.Errorf("fuzzyMatch(%q, %q) = %f, want > 0", tt.query, tt.text, got)
				}
			}
		})
	}
}

func TestFuzzyMatchRewardsClusters(t *testing.T) {
	clustered := fuzzyMatch("abc", "abcxxxx")
	scattered := fuzzyMatch("abc", "axbxcxx")
	if clustered <= scattered {
		t.Errorf("clustered match %f should beat scattered match %f", clustered, scattered)
	}
}

func TestWordBoundaryMatch(t *testing.T) {
	tests := []struct {
		query string
		text  string
		want  float64
	}{
		{"vi", "visual studio code", 1},
		{"s", "visual studio sink", 2},
		{"co", "code-completion, coffee", 3},
		{"q", "visual studio", 0},
	}

	for _, tt := range tests {
		if got := wordBoundaryMatch(tt.query, tt.text); got != tt.want {
			t.Errorf("wordBoundaryMatch(%q, %q) = %f, want %f", tt.query, tt.text, got, tt.want)
		}
	}
}

func TestAcronymPartialCredit(t *testing.T) {
	full := acronymMatch("vsc", "visual studio code")
	if full != 1.0 {
		t.Errorf("full acronym match = %f, want 1.0", full)
	}

	partial := acronymMatch("vsx", "visual studio code")
	if partial <= 0 || partial >= 1 {
		t.Errorf("partial acronym match = %f, want in (0, 1)", partial)
	}

	none := acronymMatch("xx", "visual studio code")
	if none != 0 {
		t.Errorf("no acronym match = %f, want 0", none)
	}
}

func TestScoreDeterministic(t *testing.T) {
	it := item("Google Chrome", "Google Chrome", "github - pull requests")
	first := Score("chrome", it)
	for i := 0; i < 10; i++ {
		if got := Score("chrome", it); got != first {
			t.Fatalf("Score not deterministic: %f != %f", got, first)
		}
	}
}
