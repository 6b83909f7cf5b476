package filter

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoria/nautiljon-planner/internal/metrics"
	"github.com/zoria/nautiljon-planner/internal/release"
)

func records(titles ...string) []*release.Record {
	out := make([]*release.Record, 0, len(titles))
	for _, title := range titles {
		out = append(out, &release.Record{Title: title, ReleaseDate: "15/03/2024"})
	}
	return out
}

func titles(recs []*release.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title)
	}
	return out
}

func TestNewKeywordFilter_Normalizes(t *testing.T) {
	f := NewKeywordFilter([]string{"Frieren", "\tTadokoro-san", "", "   ", "frieren", "Black Clover"})

	assert.Equal(t, []string{"Frieren", "Tadokoro-san", "Black Clover"}, f.Keywords())
	assert.False(t, f.IsEmpty())
}

func TestKeywordFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *KeywordFilter
		want   bool
	}{
		{"nil filter", nil, true},
		{"no keywords", NewKeywordFilter(nil), true},
		{"only blanks", NewKeywordFilter([]string{"", " "}), true},
		{"one keyword", NewKeywordFilter([]string{"Shy"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.IsEmpty())
		})
	}
}

func TestKeywordFilter_Matches(t *testing.T) {
	f := NewKeywordFilter([]string{"Frieren", "Black Clover", "Shy", "Ash le Bâtisseur"})

	tests := []struct {
		title string
		want  bool
	}{
		{"Frieren T13", true},
		{"FRIEREN - Édition collector", true},
		{"black clover T35", true},
		{"Random Title", false},
		// Substring semantics: mid-word matches are kept on purpose.
		{"Pushy Girl", true},
		{"Shyness Overload", true},
		{"ASH LE BÂTISSEUR DE CIVILISATION T2", true},
		{"Black", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Matches(tt.title))
		})
	}
}

func TestKeywordFilter_EmptyKeepsAll(t *testing.T) {
	input := records("Frieren", "Random Title", "Black Clover")

	got := NewKeywordFilter(nil).Apply(input)
	assert.Equal(t, titles(input), titles(got))

	var nilFilter *KeywordFilter
	assert.Equal(t, titles(input), titles(nilFilter.Apply(input)))
}

func TestKeywordFilter_ApplyPreservesOrder(t *testing.T) {
	m := metrics.New()
	f := NewKeywordFilter([]string{"Frieren", "Black Clover"})
	f.Metrics = m

	input := records("Frieren", "Random Title", "Black Clover")
	got := f.Apply(input)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"Frieren", "Black Clover"}, titles(got))
	assert.Same(t, input[0], got[0])
	assert.Same(t, input[2], got[1])

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsFiltered.WithLabelValues("kept")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsFiltered.WithLabelValues("dropped")))
}

// A record is retained iff some keyword is a case-insensitive substring of its title.
func TestKeywordFilter_RetentionProperty(t *testing.T) {
	keywordSets := [][]string{
		{},
		{"a"},
		{"Oshi", "KO"},
		{"l'Apothicaire", "Magic"},
		{"zzz"},
	}
	input := records(
		"Oshi no Ko T14",
		"Les Carnets de l'Apothicaire T11",
		"Magic Maker T3",
		"Horimiya",
		"Kamisama School",
	)

	for _, kws := range keywordSets {
		t.Run(strings.Join(kws, "|"), func(t *testing.T) {
			f := NewKeywordFilter(kws)
			got := f.Apply(input)

			var want []string
			for _, rec := range input {
				keep := len(kws) == 0
				for _, kw := range kws {
					if strings.Contains(strings.ToLower(rec.Title), strings.ToLower(kw)) {
						keep = true
					}
				}
				if keep {
					want = append(want, rec.Title)
				}
			}
			if want == nil {
				want = []string{}
			}
			assert.Equal(t, want, titles(got))
		})
	}
}

func TestKeywordFilter_String(t *testing.T) {
	assert.Equal(t, "No keyword filter (all releases)", NewKeywordFilter(nil).String())
	assert.Equal(t, "Keywords (2): Frieren, Shy", NewKeywordFilter([]string{"Frieren", "Shy"}).String())
}
