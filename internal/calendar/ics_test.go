package calendar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoria/nautiljon-planner/internal/release"
)

func frieren() *release.Record {
	return &release.Record{
		Title:        "Frieren T13",
		ReleaseDate:  "15/03/2024",
		Price:        "7,20 €",
		Publisher:    release.Optional("Ki-oon"),
		PurchaseURL:  release.Optional("https://www.nautiljon.com/manga/123.html"),
		ThumbnailURL: release.Optional("https://www.nautiljon.com/imagesmin/123.webp"),
	}
}

func TestRender(t *testing.T) {
	ics := Render([]*release.Record{frieren()})

	requiredFields := []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"PRODID:" + prodID + "\r\n",
		"BEGIN:VEVENT\r\n",
		"SUMMARY:Frieren T13\r\n",
		"DTSTART;VALUE=DATE:20240315\r\n",
		"DTEND;VALUE=DATE:20240316\r\n",
		"DTSTAMP:20240315T000000Z\r\n",
		"URL:https://www.nautiljon.com/manga/123.html\r\n",
		"END:VEVENT\r\n",
	}

	for _, field := range requiredFields {
		assert.Contains(t, ics, field)
	}
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
}

func TestRender_Description(t *testing.T) {
	ics := Render([]*release.Record{frieren()})

	want := `DESCRIPTION:Publisher: Ki-oon\nRelease date: 15/03/2024\nPrice: 7\,20 €\nLink: https://www.nautiljon.com/manga/123.html` + "\r\n"
	assert.Contains(t, ics, want)

	// Description must stay on one physical line
	for _, line := range strings.Split(ics, "\r\n") {
		assert.NotContains(t, line, "\n")
	}
}

func TestRender_MissingOptionalFields(t *testing.T) {
	rec := &release.Record{Title: "Black Clover T35", ReleaseDate: "5/4/2024"}
	ics := Render([]*release.Record{rec})

	assert.Contains(t, ics, `DESCRIPTION:Publisher: \nRelease date: 05/04/2024\nPrice: \nLink: `+"\r\n")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240405\r\n")
	assert.NotContains(t, ics, "URL:")
}

func TestRender_Empty(t *testing.T) {
	for _, input := range [][]*release.Record{nil, {}} {
		ics := Render(input)

		assert.Equal(t,
			"BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:"+prodID+"\r\nCALSCALE:GREGORIAN\r\nMETHOD:PUBLISH\r\nEND:VCALENDAR\r\n",
			ics)
		assert.NotContains(t, ics, "BEGIN:VEVENT")
	}
}

func TestRender_SkipsUnparsableDates(t *testing.T) {
	records := []*release.Record{
		{Title: "Undated", ReleaseDate: "À paraître"},
		{Title: "Empty date", ReleaseDate: ""},
		frieren(),
	}

	ics := Render(records)
	assert.Equal(t, 1, strings.Count(ics, "BEGIN:VEVENT"))
	assert.NotContains(t, ics, "Undated")
	assert.NotContains(t, ics, "DTSTART;VALUE=DATE:\r\n", "no empty date events")
	assert.Equal(t, 1, CountEvents(records))
}

func TestRender_DedupesByTitle(t *testing.T) {
	first := &release.Record{Title: "X", ReleaseDate: "01/03/2024", Price: "7 €"}
	second := &release.Record{Title: "X", ReleaseDate: "01/03/2024", Price: "9 €"}
	third := &release.Record{Title: "X", ReleaseDate: "08/03/2024", Price: "9 €"}

	ics := Render([]*release.Record{first, second, third})

	assert.Equal(t, 1, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Equal(t, 1, strings.Count(ics, "SUMMARY:X\r\n"))
	assert.Contains(t, ics, `Price: 7 €`, "first occurrence wins")
	assert.NotContains(t, ics, `Price: 9 €`)
}

func TestRender_CaseDistinctTitlesGetDistinctUIDs(t *testing.T) {
	records := []*release.Record{
		{Title: "Frieren", ReleaseDate: "15/03/2024"},
		{Title: "FRIEREN", ReleaseDate: "22/03/2024"},
	}

	ics := Render(records)

	var uids []string
	for _, line := range strings.Split(ics, "\r\n") {
		if strings.HasPrefix(line, "UID:") {
			uids = append(uids, line)
		}
	}
	require.Len(t, uids, 2)
	assert.NotEqual(t, uids[0], uids[1])
	assert.Equal(t, 2, CountEvents(records))
}

func TestRender_InputOrder(t *testing.T) {
	records := []*release.Record{
		{Title: "Oshi no Ko", ReleaseDate: "20/03/2024"},
		{Title: "Black Clover", ReleaseDate: "15/03/2024"},
		{Title: "Oshi no Ko", ReleaseDate: "27/03/2024"},
		{Title: "Frieren", ReleaseDate: "01/03/2024"},
	}

	ics := Render(records)

	oshi := strings.Index(ics, "SUMMARY:Oshi no Ko")
	black := strings.Index(ics, "SUMMARY:Black Clover")
	frier := strings.Index(ics, "SUMMARY:Frieren")
	require.True(t, oshi >= 0 && black >= 0 && frier >= 0)
	assert.True(t, oshi < black && black < frier, "events follow first-occurrence input order")
}

func TestRender_Deterministic(t *testing.T) {
	records := []*release.Record{frieren(), {Title: "Horimiya", ReleaseDate: "02/02/2025"}}

	var a, b bytes.Buffer
	require.NoError(t, Write(&a, records))
	require.NoError(t, Write(&b, records))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestRender_EscapesSummary(t *testing.T) {
	rec := &release.Record{Title: `Re:Zero; Arc 3, "Truth" \ Zero`, ReleaseDate: "01/01/2025"}
	ics := Render([]*release.Record{rec})

	assert.Contains(t, ics, `SUMMARY:Re:Zero\; Arc 3\, "Truth" \\ Zero`+"\r\n")
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"a,b", `a\,b`},
		{"a;b", `a\;b`},
		{`a\b`, `a\\b`},
		{"a\nb", `a\nb`},
		{"a\r\nb", `a\nb`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeICS(tt.input))
		})
	}
}
