package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoria/nautiljon-planner/internal/release"
)

func sampleRecords() []*release.Record {
	return []*release.Record{
		{
			Title:        "Frieren T13",
			ReleaseDate:  "15/03/2024",
			Price:        "7,20 €",
			Publisher:    release.Optional("Ki-oon"),
			PurchaseURL:  release.Optional("https://www.nautiljon.com/manga/123.html?a=1&b=2"),
			ThumbnailURL: release.Optional("https://www.nautiljon.com/imagesmin/123.webp"),
		},
		{
			Title:       "Black Clover T35",
			ReleaseDate: "À paraître",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{" ics ", FormatICS, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRecords()))
	out := buf.String()

	assert.Contains(t, out, `"title": "Frieren T13"`)
	assert.Contains(t, out, `"price": "7,20 €"`, "non-ASCII must not be escaped")
	assert.Contains(t, out, `"release_date": "À paraître"`, "raw date text is preserved")
	assert.Contains(t, out, `?a=1&b=2`, "HTML characters must not be escaped")
	assert.Contains(t, out, `"publisher": null`)
	assert.Contains(t, out, `"purchase_url": null`)
	assert.Contains(t, out, `"thumbnail_url": null`)

	// Field order is fixed
	first := out[:strings.Index(out, "}")]
	last := -1
	for _, field := range release.Fields {
		idx := strings.Index(first, `"`+field+`"`)
		require.GreaterOrEqual(t, idx, 0, "missing field %s", field)
		assert.Greater(t, idx, last, "field %s out of order", field)
		last = idx
	}

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}

func TestWriteJSON_Empty(t *testing.T) {
	for _, input := range [][]*release.Record{nil, {}} {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, input))
		assert.Equal(t, "[]\n", buf.String())
	}
}

func TestReadJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRecords()))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)

	got, err = ReadJSON(strings.NewReader("null"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadJSON(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	want := "title,release_date,price,publisher,purchase_url,thumbnail_url\n" +
		"Frieren T13,15/03/2024,\"7,20 €\",Ki-oon,https://www.nautiljon.com/manga/123.html?a=1&b=2,https://www.nautiljon.com/imagesmin/123.webp\n" +
		"Black Clover T35,À paraître,,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "title,release_date,price,publisher,purchase_url,thumbnail_url\n", buf.String())
}

func TestWrite_AllFormatsDeterministic(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatCSV, FormatICS} {
		t.Run(string(format), func(t *testing.T) {
			var a, b bytes.Buffer
			require.NoError(t, Write(&a, format, sampleRecords()))
			require.NoError(t, Write(&b, format, sampleRecords()))
			assert.Equal(t, a.Bytes(), b.Bytes())
			assert.NotEmpty(t, a.Bytes())
		})
	}

	err := Write(&bytes.Buffer{}, Format("xml"), nil)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "planning.ics")

	require.NoError(t, WriteFile(path, FormatICS, sampleRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "BEGIN:VEVENT"))
}

func TestWriteFile_UnknownFormatWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planning.xml")

	err := WriteFile(path, Format("xml"), sampleRecords())
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDefaultPath(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, "planning_20240315_090507.csv", DefaultPath(FormatCSV, now))
	assert.Equal(t, "planning_20240315_090507.ics", DefaultPath(FormatICS, now))
}
