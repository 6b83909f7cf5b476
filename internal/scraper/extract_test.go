package scraper

import (
	"os"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoria/nautiljon-planner/internal/logger"
	"github.com/zoria/nautiljon-planner/internal/metrics"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/planning_manga.html")
	require.NoError(t, err, "failed to load test fixture")
	return string(data)
}

func TestExtractRows_Fixture(t *testing.T) {
	m := metrics.New()
	e := &Extractor{Log: logger.NewNop(), Metrics: m}

	seq, err := e.Rows(loadFixture(t))
	require.NoError(t, err)

	rows := slices.Collect(seq)
	require.Len(t, rows, 4, "header and colspan rows must be skipped")

	first := rows[0]
	assert.Equal(t, "15/03/2024", first.DateText)
	assert.Equal(t, "/imagesmin/manga/frieren-13.webp", first.Thumbnail)
	assert.Equal(t, "Frieren T13", first.Title, "title comes from the last anchor")
	assert.Equal(t, "7,20 €", first.Price)
	assert.Equal(t, "Ki-oon", first.Publisher)
	assert.Equal(t, "/manga/frieren/volume-13/acheter.html", first.Purchase)

	second := rows[1]
	assert.Equal(t, "  Random Title  ", second.Title, "extraction does not trim")
	assert.Equal(t, "Kana", second.Publisher, "publisher falls back to cell text")
	assert.Empty(t, second.Purchase)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.RowsTotal.WithLabelValues(metrics.RowExtracted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsTotal.WithLabelValues(metrics.RowSkipped)))
}

func TestExtractRows_Fragment(t *testing.T) {
	markup := `<tbody>
		<tr><td>01/04/2024</td><td></td><td>Plain title</td><td>8 €</td><td></td><td></td></tr>
		<tr><td>only</td><td>three</td><td>cells</td></tr>
	</tbody>`

	seq, err := ExtractRows(markup)
	require.NoError(t, err)

	rows := slices.Collect(seq)
	require.Len(t, rows, 1)
	assert.Equal(t, "Plain title", rows[0].Title, "cell text is used when there is no anchor")
	assert.Equal(t, 1, rows[0].Row)
}

func TestExtractRows_SinglePass(t *testing.T) {
	seq, err := ExtractRows(`<tr><td>1</td><td>2</td><td>3</td><td>4</td><td>5</td><td>6</td></tr>`)
	require.NoError(t, err)

	assert.Len(t, slices.Collect(seq), 1)
	assert.Empty(t, slices.Collect(seq), "sequence must not restart")
}

func TestExtractRows_EarlyStop(t *testing.T) {
	markup := `<tbody>
		<tr><td>a</td><td></td><td>A</td><td></td><td></td><td></td></tr>
		<tr><td>b</td><td></td><td>B</td><td></td><td></td><td></td></tr>
	</tbody>`

	seq, err := ExtractRows(markup)
	require.NoError(t, err)

	var seen []string
	for raw := range seq {
		seen = append(seen, raw.Title)
		break
	}
	assert.Equal(t, []string{"A"}, seen)
}

func TestExtractRows_Empty(t *testing.T) {
	for _, markup := range []string{"", "<tbody></tbody>", "<p>maintenance</p>"} {
		seq, err := ExtractRows(markup)
		require.NoError(t, err)
		assert.Empty(t, slices.Collect(seq), "markup %q", markup)
	}
}

func TestWrapTable(t *testing.T) {
	assert.Equal(t, "<table><tbody></tbody></table>", wrapTable("<tbody></tbody>"))
	assert.Equal(t, "<TABLE id=x></TABLE>", wrapTable("<TABLE id=x></TABLE>"))
	assert.Equal(t, "<table>\n <TR></TR></table>", wrapTable("\n <TR></TR>"))
	assert.Equal(t, "<p>maintenance</p>", wrapTable("<p>maintenance</p>"))
}

func TestExtractRows_NestedTableInFragment(t *testing.T) {
	markup := `<tbody>
		<tr><td>01/04/2024</td><td></td><td>Nested</td><td>8 €</td><td><table><tr><td>Glénat</td></tr></table></td><td></td></tr>
		<tr><td>08/04/2024</td><td></td><td>Second</td><td>9 €</td><td></td><td></td></tr>
	</tbody>`

	seq, err := ExtractRows(markup)
	require.NoError(t, err)

	rows := slices.Collect(seq)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nested", rows[0].Title)
	assert.Equal(t, "Second", rows[1].Title)
}

func TestImageSource(t *testing.T) {
	markup := `<tr>
		<td>d</td><td><img data-src="/lazy.webp"></td><td>T</td><td></td><td></td><td></td>
	</tr>`
	seq, err := ExtractRows(markup)
	require.NoError(t, err)

	rows := slices.Collect(seq)
	require.Len(t, rows, 1)
	assert.Equal(t, "/lazy.webp", rows[0].Thumbnail)
}
