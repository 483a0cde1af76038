package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"livepop-server/config"
	"livepop-server/di"
	"livepop-server/models/live_popularity"
	"livepop-server/models/place"
)

const fixturePage = `<html><body><h1 class="DUwDvf">Fixture Bar</h1><h2>Popular times</h2>
<div aria-label="Currently 10% busy, usually 25% busy"></div></body></html>`

// withFixtureRoot points PROJECT_ROOT at a temp dir serving fixturePage for
// every place.
func withFixtureRoot(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "resources"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "resources", "place.html"), []byte(fixturePage), 0o644))
	t.Setenv("PROJECT_ROOT", root)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractCmd(t *testing.T) {
	labels := writeFile(t, "labels.json", `["12 PM: Currently 40% busy.", "Usually 15% busy at 12 PM.", "Directions"]`)

	out, err := run(t, "extract", "--labels-file", labels, "--place-name", "Pina Bar")
	require.NoError(t, err)

	var res live_popularity.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Pina Bar", res.PlaceName)
	assert.Equal(t, "12 PM", *res.HourLabel)
	assert.Equal(t, "busier than usual", *res.Keyword)
	assert.Equal(t, "270% spike", *res.SpikeLabel)
}

func TestExtractCmd_Tags(t *testing.T) {
	labels := writeFile(t, "labels.json", `["12 PM: Currently 40% busy.", "Directions"]`)

	out, err := run(t, "extract", "--labels-file", labels, "--tags")
	require.NoError(t, err)
	assert.Contains(t, out, "current")
	assert.Contains(t, out, "unrelated")
}

func TestExtractCmd_MissingFlag(t *testing.T) {
	_, err := run(t, "extract")
	assert.Error(t, err)
}

func TestExtractCmd_ResultFile(t *testing.T) {
	saved := writeFile(t, "result.json", `{
  "place_id": "0x7ab1f:0x1a2b",
  "place_name": "Pina Bar",
  "hour_label": "12 PM",
  "current_pct": 40,
  "usual_pct": 15,
  "raw_text": "12 PM: Currently 40% busy.",
  "keyword": "normal",
  "delta": 0
}`)

	out, err := run(t, "extract", "--result-file", saved)
	require.NoError(t, err)

	var res live_popularity.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "0x7ab1f:0x1a2b", res.PlaceID)
	assert.Equal(t, "Pina Bar", res.PlaceName)
	assert.Equal(t, "busier than usual", *res.Keyword)
	assert.Equal(t, 25, *res.Delta)
	assert.Equal(t, "270% spike", *res.SpikeLabel)
}

func TestExtractCmd_ResultFileAndLabelsFileConflict(t *testing.T) {
	labels := writeFile(t, "labels.json", `["Currently 40% busy."]`)
	saved := writeFile(t, "result.json", `{"place_name": "Pina Bar"}`)

	_, err := run(t, "extract", "--labels-file", labels, "--result-file", saved)
	assert.Error(t, err)
}

func TestScrapeCmd_DevFixtures(t *testing.T) {
	withFixtureRoot(t)

	cfgPath := writeFile(t, "config.yaml", strings.Join([]string{
		"env: dev",
		"log:",
		"  level: error",
		"scraper:",
		"  place_urls:",
		"    - https://www.google.com/maps/place/Fixture+Bar/@-8.09,-34.88,17z",
	}, "\n"))

	out, err := run(t, "--config", cfgPath, "scrape", "--json")
	require.NoError(t, err)

	var results []live_popularity.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Fixture Bar", results[0].PlaceName)
	assert.Equal(t, "quieter than usual", *results[0].Keyword)
}

func TestScrapeCmd_InvalidStoredMode(t *testing.T) {
	_, err := run(t, "scrape", "--stored", "everything")
	assert.ErrorContains(t, err, "invalid --stored")
}

func TestScrapeStored(t *testing.T) {
	withFixtureRoot(t)
	cfg := config.Default()
	cfg.Env = config.EnvDev
	ctx := context.Background()

	container, err := di.NewContainer(ctx, &cfg, zap.NewNop())
	require.NoError(t, err)
	defer container.Close()

	_, err = container.LivePopularityService.ScrapeAndCache(ctx, "https://www.google.com/maps/place/Fixture+Bar/@-8.09,-34.88,17z")
	require.NoError(t, err)

	uncached, err := place.ParsePlaceURL("https://www.google.com/maps/place/Other+Bar/@-8.10,-34.89,17z")
	require.NoError(t, err)
	require.NoError(t, container.RedisPlaceDao.UpsertPlace(ctx, uncached))

	results, err := scrapeStored(ctx, container, storedCached)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = scrapeStored(ctx, container, storedAll)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
