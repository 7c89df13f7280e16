// Copyright Ansvar Systems AB, 2026. All rights reserved.

package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

const agreementsIndex = `<html><body>
<table>
  <tr>
    <td><a href="LawPage.aspx?id=10&language=en">First Agreement الاتفاقية الأولى</a></td>
  </tr>
  <tr>
    <td><a href="LawPage.aspx?id=11&language=en">Second Agreement الاتفاقية الثانية</a></td>
  </tr>
</table>
</body></html>`

const firstAgreementPage = `<html><body><div id="divArticles">
<p>Article 1</p>
<p>The parties undertake to cooperate in matters of legal assistance.</p>
</div></body></html>`

func pipelineConfig(t *testing.T) types.PipelineConfig {
	t.Helper()
	return types.PipelineConfig{
		Discovery: types.DiscoveryConfig{
			BaseURL:  "https://portal.test",
			IndexURL: "https://portal.test/agreements",
		},
		Ingest: types.IngestConfig{
			OutDir:  t.TempDir(),
			Workers: 2,
		},
	}
}

func pipelineFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]string{
			"https://portal.test/agreements":                      agreementsIndex,
			"https://portal.test/LawPage.aspx?id=10&language=en":  firstAgreementPage,
			"https://portal.test/LawPage.aspx?id=10&language=ar":  "<html><body></body></html>",
			"https://portal.test/LawPage.aspx?id=11&language=en":  "<html><body></body></html>",
			"https://portal.test/LawPage.aspx?id=11&language=ar":  "<html><body></body></html>",
		},
	}
}

func TestPipelineRun(t *testing.T) {
	cfg := pipelineConfig(t)
	p := NewPipeline(pipelineFetcher(), nil, cfg, &bytes.Buffer{})

	manifest, err := p.Run(context.Background())
	require.NoError(t, err)

	stats := manifest.Subcorpora["agreements"]
	assert.Equal(t, 2, stats.Discovered)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 1, stats.TotalProvisions)
	assert.Equal(t, []string{"https://portal.test/agreements"}, manifest.Endpoints)

	lawsDir := filepath.Join(cfg.Ingest.OutDir, "laws")
	entries, err := os.ReadDir(lawsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// The second agreement has no extractable text on either language
	// rendering and degrades to metadata-only, still counted as written.
	var metadataOnly int
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(lawsDir, e.Name()))
		require.NoError(t, err)
		var record types.Record
		require.NoError(t, json.Unmarshal(data, &record))
		if record.IsMetadataOnly() {
			metadataOnly++
			assert.NotEmpty(t, record.SourceDescription)
		}
	}
	assert.Equal(t, 1, metadataOnly)

	_, err = os.Stat(filepath.Join(cfg.Ingest.OutDir, "manifest.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Ingest.OutDir, "skipped.json"))
	assert.NoError(t, err)
}

func TestPipelineRunIsDeterministic(t *testing.T) {
	readRecords := func(dir string) map[string][]byte {
		t.Helper()
		files := map[string][]byte{}
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			files[e.Name()] = data
		}
		return files
	}

	cfg1 := pipelineConfig(t)
	p1 := NewPipeline(pipelineFetcher(), nil, cfg1, &bytes.Buffer{})
	_, err := p1.Run(context.Background())
	require.NoError(t, err)

	cfg2 := pipelineConfig(t)
	cfg2.Ingest.Workers = 4
	p2 := NewPipeline(pipelineFetcher(), nil, cfg2, &bytes.Buffer{})
	_, err = p2.Run(context.Background())
	require.NoError(t, err)

	first := readRecords(filepath.Join(cfg1.Ingest.OutDir, "laws"))
	second := readRecords(filepath.Join(cfg2.Ingest.OutDir, "laws"))
	assert.Equal(t, first, second)
}

func TestPipelineLimit(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Ingest.Limit = 1
	p := NewPipeline(pipelineFetcher(), nil, cfg, &bytes.Buffer{})

	manifest, err := p.Run(context.Background())
	require.NoError(t, err)

	stats := manifest.Subcorpora["agreements"]
	assert.Equal(t, 1, stats.Discovered)
	assert.Equal(t, 1, stats.Written)
}

func TestPipelineZeroOutputIsFatal(t *testing.T) {
	cfg := pipelineConfig(t)
	f := &fakeFetcher{
		pages: map[string]string{
			"https://portal.test/agreements": "<html><body><table></table></body></html>",
		},
	}
	p := NewPipeline(f, nil, cfg, &bytes.Buffer{})

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrZeroOutput)

	// No manifest is written for an aborted run.
	_, statErr := os.Stat(filepath.Join(cfg.Ingest.OutDir, "manifest.json"))
	assert.True(t, os.IsNotExist(statErr))
}
