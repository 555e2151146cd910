package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/pipeline"
	"ai-proposal-api/pkg/services"
)

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "cache")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GOOGLE_AI_API_KEY", "")
	t.Setenv("CACHE_BACKEND", "file")
	t.Setenv("CACHE_DIR", dir)
	t.Setenv("QDRANT_URL", "")
	t.Setenv("PIPELINE_CONFIG_FILE", "")
	companyName, companyURL, outFile = "", "", ""

	c := cache.New(cache.NewFileStore(dir), zap.NewNop(), true)
	p := pipeline.MockProposal("Acme Corp", "https://acme.example", time.UnixMilli(1700000000000))
	require.NoError(t, c.Write("acme-corp", cache.StageFinalProposal, p))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(context.Background(), args, &out)
	return out.String(), err
}

func TestShow(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "show", "--name", "acme corp")
	require.NoError(t, err)
	var p models.Proposal
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Acme Corp", p.CompanyName)

	_, err = run(t, "show", "--name", "Acme Corp", "--url", "https://other.example")
	assert.ErrorIs(t, err, errNoCachedProposal)
}

func TestClearCache(t *testing.T) {
	dir := setupCLI(t)

	out, err := run(t, "clear-cache", "Acme Corp", "Globex")
	require.NoError(t, err)
	assert.Equal(t, "cleared acme-corp\ncleared globex\n", out)

	_, statErr := os.Stat(filepath.Join(dir, "acme-corp"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = run(t, "clear-cache")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	setupCLI(t)
	path := filepath.Join(t.TempDir(), "acme.xlsx")

	out, err := run(t, "export", "--name", "Acme Corp", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{services.StrategiesSheet, services.PainPointsSheet}, f.GetSheetList())
}

func TestReindex_Disabled(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "reindex", "Acme Corp")
	assert.ErrorIs(t, err, services.ErrIndexDisabled)
}
