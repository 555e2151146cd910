package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ai-proposal-api/pkg/models"
)

func TestExportXLSX(t *testing.T) {
	p := models.Proposal{
		CompanyName: "Acme Corp",
		AIOpportunities: []models.Opportunity{
			{ID: "strategy_2", Title: "Claims Summaries", CombinedScore: 49.2, KeyBenefits: []string{"Faster claims"}},
			{ID: "strategy_1", Title: "Support Assistant", CombinedScore: 74, ValidationScore: 88, KeyBenefits: []string{"a", "b"}},
		},
		PossiblePainPoints: []models.PainPoint{
			{ID: "pain_point_1", Title: "Operational Inefficiency", TypicalSeverity: 7, CommonManifestations: []string{"Delays"}},
		},
	}

	data, err := ExportXLSX(p)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{StrategiesSheet, PainPointsSheet}, f.GetSheetList())

	rows, err := f.GetRows(StrategiesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, []string{"1", "strategy_1", "Support Assistant"}, rows[1][:3])
	assert.Equal(t, "88", rows[1][7])
	assert.Equal(t, "a\nb", rows[1][11])
	assert.Equal(t, "strategy_2", rows[2][1])
	assert.Equal(t, "49.2", rows[2][10])

	painRows, err := f.GetRows(PainPointsSheet)
	require.NoError(t, err)
	require.Len(t, painRows, 2)
	assert.Equal(t, []string{"pain_point_1", "Operational Inefficiency"}, painRows[1][:2])
	assert.Equal(t, "7", painRows[1][3])
}

func TestExportXLSX_Empty(t *testing.T) {
	data, err := ExportXLSX(models.Proposal{CompanyName: "Nobody"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PainPointsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
