package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"ai-proposal-api/pkg/models"
)

// Workbook sheet names.
const (
	StrategiesSheet = "Strategies"
	PainPointsSheet = "Pain Points"
)

var strategyHeader = []interface{}{
	"Rank", "ID", "Title", "Category", "Impact", "Complexity", "Timeframe",
	"Validation", "Feasibility", "Opportunity", "Combined", "Key Benefits", "Implementation Steps",
}

var painPointHeader = []interface{}{"ID", "Title", "Description", "Severity", "Manifestations", "Industry Relevance"}

// ExportWorkbook builds the ranked-strategy workbook of p. The caller closes
// the returned file.
func ExportWorkbook(p models.Proposal) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), StrategiesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(PainPointsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	opportunities := append([]models.Opportunity(nil), p.AIOpportunities...)
	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].CombinedScore > opportunities[j].CombinedScore
	})

	rows := [][]interface{}{strategyHeader}
	for i, o := range opportunities {
		rows = append(rows, []interface{}{
			i + 1, o.ID, o.Title, string(o.Category), string(o.Impact), string(o.Complexity), string(o.Timeframe),
			round1(o.ValidationScore), round1(o.FeasibilityScore), round1(o.OpportunityScore), round1(o.CombinedScore),
			strings.Join(o.KeyBenefits, "\n"), strings.Join(o.ImplementationSteps, "\n"),
		})
	}
	if err := writeSheet(f, StrategiesSheet, rows, bold); err != nil {
		f.Close()
		return nil, err
	}

	rows = [][]interface{}{painPointHeader}
	for _, pp := range p.PossiblePainPoints {
		rows = append(rows, []interface{}{
			pp.ID, pp.Title, pp.Description, pp.TypicalSeverity,
			strings.Join(pp.CommonManifestations, "\n"), pp.IndustryRelevance,
		})
	}
	if err := writeSheet(f, PainPointsSheet, rows, bold); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// ExportXLSX returns the workbook of p as bytes.
func ExportXLSX(p models.Proposal) ([]byte, error) {
	f, err := ExportWorkbook(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
