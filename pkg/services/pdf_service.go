package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/models"
)

// A4 in inches, with 20mm margins.
const (
	a4Width    = 8.27
	a4Height   = 11.69
	pageMargin = 20 / 25.4
)

var proposalTemplate = template.Must(template.New("proposal").Funcs(template.FuncMap{
	"round": func(v float64) int { return int(math.Round(v)) },
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>AI Strategy Proposal for {{.CompanyName}}</title>
<style>
body { font-family: 'Inter', sans-serif; margin: 0; color: #333; }
.cover-page { height: 250mm; page-break-after: always; display: flex; flex-direction: column; justify-content: center;
  background: linear-gradient(135deg, #C084FC 0%, #818CF8 100%); color: #1E1B4B; padding: 0 20mm; }
.cover-page h1 { font-size: 48px; margin: 0; }
.content-page { page-break-after: always; }
.opportunity { border-left: 4px solid #6D28D9; padding-left: 12px; margin-bottom: 18px; }
.scores { color: #6D28D9; font-size: 12px; }
</style>
</head>
<body>
<div class="cover-page">
  <h1>AI Strategy</h1>
  <h1>Proposal</h1>
  <p>{{.CompanyName}}{{if .Industry}} &middot; {{.Industry}}{{end}}</p>
</div>
<div class="content-page">
  <h1>AI Strategy for {{.CompanyName}}</h1>
  <h2>Executive Summary</h2>
  <p>This proposal outlines a strategic approach to implementing AI solutions at {{.CompanyName}}.</p>
  {{if .BusinessContext}}<p>{{.BusinessContext}}</p>{{end}}
  {{if .BusinessChallenges}}<h2>Business Challenges</h2>
  <ul>{{range .BusinessChallenges}}<li>{{.}}</li>{{end}}</ul>{{end}}
  <h2>Opportunities</h2>
  {{range $i, $o := .AIOpportunities}}
  <div class="opportunity">
    <h3>{{inc $i}}. {{$o.Title}}</h3>
    <p class="scores">Impact {{$o.Impact}} &middot; Complexity {{$o.Complexity}} &middot; {{$o.Timeframe}}{{if $o.CombinedScore}} &middot; Score {{round $o.CombinedScore}}{{end}}</p>
    <p>{{$o.Description}}</p>
    {{if $o.KeyBenefits}}<h4>Key Benefits</h4><ul>{{range $o.KeyBenefits}}<li>{{.}}</li>{{end}}</ul>{{end}}
    {{if $o.ImplementationSteps}}<h4>Implementation Steps</h4><ol>{{range $o.ImplementationSteps}}<li>{{.}}</li>{{end}}</ol>{{end}}
  </div>
  {{end}}
  {{if .RecommendedApproach}}<h2>Recommended Approach</h2><p>{{.RecommendedApproach}}</p>{{end}}
  {{if .NextSteps}}<h2>Next Steps</h2><ol>{{range .NextSteps}}<li>{{.}}</li>{{end}}</ol>{{end}}
</div>
</body>
</html>
`))

// PDFService renders proposals to PDF through headless Chrome.
type PDFService struct {
	browser *BrowserService
	logger  *zap.Logger
}

// NewPDFService creates a renderer on top of browser.
func NewPDFService(browser *BrowserService, logger *zap.Logger) *PDFService {
	return &PDFService{browser: browser, logger: logger}
}

// RenderHTML renders the printable HTML document of p.
func RenderHTML(p models.Proposal) ([]byte, error) {
	var buf bytes.Buffer
	if err := proposalTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render proposal template: %w", err)
	}
	return buf.Bytes(), nil
}

// Render prints p as an A4 PDF with 20mm margins.
func (s *PDFService) Render(ctx context.Context, p models.Proposal) ([]byte, error) {
	html, err := RenderHTML(p)
	if err != nil {
		return nil, err
	}

	page, err := s.browser.page(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("load proposal html: %w", err)
	}
	_ = page.WaitLoad()

	width, height, margin := a4Width, a4Height, pageMargin
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &width,
		PaperHeight:     &height,
		MarginTop:       &margin,
		MarginBottom:    &margin,
		MarginLeft:      &margin,
		MarginRight:     &margin,
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	s.logger.Info("proposal pdf rendered", zap.String("company", p.CompanyName), zap.Int("bytes", len(pdf)))
	return pdf, nil
}
