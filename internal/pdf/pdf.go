// Package pdf renders monthly reports to PDF files with go-pdf/fpdf.
package pdf

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/flyswatter/flyswatter/internal/report"
)

type rgb struct {
	r, g, b int
}

var (
	colorBox       = rgb{25, 24, 59}
	colorRule      = rgb{161, 194, 189}
	colorHeading   = rgb{112, 137, 147}
	colorBoxedText = rgb{231, 242, 239}
)

// Renderer writes a MonthlyReport to a PDF file.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render writes the report to destPath. Any failure is a render error; the
// executor treats those as permanent since re-running the same document
// through the same renderer cannot change the outcome.
func (r *Renderer) Render(rep *report.MonthlyReport, destPath string) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Arial", "B", 16)
	doc.SetFillColor(colorBox.r, colorBox.g, colorBox.b)
	doc.SetLineWidth(3)

	titleWidth := doc.GetStringWidth(rep.Title) + 50
	doc.SetTextColor(colorBoxedText.r, colorBoxedText.g, colorBoxedText.b)
	doc.CellFormat(titleWidth, 10, rep.Title, "", 1, "C", true, 0, "")
	doc.Ln(20)

	if len(rep.Projects) == 0 {
		doc.SetTextColor(colorHeading.r, colorHeading.g, colorHeading.b)
		doc.CellFormat(40, 10, "No projects found", "", 1, "", false, 0, "")
	}
	for _, project := range rep.Projects {
		renderProject(doc, project)
	}

	if err := doc.OutputFileAndClose(destPath); err != nil {
		return fmt.Errorf("write report pdf: %w", err)
	}
	return nil
}

func renderProject(doc *fpdf.Fpdf, project report.ProjectReport) {
	doc.SetTextColor(colorHeading.r, colorHeading.g, colorHeading.b)
	doc.SetFont("Arial", "B", 16)
	doc.CellFormat(40, 10, "Project Overview: "+project.Title, "", 1, "", false, 0, "")

	doc.SetFont("Arial", "", 12)
	doc.SetTextColor(colorBoxedText.r, colorBoxedText.g, colorBoxedText.b)
	countRow(doc, "Total Open Issues", project.OpenIssues)
	countRow(doc, "Created Issues this month", project.CreatedIssuesMonth)
	countRow(doc, "Closed Issues this month", project.ClosedIssuesMonth)
	doc.Ln(4)

	doc.SetFont("Arial", "B", 12)
	doc.SetTextColor(colorHeading.r, colorHeading.g, colorHeading.b)
	doc.CellFormat(40, 10, "Current Open Issues", "", 1, "", false, 0, "")

	for _, group := range project.UserIssues {
		doc.SetTextColor(colorHeading.r, colorHeading.g, colorHeading.b)
		doc.SetFont("Arial", "B", 12)
		doc.CellFormat(40, 10, group.Username, "", 1, "", false, 0, "")

		for _, issue := range group.Issues {
			doc.SetTextColor(colorBoxedText.r, colorBoxedText.g, colorBoxedText.b)
			doc.SetFont("Arial", "B", 10)
			doc.CellFormat(10, 10, "", "", 0, "", false, 0, "")
			doc.CellFormat(50, 10, issue.Key+" - "+issue.Title, "", 0, "", true, 0, "")

			doc.SetFont("Arial", "", 10)
			doc.CellFormat(40, 10, "Created by: "+issue.Author, "", 0, "", true, 0, "")
			doc.CellFormat(40, 10, "Priority: "+issue.Priority, "", 0, "", true, 0, "")
			doc.CellFormat(30, 10, "Status: "+issue.Status, "", 1, "", true, 0, "")
			doc.Ln(1)
		}
	}

	doc.Ln(5)
	doc.SetFillColor(colorRule.r, colorRule.g, colorRule.b)
	doc.CellFormat(180, 1, "", "", 1, "R", true, 0, "")
	doc.SetFillColor(colorBox.r, colorBox.g, colorBox.b)
	doc.Ln(5)
}

func countRow(doc *fpdf.Fpdf, label string, n int) {
	doc.CellFormat(60, 10, label, "", 0, "", true, 0, "")
	doc.CellFormat(10, 10, fmt.Sprintf("%d", n), "", 1, "C", true, 0, "")
}
