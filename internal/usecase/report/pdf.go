package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	domain "game_review/internal/domain/analysis"
)

// WritePDF renders a printable summary of an analysis: players, accuracy,
// category tallies and the move list.
func WritePDF(w io.Writer, result domain.Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Game review "+result.GameHash, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("%s vs %s", result.White, result.Black)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, "Game "+result.GameHash)
	pdf.Ln(5)
	if !result.AnalyzedAt.IsZero() {
		pdf.Cell(0, 5, "Analyzed "+result.AnalyzedAt.Format("2006-01-02 15:04 MST"))
		pdf.Ln(5)
	}
	pdf.Ln(3)

	players := []string{result.White, result.Black}
	summaryTable(pdf, tr, players, result)
	pdf.Ln(6)
	movesTable(pdf, result.Moves)

	return pdf.Output(w)
}

func summaryTable(pdf *gofpdf.Fpdf, tr func(string) string, players []string, result domain.Result) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(50, 7, "", "1", 0, "L", false, 0, "")
	for _, p := range players {
		pdf.CellFormat(45, 7, tr(p), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(50, 6, "Accuracy", "1", 0, "L", false, 0, "")
	for _, p := range players {
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", result.Accuracy[p]), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	for _, c := range domain.Categories {
		pdf.CellFormat(50, 6, string(c), "1", 0, "L", false, 0, "")
		for _, p := range players {
			pdf.CellFormat(45, 6, fmt.Sprintf("%d", result.Stats[p][c]), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func movesTable(pdf *gofpdf.Fpdf, moves []domain.MoveAnalysis) {
	widths := []float64{15, 30, 30, 25, 40}
	headers := []string{"#", "Played", "Best", "Eval", "Type"}

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, m := range moves {
		row := []string{
			fmt.Sprintf("%d", m.Index),
			m.Played.String(),
			m.Best.String(),
			m.Evaluation.String(),
			string(m.Category),
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
