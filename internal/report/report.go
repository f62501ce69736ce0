// Package report renders a scenario run's recorded snapshot and event
// history to CSV, JSON, and PDF, grounded on the test-run report generator's
// export trio (ExportCSV/ExportJSON/ExportPDF against a sqlite-backed store).
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/fourloop/pwrcore/internal/persistence"
)

// SnapshotJSON is the JSON representation of a recorded snapshot.
type SnapshotJSON struct {
	SimTimeHr    float64 `json:"sim_time_hr"`
	PressurePsia float64 `json:"pressure_psia"`
	TAvgF        float64 `json:"t_avg_f"`
	PowerFrac    float64 `json:"power_frac"`
	PZRLevelPct  float64 `json:"pzr_level_pct"`
	Regime       string  `json:"regime"`
}

// ExportCSV writes a run's snapshot history as CSV to w.
// Headers: sim_time_hr,pressure_psia,t_avg_f,power_frac,pzr_level_pct,regime
func ExportCSV(w io.Writer, s *persistence.Store, runID string) error {
	snapshots, err := s.QuerySnapshots(runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sim_time_hr", "pressure_psia", "t_avg_f", "power_frac", "pzr_level_pct", "regime"}); err != nil {
		return err
	}

	for _, snap := range snapshots {
		record := []string{
			strconv.FormatFloat(snap.SimTimeHr, 'f', 4, 64),
			strconv.FormatFloat(snap.PressurePsia, 'f', 2, 64),
			strconv.FormatFloat(snap.TAvgF, 'f', 2, 64),
			strconv.FormatFloat(snap.PowerFrac, 'f', 4, 64),
			strconv.FormatFloat(snap.PZRLevelPct, 'f', 2, 64),
			snap.Regime,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportJSON writes a run's snapshot history as a JSON array to w.
func ExportJSON(w io.Writer, s *persistence.Store, runID string) error {
	snapshots, err := s.QuerySnapshots(runID)
	if err != nil {
		return err
	}

	records := make([]SnapshotJSON, len(snapshots))
	for i, snap := range snapshots {
		records[i] = SnapshotJSON{
			SimTimeHr:    snap.SimTimeHr,
			PressurePsia: snap.PressurePsia,
			TAvgF:        snap.TAvgF,
			PowerFrac:    snap.PowerFrac,
			PZRLevelPct:  snap.PZRLevelPct,
			Regime:       snap.Regime,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// ExportPDF writes a formatted PDF scenario report to w: run metadata,
// a summary of the final recorded state, and the full event log.
func ExportPDF(w io.Writer, s *persistence.Store, runID string) error {
	run, err := s.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %q not found", runID)
	}

	snapshots, err := s.QuerySnapshots(runID)
	if err != nil {
		return fmt.Errorf("failed to query snapshots: %w", err)
	}
	events, err := s.QueryEvents(runID)
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdfHeader(pdf, run)
	pdfSummary(pdf, run, snapshots)
	pdfEvents(pdf, events)
	pdfFooter(pdf)

	if pdf.Err() {
		return fmt.Errorf("PDF generation error: %w", pdf.Error())
	}
	return pdf.Output(w)
}

func pdfHeader(pdf *fpdf.Fpdf, run *persistence.Run) {
	pdf.SetFillColor(33, 37, 41)
	pdf.Rect(15, 15, 180, 20, "F")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 14, "PLANT SCENARIO REPORT", "", 0, "L", false, 0, "")

	pdf.Ln(25)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(30, 6, "Run ID:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, run.ID, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(30, 6, "Preset:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, run.PresetName, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(30, 6, "Generated:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, time.Now().UTC().Format("2006-01-02 15:04:05 UTC"), "", 1, "L", false, 0, "")

	pdf.Ln(4)
}

func pdfSummary(pdf *fpdf.Fpdf, run *persistence.Run, snapshots []persistence.Snapshot) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(30, 6, "Status:", "", 0, "L", false, 0, "")
	switch run.Status {
	case "complete":
		pdf.SetFillColor(40, 167, 69)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(20, 6, "[DONE]", "", 0, "C", true, 0, "")
	case "fault":
		pdf.SetFillColor(220, 53, 69)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(20, 6, "[FAULT]", "", 0, "C", true, 0, "")
	default:
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(20, 6, run.Status, "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(8)

	pdf.CellFormat(30, 6, "Started:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, run.StartedAt.Format("2006-01-02 15:04:05 UTC"), "", 1, "L", false, 0, "")

	pdf.CellFormat(30, 6, "Finished:", "", 0, "L", false, 0, "")
	if run.FinishedAt != nil {
		pdf.CellFormat(0, 6, run.FinishedAt.Format("2006-01-02 15:04:05 UTC"), "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, "In progress", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}

	if len(snapshots) == 0 {
		pdf.Ln(6)
		return
	}
	last := snapshots[len(snapshots)-1]
	pdf.CellFormat(30, 6, "Final state:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("t=%.2fhr  %.1f psia  %.1f degF  %.1f%% power  regime=%s",
		last.SimTimeHr, last.PressurePsia, last.TAvgF, last.PowerFrac*100, last.Regime), "", 1, "L", false, 0, "")

	pdf.Ln(6)
}

func pdfEvents(pdf *fpdf.Fpdf, events []persistence.EventRow) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Events", "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(3)

	if len(events) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No events recorded", "", 1, "C", false, 0, "")
		return
	}

	colW := []float64{22, 35, 0.0}
	colW[2] = 180 - colW[0] - colW[1]
	headers := []string{"Sim Hr", "Kind", "Message"}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		pdf.CellFormat(colW[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 7)
	for i, ev := range events {
		if i%2 == 1 {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.CellFormat(colW[0], 6, strconv.FormatFloat(ev.SimTimeHr, 'f', 3, 64), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 6, truncate(ev.Kind, 20), "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[2], 6, truncate(ev.Message, 70), "1", 0, "L", true, 0, "")
		pdf.Ln(-1)
	}
}

func pdfFooter(pdf *fpdf.Fpdf) {
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 6, "Generated by the plant simulator core", "", 0, "C", false, 0, "")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
