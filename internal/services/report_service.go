package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf/v2"
)

// Export kinds
const (
	ExportKindPayroll   = "payroll"
	ExportKindInventory = "inventory"
)

// ReportService builds salary slips, inventory CSVs and the async export
// archives behind the export_jobs table.
type ReportService struct {
	Payroll   *repositories.PayrollRepository
	Inventory *repositories.InventoryRepository
	Waste     *repositories.WasteRepository
	Jobs      *repositories.ExportJobRepository
	ExportDir string
}

func NewReportService(payroll *repositories.PayrollRepository, inventory *repositories.InventoryRepository, waste *repositories.WasteRepository, jobs *repositories.ExportJobRepository, exportDir string) *ReportService {
	return &ReportService{
		Payroll:   payroll,
		Inventory: inventory,
		Waste:     waste,
		Jobs:      jobs,
		ExportDir: exportDir,
	}
}

// GenerateSalarySlipPDF renders one worker's slip for a period.
func (s *ReportService) GenerateSalarySlipPDF(payment *models.WorkerPayment, period *models.PayrollPeriod, adjustments []models.PayrollAdjustment, settings *models.PayrollSettings) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "FieldOps - Salary Slip", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Period: %02d/%d    Generated: %s",
		period.Month, period.Year, timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Worker info
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Worker", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", payment.WorkerName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Payment type: %s", payment.PaymentType), "RB", 1, "L", false, 0, "")
	if payment.PaymentType == models.PaymentTypePerLine && payment.PerLineRate != nil {
		pdf.CellFormat(95, 7, fmt.Sprintf("Lines completed: %d", payment.LinesCompleted), "LB", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, fmt.Sprintf("Rate per line: Rs. %.2f", *payment.PerLineRate), "RB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Earnings table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Earnings & Deductions", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(100, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(45, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Amount (Rs.)", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(100, 6, "Base salary", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 6, "earning", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", payment.BaseAmount), "1", 1, "R", false, 0, "")
	for _, adj := range adjustments {
		desc := adj.Description
		if desc == "" {
			desc = adj.Category
		}
		if len(desc) > 48 {
			desc = desc[:45] + "..."
		}
		pdf.CellFormat(100, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, adj.Type, "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", adj.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Totals
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Bonuses: Rs. %.2f", payment.BonusAmount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Deductions: Rs. %.2f", payment.DeductionAmount), "1", 0, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(200, 255, 200)
	pdf.CellFormat(64, 8, fmt.Sprintf("Net pay: Rs. %.2f", payment.NetAmount), "1", 1, "C", true, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 9)
	rates := fmt.Sprintf("Statutory rates: EPF %.1f%%  ETF %.1f%%", settings.EPFPercentage, settings.ETFPercentage)
	if settings.TaxEnabled {
		rates += fmt.Sprintf("  Tax %.1f%%", settings.TaxPercentage)
	}
	pdf.CellFormat(190, 5, rates, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateInventoryCSV exports the current stock ledger.
func (s *ReportService) GenerateInventoryCSV(ctx context.Context) ([]byte, error) {
	items, err := s.Inventory.List(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"#", "Name", "Category", "Current Stock", "Reorder Level", "Serial No", "Status"})
	for i, item := range items {
		serial := ""
		if item.SerialNo != nil {
			serial = *item.SerialNo
		}
		status := "OK"
		if item.LowOnStock() {
			status = "LOW"
		}
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			item.Name,
			item.Category,
			fmt.Sprintf("%.2f", item.CurrentStock),
			fmt.Sprintf("%.2f", item.ReorderLevel),
			serial,
			status,
		})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// StartExport kicks off a background export job and returns its id
// immediately. The client polls GetJob until the archive is ready.
func (s *ReportService) StartExport(ctx context.Context, actor auth.Actor, kind string, periodID int) (*models.ExportJob, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	if kind != ExportKindPayroll && kind != ExportKindInventory {
		return nil, NewValidationError("kind", "must be payroll or inventory")
	}
	if kind == ExportKindPayroll {
		if _, err := s.Payroll.GetPeriod(ctx, periodID); err != nil {
			return nil, ErrNotFound
		}
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		Kind:        kind,
		Status:      models.ExportJobPending,
		RequestedBy: actor.ID,
	}
	if err := s.Jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	go s.runExport(job.ID, kind, periodID)
	return job, nil
}

func (s *ReportService) GetJob(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.Jobs.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return job, nil
}

// runExport executes the job in the background with its own timeout.
func (s *ReportService) runExport(jobID, kind string, periodID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.Jobs.MarkRunning(ctx, jobID); err != nil {
		log.Printf("[Export] job %s: %v", jobID, err)
		return
	}

	var archive []byte
	var err error
	switch kind {
	case ExportKindPayroll:
		archive, err = s.buildPayrollArchive(ctx, periodID)
	case ExportKindInventory:
		archive, err = s.buildInventoryArchive(ctx)
	}
	if err != nil {
		log.Printf("[Export] job %s failed: %v", jobID, err)
		s.Jobs.MarkFailed(ctx, jobID, err.Error())
		return
	}

	if err := os.MkdirAll(s.ExportDir, 0o755); err != nil {
		s.Jobs.MarkFailed(ctx, jobID, err.Error())
		return
	}
	path := filepath.Join(s.ExportDir, jobID+".zip")
	if err := os.WriteFile(path, archive, 0o644); err != nil {
		s.Jobs.MarkFailed(ctx, jobID, err.Error())
		return
	}

	if err := s.Jobs.MarkCompleted(ctx, jobID, path); err != nil {
		log.Printf("[Export] job %s: %v", jobID, err)
	}
}

// buildPayrollArchive zips one salary slip PDF per payment in the period.
func (s *ReportService) buildPayrollArchive(ctx context.Context, periodID int) ([]byte, error) {
	period, err := s.Payroll.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	payments, err := s.Payroll.ListPaymentsByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	settings, err := s.Payroll.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, payment := range payments {
		adjustments, err := s.Payroll.ListAdjustments(ctx, payment.ID)
		if err != nil {
			return nil, err
		}
		pdfData, err := s.GenerateSalarySlipPDF(payment, period, adjustments, settings)
		if err != nil {
			return nil, err
		}
		fw, err := zw.Create(fmt.Sprintf("slip_%d_%s.pdf", payment.WorkerID, payment.WorkerName))
		if err != nil {
			return nil, err
		}
		fw.Write(pdfData)
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildInventoryArchive zips the stock ledger alongside recent waste history.
func (s *ReportService) buildInventoryArchive(ctx context.Context) ([]byte, error) {
	csvData, err := s.GenerateInventoryCSV(ctx)
	if err != nil {
		return nil, err
	}
	wasteData, err := s.generateWasteCSV(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	fw, err := zw.Create("inventory.csv")
	if err != nil {
		return nil, err
	}
	fw.Write(csvData)

	fw, err = zw.Create("waste.csv")
	if err != nil {
		return nil, err
	}
	fw.Write(wasteData)

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReportService) generateWasteCSV(ctx context.Context) ([]byte, error) {
	records, err := s.Waste.List(ctx, 1000, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"#", "Item", "Quantity", "Reason", "Date", "Reported By"})
	for i, rec := range records {
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			rec.ItemName,
			fmt.Sprintf("%.2f", rec.Quantity),
			rec.WasteReason,
			rec.WasteDate.Format(timeutil.DateLayout),
			rec.ReportedByName,
		})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
