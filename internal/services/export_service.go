package services

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/loveall/loveall-backend/internal/models"
)

// ExportService renders transaction history as CSV downloads and bundles
// stored invoice files into zip archives.
type ExportService struct{}

// NewExportService creates a new export service
func NewExportService() *ExportService {
	return &ExportService{}
}

// transactionCSVHeader is the column order for both export variants.
var transactionCSVHeader = []string{
	"Transaction ID", "User ID", "Store", "Offer ID", "Amount",
	"Discount Applied", "After Discount", "Status", "Date",
}

// WriteTransactionsCSV streams the given transactions as CSV to w.
func (s *ExportService) WriteTransactionsCSV(w io.Writer, transactions []models.TransactionWithStore) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(transactionCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range transactions {
		t := &transactions[i]
		record := []string{
			strconv.FormatInt(t.TransactionID, 10),
			t.UserID.String(),
			t.StoreName.String,
			t.OfferID.String,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			formatNullFloat(t.DiscountApplied),
			strconv.FormatFloat(t.AfterDiscountPrice(), 'f', 2, 64),
			t.Status,
			t.TransactionDate.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteInvoiceZip bundles the invoice files of the given transactions
// into a zip archive written to w. baseDir anchors the stored relative
// invoice paths. Transactions without an invoice, and paths that no
// longer exist on disk, are skipped.
func (s *ExportService) WriteInvoiceZip(w io.Writer, baseDir string, transactions []models.TransactionWithStore) error {
	zw := zip.NewWriter(w)

	for i := range transactions {
		t := &transactions[i]
		if !t.InvoicePath.Valid || t.InvoicePath.String == "" {
			continue
		}

		path := filepath.Join(baseDir, filepath.Clean(t.InvoicePath.String))
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to open invoice %s: %w", path, err)
		}

		name := fmt.Sprintf("invoice_%d%s", t.TransactionID, filepath.Ext(path))
		entry, err := zw.Create(name)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to create zip entry: %w", err)
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write zip entry: %w", err)
		}
		f.Close()
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}
	return nil
}

func formatNullFloat(f models.NullFloat64) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', 2, 64)
}
