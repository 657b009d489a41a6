package mockdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

var supplierCSVHeader = []string{
	"supplier_id", "name", "category", "region", "contact_email",
	"sustainability_score", "contract_active", "last_audit_date",
}

// Export writes the corpus to dir as suppliers.csv plus one markdown file per
// contract and audit, mirroring the layout the seed command ingests from.
func Export(fs afero.Fs, dir string, corpus Corpus) error {
	for _, sub := range []string{dir, filepath.Join(dir, "contracts"), filepath.Join(dir, "audits")} {
		if err := fs.MkdirAll(sub, 0o755); err != nil {
			return err
		}
	}

	if err := writeSuppliersCSV(fs, filepath.Join(dir, "suppliers.csv"), corpus.Suppliers); err != nil {
		return err
	}
	for _, supplier := range corpus.Suppliers {
		contractPath := filepath.Join(dir, "contracts", supplier.SupplierID+"_contract.md")
		if err := afero.WriteFile(fs, contractPath, []byte(corpus.Contracts[supplier.SupplierID]), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", contractPath, err)
		}
		auditPath := filepath.Join(dir, "audits", supplier.SupplierID+"_audit.md")
		if err := afero.WriteFile(fs, auditPath, []byte(corpus.Audits[supplier.SupplierID]), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", auditPath, err)
		}
	}
	return nil
}

func writeSuppliersCSV(fs afero.Fs, path string, suppliers []Supplier) error {
	file, createErr := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if createErr != nil {
		return fmt.Errorf("create %s: %w", path, createErr)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(supplierCSVHeader); err != nil {
		return err
	}
	for _, supplier := range suppliers {
		record := []string{
			supplier.SupplierID,
			supplier.Name,
			supplier.Category,
			supplier.Region,
			supplier.ContactEmail,
			strconv.Itoa(supplier.SustainabilityScore),
			strconv.FormatBool(supplier.ContractActive),
			supplier.LastAuditDate.Format(time.DateOnly),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
