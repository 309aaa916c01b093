package services

import (
	"encoding/csv"
	"io"
	"strconv"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// exportHeader is the fixed column layout of an expense export. Imports
// only need Title, Category, Amount and Date, so a re-imported export
// round-trips cleanly.
var exportHeader = []string{
	"ID",
	"Expense Title",
	"Category",
	"Type",
	"Amount (USD)",
	"Date",
	"Payment By",
	"Description",
}

// WriteExpensesCSV renders expenses as CSV to w. Amounts are written
// with two decimal places and dates as YYYY-MM-DD.
func WriteExpensesCSV(w io.Writer, expenses []models.Expense) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, e := range expenses {
		record := []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Title,
			e.Category.Name,
			string(e.Category.Type),
			e.Amount.StringFixed(2),
			e.EntryDate.Format("2006-01-02"),
			string(e.PaymentMethod),
			e.Description,
		}
		if err := writer.Write(record); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
