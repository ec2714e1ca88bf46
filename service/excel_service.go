package service

import (
	"time"

	"github.com/xuri/excelize/v2"

	"storepay/dto/model"
)

// GenerateLedgerReport renders one order's transaction chain as an xlsx
// workbook for the admin export.
func GenerateLedgerReport(chain []model.PaymentTransaction, orderID string) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}

	headers := []string{"Txn ID", "Parent Txn ID", "Type", "Payment Type", "Status", "Pending Reason", "Currency", "Gross Amount", "Settle Amount", "Settle Currency", "Exchange Rate", "Final Capture", "Memo", "Date Added"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, record := range chain {
		values := []interface{}{
			record.TxnID,
			record.ParentTxnID,
			record.TxnType,
			record.PaymentType,
			record.PaymentStatus,
			record.PendingReason,
			record.Currency,
			record.GrossAmount,
			record.SettleAmount,
			record.SettleCurrency,
			record.ExchangeRate,
			record.FinalCapture,
			record.Memo,
			record.DateAdded.Format(time.RFC3339),
		}
		for colIndex, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetActiveSheet(index)
	f.SetDocProps(&excelize.DocProperties{Title: "Ledger " + orderID})

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
