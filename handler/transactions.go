package handler

import (
	"github.com/gofiber/fiber/v2"

	httpdto "storepay/dto/http"
	"storepay/dto/model"
	"storepay/pkg/response"
	"storepay/repository"
	"storepay/service"
)

func ledgerRows(chain []model.PaymentTransaction) []httpdto.LedgerRow {
	rows := make([]httpdto.LedgerRow, 0, len(chain))
	for _, record := range chain {
		rows = append(rows, httpdto.LedgerRow{
			TxnID:          record.TxnID,
			ParentTxnID:    record.ParentTxnID,
			TxnType:        record.TxnType,
			PaymentType:    record.PaymentType,
			PaymentStatus:  record.PaymentStatus,
			PendingReason:  record.PendingReason,
			Currency:       record.Currency,
			GrossAmount:    record.GrossAmount,
			SettleAmount:   record.SettleAmount,
			SettleCurrency: record.SettleCurrency,
			ExchangeRate:   record.ExchangeRate,
			FinalCapture:   record.FinalCapture,
			Memo:           record.Memo,
			DateAdded:      record.DateAdded,
			LastModified:   record.LastModified,
			ExpirationTime: record.ExpirationTime,
		})
	}
	return rows
}

// GetLedgerChain returns the order's transaction tree in parent order.
func GetLedgerChain(c *fiber.Ctx) error {
	orderID := c.Params("orderId")

	chain, err := ledger.Chain(c.UserContext(), orderID)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, err.Error())
	}

	return response.ResponseSuccess(c, fiber.StatusOK, ledgerRows(chain))
}

// SyncLedger pulls the live order from the processor, merges transactions the
// store has not seen, and returns the refreshed chain.
func SyncLedger(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	ctx := c.UserContext()

	appended, err := ledger.Sync(ctx, orderID)
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	chain, err := ledger.Chain(ctx, orderID)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, err.Error())
	}

	return response.ResponseSuccess(c, fiber.StatusOK, fiber.Map{
		"appended": len(appended),
		"chain":    ledgerRows(chain),
	})
}

// ExportLedger downloads the order's chain as an xlsx workbook.
func ExportLedger(c *fiber.Ctx) error {
	orderID := c.Params("orderId")

	chain, err := ledger.Chain(c.UserContext(), orderID)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, err.Error())
	}
	if len(chain) == 0 {
		return response.Response(c, fiber.StatusNotFound, "no ledger rows for order "+orderID)
	}

	data, err := service.GenerateLedgerReport(chain, orderID)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "failed to generate report")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="ledger-`+orderID+`.xlsx"`)
	return c.Send(data)
}

// ListProcessorEvents returns the most recent processor call audit documents.
func ListProcessorEvents(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 100))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	events, err := repository.ListProcessorEvents(c.UserContext(), limit)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, err.Error())
	}

	return response.ResponseSuccess(c, fiber.StatusOK, events)
}
