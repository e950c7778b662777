package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/services"
	"github.com/SAP-F-2025/evaluation-registry/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LedgerHandler struct {
	BaseHandler
	ledgerService       services.LedgerService
	importExportService services.ImportExportService
}

func NewLedgerHandler(ledgerService services.LedgerService, importExportService services.ImportExportService, logger utils.Logger) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler:         NewBaseHandler(logger),
		ledgerService:       ledgerService,
		importExportService: importExportService,
	}
}

// GetLedger pages through ledger entries in sequence order (admin only)
// @Param from query int false "First sequence number (default: 1)"
// @Param limit query int false "Page size (default: 100, max: 1000)"
// @Router /ledger [get]
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	fromSeq := uint64(1)
	if fromStr := c.Query("from"); fromStr != "" {
		if v, err := strconv.ParseUint(fromStr, 10, 64); err == nil && v > 0 {
			fromSeq = v
		}
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := h.ledgerService.GetLedger(c.Request.Context(), caller, fromSeq, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// VerifyLedger recomputes the hash chain (admin only)
// @Router /ledger/verify [get]
func (h *LedgerHandler) VerifyLedger(c *gin.Context) {
	h.LogRequest(c, "Verifying ledger")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	result, err := h.ledgerService.VerifyLedger(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportLedger downloads the ledger as an .xlsx workbook (admin only)
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /ledger/export [get]
func (h *LedgerHandler) ExportLedger(c *gin.Context) {
	h.LogRequest(c, "Exporting ledger")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.importExportService.ExportLedger(c.Request.Context(), caller, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ledger.xlsx"))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
