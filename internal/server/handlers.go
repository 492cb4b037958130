package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	drawerdomain "github.com/dukandar/khata/internal/drawer/domain"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	taxservice "github.com/dukandar/khata/internal/tax/service"
	recorddomain "github.com/dukandar/khata/internal/taxrecord/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type drawerOperationRequest struct {
	Operation string          `json:"operation" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

func (s *Server) recordDrawerOperation(c *gin.Context) {
	var req drawerOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	txn, err := s.drawerSvc.RecordOperation(c.Request.Context(), drawerdomain.OperationRequest{
		OrgID:     orgFromContext(c),
		DrawerID:  c.Param("drawerID"),
		ActorID:   actorID(c),
		Operation: drawerdomain.Operation(req.Operation),
		Amount:    req.Amount,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

type closeDrawerRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

func (s *Server) closeDrawer(c *gin.Context) {
	var req closeDrawerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	txn, err := s.drawerSvc.Close(c.Request.Context(), orgFromContext(c), c.Param("drawerID"), actorID(c), req.Amount, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (s *Server) drawerBalance(c *gin.Context) {
	balance, err := s.drawerSvc.Balance(c.Request.Context(), orgFromContext(c), c.Param("drawerID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (s *Server) drawerHistory(c *gin.Context) {
	filter, err := s.parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_range"})
		return
	}
	txns, err := s.drawerSvc.History(c.Request.Context(), orgFromContext(c), c.Param("drawerID"), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (s *Server) getTaxSettings(c *gin.Context) {
	settings, err := s.taxSvc.Settings(c.Request.Context(), orgFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) updateTaxSettings(c *gin.Context) {
	var req taxdomain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	req.OrgID = orgFromContext(c)

	settings, err := s.taxSvc.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) getActiveSlabs(c *gin.Context) {
	slabs, err := s.taxSvc.ActiveSlabs(c.Request.Context(), orgFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slabs": slabs})
}

func (s *Server) replaceSlabs(c *gin.Context) {
	var req struct {
		Slabs []taxdomain.Slab `json:"slabs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	if err := s.taxSvc.ReplaceSlabs(c.Request.Context(), orgFromContext(c), req.Slabs); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) computeIncomeTax(c *gin.Context) {
	var req struct {
		AnnualIncome decimal.Decimal `json:"annual_income"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	slabs, err := s.taxSvc.ActiveSlabs(c.Request.Context(), orgFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	assessment, err := taxservice.ComputeIncomeTax(req.AnnualIncome, slabs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) computeZakat(c *gin.Context) {
	var req struct {
		Assets       []taxdomain.AssetLine `json:"assets"`
		ManualAmount *decimal.Decimal      `json:"manual_amount,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	settings, err := s.taxSvc.Settings(c.Request.Context(), orgFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	exempt := taxservice.ExemptCategories(settings)

	if settings.ZakatMode == taxdomain.ZakatManual {
		if req.ManualAmount == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "manual_amount_required"})
			return
		}
		net := taxservice.NetAssets(req.Assets, exempt)
		if err := taxservice.ValidateManualZakat(*req.ManualAmount, net); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"zakat_amount": *req.ManualAmount})
		return
	}

	amount, err := taxservice.ComputeZakat(req.Assets, settings.ZakatRate, exempt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zakat_amount": amount})
}

// filingSchedule reports the next due date per enabled tax type, computed
// from the configured filing cadences in the business timezone.
func (s *Server) filingSchedule(c *gin.Context) {
	settings, err := s.taxSvc.Settings(c.Request.Context(), orgFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}

	now := time.Now().In(s.loc)
	var filings []gin.H
	add := func(taxType string, enabled bool, freq taxdomain.FilingFrequency) {
		if !enabled {
			return
		}
		due := taxservice.NextFilingDue(freq, now, s.loc)
		filing := gin.H{"tax_type": taxType, "frequency": freq, "due_at": due}
		if settings.RemindersEnabled {
			filing["reminder_at"] = taxservice.ReminderAt(due, settings.ReminderLeadDays)
		}
		filings = append(filings, filing)
	}
	add("Income Tax", settings.IncomeTaxEnabled, settings.IncomeTaxFiling)
	add("Sales Tax", settings.SalesTaxEnabled, settings.SalesTaxFiling)
	add("Zakat", settings.ZakatEnabled, settings.ZakatFiling)

	c.JSON(http.StatusOK, gin.H{"filings": filings})
}

type assessRequest struct {
	Type          string          `json:"type" binding:"required"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	PeriodStart   string          `json:"period_start" binding:"required"`
	PeriodEnd     string          `json:"period_end" binding:"required"`
	Reference     string          `json:"reference"`
	Attachments   []string        `json:"attachments"`
	IsManualEntry bool            `json:"is_manual_entry"`
	IsFinal       bool            `json:"is_final_assessment"`
	IsExempt      bool            `json:"is_exempt"`
}

func (s *Server) assessTaxRecord(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	periodStart, err1 := s.parseDay(req.PeriodStart)
	periodEnd, err2 := s.parseDay(req.PeriodEnd)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_tax_period"})
		return
	}

	// Sales tax assessments without an explicit amount derive it from the
	// configured rate.
	if recorddomain.Type(req.Type) == recorddomain.TypeSalesTax && req.TaxAmount.IsZero() && req.TaxableAmount.IsPositive() {
		settings, err := s.taxSvc.Settings(c.Request.Context(), orgFromContext(c))
		if err == nil && settings.SalesTaxEnabled && settings.SalesTaxRate != nil {
			if settings.SalesTaxInclusive {
				req.TaxAmount = taxservice.ComputeSalesTaxInclusive(req.TaxableAmount, settings.SalesTaxRate)
			} else {
				req.TaxAmount = taxservice.ComputeSalesTaxExclusive(req.TaxableAmount, settings.SalesTaxRate)
			}
			if req.TaxRate.IsZero() {
				req.TaxRate = *settings.SalesTaxRate
			}
		}
	}

	record, err := s.recordSvc.Assess(c.Request.Context(), recorddomain.AssessRequest{
		OrgID:         orgFromContext(c),
		Type:          recorddomain.Type(req.Type),
		TaxableAmount: req.TaxableAmount,
		TaxRate:       req.TaxRate,
		TaxAmount:     req.TaxAmount,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		Reference:     req.Reference,
		Attachments:   req.Attachments,
		IsManualEntry: req.IsManualEntry,
		IsFinal:       req.IsFinal,
		IsExempt:      req.IsExempt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) listTaxRecords(c *gin.Context) {
	filter := recorddomain.ListFilter{
		Type:   recorddomain.Type(c.Query("type")),
		Status: recorddomain.PaymentStatus(c.Query("status")),
	}
	if raw := c.Query("from"); raw != "" {
		day, err := s.parseDay(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_range"})
			return
		}
		filter.From = day
	}
	if raw := c.Query("to"); raw != "" {
		day, err := s.parseDay(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_range"})
			return
		}
		filter.To = day
	}

	records, err := s.recordSvc.List(c.Request.Context(), orgFromContext(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) getTaxRecord(c *gin.Context) {
	id, err := parseID(c.Param("recordID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
		return
	}
	record, err := s.recordSvc.Get(c.Request.Context(), orgFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type paymentRequest struct {
	PaymentKey string          `json:"payment_key"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	PaidAt     string          `json:"paid_at"`
}

func (s *Server) recordTaxPayment(c *gin.Context) {
	id, err := parseID(c.Param("recordID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	if req.PaymentKey == "" {
		// Callers that cannot supply their own key get a fresh one; such a
		// request is not retry-safe and that is the caller's choice.
		req.PaymentKey = uuid.NewString()
	}
	var paidAt time.Time
	if req.PaidAt != "" {
		day, err := s.parseDay(req.PaidAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_paid_at"})
			return
		}
		paidAt = day
	}

	record, err := s.recordSvc.RecordPayment(c.Request.Context(), recorddomain.PaymentRequest{
		OrgID:      orgFromContext(c),
		RecordID:   id,
		PaymentKey: req.PaymentKey,
		Amount:     req.Amount,
		Method:     req.Method,
		PaidAt:     paidAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type amendRequest struct {
	TaxableAmount *decimal.Decimal `json:"taxable_amount,omitempty"`
	TaxRate       *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxAmount     *decimal.Decimal `json:"tax_amount,omitempty"`
	Reference     string           `json:"reference"`
	MakeFinal     bool             `json:"make_final"`
}

func (s *Server) amendTaxRecord(c *gin.Context) {
	id, err := parseID(c.Param("recordID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
		return
	}
	var req amendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	record, err := s.recordSvc.Amend(c.Request.Context(), recorddomain.AmendRequest{
		OrgID:         orgFromContext(c),
		RecordID:      id,
		TaxableAmount: req.TaxableAmount,
		TaxRate:       req.TaxRate,
		TaxAmount:     req.TaxAmount,
		Reference:     req.Reference,
		MakeFinal:     req.MakeFinal,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) periodSummary(c *gin.Context) {
	from, err1 := s.parseDay(c.Query("from"))
	to, err2 := s.parseDay(c.Query("to"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_range"})
		return
	}

	summary, err := s.reportingSvc.Summarize(c.Request.Context(), orgFromContext(c), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// parseDay interprets a YYYY-MM-DD value as midnight in the business
// timezone.
func (s *Server) parseDay(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", raw, s.loc)
}

func (s *Server) parseRange(c *gin.Context) (drawerdomain.HistoryFilter, error) {
	var filter drawerdomain.HistoryFilter
	if raw := c.Query("from"); raw != "" {
		day, err := s.parseDay(raw)
		if err != nil {
			return filter, err
		}
		filter.From = day
	}
	if raw := c.Query("to"); raw != "" {
		day, err := s.parseDay(raw)
		if err != nil {
			return filter, err
		}
		filter.To = day
	}
	return filter, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(raw)
}
