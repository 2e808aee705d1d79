package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/SscSPs/pos_reconciliation/internal/middleware"
	"github.com/SscSPs/pos_reconciliation/internal/utils"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for debts: customer debts, company debts and
// personal loans, and the payments made against them.
type ledgerHandler struct {
	ledgerService  portssvc.LedgerSvcFacade
	paymentService portssvc.PaymentSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, ps portssvc.PaymentSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls, paymentService: ps}
}

func registerLedgerRoutes(rg *gin.RouterGroup, write gin.HandlerFunc, ledgerService portssvc.LedgerSvcFacade, paymentService portssvc.PaymentSvcFacade) {
	h := newLedgerHandler(ledgerService, paymentService)

	companyDebts := rg.Group("/company-debts")
	{
		companyDebts.POST("", write, h.createCompanyDebt)
		companyDebts.GET("/:id", h.getCompanyDebt)
	}

	loans := rg.Group("/personal-loans")
	{
		loans.POST("", write, h.createPersonalLoan)
		loans.GET("/:id", h.getPersonalLoan)
	}

	// kind is one of customer_debt, company_debt or personal_loan
	debts := rg.Group("/debts/:kind")
	{
		debts.GET("", h.listOutstanding)
		debts.GET("/:id/remaining", h.getRemaining)
		debts.POST("/:id/payments", write, h.applyPayment)
		debts.GET("/:id/payments", h.listPayments)
	}
}

// createCompanyDebt godoc
// @Summary Record a company debt
// @Description USD and IQD debts use amount, MULTI debts track usdAmount and iqdAmount separately.
// @Tags debts
// @Accept  json
// @Produce  json
// @Param   debt body dto.CreateCompanyDebtRequest true "Company debt"
// @Success 201 {object} dto.CompanyDebtResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to create company debt"
// @Router /company-debts [post]
func (h *ledgerHandler) createCompanyDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCompanyDebtRequest
	if !bindJSON(c, logger, &req, "CreateCompanyDebt") {
		return
	}

	debt, err := h.ledgerService.CreateCompanyDebt(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "create company debt")
		return
	}

	logger.Info("Company debt created", slog.String("company_debt_id", debt.ID), slog.String("company", debt.CompanyName))
	c.JSON(http.StatusCreated, dto.ToCompanyDebtResponse(debt))
}

// getCompanyDebt godoc
// @Summary Get a company debt
// @Tags debts
// @Produce  json
// @Param   id path string true "Company debt ID"
// @Success 200 {object} dto.CompanyDebtResponse
// @Failure 404 {object} map[string]string "Company debt not found"
// @Failure 500 {object} map[string]string "Failed to retrieve company debt"
// @Router /company-debts/{id} [get]
func (h *ledgerHandler) getCompanyDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("company_debt_id", c.Param("id")))

	debt, err := h.ledgerService.GetCompanyDebt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "retrieve company debt")
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyDebtResponse(debt))
}

// createPersonalLoan godoc
// @Summary Record a personal loan
// @Tags debts
// @Accept  json
// @Produce  json
// @Param   loan body dto.CreatePersonalLoanRequest true "Personal loan"
// @Success 201 {object} dto.PersonalLoanResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to create personal loan"
// @Router /personal-loans [post]
func (h *ledgerHandler) createPersonalLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePersonalLoanRequest
	if !bindJSON(c, logger, &req, "CreatePersonalLoan") {
		return
	}

	loan, err := h.ledgerService.CreatePersonalLoan(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "create personal loan")
		return
	}

	logger.Info("Personal loan created", slog.String("loan_id", loan.ID))
	c.JSON(http.StatusCreated, dto.ToPersonalLoanResponse(loan))
}

// getPersonalLoan godoc
// @Summary Get a personal loan
// @Tags debts
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.PersonalLoanResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 500 {object} map[string]string "Failed to retrieve personal loan"
// @Router /personal-loans/{id} [get]
func (h *ledgerHandler) getPersonalLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("loan_id", c.Param("id")))

	loan, err := h.ledgerService.GetPersonalLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "retrieve personal loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToPersonalLoanResponse(loan))
}

// listOutstanding godoc
// @Summary List unsettled debts of a kind
// @Tags debts
// @Produce  json
// @Param   kind path string true "customer_debt, company_debt or personal_loan"
// @Success 200 {array} dto.RemainingResponse
// @Failure 400 {object} map[string]string "Unknown debt kind"
// @Failure 500 {object} map[string]string "Failed to list debts"
// @Router /debts/{kind} [get]
func (h *ledgerHandler) listOutstanding(c *gin.Context) {
	kind := domain.RecordKind(c.Param("kind"))
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("kind", string(kind)))

	entries, err := h.ledgerService.ListOutstanding(c.Request.Context(), kind)
	if err != nil {
		respondError(c, logger, err, "list debts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRemainingResponse(entries))
}

// getRemaining godoc
// @Summary What is still owed on a debt
// @Description Customer debts convert at their last payment rate, or the frozen sale rate before any payment. Other debts use the live rate.
// @Tags debts
// @Produce  json
// @Param   kind path string true "customer_debt, company_debt or personal_loan"
// @Param   id path string true "Debt ID"
// @Success 200 {object} dto.RemainingResponse
// @Failure 404 {object} map[string]string "Debt not found"
// @Failure 500 {object} map[string]string "Failed to compute remaining"
// @Router /debts/{kind}/{id}/remaining [get]
func (h *ledgerHandler) getRemaining(c *gin.Context) {
	kind := domain.RecordKind(c.Param("kind"))
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("kind", string(kind)), slog.String("id", c.Param("id")))

	remaining, position, err := h.ledgerService.Remaining(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "compute remaining")
		return
	}
	c.JSON(http.StatusOK, dto.ToRemainingResponse(kind, position.ID, remaining, position.PaidAt))
}

// applyPayment godoc
// @Summary Apply a payment to a debt
// @Description Anything beyond what is owed is reported as overpayment and never enters the drawer.
// @Tags debts
// @Accept  json
// @Produce  json
// @Param   kind path string true "customer_debt, company_debt or personal_loan"
// @Param   id path string true "Debt ID"
// @Param   payment body dto.ApplyPaymentRequest true "Tender"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Debt not found"
// @Failure 409 {object} map[string]string "Debt already settled"
// @Failure 500 {object} map[string]string "Failed to apply payment"
// @Router /debts/{kind}/{id}/payments [post]
func (h *ledgerHandler) applyPayment(c *gin.Context) {
	kind := domain.RecordKind(c.Param("kind"))
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("kind", string(kind)), slog.String("id", c.Param("id")))
	var req dto.ApplyPaymentRequest
	if !bindJSON(c, logger, &req, "ApplyPayment") {
		return
	}

	outcome, record, err := h.paymentService.ApplyPayment(c.Request.Context(), kind, c.Param("id"), req)
	if err != nil {
		respondError(c, logger, err, "apply payment")
		return
	}

	logger.Info("Payment applied",
		slog.String("payment_id", record.ID),
		slog.String("absorbed", utils.FormatTender(outcome.AbsorbedUSD, outcome.AbsorbedIQD)),
		slog.Bool("settled", outcome.Settled))
	if outcome.HasOverpayment() {
		logger.Warn("Payment exceeded the amount owed", slog.String("overpayment", utils.FormatTender(outcome.OverpaymentUSD, outcome.OverpaymentIQD)))
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(outcome, record))
}

// listPayments godoc
// @Summary Payment history of a debt
// @Tags debts
// @Produce  json
// @Param   kind path string true "customer_debt, company_debt or personal_loan"
// @Param   id path string true "Debt ID"
// @Success 200 {array} dto.PaymentRecordResponse
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Router /debts/{kind}/{id}/payments [get]
func (h *ledgerHandler) listPayments(c *gin.Context) {
	kind := domain.RecordKind(c.Param("kind"))
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("kind", string(kind)), slog.String("id", c.Param("id")))

	records, err := h.paymentService.ListPaymentHistory(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPaymentRecordResponse(records))
}
