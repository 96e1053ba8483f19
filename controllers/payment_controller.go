package controllers

import (
	"net/http"
	"strconv"

	"guesthouse-backend/services"
	"guesthouse-backend/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Payments *services.PaymentService
	Billing  *services.BillingService
}

func NewPaymentController(payments *services.PaymentService, billing *services.BillingService) *PaymentController {
	return &PaymentController{Payments: payments, Billing: billing}
}

type generateRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// GET /api/v1/payments?status=&guest_id=&due_before=&due_after=
func (pc *PaymentController) GetPayments(c *gin.Context) {
	guestID, ok := queryUint(c, "guest_id")
	if !ok {
		return
	}
	payments, err := pc.Payments.List(c.Request.Context(), services.PaymentFilter{
		Status:    c.Query("status"),
		GuestID:   guestID,
		DueBefore: c.Query("due_before"),
		DueAfter:  c.Query("due_after"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"payments": payments}, "Payments retrieved successfully")
}

// GET /api/v1/payments/due
func (pc *PaymentController) GetDuePayments(c *gin.Context) {
	payments, err := pc.Billing.DuePayments(c.Request.Context(), pc.Billing.Today())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"payments": payments}, "Due payments retrieved successfully")
}

// GET /api/v1/payments/overdue
func (pc *PaymentController) GetOverduePayments(c *gin.Context) {
	payments, err := pc.Billing.OverduePayments(c.Request.Context(), pc.Billing.Today())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"payments": payments}, "Overdue payments retrieved successfully")
}

func (pc *PaymentController) GetPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	payment, err := pc.Payments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"payment": payment}, "Payment retrieved successfully")
}

// GET /api/v1/payments/guest/:guest_id
func (pc *PaymentController) GetGuestPayments(c *gin.Context) {
	guestID, ok := paramID(c, "guest_id")
	if !ok {
		return
	}
	payments, err := pc.Payments.ByGuest(c.Request.Context(), guestID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"payments": payments}, "Guest payments retrieved successfully")
}

func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var in services.PaymentInput
	if !bindJSON(c, &in) {
		return
	}
	payment, err := pc.Payments.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"payment": payment}, "Payment created successfully")
}

func (pc *PaymentController) UpdatePayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.PaymentUpdate
	if !bindJSON(c, &in) {
		return
	}
	payment, err := pc.Payments.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"payment": payment}, "Payment updated successfully")
}

func (pc *PaymentController) DeletePayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := pc.Payments.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, nil, "Payment deleted successfully")
}

// POST /api/v1/payments/generate-monthly {"month": 3, "year": 2024}
func (pc *PaymentController) GenerateMonthlyPayments(c *gin.Context) {
	var req generateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.Month == 0 || req.Year == 0 {
		respondError(c, services.ErrMissingFields.WithMessage("Month and year are required"))
		return
	}

	result, err := pc.Billing.GenerateMonthlyPayments(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result,
		"Generated "+strconv.Itoa(result.Count)+" payments for "+strconv.Itoa(req.Month)+"/"+strconv.Itoa(req.Year))
}
