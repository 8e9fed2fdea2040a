package controllers

import (
	"errors"
	"net/http"
	"time"

	"bizbooks-backend/config"
	"bizbooks-backend/models"
	"bizbooks-backend/services"
	"bizbooks-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePaymentInput defines the expected JSON structure for pay-in/pay-out
type CreatePaymentInput struct {
	PartyID     uuid.UUID  `json:"partyId" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Method      string     `json:"method"`
	Reference   string     `json:"reference"`
	Notes       string     `json:"notes"`
	PaymentDate *time.Time `json:"paymentDate"`
}

type CancelPaymentInput struct {
	Reason string `json:"reason"`
}

func createPayment(c *gin.Context, paymentType models.PaymentType) {
	companyID, userID, ok := authContext(c)
	if !ok {
		return
	}

	var input CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	in := services.CreatePaymentInput{
		PartyID:   input.PartyID,
		Amount:    input.Amount,
		Method:    input.Method,
		Reference: input.Reference,
		Notes:     input.Notes,
	}
	if input.PaymentDate != nil {
		in.PaymentDate = *input.PaymentDate
	}

	payment, err := services.NewPaymentService(config.DB).CreatePayment(companyID, userID, paymentType, in)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondWithData(c, http.StatusCreated, "Payment recorded", payment)
}

// CreatePaymentIn records money received from a party.
func CreatePaymentIn(c *gin.Context) {
	createPayment(c, models.PaymentTypeIn)
}

// CreatePaymentOut records money paid to a party.
func CreatePaymentOut(c *gin.Context) {
	createPayment(c, models.PaymentTypeOut)
}

// CancelPayment reverses a payment's balance effect and marks it cancelled.
func CancelPayment(c *gin.Context) {
	companyID, userID, ok := authContext(c)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	// Reason is optional; an empty body is fine.
	var input CancelPaymentInput
	_ = c.ShouldBindJSON(&input)

	payment, err := services.NewPaymentService(config.DB).CancelPayment(companyID, userID, paymentID, input.Reason)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondWithData(c, http.StatusOK, "Payment cancelled", payment)
}

// GetPayments lists the company's payments, newest first.
func GetPayments(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}

	query := config.DB.Preload("LinkedDocuments").Where("company_id = ?", companyID)
	if paymentType := c.Query("type"); paymentType != "" {
		query = query.Where("type = ?", paymentType)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if partyID := c.Query("partyId"); partyID != "" {
		id, err := uuid.Parse(partyID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid partyId format")
			return
		}
		query = query.Where("party_id = ?", id)
	}

	payments := make([]models.Payment, 0)
	if err := query.Order("payment_date DESC").Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}

	utils.RespondWithData(c, http.StatusOK, "OK", payments)
}

// GetPayment retrieves a specific payment by ID
func GetPayment(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var payment models.Payment
	if err := config.DB.Preload("LinkedDocuments").
		Where("company_id = ? AND id = ?", companyID, paymentID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Payment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, "OK", payment)
}
