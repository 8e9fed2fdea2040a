package controllers

import (
	"net/http"
	"time"

	"bizbooks-backend/config"
	"bizbooks-backend/models"
	"bizbooks-backend/services"
	"bizbooks-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentLineInput defines one line of a sales/purchase document
type DocumentLineInput struct {
	ItemID          *uuid.UUID `json:"itemId"`
	Name            string     `json:"name" binding:"required"`
	HSNCode         string     `json:"hsnCode"`
	Unit            string     `json:"unit"`
	Quantity        float64    `json:"quantity" binding:"required,gt=0"`
	UnitPrice       float64    `json:"unitPrice" binding:"min=0"`
	DiscountPercent float64    `json:"discountPercent" binding:"min=0"`
	DiscountAmount  float64    `json:"discountAmount" binding:"min=0"`
	GSTRate         float64    `json:"gstRate" binding:"min=0"`
	CGSTRate        float64    `json:"cgstRate" binding:"min=0"`
	SGSTRate        float64    `json:"sgstRate" binding:"min=0"`
	IGSTRate        float64    `json:"igstRate" binding:"min=0"`
	TaxInclusive    bool       `json:"taxInclusive"`
}

// CreateDocumentInput defines the expected JSON structure for creating a
// sales or purchase document
type CreateDocumentInput struct {
	OrderType       models.OrderType    `json:"orderType" binding:"omitempty,oneof=quotation order proforma invoice"`
	DocumentNumber  string              `json:"documentNumber"`
	PartyID         *uuid.UUID          `json:"partyId"`
	PartyName       string              `json:"partyName"`
	PartyPhone      string              `json:"partyPhone"`
	DocumentDate    *time.Time          `json:"documentDate"`
	Items           []DocumentLineInput `json:"items" binding:"required,min=1,dive"`
	RoundOffEnabled bool                `json:"roundOffEnabled"`
	RoundOff        float64             `json:"roundOff"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaidAmount      float64             `json:"paidAmount" binding:"min=0"`
	AdvanceAmount   float64             `json:"advanceAmount" binding:"min=0"`
	CreditDays      int                 `json:"creditDays" binding:"min=0"`
	Notes           string              `json:"notes"`
}

type UpdateStatusInput struct {
	Status models.DocumentStatus `json:"status" binding:"required,oneof=draft pending confirmed completed cancelled"`
}

// AddPaymentInput records a payment against a document
type AddPaymentInput struct {
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Method      string     `json:"method"`
	Reference   string     `json:"reference"`
	PaymentDate *time.Time `json:"paymentDate"`
}

// CreateDocumentHandler builds the create endpoint for one document kind.
func CreateDocumentHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, userID, ok := authContext(c)
		if !ok {
			return
		}

		var input CreateDocumentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}

		req := services.CreateDocumentRequest{
			Kind:            kind,
			OrderType:       input.OrderType,
			DocumentNumber:  input.DocumentNumber,
			PartyID:         input.PartyID,
			PartyName:       input.PartyName,
			PartyPhone:      input.PartyPhone,
			RoundOffEnabled: input.RoundOffEnabled,
			RoundOff:        input.RoundOff,
			PaymentMethod:   input.PaymentMethod,
			PaidAmount:      input.PaidAmount,
			AdvanceAmount:   input.AdvanceAmount,
			CreditDays:      input.CreditDays,
			Notes:           input.Notes,
		}
		if input.DocumentDate != nil {
			req.DocumentDate = *input.DocumentDate
		}
		for _, item := range input.Items {
			req.Lines = append(req.Lines, services.DocumentLineRequest{
				ItemID:          item.ItemID,
				Name:            item.Name,
				HSNCode:         item.HSNCode,
				Unit:            item.Unit,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				DiscountPercent: item.DiscountPercent,
				DiscountAmount:  item.DiscountAmount,
				GSTRate:         item.GSTRate,
				CGSTRate:        item.CGSTRate,
				SGSTRate:        item.SGSTRate,
				IGSTRate:        item.IGSTRate,
				TaxInclusive:    item.TaxInclusive,
			})
		}

		doc, err := services.NewOrderBuilderService(config.DB).CreateDocument(companyID, userID, req)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}

		utils.RespondWithData(c, http.StatusCreated, "Document created", doc)
	}
}

// ListDocumentsHandler builds the list endpoint for one document kind.
func ListDocumentsHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, _, ok := authContext(c)
		if !ok {
			return
		}

		filter := services.DocumentFilter{Kind: kind}
		filter.OrderType = models.OrderType(c.Query("orderType"))
		filter.Status = models.DocumentStatus(c.Query("status"))
		if partyID := c.Query("partyId"); partyID != "" {
			id, err := uuid.Parse(partyID)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid partyId format")
				return
			}
			filter.PartyID = &id
		}
		if from := c.Query("from"); from != "" {
			t, err := time.Parse(time.RFC3339, from)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date")
				return
			}
			filter.DateFrom = &t
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse(time.RFC3339, to)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date")
				return
			}
			filter.DateTo = &t
		}

		docs, err := services.NewOrderBuilderService(config.DB).ListDocuments(companyID, filter)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}

		utils.RespondWithData(c, http.StatusOK, "OK", docs)
	}
}

// GetDocumentHandler builds the get-by-id endpoint for one document kind.
func GetDocumentHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, _, ok := authContext(c)
		if !ok {
			return
		}
		documentID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		doc, err := services.NewOrderBuilderService(config.DB).GetDocument(companyID, documentID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		if doc.Kind != kind {
			utils.RespondWithError(c, http.StatusNotFound, "Document not found")
			return
		}

		utils.RespondWithData(c, http.StatusOK, "OK", doc)
	}
}

// UpdateDocumentStatusHandler builds the status-transition endpoint.
func UpdateDocumentStatusHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, _, ok := authContext(c)
		if !ok {
			return
		}
		documentID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		var input UpdateStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}

		doc, err := services.NewOrderBuilderService(config.DB).UpdateStatus(companyID, documentID, input.Status)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}

		utils.RespondWithData(c, http.StatusOK, "Status updated", doc)
	}
}

// AddDocumentPaymentHandler builds the add-payment endpoint.
func AddDocumentPaymentHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, userID, ok := authContext(c)
		if !ok {
			return
		}
		documentID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		var input AddPaymentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}

		in := services.AddDocumentPaymentInput{
			Amount:    input.Amount,
			Method:    input.Method,
			Reference: input.Reference,
		}
		if input.PaymentDate != nil {
			in.PaymentDate = *input.PaymentDate
		}

		doc, err := services.NewPaymentService(config.DB).AddDocumentPayment(companyID, userID, documentID, in)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}

		utils.RespondWithData(c, http.StatusOK, "Payment added", doc)
	}
}

// ConvertToInvoiceHandler builds the order→invoice conversion endpoint.
func ConvertToInvoiceHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, userID, ok := authContext(c)
		if !ok {
			return
		}
		documentID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		invoice, err := services.NewOrderBuilderService(config.DB).ConvertToInvoice(companyID, userID, documentID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}

		utils.RespondWithData(c, http.StatusOK, "Converted to invoice", invoice)
	}
}

// CancelDocumentHandler builds the cancel endpoint.
func CancelDocumentHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, _, ok := authContext(c)
		if !ok {
			return
		}
		documentID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		doc, err := services.NewOrderBuilderService(config.DB).CancelDocument(companyID, documentID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}

		utils.RespondWithData(c, http.StatusOK, "Document cancelled", doc)
	}
}
