// services/order_builder.go
package services

import (
	"errors"
	"time"

	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OrderBuilderService assembles complete sales/purchase documents from
// validated lines, a resolved party and the caller's payment intent.
type OrderBuilderService struct {
	db        *gorm.DB
	numbering *NumberingService
	payments  *PaymentService
	resolver  *PartyResolver
}

func NewOrderBuilderService(db *gorm.DB) *OrderBuilderService {
	return &OrderBuilderService{
		db:        db,
		numbering: NewNumberingService(db),
		payments:  NewPaymentService(db),
		resolver:  NewPartyResolver(db),
	}
}

// DocumentLineRequest is one requested line before computation.
type DocumentLineRequest struct {
	ItemID          *uuid.UUID
	Name            string
	HSNCode         string
	Unit            string
	Quantity        float64
	UnitPrice       float64
	DiscountPercent float64
	DiscountAmount  float64
	GSTRate         float64
	CGSTRate        float64
	SGSTRate        float64
	IGSTRate        float64
	TaxInclusive    bool
}

// CreateDocumentRequest carries everything needed to build a document.
type CreateDocumentRequest struct {
	Kind            models.DocumentKind
	OrderType       models.OrderType
	DocumentNumber  string // generated when empty
	PartyID         *uuid.UUID
	PartyName       string
	PartyPhone      string
	DocumentDate    time.Time
	Lines           []DocumentLineRequest
	RoundOffEnabled bool
	RoundOff        float64
	PaymentMethod   string
	PaidAmount      float64
	AdvanceAmount   float64
	CreditDays      int
	Notes           string
}

// CreateDocument validates lines, computes per-line taxes and document
// totals, resolves the party, initializes payment state, generates the
// document number and persists the aggregate. A non-zero initial payment
// also moves the party balance and creates a companion ledger payment.
func (s *OrderBuilderService) CreateDocument(companyID, userID uuid.UUID, req CreateDocumentRequest) (*models.Document, error) {
	if len(req.Lines) == 0 {
		return nil, utils.NewValidationError("document requires at least one line item")
	}
	if req.OrderType == "" {
		req.OrderType = models.OrderTypeOrder
	}
	if req.DocumentDate.IsZero() {
		req.DocumentDate = time.Now()
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}

	defaultType := models.PartyTypeCustomer
	if req.Kind == models.DocumentKindPurchaseOrder {
		defaultType = models.PartyTypeSupplier
	}
	party, err := s.resolver.Resolve(companyID, userID, ResolvePartyInput{
		PartyID:     req.PartyID,
		Name:        req.PartyName,
		Phone:       req.PartyPhone,
		DefaultType: defaultType,
	})
	if err != nil {
		return nil, err
	}

	lines := make([]models.DocumentLine, 0, len(req.Lines))
	computations := make([]LineComputation, 0, len(req.Lines))
	for _, lr := range req.Lines {
		if lr.Name == "" {
			return nil, utils.NewValidationError("line item name is required")
		}
		comp, err := CalculateLineItem(LineItemInput{
			Name:            lr.Name,
			Quantity:        lr.Quantity,
			UnitPrice:       lr.UnitPrice,
			DiscountPercent: lr.DiscountPercent,
			DiscountAmount:  lr.DiscountAmount,
			GSTRate:         lr.GSTRate,
			CGSTRate:        lr.CGSTRate,
			SGSTRate:        lr.SGSTRate,
			IGSTRate:        lr.IGSTRate,
			TaxInclusive:    lr.TaxInclusive,
		})
		if err != nil {
			return nil, err
		}
		computations = append(computations, comp)
		lines = append(lines, models.DocumentLine{
			ItemID:          lr.ItemID,
			Name:            lr.Name,
			HSNCode:         lr.HSNCode,
			Unit:            lr.Unit,
			Quantity:        lr.Quantity,
			UnitPrice:       lr.UnitPrice,
			DiscountPercent: lr.DiscountPercent,
			TaxInclusive:    lr.TaxInclusive,
			CGSTRate:        comp.CGSTRate,
			SGSTRate:        comp.SGSTRate,
			IGSTRate:        comp.IGSTRate,
			BaseAmount:      comp.BaseAmount,
			DiscountAmount:  comp.DiscountAmount,
			TaxableAmount:   comp.TaxableAmount,
			CGST:            comp.CGST,
			SGST:            comp.SGST,
			IGST:            comp.IGST,
			TotalTax:        comp.TotalTax,
			ItemAmount:      comp.ItemAmount,
		})
	}

	totals := AccumulateTotals(computations, req.RoundOff, req.RoundOffEnabled)

	paid := Round2(req.PaidAmount)
	if advance := Round2(req.AdvanceAmount); advance > paid {
		paid = advance
	}
	if paid > totals.FinalTotal {
		return nil, utils.NewBusinessRuleError("initial payment %.2f exceeds document total %.2f", paid, totals.FinalTotal)
	}

	number := req.DocumentNumber
	if number == "" {
		number = s.numbering.NextDocumentNumber(companyID, req.Kind, req.OrderType, req.DocumentDate)
	}

	doc := models.Document{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		DocumentNumber:  number,
		Kind:            req.Kind,
		OrderType:       req.OrderType,
		Status:          models.DocumentStatusPending,
		PartyID:         party.ID,
		PartyName:       party.Name,
		DocumentDate:    req.DocumentDate,
		Subtotal:        totals.Subtotal,
		TotalDiscount:   totals.TotalDiscount,
		TotalCGST:       totals.TotalCGST,
		TotalSGST:       totals.TotalSGST,
		TotalIGST:       totals.TotalIGST,
		TotalTax:        totals.TotalTax,
		RoundOff:        totals.RoundOff,
		FinalTotal:      totals.FinalTotal,
		PaymentMethod:   req.PaymentMethod,
		PaidAmount:      paid,
		CreditDays:      req.CreditDays,
		Notes:           req.Notes,
		Lines:           lines,
	}
	RecomputePaymentState(&doc, req.DocumentDate)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			if isDuplicateKey(err) {
				return utils.NewConflictError("document number %s already exists", doc.DocumentNumber)
			}
			return utils.WrapInternal("failed to create document", err)
		}

		if paid > 0 {
			paymentType := models.PaymentTypeIn
			if doc.Kind == models.DocumentKindPurchaseOrder {
				paymentType = models.PaymentTypeOut
			}
			paidParty, before, after, err := s.payments.applyPartyBalance(tx, companyID, party.ID, paid, paymentType)
			if err != nil {
				return err
			}
			payment := models.Payment{
				CompanyID:          companyID,
				CreatedByUserID:    userID,
				PaymentNumber:      s.numbering.NextPaymentNumber(companyID, paymentType, req.DocumentDate),
				Type:               paymentType,
				PartyID:            paidParty.ID,
				PartyName:          paidParty.Name,
				Amount:             paid,
				Method:             req.PaymentMethod,
				Status:             models.PaymentStateCompleted,
				PartyBalanceBefore: before,
				PartyBalanceAfter:  after,
				PaymentDate:        req.DocumentDate,
				LinkedDocuments: []models.PaymentAllocation{{
					DocumentID:      doc.ID,
					DocumentNumber:  doc.DocumentNumber,
					AllocatedAmount: paid,
					RemainingAmount: doc.PendingAmount,
					IsFullyPaid:     doc.PaymentStatus == models.PaymentStatusPaid,
				}},
			}
			if err := tx.Create(&payment).Error; err != nil {
				return utils.WrapInternal("failed to create initial payment", err)
			}
			entry := models.PaymentHistoryEntry{
				DocumentID:       doc.ID,
				PaymentID:        &payment.ID,
				Amount:           paid,
				Method:           req.PaymentMethod,
				RecordedByUserID: userID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return utils.WrapInternal("failed to append payment history", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stock moves only once goods actually change hands: purchase invoices
	// increment, sales invoices decrement. Failures are logged and skipped,
	// never rolled back into the document creation.
	if doc.OrderType == models.OrderTypeInvoice {
		s.applyStockEffects(&doc)
	}

	return s.GetDocument(companyID, doc.ID)
}

// applyStockEffects adjusts item stock for each line with a resolved item
// reference. Per-line failures are logged and skipped.
func (s *OrderBuilderService) applyStockEffects(doc *models.Document) {
	direction := 1.0
	if doc.Kind == models.DocumentKindSalesOrder {
		direction = -1.0
	}
	for _, line := range doc.Lines {
		if line.ItemID == nil {
			continue
		}
		err := s.db.Model(&models.Item{}).
			Where("company_id = ? AND id = ? AND type = ?", doc.CompanyID, *line.ItemID, models.ItemTypeProduct).
			Update("current_stock", gorm.Expr("current_stock + ?", direction*line.Quantity)).Error
		if err != nil {
			log.Error().Err(err).
				Str("document", doc.DocumentNumber).
				Str("item", line.ItemID.String()).
				Msg("failed to update item stock")
		}
	}
}

// validStatusTransitions defines the allowed document status moves.
var validStatusTransitions = map[models.DocumentStatus][]models.DocumentStatus{
	models.DocumentStatusDraft:     {models.DocumentStatusPending, models.DocumentStatusConfirmed, models.DocumentStatusCancelled},
	models.DocumentStatusPending:   {models.DocumentStatusConfirmed, models.DocumentStatusCompleted, models.DocumentStatusCancelled},
	models.DocumentStatusConfirmed: {models.DocumentStatusCompleted, models.DocumentStatusCancelled},
}

// UpdateStatus transitions a document through its status state machine.
// Converted documents are immutable except for cancellation.
func (s *OrderBuilderService) UpdateStatus(companyID uuid.UUID, documentID uuid.UUID, next models.DocumentStatus) (*models.Document, error) {
	var doc models.Document
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("company_id = ? AND id = ?", companyID, documentID).
			First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("document not found")
			}
			return utils.WrapInternal("failed to load document", err)
		}

		if doc.ConvertedToInvoice && next != models.DocumentStatusCancelled {
			return utils.NewBusinessRuleError("document %s has been converted and can only be cancelled", doc.DocumentNumber)
		}

		allowed := false
		for _, t := range validStatusTransitions[doc.Status] {
			if t == next {
				allowed = true
				break
			}
		}
		if !allowed {
			return utils.NewBusinessRuleError("cannot transition document from %s to %s", doc.Status, next)
		}

		doc.Status = next
		if err := tx.Save(&doc).Error; err != nil {
			return utils.WrapInternal("failed to update document status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ConvertToInvoice turns an order/quotation into an invoice document. The
// original keeps its number and is frozen; advance payments carry over to
// the new invoice. A failed advance transfer is logged, not fatal.
func (s *OrderBuilderService) ConvertToInvoice(companyID, userID uuid.UUID, documentID uuid.UUID) (*models.Document, error) {
	var invoice models.Document
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		if err := lockForUpdate(tx).Preload("Lines").
			Where("company_id = ? AND id = ?", companyID, documentID).
			First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("document not found")
			}
			return utils.WrapInternal("failed to load document", err)
		}

		if doc.ConvertedToInvoice {
			return utils.NewBusinessRuleError("document %s has already been converted", doc.DocumentNumber)
		}
		if doc.Status == models.DocumentStatusCancelled {
			return utils.NewBusinessRuleError("cannot convert a cancelled document")
		}
		if doc.OrderType == models.OrderTypeInvoice {
			return utils.NewBusinessRuleError("document %s is already an invoice", doc.DocumentNumber)
		}

		now := time.Now()
		lines := make([]models.DocumentLine, len(doc.Lines))
		for i, l := range doc.Lines {
			l.ID = uuid.Nil
			l.DocumentID = uuid.Nil
			lines[i] = l
		}

		invoice = models.Document{
			CompanyID:       companyID,
			CreatedByUserID: userID,
			DocumentNumber:  s.numbering.NextDocumentNumber(companyID, doc.Kind, models.OrderTypeInvoice, now),
			Kind:            doc.Kind,
			OrderType:       models.OrderTypeInvoice,
			Status:          models.DocumentStatusPending,
			PartyID:         doc.PartyID,
			PartyName:       doc.PartyName,
			DocumentDate:    now,
			Subtotal:        doc.Subtotal,
			TotalDiscount:   doc.TotalDiscount,
			TotalCGST:       doc.TotalCGST,
			TotalSGST:       doc.TotalSGST,
			TotalIGST:       doc.TotalIGST,
			TotalTax:        doc.TotalTax,
			RoundOff:        doc.RoundOff,
			FinalTotal:      doc.FinalTotal,
			PaymentMethod:   doc.PaymentMethod,
			CreditDays:      doc.CreditDays,
			Notes:           doc.Notes,
			Lines:           lines,
		}

		// Advances already collected on the order carry into the invoice.
		invoice.PaidAmount = doc.PaidAmount
		RecomputePaymentState(&invoice, now)

		if err := tx.Create(&invoice).Error; err != nil {
			return utils.WrapInternal("failed to create invoice", err)
		}

		// Move the order's payment history across so allocations point at
		// the live invoice. Not fatal if it fails.
		if doc.PaidAmount > 0 {
			if err := tx.Model(&models.PaymentHistoryEntry{}).
				Where("document_id = ?", doc.ID).
				Update("document_id", invoice.ID).Error; err != nil {
				log.Error().Err(err).
					Str("order", doc.DocumentNumber).
					Str("invoice", invoice.DocumentNumber).
					Msg("failed to transfer advance payment history")
			}
		}

		doc.ConvertedToInvoice = true
		doc.ConvertedDocumentID = &invoice.ID
		doc.Status = models.DocumentStatusCompleted
		if err := tx.Save(&doc).Error; err != nil {
			return utils.WrapInternal("failed to mark document converted", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Lines").First(&invoice, "id = ?", invoice.ID).Error; err == nil {
		s.applyStockEffects(&invoice)
	}
	return s.GetDocument(companyID, invoice.ID)
}

// CancelDocument marks a document cancelled. Recorded payments stay on the
// ledger; cancelling them is a separate, explicit operation.
func (s *OrderBuilderService) CancelDocument(companyID uuid.UUID, documentID uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("company_id = ? AND id = ?", companyID, documentID).
			First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("document not found")
			}
			return utils.WrapInternal("failed to load document", err)
		}
		if doc.Status == models.DocumentStatusCancelled {
			return utils.NewConflictError("document %s is already cancelled", doc.DocumentNumber)
		}
		doc.Status = models.DocumentStatusCancelled
		if err := tx.Save(&doc).Error; err != nil {
			return utils.WrapInternal("failed to cancel document", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DocumentFilter narrows list queries.
type DocumentFilter struct {
	Kind      models.DocumentKind
	OrderType models.OrderType
	Status    models.DocumentStatus
	PartyID   *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// ListDocuments returns matching documents, newest first. Always returns
// an empty slice rather than nil when nothing matches.
func (s *OrderBuilderService) ListDocuments(companyID uuid.UUID, filter DocumentFilter) ([]models.Document, error) {
	query := s.db.Preload("Lines").Preload("History").
		Where("company_id = ?", companyID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.OrderType != "" {
		query = query.Where("order_type = ?", filter.OrderType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.DateFrom != nil {
		query = query.Where("document_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("document_date <= ?", *filter.DateTo)
	}

	docs := make([]models.Document, 0)
	if err := query.Order("document_date DESC").Find(&docs).Error; err != nil {
		return nil, utils.WrapInternal("failed to list documents", err)
	}
	return docs, nil
}

// GetDocument loads one document with its lines and payment history.
func (s *OrderBuilderService) GetDocument(companyID uuid.UUID, documentID uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := s.db.Preload("Lines").Preload("History").
		Where("company_id = ? AND id = ?", companyID, documentID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("document not found")
		}
		return nil, utils.WrapInternal("failed to load document", err)
	}
	return &doc, nil
}
