// services/payments.go
package services

import (
	"errors"
	"strings"
	"time"

	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentService owns the payment state machine: document-level
// paid/pending/status tracking and the party running-balance ledger.
// Every mutation of a party balance or a document payment position runs
// inside a transaction holding row locks on the affected rows, so two
// concurrent payments can never both validate against the same stale
// pending amount.
type PaymentService struct {
	db        *gorm.DB
	numbering *NumberingService
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db, numbering: NewNumberingService(db)}
}

// lockForUpdate appends a FOR UPDATE row lock on dialects that support it.
// sqlite (tests) has no row locks; its single-writer lock serializes
// transactions anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// CreatePaymentInput is a standalone pay-in / pay-out request.
type CreatePaymentInput struct {
	PartyID     uuid.UUID
	Amount      float64
	Method      string
	Reference   string
	Notes       string
	PaymentDate time.Time
}

// CreatePayment records a cash movement and moves the party balance:
// payment_in adds the amount, payment_out subtracts it. The balance
// before/after pair is snapshotted on the payment record.
func (s *PaymentService) CreatePayment(companyID, userID uuid.UUID, paymentType models.PaymentType, in CreatePaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, utils.NewValidationError("payment amount must be greater than 0")
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = time.Now()
	}
	if in.Method == "" {
		in.Method = "cash"
	}

	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		party, before, after, err := s.applyPartyBalance(tx, companyID, in.PartyID, in.Amount, paymentType)
		if err != nil {
			return err
		}

		payment = models.Payment{
			CompanyID:          companyID,
			CreatedByUserID:    userID,
			PaymentNumber:      s.numbering.NextPaymentNumber(companyID, paymentType, in.PaymentDate),
			Type:               paymentType,
			PartyID:            party.ID,
			PartyName:          party.Name,
			Amount:             Round2(in.Amount),
			Method:             in.Method,
			Reference:          in.Reference,
			Notes:              in.Notes,
			Status:             models.PaymentStateCompleted,
			PartyBalanceBefore: before,
			PartyBalanceAfter:  after,
			PaymentDate:        in.PaymentDate,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return utils.WrapInternal("failed to create payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// CancelPayment reverses the party-balance effect of a payment exactly and
// marks it cancelled. Cancelling twice fails. The owning document's paid
// amount is intentionally left untouched; the document keeps its payment
// history as an audit trail.
func (s *PaymentService) CancelPayment(companyID, userID, paymentID uuid.UUID, reason string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("company_id = ? AND id = ?", companyID, paymentID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("payment not found")
			}
			return utils.WrapInternal("failed to load payment", err)
		}

		if payment.Status == models.PaymentStateCancelled {
			return utils.NewConflictError("payment %s is already cancelled", payment.PaymentNumber)
		}

		// Reverse in the opposite direction of the original movement.
		reverse := models.PaymentTypeOut
		if payment.Type == models.PaymentTypeOut {
			reverse = models.PaymentTypeIn
		}
		if _, _, _, err := s.applyPartyBalance(tx, companyID, payment.PartyID, payment.Amount, reverse); err != nil {
			return err
		}

		payment.Status = models.PaymentStateCancelled
		if reason != "" {
			if payment.Notes != "" {
				payment.Notes += " | "
			}
			payment.Notes += "Cancelled: " + reason
		}
		if err := tx.Save(&payment).Error; err != nil {
			return utils.WrapInternal("failed to cancel payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// AddDocumentPaymentInput records a payment against a document.
type AddDocumentPaymentInput struct {
	Amount      float64
	Method      string
	Reference   string
	PaymentDate time.Time
}

// AddDocumentPayment applies a payment to a document: validates the amount
// against the pending balance, appends a history entry, advances the
// payment status, and creates a companion ledger payment linked to the
// document with an allocation snapshot.
func (s *PaymentService) AddDocumentPayment(companyID, userID, documentID uuid.UUID, in AddDocumentPaymentInput) (*models.Document, error) {
	if in.Amount <= 0 {
		return nil, utils.NewValidationError("payment amount must be greater than 0")
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = time.Now()
	}
	if in.Method == "" {
		in.Method = "cash"
	}

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
			return utils.NewBusinessRuleError("cannot add payment to a cancelled document")
		}

		amount := Round2(in.Amount)
		if amount > doc.PendingAmount {
			return utils.NewBusinessRuleError("payment amount %.2f exceeds pending balance %.2f", amount, doc.PendingAmount)
		}

		// Companion ledger payment; direction follows the document side.
		paymentType := models.PaymentTypeIn
		if doc.Kind == models.DocumentKindPurchaseOrder {
			paymentType = models.PaymentTypeOut
		}

		party, before, after, err := s.applyPartyBalance(tx, companyID, doc.PartyID, amount, paymentType)
		if err != nil {
			return err
		}

		doc.PaidAmount = Round2(doc.PaidAmount + amount)
		RecomputePaymentState(&doc, in.PaymentDate)
		if err := tx.Save(&doc).Error; err != nil {
			return utils.WrapInternal("failed to update document payment state", err)
		}

		payment := models.Payment{
			CompanyID:          companyID,
			CreatedByUserID:    userID,
			PaymentNumber:      s.numbering.NextPaymentNumber(companyID, paymentType, in.PaymentDate),
			Type:               paymentType,
			PartyID:            party.ID,
			PartyName:          party.Name,
			Amount:             amount,
			Method:             in.Method,
			Reference:          in.Reference,
			Status:             models.PaymentStateCompleted,
			PartyBalanceBefore: before,
			PartyBalanceAfter:  after,
			PaymentDate:        in.PaymentDate,
			LinkedDocuments: []models.PaymentAllocation{{
				DocumentID:      doc.ID,
				DocumentNumber:  doc.DocumentNumber,
				AllocatedAmount: amount,
				RemainingAmount: doc.PendingAmount,
				IsFullyPaid:     doc.PaymentStatus == models.PaymentStatusPaid,
			}},
		}
		if err := tx.Create(&payment).Error; err != nil {
			return utils.WrapInternal("failed to create ledger payment", err)
		}

		entry := models.PaymentHistoryEntry{
			DocumentID:       doc.ID,
			PaymentID:        &payment.ID,
			Amount:           amount,
			Method:           in.Method,
			Reference:        in.Reference,
			RecordedByUserID: userID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return utils.WrapInternal("failed to append payment history", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Lines").Preload("History").First(&doc, "id = ?", doc.ID).Error; err != nil {
		log.Warn().Err(err).Str("document", doc.ID.String()).Msg("failed to reload document after payment")
	}
	return &doc, nil
}

// RecomputePaymentState re-derives pending amount, payment status and due
// date from the document's paid amount and final total.
//
// pending = max(0, finalTotal - paid); status crosses pending → partial →
// paid as paid grows. The due date is set from the payment date plus the
// document's credit days while unpaid balance remains, and cleared once
// the document is fully paid.
func RecomputePaymentState(doc *models.Document, paymentDate time.Time) {
	pending := decimal.NewFromFloat(doc.FinalTotal).Sub(decimal.NewFromFloat(doc.PaidAmount))
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	doc.PendingAmount = pending.Round(2).InexactFloat64()

	switch {
	case doc.PaidAmount <= 0:
		doc.PaymentStatus = models.PaymentStatusPending
	case doc.PaidAmount < doc.FinalTotal:
		doc.PaymentStatus = models.PaymentStatusPartial
	default:
		doc.PaymentStatus = models.PaymentStatusPaid
	}

	if doc.PaymentStatus == models.PaymentStatusPaid {
		doc.DueDate = nil
		return
	}
	if doc.DueDate == nil && doc.CreditDays > 0 {
		due := paymentDate.AddDate(0, 0, doc.CreditDays)
		doc.DueDate = &due
	}
}

// applyPartyBalance moves a party's running balance inside the caller's
// transaction and returns the before/after snapshot. payment_in adds,
// payment_out subtracts; the result is rounded at the point of mutation.
func (s *PaymentService) applyPartyBalance(tx *gorm.DB, companyID, partyID uuid.UUID, amount float64, paymentType models.PaymentType) (*models.Party, float64, float64, error) {
	var party models.Party
	if err := lockForUpdate(tx).
		Where("company_id = ? AND id = ?", companyID, partyID).
		First(&party).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, 0, utils.NewNotFoundError("party not found")
		}
		return nil, 0, 0, utils.WrapInternal("failed to load party", err)
	}

	before := party.CurrentBalance
	delta := decimal.NewFromFloat(amount)
	if paymentType == models.PaymentTypeOut {
		delta = delta.Neg()
	}
	after := decimal.NewFromFloat(before).Add(delta).Round(2).InexactFloat64()

	if err := tx.Model(&models.Party{}).Where("id = ?", party.ID).
		Update("current_balance", after).Error; err != nil {
		return nil, 0, 0, utils.WrapInternal("failed to update party balance", err)
	}
	party.CurrentBalance = after
	return &party, before, after, nil
}
