// services/numbering.go
package services

import (
	"fmt"
	"time"

	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Document number prefixes per kind/variant.
const (
	PrefixQuotation         = "QUO"
	PrefixSalesOrder        = "SO"
	PrefixProforma          = "PRO"
	PrefixInvoice           = "INV"
	PrefixPurchaseQuotation = "PQU"
	PrefixPurchaseOrder     = "PO"
	PrefixPurchaseInvoice   = "PINV"
	PrefixPaymentIn         = "PIN"
	PrefixPaymentOut        = "POUT"
)

// NumberingService issues document numbers of the form
// {PREFIX}-{YYYYMMDD}-{4-digit sequence}, unique per (company, document
// type, calendar day). The sequence comes from an atomic
// upsert-and-increment on a counter row, so concurrent creations can never
// observe the same value.
type NumberingService struct {
	db *gorm.DB
}

func NewNumberingService(db *gorm.DB) *NumberingService {
	return &NumberingService{db: db}
}

// DocumentPrefix maps a document kind and order type to its number prefix.
func DocumentPrefix(kind models.DocumentKind, orderType models.OrderType) string {
	if kind == models.DocumentKindPurchaseOrder {
		switch orderType {
		case models.OrderTypeQuotation:
			return PrefixPurchaseQuotation
		case models.OrderTypeInvoice:
			return PrefixPurchaseInvoice
		default:
			return PrefixPurchaseOrder
		}
	}
	switch orderType {
	case models.OrderTypeQuotation:
		return PrefixQuotation
	case models.OrderTypeProforma:
		return PrefixProforma
	case models.OrderTypeInvoice:
		return PrefixInvoice
	default:
		return PrefixSalesOrder
	}
}

// NextDocumentNumber generates the next number for a document. On counter
// failure it degrades to a timestamp-based identifier: still unique, no
// longer sequential.
func (s *NumberingService) NextDocumentNumber(companyID uuid.UUID, kind models.DocumentKind, orderType models.OrderType, date time.Time) string {
	prefix := DocumentPrefix(kind, orderType)
	seq, err := s.nextSequence(companyID, prefix, date)
	if err != nil {
		log.Error().Err(err).
			Str("company", companyID.String()).
			Str("prefix", prefix).
			Msg("sequence counter failed, falling back to timestamp number")
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli())
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, utils.DateKey(date), seq)
}

// NextPaymentNumber generates a payment number. Payments append a 2-digit
// random suffix on top of the sequence to keep collision probability low
// across high-volume days.
func (s *NumberingService) NextPaymentNumber(companyID uuid.UUID, paymentType models.PaymentType, date time.Time) string {
	prefix := PrefixPaymentIn
	if paymentType == models.PaymentTypeOut {
		prefix = PrefixPaymentOut
	}
	seq, err := s.nextSequence(companyID, prefix, date)
	if err != nil {
		log.Error().Err(err).
			Str("company", companyID.String()).
			Str("prefix", prefix).
			Msg("sequence counter failed, falling back to timestamp number")
		return fmt.Sprintf("%s-%d%s", prefix, time.Now().UnixMilli(), utils.RandomDigits(2))
	}
	return fmt.Sprintf("%s-%s-%04d%s", prefix, utils.DateKey(date), seq, utils.RandomDigits(2))
}

// nextSequence bumps the (company, type, day) counter in a single atomic
// statement and returns the new value.
func (s *NumberingService) nextSequence(companyID uuid.UUID, docType string, date time.Time) (int64, error) {
	var value int64
	err := s.db.Raw(`
		INSERT INTO document_sequences (company_id, doc_type, date_key, value)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (company_id, doc_type, date_key)
		DO UPDATE SET value = document_sequences.value + 1
		RETURNING value`,
		companyID, docType, utils.DateKey(date)).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
