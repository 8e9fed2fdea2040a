package services

import (
	"testing"
	"time"

	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedDocument(t *testing.T, db *gorm.DB, companyID, userID uuid.UUID, party models.Party, kind models.DocumentKind, finalTotal float64, creditDays int) models.Document {
	t.Helper()
	doc := models.Document{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		DocumentNumber:  "SO-20250101-" + utils.RandomDigits(4),
		Kind:            kind,
		OrderType:       models.OrderTypeOrder,
		Status:          models.DocumentStatusPending,
		PartyID:         party.ID,
		PartyName:       party.Name,
		DocumentDate:    time.Now(),
		Subtotal:        finalTotal,
		FinalTotal:      finalTotal,
		PendingAmount:   finalTotal,
		PaymentStatus:   models.PaymentStatusPending,
		CreditDays:      creditDays,
	}
	require.NoError(t, db.Create(&doc).Error)
	return doc
}

func TestCreatePayment_PayInMovesBalanceUp(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 200)

	svc := NewPaymentService(db)
	payment, err := svc.CreatePayment(companyID, userID, models.PaymentTypeIn, CreatePaymentInput{
		PartyID: party.ID,
		Amount:  500,
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, payment.PartyBalanceBefore)
	assert.Equal(t, 700.0, payment.PartyBalanceAfter)
	assert.Equal(t, models.PaymentStateCompleted, payment.Status)
	assert.Equal(t, party.Name, payment.PartyName)

	var reloaded models.Party
	require.NoError(t, db.First(&reloaded, "id = ?", party.ID).Error)
	assert.Equal(t, 700.0, reloaded.CurrentBalance)
}

func TestCreatePayment_PayOutMovesBalanceDown(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Supplier Co", "9812345678", models.PartyTypeSupplier, 1000)

	svc := NewPaymentService(db)
	payment, err := svc.CreatePayment(companyID, userID, models.PaymentTypeOut, CreatePaymentInput{
		PartyID: party.ID,
		Amount:  250.50,
	})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, payment.PartyBalanceBefore)
	assert.Equal(t, 749.50, payment.PartyBalanceAfter)
}

func TestCreatePayment_RejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)

	svc := NewPaymentService(db)
	for _, amount := range []float64{0, -10} {
		_, err := svc.CreatePayment(companyID, userID, models.PaymentTypeIn, CreatePaymentInput{
			PartyID: party.ID,
			Amount:  amount,
		})
		require.Error(t, err)

		var appErr *utils.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Status)
	}
}

func TestCancelPayment_ReversesBalanceExactly(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 200)

	svc := NewPaymentService(db)
	payment, err := svc.CreatePayment(companyID, userID, models.PaymentTypeIn, CreatePaymentInput{
		PartyID: party.ID,
		Amount:  500,
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelPayment(companyID, userID, payment.ID, "entered twice")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStateCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Notes, "Cancelled: entered twice")

	var reloaded models.Party
	require.NoError(t, db.First(&reloaded, "id = ?", party.ID).Error)
	assert.Equal(t, 200.0, reloaded.CurrentBalance)
}

func TestCancelPayment_TwiceFails(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)

	svc := NewPaymentService(db)
	payment, err := svc.CreatePayment(companyID, userID, models.PaymentTypeIn, CreatePaymentInput{
		PartyID: party.ID,
		Amount:  100,
	})
	require.NoError(t, err)

	_, err = svc.CancelPayment(companyID, userID, payment.ID, "")
	require.NoError(t, err)

	_, err = svc.CancelPayment(companyID, userID, payment.ID, "")
	require.Error(t, err)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)

	// The reversal must not have been applied a second time.
	var reloaded models.Party
	require.NoError(t, db.First(&reloaded, "id = ?", party.ID).Error)
	assert.Equal(t, 0.0, reloaded.CurrentBalance)
}

func TestAddDocumentPayment_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)
	doc := seedDocument(t, db, companyID, userID, party, models.DocumentKindSalesOrder, 1000, 15)

	svc := NewPaymentService(db)

	updated, err := svc.AddDocumentPayment(companyID, userID, doc.ID, AddDocumentPaymentInput{Amount: 400})
	require.NoError(t, err)
	assert.Equal(t, 400.0, updated.PaidAmount)
	assert.Equal(t, 600.0, updated.PendingAmount)
	assert.Equal(t, models.PaymentStatusPartial, updated.PaymentStatus)
	require.NotNil(t, updated.DueDate)
	require.Len(t, updated.History, 1)
	assert.Equal(t, 400.0, updated.History[0].Amount)

	updated, err = svc.AddDocumentPayment(companyID, userID, doc.ID, AddDocumentPaymentInput{Amount: 600})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, updated.PaidAmount)
	assert.Equal(t, 0.0, updated.PendingAmount)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.Nil(t, updated.DueDate)
	assert.Len(t, updated.History, 2)

	// A ledger payment exists per installment, with allocation snapshots.
	var payments []models.Payment
	require.NoError(t, db.Preload("LinkedDocuments").
		Where("company_id = ?", companyID).Order("created_at").Find(&payments).Error)
	require.Len(t, payments, 2)
	require.Len(t, payments[1].LinkedDocuments, 1)
	assert.Equal(t, doc.ID, payments[1].LinkedDocuments[0].DocumentID)
	assert.Equal(t, 600.0, payments[1].LinkedDocuments[0].AllocatedAmount)
	assert.True(t, payments[1].LinkedDocuments[0].IsFullyPaid)

	// Sales-side installments credit the customer's running balance.
	var reloaded models.Party
	require.NoError(t, db.First(&reloaded, "id = ?", party.ID).Error)
	assert.Equal(t, 1000.0, reloaded.CurrentBalance)
}

func TestAddDocumentPayment_RejectsOverpayment(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)
	doc := seedDocument(t, db, companyID, userID, party, models.DocumentKindSalesOrder, 500, 0)

	svc := NewPaymentService(db)
	_, err := svc.AddDocumentPayment(companyID, userID, doc.ID, AddDocumentPaymentInput{Amount: 500.01})
	require.Error(t, err)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)

	// Rejected payments leave everything untouched.
	var reloadedDoc models.Document
	require.NoError(t, db.First(&reloadedDoc, "id = ?", doc.ID).Error)
	assert.Equal(t, 0.0, reloadedDoc.PaidAmount)
	assert.Equal(t, 500.0, reloadedDoc.PendingAmount)

	var reloadedParty models.Party
	require.NoError(t, db.First(&reloadedParty, "id = ?", party.ID).Error)
	assert.Equal(t, 0.0, reloadedParty.CurrentBalance)
}

func TestAddDocumentPayment_RejectsCancelledDocument(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)
	doc := seedDocument(t, db, companyID, userID, party, models.DocumentKindSalesOrder, 500, 0)
	require.NoError(t, db.Model(&doc).Update("status", models.DocumentStatusCancelled).Error)

	svc := NewPaymentService(db)
	_, err := svc.AddDocumentPayment(companyID, userID, doc.ID, AddDocumentPaymentInput{Amount: 100})
	require.Error(t, err)
}

func TestAddDocumentPayment_PurchaseSideDebitsSupplier(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Supplier Co", "9812345678", models.PartyTypeSupplier, 300)
	doc := seedDocument(t, db, companyID, userID, party, models.DocumentKindPurchaseOrder, 800, 0)

	svc := NewPaymentService(db)
	_, err := svc.AddDocumentPayment(companyID, userID, doc.ID, AddDocumentPaymentInput{Amount: 200})
	require.NoError(t, err)

	var reloaded models.Party
	require.NoError(t, db.First(&reloaded, "id = ?", party.ID).Error)
	assert.Equal(t, 100.0, reloaded.CurrentBalance)

	var payment models.Payment
	require.NoError(t, db.Where("company_id = ?", companyID).First(&payment).Error)
	assert.Equal(t, models.PaymentTypeOut, payment.Type)
}

// Paid and pending must always reconcile against the final total, and
// pending must never increase as installments land.
func TestAddDocumentPayment_PendingMonotonicity(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)
	doc := seedDocument(t, db, companyID, userID, party, models.DocumentKindSalesOrder, 1000, 0)

	svc := NewPaymentService(db)
	prevPending := doc.PendingAmount
	for _, amount := range []float64{123.45, 0.01, 376.54, 400, 100} {
		updated, err := svc.AddDocumentPayment(companyID, userID, doc.ID, AddDocumentPaymentInput{Amount: amount})
		require.NoError(t, err)
		assert.LessOrEqual(t, updated.PendingAmount, prevPending)
		assert.InDelta(t, updated.FinalTotal, updated.PaidAmount+updated.PendingAmount, 0.005)
		prevPending = updated.PendingAmount
	}
}

// Cancelling a document-linked payment reverses the party ledger but leaves
// the document's paid amount as-is; the history stays as an audit trail.
func TestCancelPayment_DocumentPaidAmountUntouched(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)
	doc := seedDocument(t, db, companyID, userID, party, models.DocumentKindSalesOrder, 1000, 0)

	svc := NewPaymentService(db)
	_, err := svc.AddDocumentPayment(companyID, userID, doc.ID, AddDocumentPaymentInput{Amount: 400})
	require.NoError(t, err)

	var payment models.Payment
	require.NoError(t, db.Where("company_id = ?", companyID).First(&payment).Error)

	_, err = svc.CancelPayment(companyID, userID, payment.ID, "bounced cheque")
	require.NoError(t, err)

	var reloadedDoc models.Document
	require.NoError(t, db.First(&reloadedDoc, "id = ?", doc.ID).Error)
	assert.Equal(t, 400.0, reloadedDoc.PaidAmount)
	assert.Equal(t, models.PaymentStatusPartial, reloadedDoc.PaymentStatus)

	var reloadedParty models.Party
	require.NoError(t, db.First(&reloadedParty, "id = ?", party.ID).Error)
	assert.Equal(t, 0.0, reloadedParty.CurrentBalance)
}

func TestRecomputePaymentState_DueDateSetOnceWhileUnpaid(t *testing.T) {
	paymentDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	doc := models.Document{FinalTotal: 1000, PaidAmount: 100, CreditDays: 30}

	RecomputePaymentState(&doc, paymentDate)
	require.NotNil(t, doc.DueDate)
	firstDue := *doc.DueDate
	assert.Equal(t, paymentDate.AddDate(0, 0, 30), firstDue)

	// Later installments while still unpaid do not move the due date.
	doc.PaidAmount = 500
	RecomputePaymentState(&doc, paymentDate.AddDate(0, 0, 10))
	require.NotNil(t, doc.DueDate)
	assert.Equal(t, firstDue, *doc.DueDate)

	// Full settlement clears it.
	doc.PaidAmount = 1000
	RecomputePaymentState(&doc, paymentDate.AddDate(0, 0, 20))
	assert.Nil(t, doc.DueDate)
	assert.Equal(t, models.PaymentStatusPaid, doc.PaymentStatus)
	assert.Equal(t, 0.0, doc.PendingAmount)
}

func TestRecomputePaymentState_PendingClampedAtZero(t *testing.T) {
	doc := models.Document{FinalTotal: 100, PaidAmount: 150}
	RecomputePaymentState(&doc, time.Now())
	assert.Equal(t, 0.0, doc.PendingAmount)
	assert.Equal(t, models.PaymentStatusPaid, doc.PaymentStatus)
}
