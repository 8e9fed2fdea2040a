// services/reminder_service.go
package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"bizbooks-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// ReminderService sends payment-due notices for documents with an unpaid
// balance whose due date is near or past.
type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", func() {
		s.SendDueReminders()
	})

	c.Start()
	log.Info().Msg("payment reminder scheduler started")
}

// SendDueReminders processes every company with documents due within the
// next 3 days or already overdue.
func (s *ReminderService) SendDueReminders() {
	log.Info().Msg("starting payment reminder processing")

	var companies []models.Company
	if err := s.db.Find(&companies).Error; err != nil {
		log.Error().Err(err).Msg("failed to fetch companies")
		return
	}

	for _, company := range companies {
		s.ProcessCompanyReminders(company.ID)
	}

	log.Info().Msg("payment reminder processing completed")
}

func (s *ReminderService) ProcessCompanyReminders(companyID uuid.UUID) {
	horizon := time.Now().AddDate(0, 0, 3)

	var documents []models.Document
	err := s.db.Where(
		"company_id = ? AND pending_amount > 0 AND due_date IS NOT NULL AND due_date <= ? AND status <> ?",
		companyID, horizon, models.DocumentStatusCancelled,
	).Find(&documents).Error
	if err != nil {
		log.Error().Err(err).Str("company", companyID.String()).Msg("failed to fetch due documents")
		return
	}

	for _, doc := range documents {
		s.sendReminder(companyID, doc)
	}
}

func (s *ReminderService) sendReminder(companyID uuid.UUID, doc models.Document) {
	var party models.Party
	if err := s.db.Where("company_id = ? AND id = ?", companyID, doc.PartyID).First(&party).Error; err != nil {
		log.Error().Err(err).Str("document", doc.DocumentNumber).Msg("failed to load party for reminder")
		return
	}
	if party.Phone == "" {
		return
	}

	message := fmt.Sprintf(
		"Payment reminder: %s of %.2f is due on %s. Pending amount: %.2f.",
		doc.DocumentNumber, doc.FinalTotal, doc.DueDate.Format("02 Jan 2006"), doc.PendingAmount,
	)

	// WhatsApp for E.164 numbers, SMS otherwise.
	channel := "sms"
	to := party.Phone
	if strings.HasPrefix(party.Phone, "+") {
		to = "whatsapp:" + party.Phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Error().Err(err).Str("phone", party.Phone).Msg("failed to send reminder")
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Info().Str("phone", party.Phone).Str("sid", *resp.Sid).Msg("reminder sent")
	} else {
		log.Info().Str("phone", party.Phone).Msg("reminder sent, no SID returned")
	}

	reminderLog := models.PaymentReminderLog{
		CompanyID:    companyID,
		PartyID:      party.ID,
		DocumentID:   doc.ID,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}
	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Error().Err(err).Str("document", doc.DocumentNumber).Msg("failed to log reminder")
	}
}
