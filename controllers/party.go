package controllers

import (
	"errors"
	"net/http"

	"bizbooks-backend/config"
	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreatePartyInput defines the expected JSON structure for creating a party
type CreatePartyInput struct {
	Name           string           `json:"name" binding:"required"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email"`
	GSTNumber      string           `json:"gstNumber"`
	Address        string           `json:"address"`
	PartyType      models.PartyType `json:"partyType" binding:"omitempty,oneof=customer supplier both"`
	OpeningBalance float64          `json:"openingBalance"`
}

// UpdatePartyInput defines the expected JSON structure for updating a party
type UpdatePartyInput struct {
	Name      *string           `json:"name"`
	Phone     *string           `json:"phone"`
	Email     *string           `json:"email"`
	GSTNumber *string           `json:"gstNumber"`
	Address   *string           `json:"address"`
	PartyType *models.PartyType `json:"partyType" binding:"omitempty,oneof=customer supplier both"`
	IsActive  *bool             `json:"isActive"`
}

// CreateParty registers a customer/supplier for the company
func CreateParty(c *gin.Context) {
	companyID, userID, ok := authContext(c)
	if !ok {
		return
	}

	var input CreatePartyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	phone := utils.NormalizePhone(input.Phone)
	if phone != "" {
		var existing models.Party
		if err := config.DB.Where("company_id = ? AND phone = ? AND is_active = ?", companyID, phone, true).
			First(&existing).Error; err == nil {
			utils.RespondWithError(c, http.StatusConflict, "Party with this phone number already exists")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
	}

	partyType := input.PartyType
	if partyType == "" {
		partyType = models.PartyTypeCustomer
	}

	party := models.Party{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		Name:            input.Name,
		Phone:           phone,
		Email:           input.Email,
		GSTNumber:       input.GSTNumber,
		Address:         input.Address,
		PartyType:       partyType,
		OpeningBalance:  input.OpeningBalance,
		CurrentBalance:  input.OpeningBalance,
		IsActive:        true,
	}

	if err := config.DB.Create(&party).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create party")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, "Party created", party)
}

// GetParties retrieves the company's parties, optionally filtered by type.
func GetParties(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("company_id = ?", companyID)
	if partyType := c.Query("type"); partyType != "" {
		query = query.Where("party_type IN ?", []string{partyType, string(models.PartyTypeBoth)})
	}
	if c.Query("includeInactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	parties := make([]models.Party, 0)
	if err := query.Order("name").Find(&parties).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve parties")
		return
	}

	utils.RespondWithData(c, http.StatusOK, "OK", parties)
}

// GetParty retrieves a specific party by ID
func GetParty(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}
	partyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var party models.Party
	if err := config.DB.Where("company_id = ? AND id = ?", companyID, partyID).
		First(&party).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Party not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, "OK", party)
}

// UpdateParty updates party identity fields. Balances move only through
// payments and documents, never through this endpoint.
func UpdateParty(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}
	partyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input UpdatePartyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var party models.Party
	if err := config.DB.Where("company_id = ? AND id = ?", companyID, partyID).
		First(&party).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Party not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		party.Name = *input.Name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		party.Phone = utils.NormalizePhone(*input.Phone)
	}
	if input.Email != nil {
		party.Email = *input.Email
	}
	if input.GSTNumber != nil {
		party.GSTNumber = *input.GSTNumber
	}
	if input.Address != nil {
		party.Address = *input.Address
	}
	if input.PartyType != nil {
		party.PartyType = *input.PartyType
	}
	if input.IsActive != nil {
		party.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&party).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update party")
		return
	}

	utils.RespondWithData(c, http.StatusOK, "Party updated", party)
}

// DeleteParty soft-deactivates a party; ledger history stays intact.
func DeleteParty(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}
	partyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Model(&models.Party{}).
		Where("company_id = ? AND id = ?", companyID, partyID).
		Update("is_active", false)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate party")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Party not found")
		return
	}

	utils.RespondWithData(c, http.StatusOK, "Party deactivated", nil)
}
