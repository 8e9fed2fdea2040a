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

// CreateItemInput defines the expected JSON structure for creating an item
type CreateItemInput struct {
	Name                  string          `json:"name" binding:"required"`
	ItemCode              string          `json:"itemCode"`
	Type                  models.ItemType `json:"type" binding:"omitempty,oneof=product service"`
	HSNCode               string          `json:"hsnCode"`
	Unit                  string          `json:"unit"`
	GSTRate               float64         `json:"gstRate" binding:"min=0"`
	SalePrice             float64         `json:"salePrice" binding:"min=0"`
	SalePriceTaxInclusive bool            `json:"salePriceTaxInclusive"`
	BuyPrice              float64         `json:"buyPrice" binding:"min=0"`
	BuyPriceTaxInclusive  bool            `json:"buyPriceTaxInclusive"`
	CurrentStock          float64         `json:"currentStock"`
	MinStockLevel         float64         `json:"minStockLevel"`
}

// UpdateItemInput defines the expected JSON structure for updating an item
type UpdateItemInput struct {
	Name                  *string          `json:"name"`
	ItemCode              *string          `json:"itemCode"`
	Type                  *models.ItemType `json:"type" binding:"omitempty,oneof=product service"`
	HSNCode               *string          `json:"hsnCode"`
	Unit                  *string          `json:"unit"`
	GSTRate               *float64         `json:"gstRate" binding:"omitempty,min=0"`
	SalePrice             *float64         `json:"salePrice" binding:"omitempty,min=0"`
	SalePriceTaxInclusive *bool            `json:"salePriceTaxInclusive"`
	BuyPrice              *float64         `json:"buyPrice" binding:"omitempty,min=0"`
	BuyPriceTaxInclusive  *bool            `json:"buyPriceTaxInclusive"`
	MinStockLevel         *float64         `json:"minStockLevel"`
	IsActive              *bool            `json:"isActive"`
}

// CreateItem creates a product or service for the company.
// The tax-inclusive/exclusive price pair is derived on save from GSTRate
// and the inclusive flag, so callers supply only the side they entered.
func CreateItem(c *gin.Context) {
	companyID, userID, ok := authContext(c)
	if !ok {
		return
	}

	var input CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	itemType := input.Type
	if itemType == "" {
		itemType = models.ItemTypeProduct
	}

	if input.ItemCode != "" {
		var existing models.Item
		if err := config.DB.Where("company_id = ? AND item_code = ?", companyID, input.ItemCode).
			First(&existing).Error; err == nil {
			utils.RespondWithError(c, http.StatusConflict, "Item with this code already exists")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
	}

	item := models.Item{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		Name:            input.Name,
		ItemCode:        input.ItemCode,
		Type:            itemType,
		HSNCode:         input.HSNCode,
		Unit:            input.Unit,
		GSTRate:         input.GSTRate,
		CurrentStock:    input.CurrentStock,
		MinStockLevel:   input.MinStockLevel,
		IsActive:        true,
	}
	if input.SalePriceTaxInclusive {
		item.SalePriceWithTax = input.SalePrice
		item.SalePriceTaxInclusive = true
	} else {
		item.SalePrice = input.SalePrice
	}
	if input.BuyPriceTaxInclusive {
		item.BuyPriceWithTax = input.BuyPrice
		item.BuyPriceTaxInclusive = true
	} else {
		item.BuyPrice = input.BuyPrice
	}

	if err := config.DB.Create(&item).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create item")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, "Item created", item)
}

// GetItems retrieves the company's items.
func GetItems(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("company_id = ?", companyID)
	if itemType := c.Query("type"); itemType != "" {
		query = query.Where("type = ?", itemType)
	}
	if c.Query("lowStock") == "true" {
		query = query.Where("type = ? AND current_stock < min_stock_level", models.ItemTypeProduct)
	}
	if c.Query("includeInactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	items := make([]models.Item, 0)
	if err := query.Order("name").Find(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve items")
		return
	}

	utils.RespondWithData(c, http.StatusOK, "OK", items)
}

// GetItem retrieves a specific item by ID
func GetItem(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var item models.Item
	if err := config.DB.Where("company_id = ? AND id = ?", companyID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, "OK", item)
}

// UpdateItem updates an item. Stock is adjusted by purchases and sales,
// not through this endpoint.
func UpdateItem(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var item models.Item
	if err := config.DB.Where("company_id = ? AND id = ?", companyID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.ItemCode != nil {
		item.ItemCode = *input.ItemCode
	}
	if input.Type != nil {
		item.Type = *input.Type
	}
	if input.HSNCode != nil {
		item.HSNCode = *input.HSNCode
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.GSTRate != nil {
		item.GSTRate = *input.GSTRate
	}
	if input.SalePriceTaxInclusive != nil {
		item.SalePriceTaxInclusive = *input.SalePriceTaxInclusive
	}
	if input.SalePrice != nil {
		if item.SalePriceTaxInclusive {
			item.SalePriceWithTax = *input.SalePrice
		} else {
			item.SalePrice = *input.SalePrice
		}
	}
	if input.BuyPriceTaxInclusive != nil {
		item.BuyPriceTaxInclusive = *input.BuyPriceTaxInclusive
	}
	if input.BuyPrice != nil {
		if item.BuyPriceTaxInclusive {
			item.BuyPriceWithTax = *input.BuyPrice
		} else {
			item.BuyPrice = *input.BuyPrice
		}
	}
	if input.MinStockLevel != nil {
		item.MinStockLevel = *input.MinStockLevel
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&item).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update item")
		return
	}

	utils.RespondWithData(c, http.StatusOK, "Item updated", item)
}

// DeleteItem soft-deactivates an item.
func DeleteItem(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Model(&models.Item{}).
		Where("company_id = ? AND id = ?", companyID, itemID).
		Update("is_active", false)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate item")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		return
	}

	utils.RespondWithData(c, http.StatusOK, "Item deactivated", nil)
}
