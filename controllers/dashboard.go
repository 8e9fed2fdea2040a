package controllers

import (
	"net/http"
	"time"

	"bizbooks-backend/config"
	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalParties     int64   `json:"totalParties"`
	TotalItems       int64   `json:"totalItems"`
	MonthlySales     float64 `json:"monthlySales"`
	MonthlyPurchases float64 `json:"monthlyPurchases"`
	TotalReceivable  float64 `json:"totalReceivable"`
	TotalPayable     float64 `json:"totalPayable"`
	OverdueDocuments int64   `json:"overdueDocuments"`
	LowStockItems    int64   `json:"lowStockItems"`
}

// GetDashboardOverview returns company-wide aggregates. Sums default to 0
// when no matching documents exist.
func GetDashboardOverview(c *gin.Context) {
	companyID, _, ok := authContext(c)
	if !ok {
		return
	}

	var overview DashboardOverview

	config.DB.Model(&models.Party{}).
		Where("company_id = ? AND is_active = ? AND deleted_at IS NULL", companyID, true).
		Count(&overview.TotalParties)

	config.DB.Model(&models.Item{}).
		Where("company_id = ? AND is_active = ? AND deleted_at IS NULL", companyID, true).
		Count(&overview.TotalItems)

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	config.DB.Model(&models.Document{}).
		Where("company_id = ? AND kind = ? AND status <> ? AND document_date >= ? AND deleted_at IS NULL",
			companyID, models.DocumentKindSalesOrder, models.DocumentStatusCancelled, firstOfMonth).
		Select("COALESCE(SUM(final_total), 0)").Scan(&overview.MonthlySales)

	config.DB.Model(&models.Document{}).
		Where("company_id = ? AND kind = ? AND status <> ? AND document_date >= ? AND deleted_at IS NULL",
			companyID, models.DocumentKindPurchaseOrder, models.DocumentStatusCancelled, firstOfMonth).
		Select("COALESCE(SUM(final_total), 0)").Scan(&overview.MonthlyPurchases)

	config.DB.Model(&models.Document{}).
		Where("company_id = ? AND kind = ? AND status <> ? AND deleted_at IS NULL",
			companyID, models.DocumentKindSalesOrder, models.DocumentStatusCancelled).
		Select("COALESCE(SUM(pending_amount), 0)").Scan(&overview.TotalReceivable)

	config.DB.Model(&models.Document{}).
		Where("company_id = ? AND kind = ? AND status <> ? AND deleted_at IS NULL",
			companyID, models.DocumentKindPurchaseOrder, models.DocumentStatusCancelled).
		Select("COALESCE(SUM(pending_amount), 0)").Scan(&overview.TotalPayable)

	config.DB.Model(&models.Document{}).
		Where("company_id = ? AND pending_amount > 0 AND due_date < ? AND status <> ? AND deleted_at IS NULL",
			companyID, now, models.DocumentStatusCancelled).
		Count(&overview.OverdueDocuments)

	config.DB.Model(&models.Item{}).
		Where("company_id = ? AND type = ? AND current_stock < min_stock_level AND is_active = ? AND deleted_at IS NULL",
			companyID, models.ItemTypeProduct, true).
		Count(&overview.LowStockItems)

	utils.RespondWithData(c, http.StatusOK, "OK", overview)
}
