package controllers

import (
	"net/http"

	"bizbooks-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// authContext extracts the authenticated company and user identity set by
// the JWT middleware. Every service call receives both explicitly.
func authContext(c *gin.Context) (companyID, userID uuid.UUID, ok bool) {
	companyVal, exists := c.Get("companyId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Company ID not found in context")
		return
	}
	userVal, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	companyID, err := uuid.Parse(companyVal.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid company ID format")
		return
	}
	userID, err = uuid.Parse(userVal.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}
	return companyID, userID, true
}

// pathUUID parses a :id style path parameter.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
