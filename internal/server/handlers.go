package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/vendor-matcher/internal/ranking"
	"github.com/spigell/vendor-matcher/internal/recommend"
	"github.com/spigell/vendor-matcher/internal/sheets"
)

type handlers struct {
	svc    Service
	logger *zap.Logger
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *handlers) recommend(c *gin.Context) {
	var req ranking.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.Recommend(c.Request.Context(), req)
	if err != nil {
		var validationErr *recommend.ValidationError
		if errors.As(err, &validationErr) {
			h.fail(c, http.StatusBadRequest, validationErr.Error())
			return
		}

		h.logger.Error("recommendation failed",
			zap.String("request_id", RequestIDFromContext(c)),
			zap.Error(err),
		)
		h.fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handlers) listVendors(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	roster, err := h.svc.Vendors(c.Request.Context(), refresh)
	if err != nil {
		h.logger.Error("listing vendors failed",
			zap.String("request_id", RequestIDFromContext(c)),
			zap.Error(err),
		)

		details := err.Error()
		var dsErr *sheets.DataSourceError
		if errors.As(err, &dsErr) && dsErr.Err != nil {
			details = dsErr.Err.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
			Error:   "Failed to fetch vendors",
			Details: details,
		})
		return
	}

	c.JSON(http.StatusOK, roster.Items)
}

// fail answers with an unsuccessful recommendation response.
func (h *handlers) fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, recommend.Response{Success: false, Message: message})
}
