package controllers

import (
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

type assignVendorRequest struct {
	VendorID string `json:"vendor_id" binding:"required,uuid"`
}

type adminNotesRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// POST /v1/vendor/donations/:id/delivery
func (ctl *Controller) SubmitDelivery(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := ctl.svc.SubmitDelivery(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Settled(c, settlementResponse(result))
}

// POST /v1/admin/transactions/:id/vendor
func (ctl *Controller) AssignVendor(c *gin.Context) {
	var req assignVendorRequest
	if !bindJSON(c, &req) {
		return
	}
	txn, err := ctl.svc.AssignVendor(c.Request.Context(), c.Param("id"), req.VendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"message": utils.MsgVendorAssigned, "transaction": txn})
}

// POST /v1/admin/donations/:id/confirm-delivery
func (ctl *Controller) ConfirmDelivery(c *gin.Context) {
	var req adminNotesRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	result, err := ctl.svc.ConfirmDelivery(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Settled(c, settlementResponse(result))
}

// POST /v1/admin/donations/:id/release
func (ctl *Controller) ReleasePayment(c *gin.Context) {
	var req adminNotesRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	result, err := ctl.svc.ReleasePayment(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Settled(c, settlementResponse(result))
}

// POST /v1/admin/transactions/:id/fail
func (ctl *Controller) FailTransaction(c *gin.Context) {
	var req adminNotesRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	result, err := ctl.svc.FailTransaction(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Settled(c, settlementResponse(result))
}

// GET /v1/admin/audit/releases
func (ctl *Controller) ReleaseViolations(c *gin.Context) {
	violations, err := ctl.svc.ReleaseViolations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"violations": violations, "count": len(violations)})
}
