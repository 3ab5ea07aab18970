package controllers

import (
	"fmt"
	"net/http"

	"github.com/Govind-619/CareFund/invoice"
	"github.com/Govind-619/CareFund/services"
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

type createDonationRequest struct {
	PackageID string `json:"package_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=1000"`
}

// POST /v1/donations
func (ctl *Controller) CreateDonation(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req createDonationRequest
	if !bindJSON(c, &req) {
		return
	}

	ledger, err := ctl.svc.CreateDonation(c.Request.Context(), services.CreateDonationInput{
		DonorID:    claims.UserID,
		DonorEmail: claims.Email,
		PackageID:  req.PackageID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, gin.H{
		"message":     utils.MsgDonationCreated,
		"donation":    ledger.Donation,
		"transaction": ledger.Transaction,
	})
}

// GET /v1/donations/:id
func (ctl *Controller) GetDonation(c *gin.Context) {
	ledger, ok := ctl.ownedLedger(c)
	if !ok {
		return
	}
	utils.Success(c, ledger)
}

// GET /v1/donations/:id/invoice
func (ctl *Controller) DownloadInvoice(c *gin.Context) {
	ledger, ok := ctl.ownedLedger(c)
	if !ok {
		return
	}

	pdf, err := invoice.Render(ledger.Donation, ledger.Transaction)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.LogInfo("Generated invoice %s for donation %s", ledger.Donation.InvoiceNumber, ledger.Donation.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", ledger.Donation.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ownedLedger loads the donation in the path, hiding other donors' donations.
func (ctl *Controller) ownedLedger(c *gin.Context) (*services.Ledger, bool) {
	claims, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	id := c.Param("id")
	ledger, err := ctl.svc.GetLedger(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if scope := donorScope(claims); scope != "" && ledger.Donation.DonorID != scope {
		utils.LogError("User %s requested donation %s owned by another donor", claims.UserID, id)
		respondError(c, &services.NotFoundError{Resource: "donation", ID: id})
		return nil, false
	}
	return ledger, true
}
