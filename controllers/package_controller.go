package controllers

import (
	"github.com/Govind-619/CareFund/services"
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

type createPackageRequest struct {
	NGOID       string  `json:"ngo_id" binding:"required,uuid"`
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
}

// GET /v1/packages
func (ctl *Controller) ListPackages(c *gin.Context) {
	pagination := utils.NewPagination(c)
	ngoID := c.Query("ngo_id")

	pkgs, total, err := ctl.svc.ListPackages(c.Request.Context(), ngoID, pagination.Offset, pagination.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	pagination.SetTotal(total)
	utils.SendPaginatedResponse(c, pkgs, pagination)
}

// POST /v1/admin/packages
func (ctl *Controller) CreatePackage(c *gin.Context) {
	var req createPackageRequest
	if !bindJSON(c, &req) {
		return
	}

	pkg, err := ctl.svc.CreatePackage(c.Request.Context(), services.CreatePackageInput{
		NGOID:       req.NGOID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, gin.H{"message": utils.MsgPackageCreated, "package": pkg})
}
