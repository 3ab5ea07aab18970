package controllers

import (
	"github.com/Govind-619/CareFund/services"
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	DonationID string  `json:"donation_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Currency   string  `json:"currency" binding:"omitempty,len=3"`
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// POST /v1/payments/order
func (ctl *Controller) CreateOrder(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	utils.LogInfo("Creating payment order for donation %s by user %s", req.DonationID, claims.UserID)

	res, err := ctl.svc.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		DonationID: req.DonationID,
		DonorID:    donorScope(claims),
		Amount:     req.Amount,
		Currency:   req.Currency,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"message":     utils.MsgOrderCreated,
		"order":       res.Order,
		"payment":     res.Payment,
		"donation_id": res.DonationID,
		"key":         ctl.razorpayKeyID,
	})
}

// POST /v1/payments/verify
func (ctl *Controller) VerifyPayment(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req verifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctl.svc.VerifyAndSettle(c.Request.Context(), services.PaymentEvent{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
		DonorID:   donorScope(claims),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Settled(c, settlementResponse(result))
}
