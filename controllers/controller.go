package controllers

import (
	"errors"
	"net/http"

	"github.com/Govind-619/CareFund/invoice"
	"github.com/Govind-619/CareFund/middleware"
	"github.com/Govind-619/CareFund/services"
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

// Controller serves the escrow API on top of an EscrowService.
type Controller struct {
	svc           *services.EscrowService
	razorpayKeyID string
}

// NewController returns the HTTP handlers. keyID is the public gateway key
// handed to checkout clients with each order.
func NewController(svc *services.EscrowService, keyID string) *Controller {
	return &Controller{svc: svc, razorpayKeyID: keyID}
}

func settlementResponse(r *services.SettlementResult) utils.SettlementResponse {
	return utils.SettlementResponse{
		Success:    r.Success,
		Message:    r.Message,
		DonationID: r.DonationID,
		Status:     r.Status,
	}
}

// respondError writes err as {error}. A duplicate settlement is not an
// error: the caller gets the original result.
func respondError(c *gin.Context, err error) {
	var dup *services.DuplicatePaymentError
	if errors.As(err, &dup) {
		utils.Settled(c, settlementResponse(dup.Prior))
		return
	}
	utils.AbortWithError(c, toAppError(err))
}

func toAppError(err error) *utils.AppError {
	var (
		validation *services.ValidationError
		signature  *services.InvalidSignatureError
		notFound   *services.NotFoundError
		forbidden  *services.ForbiddenError
		invariant  *services.StateInvariantError
		upstream   *services.UpstreamGatewayError
	)
	switch {
	case errors.As(err, &validation):
		return utils.BadRequestError(validation.Error(), err)
	case errors.As(err, &signature):
		return utils.BadRequestError("Payment verification failed", err)
	case errors.As(err, &notFound):
		return utils.NotFoundError(notFound.Error(), err)
	case errors.As(err, &forbidden):
		return utils.ForbiddenError(forbidden.Error(), err)
	case errors.As(err, &invariant):
		return utils.ConflictError(invariant.Error(), err)
	case errors.As(err, &upstream):
		if upstream.Timeout {
			return utils.NewAppError(http.StatusGatewayTimeout, upstream.Error(), err)
		}
		return utils.BadGatewayError(upstream.Error(), err)
	case errors.Is(err, invoice.ErrNotPaid):
		return utils.ConflictError("Invoice is available once the payment is verified", err)
	}
	return utils.InternalError(err)
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.LogError("Invalid request body for %s: %v", c.FullPath(), err)
		utils.BadRequest(c, utils.DescribeBindingError(err))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}

func currentUser(c *gin.Context) (*utils.Claims, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, utils.ErrInvalidToken)
	}
	return claims, ok
}

// donorScope is the donor id a request is restricted to. Admins are not
// restricted.
func donorScope(claims *utils.Claims) string {
	if claims.Role == utils.RoleAdmin {
		return ""
	}
	return claims.UserID
}
