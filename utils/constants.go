package utils

import "time"

// Application constants
const (
	// Application name
	AppName = "CareFund"

	// API version
	APIVersion = "v1"

	// JWT token expiration
	JWTExpiration = 24 * time.Hour

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100
)

// Roles carried in the token's role claim
const (
	RoleDonor  = "donor"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// Error messages
const (
	ErrInvalidToken   = "Please login for access"
	ErrForbidden      = "Access forbidden"
	ErrInternalServer = "Internal server error"
)

// Success messages
const (
	MsgPackageCreated  = "Package created successfully"
	MsgDonationCreated = "Donation created successfully"
	MsgOrderCreated    = "Order created successfully"
	MsgVendorAssigned  = "Vendor assigned successfully"
)
