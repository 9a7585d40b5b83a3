package constants

// Organization permissions carried in the JWT permissions claim.
const (
	PermAdminFull     = "mm-shipping.admin.full-permit"
	PermWarehouseFull = "mm-shipping.warehouse.full-permit"
	PermDriverFull    = "mm-shipping.driver.full-permit"
	PermCustomerFull  = "mm-shipping.customer.full-permit"

	// Special permissions
	PermAny = "any"
)

// Permission groups for convenience
var (
	StaffPermissions = []string{
		PermAdminFull,
		PermWarehouseFull,
	}
)
