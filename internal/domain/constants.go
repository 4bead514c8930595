package domain

const (
	AccountTypeSavings = "savings"
	AccountTypeCurrent = "current"

	EntryDeposit     = "DEPOSIT"
	EntryWithdraw    = "WITHDRAW"
	EntryTransferOut = "TRANSFER_OUT"

	LoanStatusPending  = "PENDING"
	LoanStatusApproved = "APPROVED"
	LoanStatusClosed   = "CLOSED"

	// Roles carried in session tokens.
	RoleCustomer = "customer"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"

	// Identifier starting values.
	FirstAccountID  = 1
	FirstLoanID     = 1656
	FirstEmployeeID = 100

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)
