package domain

import "errors"

var (
	// Validation errors, rejected before any store access.
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidDirection = errors.New("direction must be credit or debit")
	ErrInvalidReference = errors.New("invalid reference")
	ErrUnknownRole      = errors.New("unknown requester role")

	// Policy errors, rejected inside the atomic unit.
	ErrAccountInactive       = errors.New("account is not active")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrPeriodClosed          = errors.New("fiscal period is closed")
	ErrSelfApprovalForbidden = errors.New("creator cannot approve own transaction")
	ErrNotPending            = errors.New("transaction is not pending")
	ErrNotPosted             = errors.New("transaction is not posted")
	ErrAlreadyReversed       = errors.New("transaction already reversed")
	ErrLoanNotApproved       = errors.New("loan is not approved")
	ErrLoanNotActive         = errors.New("loan is not active")
	ErrOverpayment           = errors.New("payment exceeds total outstanding")
	ErrAlreadyMatched        = errors.New("statement line or entry already matched")
	ErrAlertNotOpen          = errors.New("risk alert is not open")

	// Not-found errors.
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGLAccountNotFound   = errors.New("gl account not found")
	ErrEntryNotFound       = errors.New("gl entry not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrStatementNotFound   = errors.New("bank statement not found")
	ErrLineNotFound        = errors.New("statement line not found")
	ErrAlertNotFound       = errors.New("risk alert not found")
)
