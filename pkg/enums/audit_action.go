package enums

import "fmt"

// AuditAction identifies what a recorded audit entry describes.
type AuditAction string

const (
	AuditActionDepositCreated       AuditAction = "deposit_created"
	AuditActionDepositApproved      AuditAction = "deposit_approved"
	AuditActionDepositEdited        AuditAction = "deposit_edited"
	AuditActionExpenseCreated       AuditAction = "expense_created"
	AuditActionEarningCreated       AuditAction = "earning_created"
	AuditActionFundsTransferred     AuditAction = "funds_transferred"
	AuditActionDividendsDistributed AuditAction = "dividends_distributed"
	AuditActionEquityTransferred    AuditAction = "equity_transferred"
	AuditActionTransactionDeleted   AuditAction = "transaction_deleted"
	AuditActionFundReconciled       AuditAction = "fund_reconciled"
	AuditActionEntityCreated        AuditAction = "entity_created"
	AuditActionEntityUpdated        AuditAction = "entity_updated"
	AuditActionEntityDeleted        AuditAction = "entity_deleted"
)

var validAuditActions = []AuditAction{
	AuditActionDepositCreated,
	AuditActionDepositApproved,
	AuditActionDepositEdited,
	AuditActionExpenseCreated,
	AuditActionEarningCreated,
	AuditActionFundsTransferred,
	AuditActionDividendsDistributed,
	AuditActionEquityTransferred,
	AuditActionTransactionDeleted,
	AuditActionFundReconciled,
	AuditActionEntityCreated,
	AuditActionEntityUpdated,
	AuditActionEntityDeleted,
}

// IsValid reports whether the value matches the canonical audit action enum.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
