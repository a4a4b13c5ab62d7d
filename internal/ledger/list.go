package ledger

import (
	"context"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

// ListTransactionsInput filters the transaction history listing.
type ListTransactionsInput struct {
	Filter     TransactionFilter
	Pagination pagination.Params
}

// TransactionPage is one page of transaction history.
type TransactionPage struct {
	Transactions []models.Transaction
	NextCursor   string
}

func (s *service) ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error) {
	if input.Filter.Type != "" && !input.Filter.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if input.Filter.Status != "" && !input.Filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction status")
	}

	txns, err := s.repo.ListTransactions(ctx, input.Filter, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transactions")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	page := &TransactionPage{Transactions: txns}
	if len(txns) > limit {
		page.Transactions = txns[:limit]
		last := page.Transactions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}
