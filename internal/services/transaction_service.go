package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
)

// errAlreadyGenerated reports that a generated entry for the same template
// and sequence number already exists.
var errAlreadyGenerated = errors.New("transaction already generated for this sequence")

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// RecordWithDB inserts a ledger entry using the caller's transaction. Balance
// changes are the caller's responsibility and must use the same tx.
func (s *transactionService) RecordWithDB(tx *gorm.DB, transaction *models.Transaction) error {
	if transaction.Amount < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if !transaction.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}

	if err := tx.Create(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errAlreadyGenerated
		}
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return nil
}

// GetHubTransactions retrieves a paginated, filtered list of transactions in a hub.
func (s *transactionService) GetHubTransactions(hubID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("hub_id = ?", hubID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ? OR to_account_id = ?", *f.AccountID, *f.AccountID)
	}
	if f.TemplateID != nil {
		q = q.Where("recurring_template_id = ?", *f.TemplateID)
	}
	return q
}
