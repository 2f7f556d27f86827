package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount opens a new account in a hub with an opening balance.
func (s *accountService) CreateAccount(hubID, name string, accountType models.AccountType, currency string, initialBalance int64) (*models.Account, error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	switch accountType {
	case models.AccountTypeCash, models.AccountTypeSavings, models.AccountTypeDebt:
	case "":
		accountType = models.AccountTypeCash
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported account type")
	}
	if currency == "" {
		currency = "EUR"
	}

	account := &models.Account{
		HubID:    hubID,
		Name:     name,
		Type:     accountType,
		Balance:  initialBalance,
		Currency: currency,
		IsActive: true,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetHubAccounts retrieves a paginated list of active accounts in a hub.
func (s *accountService) GetHubAccounts(hubID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{}).Where("hub_id = ? AND is_active = ?", hubID, true)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccount retrieves an active account by ID inside a hub.
func (s *accountService) GetAccount(hubID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND hub_id = ? AND is_active = ?", accountID, hubID, true).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMissingAccount
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// ApplyEffect adds delta to an account balance inside tx. A negative delta
// only applies when the balance covers it, checked in the same statement so
// two concurrent debits cannot both pass a stale read.
func (s *accountService) ApplyEffect(tx *gorm.DB, hubID, accountID string, delta int64) error {
	if delta == 0 {
		return nil
	}

	q := tx.Model(&models.Account{}).
		Where("id = ? AND hub_id = ? AND is_active = ?", accountID, hubID, true)
	if delta < 0 {
		q = q.Where("balance >= ?", -delta)
	}

	res := q.Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := tx.Model(&models.Account{}).
		Where("id = ? AND hub_id = ? AND is_active = ?", accountID, hubID, true).
		Count(&n).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if n == 0 {
		return apperrors.ErrMissingAccount
	}
	return apperrors.ErrInsufficientFunds
}
