package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
	"hubledger/internal/services"
)

// AccountHandler handles financial account requests.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the request payload for creating an account.
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required,min=1,max=100"`
	Type           models.AccountType `json:"type" binding:"omitempty,account_type"`
	Currency       string             `json:"currency" binding:"omitempty,iso4217"`
	InitialBalance int64              `json:"initial_balance"`
}

// CreateAccount handles the creation of a financial account in a hub.
// @Summary     Create an account
// @Description Create a cash, savings or debt account in the hub
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       hubID   path string               true "Hub ID"
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(hubID, req.Name, req.Type, req.Currency, req.InitialBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetHubAccounts handles listing the accounts of a hub.
// @Summary     List accounts
// @Description Get a paginated list of the hub's accounts
// @Tags        accounts
// @Produce     json
// @Param       hubID     path  string true  "Hub ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Account] "Paginated accounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/accounts [get]
func (h *AccountHandler) GetHubAccounts(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.accountService.GetHubAccounts(hubID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccount handles fetching one account.
// @Summary     Get account
// @Tags        accounts
// @Produce     json
// @Param       hubID path string true "Hub ID"
// @Param       id    path string true "Account ID"
// @Success     200 {object} models.Account "Account details"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /hubs/{hubID}/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccount(hubID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}
