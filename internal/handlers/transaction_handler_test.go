package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hubledger/internal/models"
	"hubledger/internal/pagination"
	"hubledger/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	getHubTransactionsFn func(hubID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) RecordWithDB(_ *gorm.DB, _ *models.Transaction) error {
	return nil
}

func (m *mockTransactionService) GetHubTransactions(hubID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getHubTransactionsFn != nil {
		return m.getHubTransactionsFn(hubID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r, hub := hubRouter()
	hub.GET("/transactions", handler.GetHubTransactions)
	return r
}

func TestTransactionHandler_GetHubTransactions(t *testing.T) {
	t.Run("passes filters to service", func(t *testing.T) {
		var got services.TransactionFilter
		svc := &mockTransactionService{
			getHubTransactionsFn: func(_ string, _ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", hubPath("/transactions?type=transfer&from_date=2025-01-01&to_date=2025-01-31T23:59:59Z"+
			"&account_id="+testAccountID+"&template_id="+testTemplateID), "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Type == nil || *got.Type != models.TransactionTypeTransfer {
			t.Errorf("expected transfer type filter, got %v", got.Type)
		}
		if got.FromDate == nil || !got.FromDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from_date %v", got.FromDate)
		}
		if got.ToDate == nil || got.ToDate.Day() != 31 {
			t.Errorf("unexpected to_date %v", got.ToDate)
		}
		if got.AccountID == nil || *got.AccountID != testAccountID {
			t.Errorf("unexpected account filter %v", got.AccountID)
		}
		if got.TemplateID == nil || *got.TemplateID != testTemplateID {
			t.Errorf("unexpected template filter %v", got.TemplateID)
		}
	})

	tests := []struct {
		name  string
		query string
	}{
		{"bad type", "?type=investment"},
		{"bad from_date", "?from_date=yesterday"},
		{"bad account_id", "?account_id=42"},
		{"bad template_id", "?template_id=x"},
		{"bad page size", "?page_size=1000"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

			rec := doRequest(r, "GET", hubPath("/transactions"+tt.query), "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}
