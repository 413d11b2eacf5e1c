package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/digiwallet/wallet_backend/internal/apperrors"
	"github.com/digiwallet/wallet_backend/internal/core/domain"
	portssvc "github.com/digiwallet/wallet_backend/internal/core/ports/services"
	"github.com/digiwallet/wallet_backend/internal/core/services"
	"github.com/digiwallet/wallet_backend/internal/dto"
	"github.com/digiwallet/wallet_backend/internal/handlers"
	"github.com/digiwallet/wallet_backend/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const testAPIToken = "test-token"

// --- Mock TransferService ---
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Transfer(ctx context.Context, req dto.CreateTransferRequest) (*dto.TransferResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TransferResult), args.Error(1)
}

func (m *MockTransferService) ListTransactions(ctx context.Context, email string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, email, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

var _ portssvc.TransferSvcFacade = (*MockTransferService)(nil)

// --- Mock TopUpService ---
type MockTopUpService struct {
	mock.Mock
}

func (m *MockTopUpService) CreateCheckoutSession(ctx context.Context, req dto.CreateCheckoutSessionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockTopUpService) TopUp(ctx context.Context, req dto.TopUpRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.TopUpSvcFacade = (*MockTopUpService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Test Suite Setup ---

type TransactionHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockTransfer *MockTransferService
	mockTopUp    *MockTopUpService
	mockAccount  *MockAccountService
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockTransfer = new(MockTransferService)
	suite.mockTopUp = new(MockTopUpService)
	suite.mockAccount = new(MockAccountService)

	cfg := &config.Config{APIToken: testAPIToken}
	container := &portssvc.ServiceContainer{
		Transfer: suite.mockTransfer,
		TopUp:    suite.mockTopUp,
		Account:  suite.mockAccount,
	}

	rate, err := limiter.NewRateFromFormatted("1000-S")
	suite.Require().NoError(err)
	rateLimiter := limiter.New(memory.NewStore(), rate)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, container, rateLimiter)
}

func (suite *TransactionHandlerTestSuite) postTransfer(body any, headers map[string]string) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", testAPIToken)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TransactionHandlerTestSuite) decodeTransferResponse(w *httptest.ResponseRecorder) dto.TransferResponse {
	var resp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func validRequest() dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		FromEmail: "alice@example.com",
		ToEmail:   "bob@example.com",
		Amount:    200,
	}
}

func succeededEntry() domain.Transaction {
	return domain.Transaction{
		TransactionID: "11111111-1111-1111-1111-111111111111",
		FromEmail:     "alice@example.com",
		ToEmail:       "bob@example.com",
		FromName:      "Alice",
		ToName:        "Bob",
		Amount:        200,
		Status:        domain.StatusSucceeded,
	}
}

// --- Test Cases ---

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_Created() {
	suite.mockTransfer.On("Transfer", mock.Anything, validRequest()).
		Return(&dto.TransferResult{Entry: succeededEntry()}, nil).Once()

	w := suite.postTransfer(validRequest(), nil)

	suite.Equal(http.StatusCreated, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.Equal("SUCCEEDED", resp.Status)
	suite.False(resp.Replayed)
	suite.Require().NotNil(resp.Transaction)
	suite.Equal("alice@example.com", resp.Transaction.FromEmail)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_HeaderKeyWinsOverBody() {
	expected := validRequest()
	expected.IdempotencyKey = "header-key"
	suite.mockTransfer.On("Transfer", mock.Anything, expected).
		Return(&dto.TransferResult{Entry: succeededEntry()}, nil).Once()

	body := validRequest()
	body.IdempotencyKey = "body-key"
	w := suite.postTransfer(body, map[string]string{"Idempotency-Key": "header-key"})

	suite.Equal(http.StatusCreated, w.Code)
	suite.mockTransfer.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_ReplayReturns200() {
	suite.mockTransfer.On("Transfer", mock.Anything, mock.Anything).
		Return(&dto.TransferResult{Entry: succeededEntry(), Replayed: true}, nil).Once()

	w := suite.postTransfer(validRequest(), nil)

	suite.Equal(http.StatusOK, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.True(resp.Replayed)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_InvalidAmount() {
	suite.mockTransfer.On("Transfer", mock.Anything, mock.Anything).
		Return(nil, services.ErrInvalidAmount).Once()

	req := validRequest()
	req.Amount = -1
	w := suite.postTransfer(req, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.Equal(string(domain.ReasonInvalidAmount), resp.Reason)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_SelfTransfer() {
	suite.mockTransfer.On("Transfer", mock.Anything, mock.Anything).
		Return(nil, services.ErrSelfTransfer).Once()

	req := validRequest()
	req.ToEmail = req.FromEmail
	w := suite.postTransfer(req, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.Equal(string(domain.ReasonSelfTransfer), resp.Reason)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_UnknownAccount() {
	suite.mockTransfer.On("Transfer", mock.Anything, mock.Anything).
		Return(nil, services.ErrAccountNotFound).Once()

	w := suite.postTransfer(validRequest(), nil)

	suite.Equal(http.StatusNotFound, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.Equal(string(domain.ReasonUnknownAccount), resp.Reason)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_DuplicateInFlight() {
	suite.mockTransfer.On("Transfer", mock.Anything, mock.Anything).
		Return(nil, services.ErrDuplicateRequest).Once()

	w := suite.postTransfer(validRequest(), nil)

	suite.Equal(http.StatusConflict, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.Equal(string(domain.ReasonDuplicateRequest), resp.Reason)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_InsufficientFundsCarriesEntry() {
	entry := succeededEntry()
	entry.Status = domain.StatusLoggedFailed
	entry.Reason = domain.ReasonInsufficientFunds
	suite.mockTransfer.On("Transfer", mock.Anything, mock.Anything).
		Return(&dto.TransferResult{Entry: entry}, services.ErrInsufficientFunds).Once()

	w := suite.postTransfer(validRequest(), nil)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.Equal("LOGGED_FAILED", resp.Status)
	suite.Equal(string(domain.ReasonInsufficientFunds), resp.Reason)
	suite.Require().NotNil(resp.Transaction, "the logged entry must be returned to the caller")
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_UpstreamFailure() {
	entry := succeededEntry()
	entry.Status = domain.StatusLoggedFailed
	entry.Reason = domain.ReasonUpstreamFailure
	suite.mockTransfer.On("Transfer", mock.Anything, mock.Anything).
		Return(&dto.TransferResult{Entry: entry}, services.ErrRemoteUnavailable).Once()

	w := suite.postTransfer(validRequest(), nil)

	suite.Equal(http.StatusBadGateway, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.Equal(string(domain.ReasonUpstreamFailure), resp.Reason)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_Unreconciled() {
	entry := succeededEntry()
	entry.Status = domain.StatusUnreconciled
	entry.Reason = domain.ReasonCompensationFail
	suite.mockTransfer.On("Transfer", mock.Anything, mock.Anything).
		Return(&dto.TransferResult{Entry: entry}, apperrors.ErrUnreconciled).Once()

	w := suite.postTransfer(validRequest(), nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	resp := suite.decodeTransferResponse(w)
	suite.Equal("UNRECONCILED", resp.Status)
	suite.Equal(string(domain.ReasonCompensationFail), resp.Reason)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransfer_MissingToken() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTransfer.AssertNotCalled(suite.T(), "Transfer", mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestListTransactions() {
	token := "next-page"
	suite.mockTransfer.On("ListTransactions", mock.Anything, "alice@example.com",
		dto.ListTransactionsParams{Limit: 5}).
		Return(&dto.ListTransactionsResponse{
			Transactions: []dto.TransactionResponse{{TransactionID: "t1"}},
			Balance:      800,
			NextToken:    &token,
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?email=alice@example.com&limit=5", nil)
	req.Header.Set("Authorization", testAPIToken)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(800), resp.Balance)
	suite.Require().Len(resp.Transactions, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
}

func (suite *TransactionHandlerTestSuite) TestListTransactions_MissingEmail() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", testAPIToken)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransfer.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
