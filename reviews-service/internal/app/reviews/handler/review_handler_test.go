package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopreviews/reviews-service/internal/app/reviews/entity"
	"shopreviews/reviews-service/internal/app/reviews/infrastructure/identity"
	"shopreviews/reviews-service/internal/app/reviews/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListAll(ctx context.Context) ([]entity.Review, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewService) ListForProduct(ctx context.Context, productSlug string) ([]entity.Review, error) {
	args := m.Called(ctx, productSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, role entity.Role, req entity.NewReview) (*entity.TransactionResponse, error) {
	args := m.Called(ctx, role, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TransactionResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, role entity.Role, reviewID int64) (*entity.TransactionResponse, error) {
	args := m.Called(ctx, role, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TransactionResponse), args.Error(1)
}

var (
	testCustomer = entity.Role{UserID: 10, Username: "buyer", IsCustomer: true}
	testAdmin    = entity.Role{UserID: 1, Username: "admin", IsAdmin: true}
)

// Хелпер: роутер с мок-сервисом и настоящим JWT провайдером
func newTestRouter() (*gin.Engine, *MockReviewService, *identity.JWTProvider) {
	svc := new(MockReviewService)
	provider := identity.NewJWTProvider("test-secret-key", 15*time.Minute)
	router := SetupRoutes(NewReviewHandler(svc), NewAuthMiddleware(provider))
	return router, svc, provider
}

func issueToken(t *testing.T, provider *identity.JWTProvider, role entity.Role) string {
	token, err := provider.Issue(role)
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, target, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

// ==================== GET /reviews/ ====================

func TestListAll_Success(t *testing.T) {
	router, svc, _ := newTestRouter()
	reviews := []entity.Review{{ID: 1, UserID: 10, ProductID: 100, Grade: 5, IsActive: true}}
	svc.On("ListAll", mock.Anything).Return(reviews, nil)

	w := doRequest(router, http.MethodGet, "/reviews/", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []entity.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Grade)
}

func TestListAll_NoReviews(t *testing.T) {
	router, svc, _ := newTestRouter()
	svc.On("ListAll", mock.Anything).Return(nil, service.ErrNoReviews)

	w := doRequest(router, http.MethodGet, "/reviews/", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "There are no reviews", decodeDetail(t, w))
}

func TestListAll_InternalError(t *testing.T) {
	router, svc, _ := newTestRouter()
	svc.On("ListAll", mock.Anything).Return(nil, errors.New("pq: connection refused"))

	w := doRequest(router, http.MethodGet, "/reviews/", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to get reviews", decodeDetail(t, w))
	assert.NotContains(t, w.Body.String(), "connection refused")
}

// ==================== GET /reviews/:product_slug ====================

func TestListForProduct_Empty(t *testing.T) {
	router, svc, _ := newTestRouter()
	svc.On("ListForProduct", mock.Anything, "phone").Return([]entity.Review{}, nil)

	w := doRequest(router, http.MethodGet, "/reviews/phone", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListForProduct_UnknownSlug(t *testing.T) {
	router, svc, _ := newTestRouter()
	svc.On("ListForProduct", mock.Anything, "ghost").Return(nil, service.ErrProductNotFound)

	w := doRequest(router, http.MethodGet, "/reviews/ghost", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decodeDetail(t, w))
}

// ==================== POST /reviews/ ====================

func TestCreate_Success(t *testing.T) {
	router, svc, provider := newTestRouter()
	comment := "solid"
	expected := entity.NewReview{UserID: 10, ProductID: 100, Comment: &comment, Grade: 4}
	svc.On("Create", mock.Anything, testCustomer, expected).
		Return(&entity.TransactionResponse{StatusCode: 201, Transaction: "Successful"}, nil)

	body := []byte(`{"user":10,"product":100,"comment":"solid","grade":4}`)
	w := doRequest(router, http.MethodPost, "/reviews/", issueToken(t, provider, testCustomer), body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status_code":201,"transaction":"Successful"}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCreate_WithoutComment(t *testing.T) {
	router, svc, provider := newTestRouter()
	svc.On("Create", mock.Anything, testCustomer, entity.NewReview{UserID: 10, ProductID: 100, Grade: 0}).
		Return(&entity.TransactionResponse{StatusCode: 201, Transaction: "Successful"}, nil)

	body := []byte(`{"user":10,"product":100,"grade":0}`)
	w := doRequest(router, http.MethodPost, "/reviews/", issueToken(t, provider, testCustomer), body)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreate_Unauthenticated(t *testing.T) {
	router, svc, _ := newTestRouter()

	w := doRequest(router, http.MethodPost, "/reviews/", "", []byte(`{"user":10,"product":100,"grade":4}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authenticated", decodeDetail(t, w))
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_InvalidToken(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doRequest(router, http.MethodPost, "/reviews/", "garbage", []byte(`{}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Could not validate credentials", decodeDetail(t, w))
}

func TestCreate_ExpiredToken(t *testing.T) {
	router, _, _ := newTestRouter()
	expired := identity.NewJWTProvider("test-secret-key", -time.Minute)

	w := doRequest(router, http.MethodPost, "/reviews/", issueToken(t, expired, testCustomer), []byte(`{}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has expired", decodeDetail(t, w))
}

func TestCreate_MissingField(t *testing.T) {
	router, svc, provider := newTestRouter()

	w := doRequest(router, http.MethodPost, "/reviews/", issueToken(t, provider, testCustomer), []byte(`{"user":10,"grade":4}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Product is required", decodeDetail(t, w))
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_MalformedBody(t *testing.T) {
	router, _, provider := newTestRouter()

	w := doRequest(router, http.MethodPost, "/reviews/", issueToken(t, provider, testCustomer), []byte(`{"user":"ten"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decodeDetail(t, w))
}

func TestCreate_Forbidden(t *testing.T) {
	router, svc, provider := newTestRouter()
	svc.On("Create", mock.Anything, testAdmin, mock.Anything).Return(nil, service.ErrNotCustomer)

	w := doRequest(router, http.MethodPost, "/reviews/", issueToken(t, provider, testAdmin), []byte(`{"user":1,"product":100,"grade":4}`))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You must be customer user for this", decodeDetail(t, w))
}

func TestCreate_ProductNotFound(t *testing.T) {
	router, svc, provider := newTestRouter()
	svc.On("Create", mock.Anything, testCustomer, mock.Anything).Return(nil, service.ErrNoProduct)

	w := doRequest(router, http.MethodPost, "/reviews/", issueToken(t, provider, testCustomer), []byte(`{"user":10,"product":999,"grade":4}`))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "There is no product found", decodeDetail(t, w))
}

// ==================== DELETE /reviews/ ====================

func TestDelete_Success(t *testing.T) {
	router, svc, provider := newTestRouter()
	svc.On("Delete", mock.Anything, testAdmin, int64(7)).
		Return(&entity.TransactionResponse{StatusCode: 200, Transaction: "Review delete is successful"}, nil)

	w := doRequest(router, http.MethodDelete, "/reviews/?review_id=7", issueToken(t, provider, testAdmin), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status_code":200,"transaction":"Review delete is successful"}`, w.Body.String())
}

func TestDelete_InvalidReviewID(t *testing.T) {
	router, svc, provider := newTestRouter()
	token := issueToken(t, provider, testAdmin)

	for _, target := range []string{"/reviews/", "/reviews/?review_id=abc"} {
		w := doRequest(router, http.MethodDelete, target, token, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, "review_id must be an integer", decodeDetail(t, w))
	}
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_Forbidden(t *testing.T) {
	router, svc, provider := newTestRouter()
	svc.On("Delete", mock.Anything, testCustomer, int64(7)).Return(nil, service.ErrNotAdmin)

	w := doRequest(router, http.MethodDelete, "/reviews/?review_id=7", issueToken(t, provider, testCustomer), nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You must be admin user for this", decodeDetail(t, w))
}

func TestDelete_NotFound(t *testing.T) {
	router, svc, provider := newTestRouter()
	svc.On("Delete", mock.Anything, testAdmin, int64(999)).Return(nil, service.ErrNoReview)

	w := doRequest(router, http.MethodDelete, "/reviews/?review_id=999", issueToken(t, provider, testAdmin), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "There is no review found", decodeDetail(t, w))
}

// ==================== service endpoints ====================

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doRequest(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"reviews-service"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doRequest(router, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
