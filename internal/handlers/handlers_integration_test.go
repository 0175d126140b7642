package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vendorapi/internal/database"
	"vendorapi/internal/models"
	"vendorapi/internal/repositories"
	"vendorapi/internal/server"
	"vendorapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

// setupApp builds the full app on a private in-memory SQLite database.
func setupApp(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := database.Open("sqlite", dsn, zerolog.Nop())
	require.NoError(t, err)

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	authService := services.NewAuthService(userRepo, testJWTSecret, time.Hour)
	productService := services.NewProductService(productRepo, nil, zerolog.Nop())

	app := server.NewApp(server.Options{
		Logger:         zerolog.Nop(),
		ProductService: productService,
		AuthService:    authService,
		DB:             db,
	})
	return app, authService
}

// setupAppWithProducts builds the app over an arbitrary product repository.
func setupAppWithProducts(t *testing.T, productRepo repositories.ProductRepository) (*fiber.App, *services.AuthService) {
	t.Helper()
	authService := services.NewAuthService(repositories.NewMemoryUserRepository(), testJWTSecret, time.Hour)
	productService := services.NewProductService(productRepo, nil, zerolog.Nop())
	app := server.NewApp(server.Options{
		Logger:         zerolog.Nop(),
		ProductService: productService,
		AuthService:    authService,
	})
	return app, authService
}

func issueToken(t *testing.T, authService *services.AuthService) string {
	t.Helper()
	token, err := authService.IssueToken(&models.User{ID: uuid.New().String(), Email: "ops@example.com"})
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			jsonBody, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(jsonBody)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func laptopBody() map[string]interface{} {
	return map[string]interface{}{
		"vendor_id":       "SOMEONE-ELSE",
		"product_name":    "Laptop",
		"department":      "Engineering",
		"budget_owner":    "Alice",
		"product_owner":   "Bob",
		"expiration_date": "2025-12-31",
		"payment_method":  "card",
		"product_type":    "hardware",
		"status":          "active",
		"user_by":         "Carol",
	}
}

func listProducts(t *testing.T, app *fiber.App, token, vendorID string) []models.Product {
	t.Helper()
	code, raw := doRequest(t, app, http.MethodGet, "/api/v1/product/vendor/"+vendorID, token, nil)
	require.Equal(t, http.StatusOK, code, string(raw))

	var envelope struct {
		ProductList []models.Product `json:"productlist"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.NotNil(t, envelope.ProductList)
	return envelope.ProductList
}

func TestListVendorProducts_Empty(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	code, raw := doRequest(t, app, http.MethodGet, "/api/v1/product/vendor/V1", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"productlist":[]}`, string(raw))
}

func TestCreateThenListProduct(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	code, raw := doRequest(t, app, http.MethodPost, "/api/v1/product/vendor/V1", token, laptopBody())
	assert.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"status":"success","message":"Product successfully added."}`, string(raw))

	products := listProducts(t, app, token, "V1")
	require.Len(t, products, 1)
	p := products[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "V1", p.VendorID)
	assert.Equal(t, "Laptop", p.ProductName)
	assert.Equal(t, "2025-12-31", p.ExpirationDate.String())
	assert.False(t, p.CreateDate.IsZero())

	assert.Empty(t, listProducts(t, app, token, "SOMEONE-ELSE"))

	code, raw = doRequest(t, app, http.MethodGet, "/api/v1/product/"+p.ID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, p.ID, fetched.ID)
	assert.Equal(t, "Laptop", fetched.ProductName)
}

func TestCreateProduct_MissingFieldIsRejected(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	body := laptopBody()
	delete(body, "budget_owner")

	code, raw := doRequest(t, app, http.MethodPost, "/api/v1/product/vendor/V1", token, body)
	assert.Equal(t, http.StatusBadRequest, code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, "fail", resp["status"])
	assert.Contains(t, resp["errors"], "budget_owner")

	assert.Empty(t, listProducts(t, app, token, "V1"))
}

func TestCreateProduct_EmptyStringFieldIsAccepted(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	body := laptopBody()
	body["status"] = ""
	body["user_by"] = ""

	code, raw := doRequest(t, app, http.MethodPost, "/api/v1/product/vendor/V1", token, body)
	assert.Equal(t, http.StatusCreated, code, string(raw))

	products := listProducts(t, app, token, "V1")
	require.Len(t, products, 1)
	assert.Equal(t, "", products[0].Status)
	assert.Equal(t, "", products[0].UserBy)
	assert.Equal(t, "Laptop", products[0].ProductName)
}

func TestCreateProduct_NullFieldIsRejected(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	body := laptopBody()
	body["department"] = nil

	code, raw := doRequest(t, app, http.MethodPost, "/api/v1/product/vendor/V1", token, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(raw), `"department"`)
	assert.Empty(t, listProducts(t, app, token, "V1"))
}

func TestCreateProduct_MalformedJSON(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	code, _ := doRequest(t, app, http.MethodPost, "/api/v1/product/vendor/V1", token, `{"product_name":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Empty(t, listProducts(t, app, token, "V1"))
}

func TestCreateProduct_MalformedDateIsGenericError(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	body := laptopBody()
	body["expiration_date"] = "31/12/2025"

	code, raw := doRequest(t, app, http.MethodPost, "/api/v1/product/vendor/V1", token, body)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `{"status":"error","message":"Internal Server Error"}`, string(raw))
	assert.Empty(t, listProducts(t, app, token, "V1"))
}

func TestUpdateProduct_Partial(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	code, _ := doRequest(t, app, http.MethodPost, "/api/v1/product/vendor/V1", token, laptopBody())
	require.Equal(t, http.StatusCreated, code)
	original := listProducts(t, app, token, "V1")[0]

	update := map[string]interface{}{
		"id":              original.ID,
		"product_name":    "Laptop Pro",
		"expiration_date": "2026-06-30",
	}
	for i := 0; i < 2; i++ {
		code, raw := doRequest(t, app, http.MethodPut, "/api/v1/product/vendor/V1", token, update)
		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"status":"success","message":"Product successfully updated."}`, string(raw))
	}

	products := listProducts(t, app, token, "V1")
	require.Len(t, products, 1)
	updated := products[0]
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, "Laptop Pro", updated.ProductName)
	assert.Equal(t, "2026-06-30", updated.ExpirationDate.String())
	assert.Equal(t, original.Department, updated.Department)
	assert.Equal(t, original.BudgetOwner, updated.BudgetOwner)
	assert.Equal(t, original.Status, updated.Status)
	assert.Equal(t, original.UserBy, updated.UserBy)
}

func TestUpdateProduct_Failures(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	code, _ := doRequest(t, app, http.MethodPost, "/api/v1/product/vendor/V1", token, laptopBody())
	require.Equal(t, http.StatusCreated, code)
	original := listProducts(t, app, token, "V1")[0]

	t.Run("missing id", func(t *testing.T) {
		code, raw := doRequest(t, app, http.MethodPut, "/api/v1/product/vendor/V1", token,
			map[string]interface{}{"product_name": "Nameless"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, string(raw), `"id"`)
	})

	t.Run("unknown id", func(t *testing.T) {
		code, raw := doRequest(t, app, http.MethodPut, "/api/v1/product/vendor/V1", token,
			map[string]interface{}{"id": "does-not-exist", "status": "retired"})
		assert.Equal(t, http.StatusNotFound, code)
		assert.JSONEq(t, `{"status":"fail","message":"Product not found."}`, string(raw))
	})

	t.Run("other vendor", func(t *testing.T) {
		code, _ := doRequest(t, app, http.MethodPut, "/api/v1/product/vendor/V2", token,
			map[string]interface{}{"id": original.ID, "status": "retired"})
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("malformed date", func(t *testing.T) {
		code, raw := doRequest(t, app, http.MethodPut, "/api/v1/product/vendor/V1", token,
			map[string]interface{}{"id": original.ID, "expiration_date": "someday"})
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.JSONEq(t, `{"status":"error","message":"Internal Server Error"}`, string(raw))
	})

	after := listProducts(t, app, token, "V1")[0]
	assert.Equal(t, original.Status, after.Status)
	assert.Equal(t, original.ExpirationDate.String(), after.ExpirationDate.String())
	assert.Equal(t, original.ProductName, after.ProductName)
}

func TestGetProduct_NotFound(t *testing.T) {
	app, authService := setupApp(t)
	token := issueToken(t, authService)

	code, raw := doRequest(t, app, http.MethodGet, "/api/v1/product/unknown-id", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"status":"fail","message":"Product not found."}`, string(raw))
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAllByVendor(ctx context.Context, vendorID string) ([]models.Product, error) {
	args := m.Called(ctx, vendorID)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, patch models.ProductPatch) (*models.Product, error) {
	args := m.Called(ctx, patch)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func TestStorageFailuresNeverLeakDetail(t *testing.T) {
	repo := new(MockProductRepository)
	storageErr := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	repo.On("GetByID", mock.Anything, "p-1").Return(nil, storageErr)
	repo.On("GetAllByVendor", mock.Anything, "V1").Return(nil, storageErr)
	repo.On("Save", mock.Anything, mock.Anything).Return(storageErr)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil, storageErr)

	app, authService := setupAppWithProducts(t, repo)
	token := issueToken(t, authService)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"get by id", http.MethodGet, "/api/v1/product/p-1", nil},
		{"list", http.MethodGet, "/api/v1/product/vendor/V1", nil},
		{"create", http.MethodPost, "/api/v1/product/vendor/V1", laptopBody()},
		{"update", http.MethodPut, "/api/v1/product/vendor/V1", map[string]interface{}{"id": "p-1", "status": "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, raw := doRequest(t, app, tc.method, tc.path, token, tc.body)
			assert.Equal(t, http.StatusInternalServerError, code)
			assert.JSONEq(t, `{"status":"error","message":"Internal Server Error"}`, string(raw))
			assert.NotContains(t, string(raw), "connection refused")
		})
	}
	repo.AssertExpectations(t)
}

func TestProductEndpointsWithoutAuth(t *testing.T) {
	app, authService := setupApp(t)

	cases := []struct {
		method string
		path   string
		token  string
		body   interface{}
	}{
		{http.MethodGet, "/api/v1/product/vendor/V1", "", nil},
		{http.MethodPost, "/api/v1/product/vendor/V1", "", laptopBody()},
		{http.MethodPut, "/api/v1/product/vendor/V1", "", map[string]interface{}{"id": "x"}},
		{http.MethodGet, "/api/v1/product/some-id", "", nil},
		{http.MethodGet, "/api/v1/product/vendor/V1", "not-a-jwt", nil},
	}
	for _, tc := range cases {
		code, raw := doRequest(t, app, tc.method, tc.path, tc.token, tc.body)
		assert.Equal(t, http.StatusUnauthorized, code, "%s %s", tc.method, tc.path)
		assert.Contains(t, string(raw), `"status":"fail"`)
	}

	assert.Empty(t, listProducts(t, app, issueToken(t, authService), "V1"))
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService := setupApp(t)

	register := map[string]string{
		"email":     "Test@Example.com",
		"full_name": "Test User",
		"password":  "password123",
	}
	code, raw := doRequest(t, app, http.MethodPost, "/api/v1/auth/register", "", register)
	assert.Equal(t, http.StatusCreated, code)
	var registerResp map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &registerResp))
	assert.Equal(t, "Account successfully registered.", registerResp["message"])
	assert.NotContains(t, string(raw), "password")

	code, _ = doRequest(t, app, http.MethodPost, "/api/v1/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "test@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, raw = doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "test@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, code)

	var loginResp map[string]string
	require.NoError(t, json.Unmarshal(raw, &loginResp))
	require.NotEmpty(t, loginResp["token"])

	claims, err := authService.ValidateToken(loginResp["token"])
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.NotEmpty(t, claims.UserID)

	code, _ = doRequest(t, app, http.MethodGet, "/api/v1/product/vendor/V1", loginResp["token"], nil)
	assert.Equal(t, http.StatusOK, code)
}
