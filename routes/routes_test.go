package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"geniustrading/controllers"
	"geniustrading/controllers/admins"
	"geniustrading/controllers/auth"
	"geniustrading/controllers/users"
	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/models"
	"geniustrading/services"
	"geniustrading/sessions"
	"geniustrading/storage"
	"geniustrading/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	logger.SetOutput(io.Discard, zerolog.Disabled)
}

type fakeDocs struct {
	mu   sync.Mutex
	keys map[string]string
}

func (f *fakeDocs) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = contentType
	return nil
}

func (f *fakeDocs) PresignURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://docs.example.test/" + key, nil
}

type testApp struct {
	handler http.Handler
	store   *storage.Memory
	auth    *services.Auth
}

func newTestApp(t *testing.T, docs *fakeDocs) *testApp {
	t.Helper()
	store := storage.NewMemory()
	signer := utils.NewTokenSigner("0123456789abcdef0123456789abcdef", "geniustrading", "geniustrading")
	mgr := sessions.NewManager(sessions.NewDBStore(store), signer, sessions.Options{TTL: time.Hour, TouchAfter: time.Hour})
	authSvc := services.NewAuth(store, bcrypt.MinCost)
	ledger := services.NewLedger(store, false)
	investments := services.NewInvestments(store, false)
	kyc := services.NewKyc(store)
	registry := services.NewRegistry(store)

	var (
		uploader users.DocumentStore
		presign  admins.Presigner
	)
	if docs != nil {
		uploader, presign = docs, docs
	}

	router := InitRouter(Deps{
		Authenticator: middleware.NewAuthenticator(mgr, store),
		Auth:          auth.NewHandler(authSvc, mgr, middleware.NewLoginGuard(nil, 5)),
		Users:         users.NewHandler(ledger, investments, kyc, uploader),
		Admins: admins.NewHandler(admins.Deps{
			Auth:        authSvc,
			Accounts:    services.NewAccounts(store),
			Ledger:      ledger,
			Investments: investments,
			Kyc:         kyc,
			Registry:    registry,
			Documents:   presign,
		}),
		Info: controllers.NewInfoController(registry),
	})
	return &testApp{handler: middleware.RequestID(router), store: store, auth: authSvc}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.RemoteAddr = "192.0.2.10:40000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

type sessionData struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

func (a *testApp) register(t *testing.T, username string) sessionData {
	t.Helper()
	code, env := a.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var s sessionData
	require.NoError(t, json.Unmarshal(env.Data, &s))
	require.NotEmpty(t, s.AccessToken)
	return s
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	_, err := a.auth.CreateAdmin(context.Background(), services.RegisterInput{Username: "root", Email: "root@example.com", Password: "rootpass1"})
	require.NoError(t, err)
	code, env := a.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "rootpass1"})
	require.Equal(t, http.StatusOK, code)
	var s sessionData
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s.AccessToken
}

func (a *testApp) balance(t *testing.T, token string) int64 {
	t.Helper()
	code, env := a.do(t, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, code)
	var out struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.User.Balance
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t, nil)
	s := app.register(t, "alice")
	assert.Equal(t, models.RoleUser, s.User.Role)
	assert.Equal(t, models.KycPending, s.User.KycStatus)
	assert.Equal(t, int64(0), s.User.Balance)

	code, env := app.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username already exists", env.Message)
	all, _ := app.store.ListUsers(context.Background())
	assert.Len(t, all, 1)

	code, env = app.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Message)

	code, _ = app.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodGet, "/api/user", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = app.do(t, http.MethodPost, "/api/logout", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = app.do(t, http.MethodGet, "/api/user", s.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestWrongPasswordEstablishesNoSession(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()
	_, err := app.auth.Register(ctx, services.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"username":"alice","password":"wrong-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:40000"
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, "gt_session", c.Name)
	}
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.NotContains(t, string(env.Data), "access_token")

	// purging with a far-future clock counts every stored session
	n, err := app.store.DeleteExpiredSessions(ctx, time.Now().AddDate(100, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t, nil)
	code, env := app.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "bob", "email": "not-an-email", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email must be a valid email", env.Message)

	code, _ = app.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "bob", "email": "bob@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDepositApprovalThenReversal(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.register(t, "alice")
	admin := app.adminToken(t)

	code, env := app.do(t, http.MethodPost, "/api/transactions", alice.AccessToken, map[string]interface{}{
		"type": "deposit", "amount": 5000, "paymentMethod": "bitcoin",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var tx models.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	assert.Equal(t, models.TxPending, tx.Status)

	path := fmt.Sprintf("/api/admin/transactions/%d", tx.ID)
	code, _ = app.do(t, http.MethodPut, path, admin, map[string]string{"status": "approved", "adminNotes": "received"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(5000), app.balance(t, alice.AccessToken))

	// approving again does not credit twice
	code, _ = app.do(t, http.MethodPut, path, admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(5000), app.balance(t, alice.AccessToken))

	code, env = app.do(t, http.MethodPut, path, admin, map[string]string{"status": "rejected"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(0), app.balance(t, alice.AccessToken))
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	require.NotNil(t, tx.AdminNotes)
	assert.Equal(t, "received", *tx.AdminNotes)

	code, _ = app.do(t, http.MethodPut, "/api/admin/transactions/999", admin, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNonAdminIsForbiddenWithoutSideEffects(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.register(t, "alice")

	code, env := app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/balance", alice.User.ID), alice.AccessToken, map[string]int64{"balance": 1000000})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", env.Message)

	code, _ = app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", alice.User.ID), alice.AccessToken, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = app.do(t, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	u, err := app.store.GetUser(context.Background(), alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Balance)
	assert.Equal(t, models.RoleUser, u.Role)
}

func TestAdminOverrides(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.register(t, "alice")
	admin := app.adminToken(t)
	base := fmt.Sprintf("/api/admin/users/%d", alice.User.ID)

	code, _ := app.do(t, http.MethodPut, base+"/balance", admin, map[string]int64{"balance": 2500})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(2500), app.balance(t, alice.AccessToken))

	code, _ = app.do(t, http.MethodPut, base+"/balance", admin, map[string]int64{"balance": -1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = app.do(t, http.MethodPut, base+"/kyc", admin, map[string]string{"kycStatus": "approved"})
	require.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodPut, "/api/admin/users/999/role", admin, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, code)

	// promotion applies on the next request without logging in again
	code, _ = app.do(t, http.MethodPut, base+"/role", admin, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, code)
	code, _ = app.do(t, http.MethodGet, "/api/admin/users", alice.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestInvestmentAcceptedWithZeroBalance(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.register(t, "alice")

	code, env := app.do(t, http.MethodPost, "/api/investments", alice.AccessToken, map[string]interface{}{
		"planType": "starter", "amount": 100000, "dailyReturn": 2500, "duration": 30,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var inv models.Investment
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Equal(t, models.InvestmentActive, inv.Status)
	assert.Equal(t, int64(0), app.balance(t, alice.AccessToken))

	code, env = app.do(t, http.MethodGet, "/api/investments", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var list []models.Investment
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestKycSubmitAndReview(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.register(t, "alice")
	admin := app.adminToken(t)

	code, env := app.do(t, http.MethodGet, "/api/kyc", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, len(env.Data) == 0 || string(env.Data) == "null", "no submission yet")

	body := map[string]string{
		"documentType": "passport", "documentNumber": "X123", "fullName": "Alice Example",
		"dateOfBirth": "1990-01-01", "nationality": "US",
		"address": "1 Main Street, Springfield", "phoneNumber": "+15555550100",
	}
	code, env = app.do(t, http.MethodPost, "/api/kyc", alice.AccessToken, body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var rec models.Kyc
	require.NoError(t, json.Unmarshal(env.Data, &rec))

	code, _ = app.do(t, http.MethodPost, "/api/kyc", alice.AccessToken, body)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/kyc/%d", rec.ID), admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, code)

	code, env = app.do(t, http.MethodGet, "/api/user", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"kycStatus":"approved"`)
}

func TestKycDocumentUpload(t *testing.T) {
	docs := &fakeDocs{keys: map[string]string{}}
	app := newTestApp(t, docs)
	alice := app.register(t, "alice")

	upload := func(content []byte) (int, envelope) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("document", "id.png")
		require.NoError(t, err)
		_, _ = fw.Write(content)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/kyc/document", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+alice.AccessToken)
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)
		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		return rec.Code, env
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	code, env := upload(png)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var out map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &out))
	key := out["documentKey"]
	assert.Equal(t, "image/png", docs.keys[key])

	code, _ = upload([]byte("plain text is not a document"))
	assert.Equal(t, http.StatusBadRequest, code)

	// another user's key is refused
	code, _ = app.do(t, http.MethodPost, "/api/kyc", alice.AccessToken, map[string]string{
		"documentType": "passport", "documentNumber": "X123", "fullName": "Alice Example",
		"dateOfBirth": "1990-01-01", "nationality": "US",
		"address": "1 Main Street, Springfield", "phoneNumber": "+15555550100",
		"documentKey": "kyc/999/file.png",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = app.do(t, http.MethodPost, "/api/kyc", alice.AccessToken, map[string]string{
		"documentType": "passport", "documentNumber": "X123", "fullName": "Alice Example",
		"dateOfBirth": "1990-01-01", "nationality": "US",
		"address": "1 Main Street, Springfield", "phoneNumber": "+15555550100",
		"documentKey": key,
	})
	require.Equal(t, http.StatusCreated, code)

	admin := app.adminToken(t)
	code, env = app.do(t, http.MethodGet, "/api/admin/kyc", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "https://docs.example.test/"+key)
}

func TestKycDocumentUploadDisabled(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.register(t, "alice")
	req := httptest.NewRequest(http.MethodPost, "/api/kyc/document", nil)
	req.Header.Set("Authorization", "Bearer "+alice.AccessToken)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPublicRegistry(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	code, env := app.do(t, http.MethodPost, "/api/admin/deposit-addresses", admin, map[string]string{"method": "bitcoin", "address": "bc1-one"})
	require.Equal(t, http.StatusCreated, code)
	var addr models.DepositAddress
	require.NoError(t, json.Unmarshal(env.Data, &addr))

	code, _ = app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/deposit-addresses/%d", addr.ID), admin, map[string]string{"address": "bc1-two"})
	require.Equal(t, http.StatusOK, code)

	code, env = app.do(t, http.MethodGet, "/api/deposit-addresses/bitcoin", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "bc1-two")

	code, _ = app.do(t, http.MethodGet, "/api/deposit-addresses/usdt", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(t, http.MethodPost, "/api/admin/testimonials", admin, map[string]interface{}{
		"name": "Sam", "location": "Lisbon", "message": "Great", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, code)
	code, env = app.do(t, http.MethodGet, "/api/testimonials", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Lisbon")
}

func TestPlansAndQuote(t *testing.T) {
	app := newTestApp(t, nil)
	code, env := app.do(t, http.MethodGet, "/api/plans", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "premium")

	code, env = app.do(t, http.MethodPost, "/api/plans/quote", "", map[string]interface{}{"planType": "starter", "amount": 100000})
	require.Equal(t, http.StatusOK, code)
	var q services.Quote
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, int64(2500), q.DailyReturn)

	code, _ = app.do(t, http.MethodPost, "/api/plans/quote", "", map[string]interface{}{"planType": "gold", "amount": 100})
	assert.Equal(t, http.StatusNotFound, code)
}
