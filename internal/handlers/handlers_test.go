package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/discovery"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/middleware"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/payments"
	"github.com/joshua-takyi/gatherly/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRouter mirrors the production chain: request id, error envelope and an injected
// session when one is given.
func newRouter(session *helpers.Session) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler(discardLogger()))
	if session != nil {
		r.Use(func(c *gin.Context) {
			c.Set(helpers.SessionKey, session)
			c.Next()
		})
	}
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) models.ApiResponse {
	t.Helper()
	var res models.ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func testSession() *helpers.Session {
	return &helpers.Session{UserID: uuid.New(), Email: "ana@example.com", FullName: "Ana Nowak", AccessToken: "token"}
}

// --- checkout bridge ---

type fakeProcessor struct {
	knownPrices map[string]bool
	created     []payments.CheckoutParams
}

func (f *fakeProcessor) PriceExists(ctx context.Context, priceID, account string) error {
	if !f.knownPrices[account+"/"+priceID] {
		return payments.ErrPriceNotFound
	}
	return nil
}

func (f *fakeProcessor) CreateCheckoutSession(ctx context.Context, params payments.CheckoutParams) (*payments.Session, error) {
	f.created = append(f.created, params)
	return &payments.Session{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (f *fakeProcessor) GetCheckoutSession(ctx context.Context, id, account string) (*payments.SessionStatus, error) {
	return nil, errdef.NewNotFound("no session")
}

func (f *fakeProcessor) DeactivatePrice(ctx context.Context, priceID, account string) error {
	return nil
}

func (f *fakeProcessor) ArchiveProduct(ctx context.Context, productID, account string) error {
	return nil
}

func (f *fakeProcessor) ListCharges(ctx context.Context, account string, from, to time.Time) ([]payments.Charge, error) {
	return nil, nil
}

func checkoutBody(account, price string) map[string]any {
	return map[string]any{
		"price_id":          price,
		"success_url":       "https://gatherly.app/ok",
		"cancel_url":        "https://gatherly.app/cancel",
		"organizer_account": account,
	}
}

func TestCreateCheckoutSessionForeignPrice(t *testing.T) {
	proc := &fakeProcessor{knownPrices: map[string]bool{"acct_org/price_mine": true}}
	cs := services.NewCheckoutService(services.CheckoutDeps{Processor: proc, PlatformAccount: "acct_platform", Logger: discardLogger()})

	r := newRouter(nil)
	r.POST("/checkout/sessions", CreateCheckoutSession(cs))

	w := do(r, http.MethodPost, "/checkout/sessions", checkoutBody("acct_org", "price_someone_else"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "price not found in organizer's account", decode(t, w).Error)
	assert.Empty(t, proc.created)
}

func TestCreateCheckoutSessionSuccess(t *testing.T) {
	proc := &fakeProcessor{knownPrices: map[string]bool{"acct_org/price_mine": true}}
	cs := services.NewCheckoutService(services.CheckoutDeps{Processor: proc, PlatformAccount: "acct_platform", Logger: discardLogger()})

	r := newRouter(nil)
	r.POST("/checkout/sessions", CreateCheckoutSession(cs))

	w := do(r, http.MethodPost, "/checkout/sessions", checkoutBody("acct_org", "price_mine"))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, proc.created, 1)
	assert.Equal(t, "acct_org", proc.created[0].Destination)

	data, ok := decode(t, w).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://checkout.example/cs_test_1", data["url"])
}

func TestCreateCheckoutSessionMissingFields(t *testing.T) {
	proc := &fakeProcessor{}
	cs := services.NewCheckoutService(services.CheckoutDeps{Processor: proc, Logger: discardLogger()})

	r := newRouter(nil)
	r.POST("/checkout/sessions", CreateCheckoutSession(cs))

	w := do(r, http.MethodPost, "/checkout/sessions", map[string]any{"price_id": "price_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, proc.created)
}

// --- attendance ---

type fakeAttendance struct {
	joinErr  error
	leaveErr error
	status   *models.AttendanceStatus
}

func (f *fakeAttendance) Join(ctx context.Context, session *helpers.Session, eventID uuid.UUID) (*services.JoinResult, error) {
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return &services.JoinResult{Ticket: &models.Ticket{ID: uuid.New(), EventID: eventID, UserID: session.UserID}, EmailSent: false}, nil
}

func (f *fakeAttendance) Leave(ctx context.Context, session *helpers.Session, eventID uuid.UUID) error {
	return f.leaveErr
}

func (f *fakeAttendance) Status(ctx context.Context, session *helpers.Session, eventID uuid.UUID) (*models.AttendanceStatus, error) {
	return f.status, nil
}

func TestJoinEventSoldOut(t *testing.T) {
	r := newRouter(testSession())
	r.POST("/events/:id/attendance", JoinEvent(&fakeAttendance{joinErr: errdef.NewConflict("event is sold out")}))

	w := do(r, http.MethodPost, "/events/"+uuid.NewString()+"/attendance", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "event is sold out", decode(t, w).Error)
}

func TestJoinEventReportsEmail(t *testing.T) {
	r := newRouter(testSession())
	r.POST("/events/:id/attendance", JoinEvent(&fakeAttendance{}))

	w := do(r, http.MethodPost, "/events/"+uuid.NewString()+"/attendance", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	data, ok := decode(t, w).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["email_sent"])
	assert.NotNil(t, data["ticket"])
}

func TestJoinEventRequiresSession(t *testing.T) {
	r := newRouter(nil)
	r.POST("/events/:id/attendance", JoinEvent(&fakeAttendance{}))

	w := do(r, http.MethodPost, "/events/"+uuid.NewString()+"/attendance", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJoinEventInvalidID(t *testing.T) {
	r := newRouter(testSession())
	r.POST("/events/:id/attendance", JoinEvent(&fakeAttendance{}))

	w := do(r, http.MethodPost, "/events/not-a-uuid/attendance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaveEventPaidTicket(t *testing.T) {
	r := newRouter(testSession())
	r.DELETE("/events/:id/attendance", LeaveEvent(&fakeAttendance{leaveErr: errdef.NewConflict("paid tickets cannot be cancelled")}))

	w := do(r, http.MethodDelete, "/events/"+uuid.NewString()+"/attendance", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAttendanceStatusSoldOut(t *testing.T) {
	eventID := uuid.New()
	status := &models.AttendanceStatus{EventID: eventID, Attendees: 10, Spots: models.AvailableSpots(10, 10)}

	r := newRouter(testSession())
	r.GET("/events/:id/attendance", AttendanceStatus(&fakeAttendance{status: status}))

	w := do(r, http.MethodGet, "/events/"+eventID.String()+"/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display":"Sold out"`)
}

// --- discovery ---

type fakeFinder struct {
	gotPage int
	gotTerm string
}

func (f *fakeFinder) Search(ctx context.Context, term, city string, page int) (discovery.Page[models.EventView], error) {
	f.gotTerm, f.gotPage = term, page
	return discovery.Paginate([]models.EventView{{Event: models.Event{ID: uuid.New(), Title: "Chess"}}}, page, discovery.PageSize), nil
}

func (f *fakeFinder) Recommend(ctx context.Context, session *helpers.Session, city string, page int) (discovery.Page[models.EventView], error) {
	return discovery.Paginate([]models.EventView{}, page, discovery.PageSize), nil
}

func (f *fakeFinder) GetEventView(ctx context.Context, id uuid.UUID) (*models.EventView, error) {
	return nil, errdef.NewNotFound("event %s not found", id)
}

func TestSearchEvents(t *testing.T) {
	finder := &fakeFinder{}
	r := newRouter(nil)
	r.GET("/events/search", SearchEvents(finder))

	w := do(r, http.MethodGet, "/events/search?q=chess&city=Gdansk", nil)
	require.Equal(t, http.StatusOK, w.Code)

	res := decode(t, w)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, discovery.PageSize, res.Limit)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "chess", finder.gotTerm)
}

func TestSearchEventsInvalidPage(t *testing.T) {
	r := newRouter(nil)
	r.GET("/events/search", SearchEvents(&fakeFinder{}))

	w := do(r, http.MethodGet, "/events/search?q=chess&page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEventNotFound(t *testing.T) {
	r := newRouter(nil)
	r.GET("/events/:id", GetEvent(&fakeFinder{}))

	w := do(r, http.MethodGet, "/events/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- payments admin ---

type fakePayments struct {
	result *services.ArchiveResult
}

func (f *fakePayments) Archive(ctx context.Context, session *helpers.Session, req services.ArchiveRequest) (*services.ArchiveResult, error) {
	return f.result, nil
}

func (f *fakePayments) Revenue(ctx context.Context, session *helpers.Session, req services.RevenueRequest) (*services.RevenueReport, error) {
	return &services.RevenueReport{Account: req.Account}, nil
}

func TestArchiveProductPartialFailure(t *testing.T) {
	r := newRouter(testSession())
	r.POST("/payments/archive", ArchiveProduct(&fakePayments{result: &services.ArchiveResult{PriceDeactivated: true, Error: "product has active prices"}}))

	w := do(r, http.MethodPost, "/payments/archive", map[string]string{"product_id": "prod_1", "price_id": "price_1", "account": "acct_org"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"archived":false`)
}

func TestArchiveProductMissingFields(t *testing.T) {
	r := newRouter(testSession())
	r.POST("/payments/archive", ArchiveProduct(&fakePayments{}))

	w := do(r, http.MethodPost, "/payments/archive", map[string]string{"product_id": "prod_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- accounts ---

func TestLogoutClearsCookies(t *testing.T) {
	r := newRouter(nil)
	r.POST("/logout", Logout(false))

	w := do(r, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		cleared[c.Name] = c.MaxAge < 0
	}
	assert.True(t, cleared[helpers.AccessTokenCookie])
	assert.True(t, cleared[helpers.RefreshTokenCookie])
}

func TestHealth(t *testing.T) {
	r := newRouter(nil)
	r.GET("/health", Health())

	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
