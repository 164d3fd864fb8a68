package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/mailer"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/payments"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- events ---

type mockEventsRepo struct {
	listFn     func(ctx context.Context, city string) ([]models.Event, error)
	betweenFn  func(ctx context.Context, from, to time.Time) ([]models.Event, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*models.Event, error)
	createFn   func(ctx context.Context, event *models.Event, accessToken string) (*models.Event, error)
	updateFn   func(ctx context.Context, id uuid.UUID, fields map[string]any, accessToken string) (*models.Event, error)
	listCalled int
}

func (m *mockEventsRepo) ListEvents(ctx context.Context, city string) ([]models.Event, error) {
	m.listCalled++
	return m.listFn(ctx, city)
}
func (m *mockEventsRepo) ListEventsStartingBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	return m.betweenFn(ctx, from, to)
}
func (m *mockEventsRepo) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockEventsRepo) CreateEvent(ctx context.Context, event *models.Event, accessToken string) (*models.Event, error) {
	return m.createFn(ctx, event, accessToken)
}
func (m *mockEventsRepo) UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]any, accessToken string) (*models.Event, error) {
	return m.updateFn(ctx, id, fields, accessToken)
}

// --- images and storage ---

type mockImagesRepo struct {
	listFn func(ctx context.Context, eventIDs []uuid.UUID) ([]models.EventImage, error)
}

func (m *mockImagesRepo) ListEventImages(ctx context.Context, eventIDs []uuid.UUID) ([]models.EventImage, error) {
	return m.listFn(ctx, eventIDs)
}

type mockStorage struct {
	resolveFn func(ctx context.Context, bucket, path string) (string, error)
	removeFn  func(ctx context.Context, bucket, path string) error
}

func (m *mockStorage) ResolveURL(ctx context.Context, bucket, path string) (string, error) {
	return m.resolveFn(ctx, bucket, path)
}
func (m *mockStorage) RemoveObject(ctx context.Context, bucket, path string) error {
	return m.removeFn(ctx, bucket, path)
}

type mockImageResolver struct {
	resolveFn func(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

func (m *mockImageResolver) ResolveEventImages(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	return m.resolveFn(ctx, eventIDs)
}

// --- attendance ---

type mockAttendanceRepo struct {
	joinFn      func(ctx context.Context, params models.JoinParams) (*models.Ticket, error)
	leaveFn     func(ctx context.Context, userID, eventID uuid.UUID) error
	attendingFn func(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	countFn     func(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
	ticketsFn   func(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error)
}

func (m *mockAttendanceRepo) JoinEvent(ctx context.Context, params models.JoinParams) (*models.Ticket, error) {
	return m.joinFn(ctx, params)
}
func (m *mockAttendanceRepo) LeaveEvent(ctx context.Context, userID, eventID uuid.UUID) error {
	return m.leaveFn(ctx, userID, eventID)
}
func (m *mockAttendanceRepo) IsAttending(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	if m.attendingFn == nil {
		return false, nil
	}
	return m.attendingFn(ctx, userID, eventID)
}
func (m *mockAttendanceRepo) CountAttendees(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if m.countFn == nil {
		return map[uuid.UUID]int{}, nil
	}
	return m.countFn(ctx, eventIDs)
}
func (m *mockAttendanceRepo) ListEventTickets(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	return m.ticketsFn(ctx, eventID)
}

// --- profiles ---

type mockProfiles struct {
	getFn func(ctx context.Context, id uuid.UUID, accessToken string) (*models.Profile, error)
}

func (m *mockProfiles) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.Profile, error) {
	return m.getFn(ctx, id, accessToken)
}

// --- mail and publishing ---

type mockMailer struct {
	ticketErr   error
	reminderErr map[string]error
	tickets     []mailer.TicketEmail
	reminders   []string
}

func (m *mockMailer) SendTicketConfirmation(ctx context.Context, to string, data mailer.TicketEmail) error {
	if m.ticketErr != nil {
		return m.ticketErr
	}
	m.tickets = append(m.tickets, data)
	return nil
}

func (m *mockMailer) SendReminder(ctx context.Context, to string, data mailer.ReminderEmail) error {
	if err := m.reminderErr[to]; err != nil {
		return err
	}
	m.reminders = append(m.reminders, to)
	return nil
}

type mockPublisher struct {
	keys []string
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	m.keys = append(m.keys, routingKey)
	return nil
}

// --- payments ---

type mockProcessor struct {
	priceExistsFn func(ctx context.Context, priceID, account string) error
	createFn      func(ctx context.Context, params payments.CheckoutParams) (*payments.Session, error)
	getFn         func(ctx context.Context, id, account string) (*payments.SessionStatus, error)
	deactivateFn  func(ctx context.Context, priceID, account string) error
	archiveFn     func(ctx context.Context, productID, account string) error
	chargesFn     func(ctx context.Context, account string, from, to time.Time) ([]payments.Charge, error)
	createCalls   int
}

func (m *mockProcessor) PriceExists(ctx context.Context, priceID, account string) error {
	return m.priceExistsFn(ctx, priceID, account)
}
func (m *mockProcessor) CreateCheckoutSession(ctx context.Context, params payments.CheckoutParams) (*payments.Session, error) {
	m.createCalls++
	return m.createFn(ctx, params)
}
func (m *mockProcessor) GetCheckoutSession(ctx context.Context, id, account string) (*payments.SessionStatus, error) {
	return m.getFn(ctx, id, account)
}
func (m *mockProcessor) DeactivatePrice(ctx context.Context, priceID, account string) error {
	return m.deactivateFn(ctx, priceID, account)
}
func (m *mockProcessor) ArchiveProduct(ctx context.Context, productID, account string) error {
	return m.archiveFn(ctx, productID, account)
}
func (m *mockProcessor) ListCharges(ctx context.Context, account string, from, to time.Time) ([]payments.Charge, error) {
	return m.chargesFn(ctx, account, from, to)
}

type mockGroups struct {
	getFn func(ctx context.Context, id uuid.UUID) (*models.Group, error)
}

func (m *mockGroups) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return m.getFn(ctx, id)
}

// mockCheckoutRepo keeps one record when record is set and applies updates to it only while
// it is pending, like the Mongo repo.
type mockCheckoutRepo struct {
	saved   []*models.CheckoutSession
	getFn   func(ctx context.Context, id string) (*models.CheckoutSession, error)
	record  *models.CheckoutSession
	updates []models.CheckoutResult
}

func (m *mockCheckoutRepo) SaveCheckoutSession(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error) {
	m.saved = append(m.saved, session)
	session.Status = models.CheckoutPending
	return session, nil
}
func (m *mockCheckoutRepo) GetCheckoutSession(ctx context.Context, id string) (*models.CheckoutSession, error) {
	if m.record != nil {
		stored := *m.record
		return &stored, nil
	}
	return m.getFn(ctx, id)
}
func (m *mockCheckoutRepo) UpdateCheckoutStatus(ctx context.Context, id string, result models.CheckoutResult) (*models.CheckoutSession, error) {
	m.updates = append(m.updates, result)
	if m.record == nil {
		return &models.CheckoutSession{ProcessorSessionID: id, Status: result.Status}, nil
	}
	if m.record.Status == models.CheckoutPending {
		m.record.Status = result.Status
		m.record.PaymentIntentID = result.PaymentIntentID
		m.record.Amount = result.Amount
		m.record.Currency = result.Currency
	}
	stored := *m.record
	return &stored, nil
}

// --- albums ---

type mockAlbumsRepo struct {
	album   *models.Album
	deleted []uuid.UUID
}

func (m *mockAlbumsRepo) CreateAlbum(ctx context.Context, album *models.Album, accessToken string) (*models.Album, error) {
	return album, nil
}
func (m *mockAlbumsRepo) GetAlbum(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	return m.album, nil
}
func (m *mockAlbumsRepo) DeleteAlbum(ctx context.Context, id uuid.UUID, accessToken string) error {
	m.deleted = append(m.deleted, id)
	return nil
}
