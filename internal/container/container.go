package container

import (
	"log/slog"
	"strings"
	"time"

	"github.com/go-mail/mail"
	"github.com/go-redis/redis"
	"github.com/joshua-takyi/gatherly/internal/config"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/mailer"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/payments"
	"github.com/joshua-takyi/gatherly/internal/publisher"
	"github.com/joshua-takyi/gatherly/internal/scraper"
	"github.com/joshua-takyi/gatherly/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const interestsCacheTTL = 10 * time.Minute

// Clients are the connections opened by main and handed to the container.
type Clients struct {
	Supabase  *supabase.Client
	MongoDB   *mongo.Client
	Postgres  *gorm.DB
	Redis     *redis.Client // nil disables the interests cache
	Mail      *mail.Dialer
	Publisher *publisher.Publisher // nil drops domain events
}

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	TokenValidator *helpers.TokenValidator

	UserService       *services.UserService
	GroupService      *services.GroupService
	EventService      *services.EventService
	DiscoveryService  *services.DiscoveryService
	AttendanceService *services.AttendanceService
	CheckoutService   *services.CheckoutService
	PaymentsService   *services.PaymentsService
	ReminderService   *services.ReminderService
	ScrapeService     *services.ScrapeService
	AlbumService      *services.AlbumService
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger, clients Clients, validator *helpers.TokenValidator) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(clients.Supabase, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.StorageSignedURLTTL)
	mongoRepo := models.MongodbNewRepo(clients.MongoDB)
	pg := models.PostgresNewRepo(clients.Postgres)

	var interests models.InterestsRepo = supa
	if clients.Redis != nil {
		interests = models.NewCachedInterests(supa, models.NewRedisCache(clients.Redis), interestsCacheTTL, logger)
	}

	sender := mailer.New(clients.Mail, mailer.Settings{From: cfg.MailFrom}, logger)
	processor := payments.NewStripeProcessor(cfg.StripeSecretKey)
	images := services.NewImageService(supa, supa, cfg.EventBucket)

	attendance := services.NewAttendanceService(supa, pg, sender, clients.Publisher, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		TokenValidator: validator,

		UserService:       services.NewUserService(supa, interests),
		GroupService:      services.NewGroupService(supa),
		EventService:      services.NewEventService(supa),
		DiscoveryService:  services.NewDiscoveryService(supa, pg, images, supa),
		AttendanceService: attendance,
		CheckoutService: services.NewCheckoutService(services.CheckoutDeps{
			Processor:       processor,
			PlatformAccount: cfg.StripePlatformAccount,
			FrontendURL:     strings.Split(cfg.FrontendURL, ",")[0],
			Events:          supa,
			Groups:          supa,
			Attendance:      pg,
			Checkouts:       mongoRepo,
			Joiner:          attendance,
			Logger:          logger,
		}),
		PaymentsService: services.NewPaymentsService(processor, supa),
		ReminderService: services.NewReminderService(supa, pg, sender, logger),
		ScrapeService:   services.NewScrapeService(scraper.New(cfg.ScraperTargetURL, cfg.ScraperWaitTimeout, scraper.DefaultSelectors)),
		AlbumService:    services.NewAlbumService(supa, images, cfg.AlbumBucket),
	}
}
