package wire

import (
	"fmt"
	log "log/slog"

	"GymChat/internal/api"
	"GymChat/internal/api/config"
	"GymChat/internal/api/handler"
	"GymChat/internal/job"
	"GymChat/internal/pkg/consts"
	"GymChat/internal/pkg/cron"
	"GymChat/internal/pkg/kafka"
	"GymChat/internal/pkg/mongo"
	"GymChat/internal/pkg/security"
	"GymChat/internal/repository"
	"GymChat/internal/service"

	"github.com/gin-gonic/gin"
	mongodb "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router          *gin.Engine
	DB              *gorm.DB
	Hub             *service.Hub
	MessageService  service.MessageService
	MessageProducer kafka.MessageProducer
	CronMgr         *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongodb.Database, cfg *config.Config) (*ApplicationContainer, error) {
	memberRepo := repository.NewMemberRepo(db)
	staffRepo := repository.NewStaffMemberRepo(db)
	messageRepo := mongo.NewMessageRepo(mongoDB)

	broker, err := newBroker(cfg.Relay)
	if err != nil {
		return nil, err
	}
	hub := service.NewHub(broker)

	producer, err := kafka.NewMessageProducer(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("init kafka producer: %w", err)
	}

	mediaService := service.NewMediaService(cfg.Upload, service.MinioStore{}, service.RedisPendingStore{})
	messageService := service.NewMessageService(messageRepo, hub, mediaService, producer, cfg.Relay.SaveWorkers)
	directoryService := service.NewDirectoryService(memberRepo, staffRepo)

	var signer *security.Signer
	if cfg.Auth.Enabled {
		signer = security.NewSigner(cfg.Auth)
	}

	handlers := &api.HandlersGroup{
		WsHandler:        handler.NewWsHandler(hub, messageService, signer, cfg.Relay),
		MessageHandler:   handler.NewMessageHandler(messageService),
		MediaHandler:     handler.NewMediaHandler(mediaService, cfg.Upload.MaxSize),
		DirectoryHandler: handler.NewDirectoryHandler(directoryService),
	}

	cleanupJob := job.NewAttachmentCleanupJob(mediaService, job.RedisLocker{}, cfg.Upload.PendingTTL)

	return &ApplicationContainer{
		Router:          api.SetupRouter(handlers, cfg.Server.AllowOrigins...),
		DB:              db,
		Hub:             hub,
		MessageService:  messageService,
		MessageProducer: producer,
		CronMgr:         cron.NewCronManager(cfg.Upload.CleanupPattern, cleanupJob),
	}, nil
}

func newBroker(cfg config.RelayConfig) (service.Broker, error) {
	switch cfg.Broker {
	case consts.BrokerRedis, "":
		return service.NewRedisBroker(), nil
	case consts.BrokerLocal:
		log.Warn("Using in-process room broker, only valid for a single relay instance")
		return service.NewLocalBroker(cfg.SendBuffer), nil
	default:
		return nil, fmt.Errorf("unknown relay broker %q", cfg.Broker)
	}
}
