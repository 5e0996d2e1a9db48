package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"intellius-chat-be/internal/config"
	"intellius-chat-be/internal/constant"
	"intellius-chat-be/internal/controller"
	"intellius-chat-be/internal/handler"
	"intellius-chat-be/internal/pkg/credential"
	"intellius-chat-be/internal/pkg/logger"
	"intellius-chat-be/internal/pkg/mailer"
	"intellius-chat-be/internal/pkg/serverutils"
	"intellius-chat-be/internal/repository/unitofwork"
	"intellius-chat-be/internal/service"
	"intellius-chat-be/internal/websocket"
	"intellius-chat-be/pkg/counselor"
	"intellius-chat-be/pkg/events"
	pktNats "intellius-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const devJWTSecret = "intellius-dev-secret"

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	UserController   controller.IUserController
	ChatController   controller.IChatController
	SystemController controller.ISystemController

	AuthMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditSubscriber *pktNats.Subscriber

	// WebSockets
	ChatStreamHandler *handler.ChatStreamHandler
	WebSocketHub      *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// Options carries collaborators that are built before the container, or replaced
// in tests.
type Options struct {
	Logger  logger.ILogger
	Secrets controller.SecretLoader
	Random  counselor.Random
}

func NewContainer(db *gorm.DB, cfg *config.Config, opts Options) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	sysLogger := opts.Logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}
	c.Logger = sysLogger
	uowFactory := unitofwork.NewRepositoryFactory(db)

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		log.Println("[WARN] JWT_SECRET not set, using development secret")
		jwtSecret = devJWTSecret
	}
	creds := credential.NewService(jwtSecret, cfg.Auth.TokenTTL)

	responderOpts := []counselor.Option{counselor.WithDelayRange(cfg.Chat.MinReplyDelay, cfg.Chat.MaxReplyDelay)}
	if opts.Random != nil {
		responderOpts = append(responderOpts, counselor.WithRandom(opts.Random))
	}
	responder, err := counselor.NewResponder(constant.CounselorReplies, responderOpts...)
	if err != nil {
		return nil, fmt.Errorf("counselor: %w", err)
	}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure, all optional
	var auditPublisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			auditPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.AuditSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	rdb := newRedis(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := sysLogger
	if opts.Logger == nil {
		wsLogger = logger.NewIsolatedLogger("logs/realtime.log")
	}
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, constant.TopicChatMessageCreated)
	c.ConsumerService = service.NewConsumerService(pubSub, constant.TopicChatMessageCreated, c.WebSocketHub, wsLogger)

	userService := service.NewUserService(uowFactory)
	authService := service.NewAuthService(uowFactory, creds, emailService, auditPublisher, sysLogger)
	chatService := service.NewChatService(uowFactory, responder, publisherService, auditPublisher, sysLogger)

	c.AuthMiddleware = serverutils.AuthMiddleware(creds, userService, sysLogger)
	c.ChatStreamHandler = handler.NewChatStreamHandler(creds, userService, c.WebSocketHub, wsLogger)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.UserController = controller.NewUserController(userService)
	c.ChatController = controller.NewChatController(chatService)
	c.SystemController = controller.NewSystemController(controller.SystemInfo{
		Name:        cfg.App.Name,
		Version:     cfg.App.Version,
		StaticDir:   cfg.App.StaticDir,
		SecretName:  cfg.Secrets.Name,
		ExposeDebug: !cfg.IsProduction(),
	}, opts.Secrets, sysLogger)

	return c, nil
}

// newRedis returns nil when no URL is configured or the server is unreachable;
// the hub then delivers to local sockets only.
func newRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Realtime delivery stays local", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Close releases broker connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
