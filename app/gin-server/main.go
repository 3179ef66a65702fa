package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/config"
	"github.com/hireloop/hireloop/internal/api/handlers"
	"github.com/hireloop/hireloop/internal/api/middleware"
	"github.com/hireloop/hireloop/internal/api/routes"
	"github.com/hireloop/hireloop/internal/cache"
	"github.com/hireloop/hireloop/internal/events"
	"github.com/hireloop/hireloop/internal/logger"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/notify"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/storage"
	"github.com/hireloop/hireloop/internal/telemetry"
	"github.com/hireloop/hireloop/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	app := config.LoadApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.OTelCollectorURL != "" {
		shutdown, err := telemetry.InitTracer(ctx, "hireloop", app.OTelCollectorURL)
		if err != nil {
			log.WithError(err).Warn("tracing disabled")
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	if err := config.EnsureMongoIndexes(app.MongoDB); err != nil {
		log.WithError(err).Fatal("MongoDB index error")
	}
	log.Info("MongoDB connected")

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	if err := config.MigratePostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL migrate error")
	}
	log.Info("PostgreSQL connected")

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init error")
	}
	log.Info("Redis connected")

	if err := config.InitNATS(); err != nil {
		log.WithError(err).Warn("NATS unavailable, activity will not be published")
	}

	mdb := config.MongoClient.Database(app.MongoDB)
	rdb := config.RedisClient

	candidateRepo := mongorepo.NewCandidateRepo(mdb)
	jobRepo := mongorepo.NewJobRepo(mdb)
	interviewRepo := mongorepo.NewInterviewRepo(mdb)
	offerRepo := mongorepo.NewOfferRepo(mdb)
	approvalRepo := mongorepo.NewApprovalRepo(mdb)
	outboxRepo := mongorepo.NewOutboxRepo(mdb)
	commentRepo := mongorepo.NewCommentRepo(mdb)
	reactionRepo := mongorepo.NewReactionRepo(mdb)
	taskRepo := mongorepo.NewTaskRepo(mdb)

	memberRepo := pgrepo.NewTeamMemberRepo(config.PostgresDB)
	activityRepo := pgrepo.NewActivityRepo(config.PostgresDB)
	notificationRepo := pgrepo.NewNotificationRepo(config.PostgresDB)

	dispatcher := &notify.Dispatcher{
		Store:     notificationRepo,
		Deliverer: deliverers(app, log),
		Logger:    log,
	}

	// redis: notifications go through the stream and the worker pool stores them.
	// memory: stored inline by the dispatcher, handy for single-node dev.
	var sink notify.Sink = dispatcher
	if app.NotifySink != "memory" {
		sink = notify.NewRedisStreamSink(rdb, notify.DefaultStream)
		pool := &workers.NotificationWorkerPool{
			Redis:      rdb,
			Dispatcher: dispatcher,
			NumWorkers: app.NotifyWorkers,
			Logger:     log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("notification workers")
		}
	}

	publishers := []notify.Publisher{notify.NewRedisBroadcaster(rdb)}
	if config.NATSConn != nil {
		publishers = append(publishers, events.NewActivityPublisher(config.NATSConn))
	}

	activitySvc := services.NewActivityService(services.ActivityDeps{
		Activity:   activityRepo,
		Candidates: candidateRepo,
		Jobs:       jobRepo,
		Interviews: interviewRepo,
		Offers:     offerRepo,
		Tasks:      taskRepo,
		Members:    memberRepo,
		Sink:       sink,
		Publishers: publishers,
		Logger:     log,
	})
	teamSvc := services.NewTeamService(memberRepo, activitySvc, log)
	jobSvc := services.NewJobService(jobRepo, memberRepo, activitySvc, log)
	candidateSvc := services.NewCandidateService(candidateRepo, jobRepo, interviewRepo, offerRepo, commentRepo, activitySvc, log)
	interviewSvc := services.NewInterviewService(interviewRepo, candidateRepo, activitySvc, log)
	offerSvc := services.NewOfferService(services.OfferDeps{
		Offers:            offerRepo,
		Approvals:         approvalRepo,
		Outbox:            outboxRepo,
		Candidates:        candidateSvc,
		Jobs:              jobRepo,
		Activity:          activitySvc,
		RequiredApprovals: app.RequiredApprovals,
		Logger:            log,
	})
	commentSvc := services.NewCommentService(services.CommentDeps{
		Comments:   commentRepo,
		Reactions:  reactionRepo,
		Candidates: candidateRepo,
		Jobs:       jobRepo,
		Interviews: interviewRepo,
		Members:    memberRepo,
		Activity:   activitySvc,
		Logger:     log,
	})
	taskSvc := services.NewTaskService(taskRepo, memberRepo, activitySvc, log)
	notificationSvc := services.NewNotificationService(notificationRepo)
	analyticsSvc := services.NewAnalyticsService(candidateRepo, jobRepo, interviewRepo, offerRepo,
		cache.NewRedisCache(rdb, "analytics:"), app.AnalyticsCacheTTL)

	var (
		uploader storage.Uploader
		signer   storage.Signer
	)
	if app.GCSBucket != "" {
		gcsStore, err := storage.NewGCSStore(ctx, app.GCSBucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init error")
		}
		defer gcsStore.Close()
		uploader, signer = gcsStore, gcsStore
	} else {
		log.Warn("GCS_BUCKET not set, file endpoints are unavailable")
	}
	fileSvc := services.NewFileService(uploader, signer, storage.NewHTTPFetcher(app.DownloadTimeout), candidateSvc, app.SignedURLTTL)

	outbox := &workers.OutboxWorker{
		Outbox: outboxRepo,
		Handlers: map[string]workers.OutboxHandler{
			models.OutboxOfferSent:     offerSvc.ApplyEvent,
			models.OutboxOfferAccepted: offerSvc.ApplyEvent,
		},
		Logger:   log,
		Interval: app.OutboxInterval,
		Grace:    app.OutboxGrace,
	}
	if err := outbox.Start(ctx); err != nil {
		log.WithError(err).Fatal("outbox worker")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		JWT:        middleware.JWTConfigFromEnv(),
		Team:       teamSvc,
		Limiter:    middleware.NewRedisLimiter(rdb),
		RateLimit:  app.RateLimitPerMinute,
		Jobs:       handlers.NewJobHandler(jobSvc),
		Candidates: handlers.NewCandidateHandler(candidateSvc, fileSvc),
		Interviews: handlers.NewInterviewHandler(interviewSvc),
		Offers:     handlers.NewOfferHandler(offerSvc),
		Comments:   handlers.NewCommentHandler(commentSvc),
		Tasks:      handlers.NewTaskHandler(taskSvc),
		Members:    handlers.NewTeamHandler(teamSvc),
		Activity:   handlers.NewActivityHandler(activitySvc, notificationSvc),
		Analytics:  handlers.NewAnalyticsHandler(analyticsSvc),
		Files:      handlers.NewFileHandler(fileSvc),
		WS:         handlers.NewWSHandler(rdb, log, nil),
	})

	srv := &http.Server{
		Addr:              ":" + app.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", app.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if config.NATSConn != nil {
		_ = config.NATSConn.Drain()
	}
	_ = rdb.Close()
	_ = config.MongoClient.Disconnect(shutdownCtx)
}

func deliverers(app config.App, log *logrus.Logger) notify.Deliverer {
	out := notify.MultiDeliverer{notify.LogDeliverer{Logger: log}}
	if app.DiscordWebhookID != "" && app.DiscordWebhookToken != "" {
		d, err := notify.NewDiscordDeliverer(app.DiscordWebhookID, app.DiscordWebhookToken)
		if err != nil {
			log.WithError(err).Warn("discord delivery disabled")
		} else {
			out = append(out, d)
		}
	}
	return out
}
