package di

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storyforge/application/serviceimpl"
	"storyforge/domain/ports"
	"storyforge/domain/repositories"
	"storyforge/domain/services"
	"storyforge/infrastructure/generation"
	"storyforge/infrastructure/llm"
	"storyforge/infrastructure/memory"
	"storyforge/infrastructure/messaging"
	natspkg "storyforge/infrastructure/nats"
	"storyforge/infrastructure/postgres"
	redispkg "storyforge/infrastructure/redis"
	"storyforge/infrastructure/storage"
	"storyforge/infrastructure/websocket"
	"storyforge/infrastructure/worker"
	"storyforge/interfaces/api/handlers"
	"storyforge/pkg/config"
	"storyforge/pkg/logger"
	"storyforge/pkg/retry"
	"storyforge/pkg/scheduler"
)

const (
	defaultScriptModel = "deepseek-chat"
	defaultGeminiModel = "gemini-1.5-flash"
	jimengPollAttempts = 30
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB             *gorm.DB
	RedisClient    *redispkg.Client // optional, ไม่มี = epoch/lock อยู่ใน process
	NATSClient     *natspkg.Client  // optional, status events
	Storage        ports.StoragePort
	Blob           *storage.BlobService
	Guard          ports.GenerationGuardPort
	StatusHub      *websocket.StatusHub
	Publisher      ports.StatusPublisherPort
	Tasks          *generation.Dispatcher
	TextRouter     *llm.Router
	Gemini         *llm.GeminiClient
	Pool           *worker.Pool
	EventScheduler scheduler.EventScheduler

	// Repositories
	ScriptRepository       repositories.ScriptRepository
	KeyframeRepository     repositories.KeyframeRepository
	VideoSegmentRepository repositories.VideoSegmentRepository
	Transactor             repositories.Transactor

	// Services
	ModelCatalog    services.ModelCatalogService
	ReaperService   *serviceimpl.StaleReaperService
	ScriptService   services.ScriptService
	KeyframeService services.KeyframeService
	VideoService    services.VideoService
	ExportService   services.ExportService
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	c.initRepositories()

	if err := c.initGeneration(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	return c.initScheduler()
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
	)
	return nil
}

func (c *Container) initInfrastructure() error {
	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Host:     c.Config.Database.Host,
		Port:     c.Config.Database.Port,
		User:     c.Config.Database.User,
		Password: c.Config.Database.Password,
		DBName:   c.Config.Database.DBName,
		SSLMode:  c.Config.Database.SSLMode,
		LogLevel: c.Config.Log.Level,
	})
	if err != nil {
		return err
	}
	c.DB = db
	logger.Info("Database connected", "host", c.Config.Database.Host, "db", c.Config.Database.DBName)

	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Database migrated")

	c.initGuard()
	c.initStatusEvents()

	return c.initStorage()
}

// initGuard Redis ถ้าเปิดและต่อได้, ไม่งั้นใช้ in-memory (รันได้ instance เดียว)
func (c *Container) initGuard() {
	if c.Config.Redis.Enabled {
		redisClient, err := redispkg.NewClient(&c.Config.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory generation guard", "error", err)
		} else {
			c.RedisClient = redisClient
			c.Guard = redispkg.NewGenerationGuard(redisClient)
			logger.Info("Generation guard initialized", "backend", "redis")
			return
		}
	}

	c.Guard = memory.NewGenerationGuard()
	logger.Info("Generation guard initialized", "backend", "memory")
}

// initStatusEvents hub สำหรับ websocket เสมอ, NATS เพิ่มเมื่อเปิดไว้
func (c *Container) initStatusEvents() {
	c.StatusHub = websocket.NewStatusHub()
	publishers := []ports.StatusPublisherPort{c.StatusHub}

	if c.Config.NATS.Enabled {
		natsClient, err := natspkg.NewClient(natspkg.ClientConfig{
			URL:  c.Config.NATS.URL,
			Name: c.Config.App.Name,
		})
		if err != nil {
			logger.Warn("NATS client initialization failed, status events stay in-process", "error", err)
		} else {
			c.NATSClient = natsClient
			publishers = append(publishers, messaging.NewNATSStatusPublisher(natsClient.Conn()))
		}
	}

	c.Publisher = messaging.NewFanoutPublisher(publishers...)
}

// initStorage สร้าง storage adapter ตาม STORAGE_TYPE
func (c *Container) initStorage() error {
	cfg := c.Config.Storage

	var (
		store ports.StoragePort
		err   error
	)
	switch cfg.Type {
	case "s3":
		store, err = storage.NewS3Storage(storage.S3StorageConfig{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			UseSSL:    cfg.S3.UseSSL,
			Region:    cfg.S3.Region,
			PublicURL: cfg.S3.PublicURL,
		})
	case "r2":
		store, err = storage.NewR2Storage(storage.R2StorageConfig{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			PublicURL: cfg.S3.PublicURL,
		})
	case "gcs":
		store, err = storage.NewGCSStorage(context.Background(), storage.GCSStorageConfig{
			Bucket:          cfg.GCS.Bucket,
			CredentialsFile: cfg.GCS.CredentialsFile,
			PublicURL:       cfg.GCS.PublicURL,
		})
	case "local", "":
		store, err = storage.NewLocalStorage(storage.LocalStorageConfig{
			BasePath:       cfg.BasePath,
			BaseURL:        cfg.BaseURL,
			MinFreePercent: cfg.MinFreeDisk,
		})
	default:
		return fmt.Errorf("unknown STORAGE_TYPE: %s", cfg.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Type, err)
	}

	c.Storage = store
	c.Blob = storage.NewBlobService(store, cfg.FetchTimeout)
	logger.Info("Storage initialized", "provider", store.GetProviderName())
	return nil
}

func (c *Container) initRepositories() {
	c.ScriptRepository = postgres.NewScriptRepository(c.DB)
	c.KeyframeRepository = postgres.NewKeyframeRepository(c.DB)
	c.VideoSegmentRepository = postgres.NewVideoSegmentRepository(c.DB)
	c.Transactor = postgres.NewTransactor(c.DB)
	logger.Info("Repositories initialized")
}

// initGeneration vendor clients สำหรับ image/video และ LLM providers
func (c *Container) initGeneration() error {
	c.Tasks = generation.NewDefaultDispatcher(c.Config.Generation)

	gemini, err := llm.NewGeminiClient(context.Background(), c.Config.LLM.GeminiKey, defaultGeminiModel)
	if err != nil {
		return err
	}
	c.Gemini = gemini

	deepseek := llm.NewOpenAICompatClient(llm.OpenAICompatConfig{
		Provider:     "deepseek",
		APIKey:       c.Config.LLM.DeepSeekKey,
		BaseURL:      c.Config.LLM.DeepSeekBaseURL,
		DefaultModel: defaultScriptModel,
		Timeout:      c.Config.Generation.Timeout,
	})
	qwen := llm.NewOpenAICompatClient(llm.OpenAICompatConfig{
		Provider:     "qwen",
		APIKey:       c.Config.LLM.QwenKey,
		BaseURL:      c.Config.LLM.QwenBaseURL,
		DefaultModel: "qwen-plus",
		Timeout:      c.Config.Generation.Timeout,
	})

	c.TextRouter = llm.NewRouter(defaultScriptModel,
		llm.Route{Prefix: "deepseek", Model: ports.TextModel{ID: "deepseek-chat", Name: "DeepSeek Chat"}, Client: deepseek},
		llm.Route{Prefix: "qwen", Model: ports.TextModel{ID: "qwen-plus", Name: "通义千问 Plus"}, Client: qwen},
		llm.Route{Prefix: "gemini", Model: ports.TextModel{ID: defaultGeminiModel, Name: "Gemini 1.5 Flash"}, Client: gemini},
	)

	logger.Info("Generation clients initialized",
		"aggregator", c.Config.Generation.APIKey != "",
		"jimeng", c.Config.Generation.VolcAK != "",
		"script_models", len(c.TextRouter.AvailableModels()),
	)
	return nil
}

func (c *Container) pollPolicies() generation.Policies {
	g := c.Config.Generation
	return generation.Policies{
		Image:  generation.PollPolicy{Interval: g.ImagePollInterval, MaxAttempts: g.PollAttempts},
		Video:  generation.PollPolicy{Interval: g.VideoPollInterval, MaxAttempts: g.PollAttempts},
		Jimeng: generation.PollPolicy{Interval: g.ImagePollInterval, MaxAttempts: jimengPollAttempts},
	}
}

func (c *Container) initServices() error {
	catalog, err := serviceimpl.NewModelCatalog(c.Config.App.ModelsFile, c.TextRouter)
	if err != nil {
		return err
	}
	c.ModelCatalog = catalog

	pool, err := worker.NewPool(c.Config.Pipeline.WorkerPoolSize)
	if err != nil {
		return err
	}
	c.Pool = pool

	c.EventScheduler = scheduler.NewEventScheduler()
	c.ReaperService = serviceimpl.NewStaleReaperService(
		serviceimpl.StaleReaperConfig{
			StaleAfter: c.Config.Pipeline.StaleAfter,
			SweepCron:  c.Config.Pipeline.ReaperSweepCron,
		},
		c.KeyframeRepository,
		c.VideoSegmentRepository,
		c.EventScheduler,
	)

	deps := serviceimpl.PipelineDeps{
		Scripts:   c.ScriptRepository,
		Keyframes: c.KeyframeRepository,
		Segments:  c.VideoSegmentRepository,
		Tx:        c.Transactor,
		Tasks:     c.Tasks,
		Blob:      c.Blob,
		Guard:     c.Guard,
		Publisher: c.Publisher,
		Pool:      c.Pool,
		Reaper:    c.ReaperService,
		Catalog:   c.ModelCatalog,
		Policies:  c.pollPolicies(),
	}
	c.KeyframeService = serviceimpl.NewKeyframeService(deps)
	c.VideoService = serviceimpl.NewVideoService(deps)
	c.ExportService = serviceimpl.NewExportService(c.VideoSegmentRepository, c.Blob, c.Blob, c.Config.Pipeline.ExportExpiresIn)

	c.ScriptService = serviceimpl.NewScriptService(
		c.ScriptRepository,
		c.KeyframeRepository,
		c.VideoSegmentRepository,
		c.Transactor,
		c.Guard,
		c.TextRouter,
		c.ModelCatalog,
		retry.Policy{
			MaxAttempts: c.Config.LLM.MaxAttempts,
			MinWait:     c.Config.LLM.MinWait,
			MaxWait:     c.Config.LLM.MaxWait,
			Multiplier:  c.Config.LLM.Multiplier,
		},
	)

	logger.Info("Services initialized", "workers", c.Config.Pipeline.WorkerPoolSize)
	return nil
}

// initScheduler sweep ตาม cron เป็นตัวเสริม lazy reaper ตอน list
func (c *Container) initScheduler() error {
	if c.Config.Pipeline.ReaperSweepCron == "" {
		return nil
	}
	if err := scheduler.ValidateCronExpression(c.Config.Pipeline.ReaperSweepCron); err != nil {
		return fmt.Errorf("REAPER_SWEEP_CRON: %w", err)
	}
	if err := c.ReaperService.RegisterSweep(); err != nil {
		return err
	}

	c.EventScheduler.Start()
	return nil
}

// Cleanup ปิดตามลำดับ: หยุดรับงานใหม่ → รอ unit ที่ค้าง → ปิด connection
func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
	}

	// unit ที่ถูก cancel เขียน failed ด้วย context ใหม่ จึงต้องรอก่อนปิด DB
	if c.Pool != nil {
		c.Pool.Release()
		logger.Info("Worker pool released")
	}

	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			logger.Warn("Failed to close Gemini client", "error", err)
		}
	}

	if closer, ok := c.Storage.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close storage client", "error", err)
		}
	}

	if c.NATSClient != nil {
		c.NATSClient.Close()
		logger.Info("NATS connection closed")
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database connection", "error", err)
			} else {
				logger.Info("Database connection closed")
			}
		}
	}

	logger.Info("Cleanup completed")
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// healthProbes dependency ที่ /health ตรวจ
func (c *Container) healthProbes() []handlers.HealthProbe {
	probes := []handlers.HealthProbe{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}

	if c.RedisClient != nil {
		probes = append(probes, handlers.HealthProbe{Name: "redis", Check: c.RedisClient.Ping})
	}
	if c.NATSClient != nil {
		probes = append(probes, handlers.HealthProbe{
			Name: "nats",
			Check: func(context.Context) error {
				if !c.NATSClient.IsConnected() {
					return fmt.Errorf("not connected")
				}
				return nil
			},
		})
	}
	return probes
}

func (c *Container) GetHandlerServices() *handlers.Services {
	basePath := ""
	if c.Config.Storage.Type == "local" || c.Config.Storage.Type == "" {
		basePath = c.Config.Storage.BasePath
	}

	return &handlers.Services{
		ScriptService:   c.ScriptService,
		KeyframeService: c.KeyframeService,
		VideoService:    c.VideoService,
		ExportService:   c.ExportService,
		ModelCatalog:    c.ModelCatalog,
		StatusHub:       c.StatusHub,
		Probes:          c.healthProbes(),
		StorageType:     c.Storage.GetProviderName(),
		StorageBasePath: basePath,
		MaxUploadSize:   c.Config.Storage.MaxUploadSize,
	}
}
