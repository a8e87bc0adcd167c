package handlers

import (
	"storyforge/domain/ports"
	"storyforge/domain/services"
)

// Services contains all the services needed for handlers
type Services struct {
	ScriptService   services.ScriptService
	KeyframeService services.KeyframeService
	VideoService    services.VideoService
	ExportService   services.ExportService
	ModelCatalog    services.ModelCatalogService
	StatusHub       ports.StatusSubscriberPort // live status ผ่าน websocket
	Probes          []HealthProbe
	StorageType     string // "local", "s3", "r2", "gcs"
	StorageBasePath string // local storage เท่านั้น ใช้รายงานพื้นที่ disk
	MaxUploadSize   int64
}

// Handlers contains all HTTP handlers
type Handlers struct {
	ScriptHandler   *ScriptHandler
	KeyframeHandler *KeyframeHandler
	VideoHandler    *VideoHandler
	ModelHandler    *ModelHandler
	HealthHandler   *HealthHandler
	StatusHandler   *StatusHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		ScriptHandler:   NewScriptHandler(services.ScriptService),
		KeyframeHandler: NewKeyframeHandler(services.KeyframeService, services.MaxUploadSize),
		VideoHandler:    NewVideoHandler(services.VideoService, services.ExportService),
		ModelHandler:    NewModelHandler(services.ModelCatalog),
		HealthHandler:   NewHealthHandler(services.StorageType, services.StorageBasePath, services.Probes...),
		StatusHandler:   NewStatusHandler(services.StatusHub),
	}
}
