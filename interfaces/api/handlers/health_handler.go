package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"storyforge/pkg/logger"
	"storyforge/pkg/utils"
)

// HealthProbe ตรวจ dependency หนึ่งตัว (database, redis, nats)
type HealthProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	storageType string
	basePath    string
	probes      []HealthProbe
}

func NewHealthHandler(storageType, basePath string, probes ...HealthProbe) *HealthHandler {
	return &HealthHandler{
		storageType: storageType,
		basePath:    basePath,
		probes:      probes,
	}
}

type diskStatus struct {
	Total       string  `json:"total"`
	Free        string  `json:"free"`
	UsedPercent float64 `json:"usedPercent"`
}

// Health GET /health
// dependency ใดล่ม = 503 พร้อมรายละเอียด
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	healthy := true
	checks := make(map[string]string, len(h.probes))
	for _, p := range h.probes {
		if err := p.Check(ctx); err != nil {
			logger.WarnContext(ctx, "Health probe failed", "probe", p.Name, "error", err)
			checks[p.Name] = err.Error()
			healthy = false
			continue
		}
		checks[p.Name] = "ok"
	}

	body := fiber.Map{
		"status":  "ok",
		"storage": h.storageType,
		"checks":  checks,
	}

	if h.storageType == "local" && h.basePath != "" {
		if info, err := utils.GetDiskInfo(h.basePath); err == nil {
			body["disk"] = diskStatus{
				Total:       utils.FormatBytes(info.Total),
				Free:        utils.FormatBytes(info.Free),
				UsedPercent: info.UsedPercent,
			}
		} else {
			logger.WarnContext(ctx, "Disk info unavailable", "path", h.basePath, "error", err)
		}
	}

	if !healthy {
		body["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return utils.SuccessResponse(c, body)
}
