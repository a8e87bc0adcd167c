package llm

import (
	"context"
	"strings"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/retry"
)

// Provider text generator ที่บอกได้ว่าตั้งค่าไว้หรือยัง
type Provider interface {
	ports.TextGeneratorPort
	Configured() bool
}

// Route ผูก model prefix กับ provider และ model ที่จะแสดงในรายการ
type Route struct {
	Prefix string
	Model  ports.TextModel
	Client Provider
}

// Router implements TextGeneratorPort โดยเลือก provider จาก prefix ของ model
type Router struct {
	routes       []Route
	defaultModel string
}

func NewRouter(defaultModel string, routes ...Route) *Router {
	return &Router{routes: routes, defaultModel: defaultModel}
}

func (r *Router) Generate(ctx context.Context, req ports.TextRequest) (string, error) {
	if req.Model == "" {
		req.Model = r.defaultModel
	}
	for _, route := range r.routes {
		if strings.HasPrefix(req.Model, route.Prefix) {
			return route.Client.Generate(ctx, req)
		}
	}
	return "", retry.Permanent(apperrors.Validation("unsupported script model: %s", req.Model))
}

// AvailableModels เฉพาะ provider ที่มี key
func (r *Router) AvailableModels() []ports.TextModel {
	models := make([]ports.TextModel, 0, len(r.routes))
	for _, route := range r.routes {
		if route.Client.Configured() {
			models = append(models, route.Model)
		}
	}
	return models
}

// DefaultModel model ที่ใช้เมื่อ request ไม่ระบุ
func (r *Router) DefaultModel() string {
	return r.defaultModel
}
