package generation

import (
	"context"
	"strings"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/config"
)

// Route ผูก model prefix + kind กับ client ที่รับผิดชอบ
type Route struct {
	Prefix string
	Kind   ports.JobKind
	Client ports.TaskClientPort
}

// Dispatcher implements TaskClientPort โดยเลือก vendor จาก model prefix
// route ถูกเช็คตามลำดับ prefix ที่เจาะจงกว่าต้องมาก่อน
type Dispatcher struct {
	routes []Route
}

func NewDispatcher(routes ...Route) *Dispatcher {
	return &Dispatcher{routes: routes}
}

// NewDefaultDispatcher ประกอบ vendor ทั้งหมดจาก config
func NewDefaultDispatcher(cfg config.GenerationConfig) *Dispatcher {
	aggregator := NewAggregatorClient(AggregatorConfig{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
	})
	jimeng := NewJimengClient(JimengConfig{
		AccessKey: cfg.VolcAK,
		SecretKey: cfg.VolcSK,
		Host:      cfg.VolcHost,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
	})

	return NewDispatcher(
		Route{Prefix: "jimeng", Kind: ports.JobKindImage, Client: jimeng},
		Route{Prefix: "nano-banana", Kind: ports.JobKindImage, Client: aggregator},
		Route{Prefix: "sora-image", Kind: ports.JobKindImage, Client: aggregator},
		Route{Prefix: "sora", Kind: ports.JobKindVideo, Client: aggregator},
		Route{Prefix: "veo", Kind: ports.JobKindVideo, Client: aggregator},
	)
}

func (d *Dispatcher) resolve(model string, kind ports.JobKind) (ports.TaskClientPort, error) {
	for _, r := range d.routes {
		if strings.HasPrefix(model, r.Prefix) && (r.Kind == "" || r.Kind == kind) {
			return r.Client, nil
		}
	}
	return nil, apperrors.Validation("unsupported %s model: %s", kind, model)
}

// Supports ใช้เช็ค model ก่อนสร้าง rows
func (d *Dispatcher) Supports(model string, kind ports.JobKind) bool {
	_, err := d.resolve(model, kind)
	return err == nil
}

func (d *Dispatcher) Submit(ctx context.Context, spec ports.JobSpec) (ports.TaskHandle, error) {
	client, err := d.resolve(spec.Model, spec.Kind)
	if err != nil {
		return ports.TaskHandle{}, err
	}
	return client.Submit(ctx, spec)
}

func (d *Dispatcher) Poll(ctx context.Context, handle ports.TaskHandle) (ports.TaskStatus, error) {
	client, err := d.resolve(handle.Model, handle.Kind)
	if err != nil {
		return ports.TaskStatus{}, err
	}
	return client.Poll(ctx, handle)
}
