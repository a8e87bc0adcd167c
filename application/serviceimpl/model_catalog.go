package serviceimpl

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"storyforge/domain/dto"
	"storyforge/domain/ports"
	"storyforge/domain/services"
	"storyforge/pkg/logger"
)

// ค่า default ของ regenerate เมื่อทั้ง request และ row ไม่มีค่า
const (
	DefaultImageModel       = "jimeng_t2i_v40"
	DefaultImageAspectRatio = "auto"
	DefaultImageQuality     = "720p"

	DefaultVideoModel       = "veo3.1-fast"
	DefaultVideoAspectRatio = "16:9"
	DefaultVideoDuration    = 6.0
)

var nanoBananaRatios = []string{"auto", "1:1", "16:9", "9:16", "4:3", "3:4", "3:2", "2:3", "5:4", "4:5", "21:9"}

var builtinImageModels = []dto.ImageModel{
	{
		ID:                     "jimeng_t2i_v40",
		Name:                   "即梦 4.0",
		Description:            "火山引擎即梦4.0，支持图生图，高质量图片生成",
		SupportsReferenceImage: true,
		AspectRatios:           []string{"1:1", "16:9", "9:16", "4:3", "3:4", "3:2", "2:3", "5:4", "4:5", "21:9"},
		Qualities:              []string{"1K", "2K", "4K"},
	},
	{
		ID:                     "nano-banana-fast",
		Name:                   "Nano Banana Fast",
		Description:            "快速版本",
		SupportsReferenceImage: true,
		AspectRatios:           nanoBananaRatios,
		Qualities:              []string{},
	},
	{
		ID:                     "nano-banana",
		Name:                   "Nano Banana",
		Description:            "标准版本",
		SupportsReferenceImage: true,
		AspectRatios:           nanoBananaRatios,
		Qualities:              []string{},
	},
	{
		ID:           "sora-image",
		Name:         "Sora Image",
		Description:  "图片生成模型",
		AspectRatios: []string{"auto", "1:1", "3:2", "2:3"},
		Qualities:    []string{},
	},
}

var veoRatios = []string{"16:9", "9:16"}

var builtinVideoModels = []dto.VideoModel{
	{ID: "sora-2", Name: "Sora 2", Description: "支持单图参考，生成高质量视频", AspectRatios: veoRatios, Durations: []int{10, 15}},
	{ID: "veo3-fast", Name: "Veo 3 Fast", Description: "快速生成，支持首尾帧控制", SupportsFirstLastFrame: true, AspectRatios: veoRatios, Durations: []int{6, 8}},
	{ID: "veo3-pro", Name: "Veo 3 Pro", Description: "专业级质量，支持首尾帧控制", SupportsFirstLastFrame: true, AspectRatios: veoRatios, Durations: []int{6, 8}},
	{ID: "veo3.1-fast", Name: "Veo 3.1 Fast", Description: "最新版本快速模式，支持首尾帧控制", SupportsFirstLastFrame: true, AspectRatios: veoRatios, Durations: []int{6, 8}},
	{ID: "veo3.1-pro", Name: "Veo 3.1 Pro", Description: "最新版本专业模式，支持首尾帧控制", SupportsFirstLastFrame: true, AspectRatios: veoRatios, Durations: []int{6, 8}},
}

var builtinStyles = []dto.ScriptStyle{
	{
		ID:          "storytelling",
		Name:        "故事化叙事风格",
		Description: "通过一个具体的故事或场景引入理论或知识的科普。脚本结构：开端（问题）：展示一个普通人或企业面临的困境。发展（引入理论知识）：科学理论如何介入，解决问题。高潮（价值升华）：展示问题解决后的美好结果。结尾（呼吁）：点明主题，如'xxx生活习惯，让你更年轻'。",
	},
	{
		ID:          "visual_animation",
		Name:        "可视化动画/图形动画风格",
		Description: "特点：用生动的动画、MG（Motion Graphics）来解释抽象的医学概念（如神经网络）。脚本结构：提出概念：'什么是抗炎？'比喻解释：用动画过程，类比细胞抵抗炎症的过程。步骤拆解：分解为几个可视化步骤。总结应用：快速展示该技术在日常生活中的应用。",
	},
}

// TextModelLister แหล่งของ script models (LLM router)
type TextModelLister interface {
	AvailableModels() []ports.TextModel
}

// ModelCatalog รายการ model ที่ใช้ได้ ค่า built-in ถูกแทนทีละหมวดจาก MODELS_FILE
type ModelCatalog struct {
	imageModels  []dto.ImageModel
	videoModels  []dto.VideoModel
	scriptModels []ports.TextModel // ว่าง = ถาม lister
	styles       []dto.ScriptStyle
	lister       TextModelLister
}

// NewModelCatalog path ว่าง = ใช้ค่า built-in ทั้งหมด
func NewModelCatalog(path string, lister TextModelLister) (services.ModelCatalogService, error) {
	c := &ModelCatalog{
		imageModels: builtinImageModels,
		videoModels: builtinVideoModels,
		styles:      builtinStyles,
		lister:      lister,
	}
	if path == "" {
		return c, nil
	}

	var file dto.ModelCatalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load models file %s: %w", path, err)
	}
	if len(file.ImageModels) > 0 {
		c.imageModels = file.ImageModels
	}
	if len(file.VideoModels) > 0 {
		c.videoModels = file.VideoModels
	}
	if len(file.ScriptModels) > 0 {
		c.scriptModels = file.ScriptModels
	}
	if len(file.Styles) > 0 {
		c.styles = file.Styles
	}

	logger.Info("Model catalog loaded",
		"path", path,
		"image_models", len(c.imageModels),
		"video_models", len(c.videoModels),
		"styles", len(c.styles),
	)
	return c, nil
}

func (c *ModelCatalog) ImageModels() []dto.ImageModel { return c.imageModels }
func (c *ModelCatalog) VideoModels() []dto.VideoModel { return c.videoModels }
func (c *ModelCatalog) Styles() []dto.ScriptStyle     { return c.styles }

func (c *ModelCatalog) ScriptModels() []ports.TextModel {
	if len(c.scriptModels) > 0 {
		return c.scriptModels
	}
	if c.lister == nil {
		return []ports.TextModel{}
	}
	return c.lister.AvailableModels()
}

func (c *ModelCatalog) FindImageModel(id string) (dto.ImageModel, bool) {
	for _, m := range c.imageModels {
		if m.ID == id {
			return m, true
		}
	}
	return dto.ImageModel{}, false
}

func (c *ModelCatalog) FindVideoModel(id string) (dto.VideoModel, bool) {
	for _, m := range c.videoModels {
		if m.ID == id {
			return m, true
		}
	}
	return dto.VideoModel{}, false
}

func (c *ModelCatalog) FindStyle(id string) (dto.ScriptStyle, bool) {
	for _, s := range c.styles {
		if s.ID == id {
			return s, true
		}
	}
	return dto.ScriptStyle{}, false
}
