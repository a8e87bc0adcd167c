package dto

import "storyforge/domain/ports"

// ImageModel ข้อมูล image model สำหรับหน้าเลือก model
type ImageModel struct {
	ID                     string   `json:"id" toml:"id"`
	Name                   string   `json:"name" toml:"name"`
	Description            string   `json:"description" toml:"description"`
	SupportsReferenceImage bool     `json:"supportsReferenceImage" toml:"supports_reference_image"`
	AspectRatios           []string `json:"aspectRatios" toml:"aspect_ratios"`
	Qualities              []string `json:"qualities" toml:"qualities"`
}

type VideoModel struct {
	ID                     string   `json:"id" toml:"id"`
	Name                   string   `json:"name" toml:"name"`
	Description            string   `json:"description" toml:"description"`
	SupportsFirstLastFrame bool     `json:"supportsFirstLastFrame" toml:"supports_first_last_frame"`
	AspectRatios           []string `json:"aspectRatios" toml:"aspect_ratios"`
	Durations              []int    `json:"durations" toml:"durations"`
}

// ModelCatalogFile โครงของ MODELS_FILE (TOML)
type ModelCatalogFile struct {
	ImageModels  []ImageModel      `toml:"image_models"`
	VideoModels  []VideoModel      `toml:"video_models"`
	ScriptModels []ports.TextModel `toml:"script_models"`
	Styles       []ScriptStyle     `toml:"script_styles"`
}
