package services

import (
	"storyforge/domain/dto"
	"storyforge/domain/ports"
)

// ModelCatalogService รายการ model และ style ที่ใช้ได้
type ModelCatalogService interface {
	ImageModels() []dto.ImageModel
	VideoModels() []dto.VideoModel
	ScriptModels() []ports.TextModel
	Styles() []dto.ScriptStyle

	FindImageModel(id string) (dto.ImageModel, bool)
	FindVideoModel(id string) (dto.VideoModel, bool)
	FindStyle(id string) (dto.ScriptStyle, bool)
}
