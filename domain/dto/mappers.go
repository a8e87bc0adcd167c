package dto

import (
	"storyforge/domain/models"
)

func ScriptToScriptResponse(script *models.Script) *ScriptResponse {
	if script == nil {
		return nil
	}
	return &ScriptResponse{
		ID:               script.ID,
		Title:            script.Title,
		Content:          script.Content,
		Style:            script.Style,
		TotalDuration:    script.TotalDuration,
		SegmentDuration:  script.SegmentDuration,
		OptimizedContent: script.OptimizedContent,
		CreatedAt:        script.CreatedAt,
		UpdatedAt:        script.UpdatedAt,
	}
}

func ScriptsToScriptResponses(scripts []*models.Script) []ScriptResponse {
	out := make([]ScriptResponse, 0, len(scripts))
	for _, s := range scripts {
		out = append(out, *ScriptToScriptResponse(s))
	}
	return out
}

func CreateScriptRequestToScript(req *CreateScriptRequest) *models.Script {
	return &models.Script{
		Title:           req.Title,
		Content:         req.Content,
		Style:           req.Style,
		TotalDuration:   req.TotalDuration,
		SegmentDuration: req.SegmentDuration,
	}
}

func KeyframeToKeyframeResponse(kf *models.Keyframe) *KeyframeResponse {
	if kf == nil {
		return nil
	}
	return &KeyframeResponse{
		ID:             kf.ID,
		ScriptID:       kf.ScriptID,
		SegmentID:      kf.SegmentID,
		Sequence:       kf.Sequence,
		IsOpeningFrame: kf.IsOpeningFrame,
		Prompt:         kf.Prompt,
		ImageURL:       kf.ImageURL,
		Model:          kf.Model,
		AspectRatio:    kf.AspectRatio,
		Quality:        kf.Quality,
		Status:         kf.Status,
		ErrorMessage:   kf.ErrorMessage,
		CreatedAt:      kf.CreatedAt,
		UpdatedAt:      kf.UpdatedAt,
	}
}

func KeyframesToKeyframeResponses(keyframes []*models.Keyframe) []KeyframeResponse {
	out := make([]KeyframeResponse, 0, len(keyframes))
	for _, kf := range keyframes {
		out = append(out, *KeyframeToKeyframeResponse(kf))
	}
	return out
}

func VideoSegmentToVideoSegmentResponse(seg *models.VideoSegment) *VideoSegmentResponse {
	if seg == nil {
		return nil
	}
	return &VideoSegmentResponse{
		ID:            seg.ID,
		ScriptID:      seg.ScriptID,
		SegmentIndex:  seg.SegmentIndex,
		FirstFrameURL: seg.FirstFrameURL,
		LastFrameURL:  seg.LastFrameURL,
		Prompt:        seg.Prompt,
		Model:         seg.Model,
		AspectRatio:   seg.AspectRatio,
		Duration:      seg.Duration,
		VideoURL:      seg.VideoURL,
		Status:        seg.Status,
		ErrorMessage:  seg.ErrorMessage,
		CreatedAt:     seg.CreatedAt,
		UpdatedAt:     seg.UpdatedAt,
	}
}

func VideoSegmentsToVideoSegmentResponses(segments []*models.VideoSegment) []VideoSegmentResponse {
	out := make([]VideoSegmentResponse, 0, len(segments))
	for _, seg := range segments {
		out = append(out, *VideoSegmentToVideoSegmentResponse(seg))
	}
	return out
}
