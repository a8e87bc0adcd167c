package dto

// ReapResult จำนวน rows ที่ reaper เปลี่ยนเป็น failed
type ReapResult struct {
	Keyframes     int64 `json:"keyframes"`
	VideoSegments int64 `json:"videoSegments"`
}
