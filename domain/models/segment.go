package models

// Segment หน่วยเวลาหนึ่งช่วงของ script (ไม่ได้เก็บใน DB, คำนวณใหม่ทุกครั้งจาก content)
type Segment struct {
	ID             string  `json:"id"`
	IsOpeningFrame bool    `json:"isOpeningFrame"`
	Content        string  `json:"content"`
	TimeStart      float64 `json:"timeStart"`
	TimeEnd        float64 `json:"timeEnd"`
}
