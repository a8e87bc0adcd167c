// Package segmenter แยก script เป็น segments ตามช่วงเวลา
//
// รองรับรูปแบบ:
//
//	(0:00 - 0:06) เนื้อหา...
//	(0-6s) เนื้อหา...
//	0-6s เนื้อหา...   หรือ 0s~6s: เนื้อหา...
//	第0帧：opening frame
//	开场画面：opening frame
//	最后一帧：... (ข้าม)
//
// Parse เป็น pure function: input เดียวกันได้ output เดียวกันเสมอ
package segmenter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"storyforge/domain/models"
)

// DefaultSegmentDuration ความยาว segment (วินาที) เมื่อ script ไม่ได้ระบุ
const DefaultSegmentDuration = 6

// OpeningFrameID segment id ของ opening frame
const OpeningFrameID = "frame_0"

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n+`)

	// (MM:SS - MM:SS) content
	clockRange = regexp.MustCompile(`(?s)^\((\d+):(\d+)\s*-\s*(\d+):(\d+)\)\s*(.+)$`)
	// (N-Ms) content
	parenSecondsRange = regexp.MustCompile(`(?s)^\((\d+)s?\s*[-~]\s*(\d+)s\)\s*(.+)$`)
	// N-Ms content, Ns-Ms content, N~M content
	bareSecondsRange = regexp.MustCompile(`(?s)^(\d+)s?\s*[-~]\s*(\d+)s?\s*(.+)$`)

	openingLabel = regexp.MustCompile(`^开场画面\s*[：:]\s*`)
)

var (
	openingMarkers = []string{"第0帧：", "第0帧:"}
	closingMarkers = []string{"最后一帧：", "最后一帧:"}
)

type paragraphKind int

const (
	kindBody paragraphKind = iota
	kindOpening
	kindClosing
)

type parsedParagraph struct {
	kind    paragraphKind
	timed   bool
	start   float64
	end     float64
	content string
	raw     string
}

// Parse แยก content เป็น segments ตามลำดับ playback
// opening frame (ถ้ามี) อยู่ก่อน segment_0 เสมอ
func Parse(content string, segmentDuration int) []models.Segment {
	if segmentDuration <= 0 {
		segmentDuration = DefaultSegmentDuration
	}
	trimmed := strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if trimmed == "" {
		return nil
	}

	var (
		opening  *models.Segment
		paras    []parsedParagraph
		timedCnt int
	)
	for _, raw := range paragraphSplit.Split(trimmed, -1) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p := classify(raw, opening == nil && timedCnt == 0)
		if p.kind == kindOpening {
			if opening == nil && p.content != "" {
				opening = &models.Segment{ID: OpeningFrameID, IsOpeningFrame: true, Content: p.content}
			}
			paras = append(paras, p)
			continue
		}
		if p.kind == kindBody && p.timed {
			timedCnt++
		}
		paras = append(paras, p)
	}

	var body []models.Segment
	if timedCnt > 0 {
		body = bodyFromParagraphs(paras, segmentDuration)
	} else {
		body = bodyFromLines(paras, segmentDuration)
	}

	out := make([]models.Segment, 0, len(body)+1)
	if opening != nil {
		out = append(out, *opening)
	}
	return append(out, body...)
}

// classify จัดประเภท paragraph
// allowOpening: ช่วงเวลา 0-0 นับเป็น opening frame ได้เฉพาะก่อนเจอ body segment ที่มีเวลา
func classify(raw string, allowOpening bool) parsedParagraph {
	p := parsedParagraph{kind: kindBody, raw: raw, content: raw}

	for _, m := range openingMarkers {
		if strings.HasPrefix(raw, m) {
			p.kind = kindOpening
			p.content = strings.TrimSpace(strings.TrimPrefix(raw, m))
			return p
		}
	}
	if loc := openingLabel.FindStringIndex(raw); loc != nil {
		p.kind = kindOpening
		p.content = strings.TrimSpace(raw[loc[1]:])
		return p
	}
	for _, m := range closingMarkers {
		if strings.HasPrefix(raw, m) {
			p.kind = kindClosing
			return p
		}
	}

	start, end, text, ok := matchTimeRange(raw)
	if !ok {
		return p
	}
	if allowOpening && start == 0 && end == 0 {
		p.kind = kindOpening
		p.content = strings.TrimSpace(openingLabel.ReplaceAllString(text, ""))
		return p
	}
	p.timed = true
	p.start, p.end, p.content = start, end, text
	return p
}

// matchTimeRange ลอง pattern ทีละแบบตามลำดับ
func matchTimeRange(raw string) (start, end float64, text string, ok bool) {
	if m := clockRange.FindStringSubmatch(raw); m != nil {
		sm, ss, em, es := atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4])
		start, end = clockSeconds(sm, ss, em, es)
		return start, end, strings.TrimSpace(m[5]), true
	}
	if m := parenSecondsRange.FindStringSubmatch(raw); m != nil {
		return float64(atoi(m[1])), float64(atoi(m[2])), stripLeadingColon(m[3]), true
	}
	if m := bareSecondsRange.FindStringSubmatch(raw); m != nil {
		return float64(atoi(m[1])), float64(atoi(m[2])), stripLeadingColon(m[3]), true
	}
	return 0, 0, "", false
}

// clockSeconds แปลง (MM:SS - MM:SS) เป็นวินาที
// ถ้า SS ทั้งสองฝั่งเป็น 0 และ MM < 60 ทั้งคู่ ให้ตีความ MM เป็นวินาที:
// (0:00 - 6:00) = 0..6s แต่ (0:06 - 0:12) = 6..12s และ (1:00 - 2:30) = 60..150s
func clockSeconds(startMin, startSec, endMin, endSec int) (float64, float64) {
	if startSec == 0 && endSec == 0 && startMin < 60 && endMin < 60 {
		return float64(startMin), float64(endMin)
	}
	return float64(startMin*60 + startSec), float64(endMin*60 + endSec)
}

func bodyFromParagraphs(paras []parsedParagraph, segmentDuration int) []models.Segment {
	var body []models.Segment
	for _, p := range paras {
		if p.kind != kindBody {
			continue
		}
		idx := len(body)
		seg := models.Segment{ID: bodyID(idx), Content: p.content}
		if p.timed {
			seg.TimeStart, seg.TimeEnd = p.start, p.end
		} else {
			seg.TimeStart, seg.TimeEnd = synthesized(idx, segmentDuration)
		}
		body = append(body, seg)
	}
	return body
}

// bodyFromLines ไม่มี paragraph ไหนมี timestamp เลย: แยกทีละบรรทัดแทน
func bodyFromLines(paras []parsedParagraph, segmentDuration int) []models.Segment {
	var body []models.Segment
	for _, p := range paras {
		if p.kind != kindBody {
			continue
		}
		for _, line := range strings.Split(p.raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || hasAnyPrefix(line, openingMarkers) || hasAnyPrefix(line, closingMarkers) {
				continue
			}
			idx := len(body)
			start, end := synthesized(idx, segmentDuration)
			body = append(body, models.Segment{ID: bodyID(idx), Content: line, TimeStart: start, TimeEnd: end})
		}
	}
	return body
}

// OpeningFrame คืน opening frame หรือ nil
func OpeningFrame(segments []models.Segment) *models.Segment {
	for i := range segments {
		if segments[i].IsOpeningFrame {
			return &segments[i]
		}
	}
	return nil
}

// Body คืนเฉพาะ body segments ตามลำดับ
func Body(segments []models.Segment) []models.Segment {
	out := make([]models.Segment, 0, len(segments))
	for _, s := range segments {
		if !s.IsOpeningFrame {
			out = append(out, s)
		}
	}
	return out
}

func bodyID(idx int) string {
	return fmt.Sprintf("segment_%d", idx)
}

func synthesized(idx, segmentDuration int) (float64, float64) {
	return float64(idx * segmentDuration), float64((idx + 1) * segmentDuration)
}

func stripLeadingColon(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, ":")
	s = strings.TrimPrefix(s, "：")
	return strings.TrimSpace(s)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
