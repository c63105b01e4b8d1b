package scorer

import "strings"

// Score rates generated narration on a 0-100 scale. It is advisory only:
// nothing rejects or retries content based on it, it exists for monitoring.
//
// The bands: length (peak 180-220 chars), keyword coverage, sentence
// structure, punctuation density, and emotional color.
func Score(content string, keywords []string) float64 {
	score := lengthScore(content)
	score += keywordScore(content, keywords)
	score += structureScore(content)
	score += punctuationScore(content)
	score += emotionScore(content)

	if score > 100 {
		return 100
	}
	return score
}

func lengthScore(content string) float64 {
	n := len([]rune(content))
	switch {
	case n >= 180 && n <= 220:
		return 30
	case (n >= 150 && n < 180) || (n > 220 && n <= 250):
		return 20
	case (n >= 120 && n < 150) || (n > 250 && n <= 300):
		return 10
	default:
		return 0
	}
}

func keywordScore(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hit := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(content, kw) {
			hit++
		}
	}
	return float64(hit) / float64(len(keywords)) * 20
}

// isTerminator matches sentence terminators, Latin and CJK.
func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

func structureScore(content string) float64 {
	segments := 0
	for _, seg := range strings.FieldsFunc(content, isTerminator) {
		if strings.TrimSpace(seg) != "" {
			segments++
		}
	}

	switch {
	case segments >= 3:
		return 20
	case segments == 2:
		return 10
	default:
		return 0
	}
}

var punctuationMarks = []string{",", ".", ";", "，", "。", "；"}

func punctuationScore(content string) float64 {
	count := 0
	for _, m := range punctuationMarks {
		count += strings.Count(content, m)
	}
	switch {
	case count >= 3:
		return 15
	case count == 2:
		return 10
	default:
		return 0
	}
}

var emotionWords = []string{
	"beautiful", "magnificent", "mysterious", "ancient", "precious",
	"unique", "breathtaking", "moving", "awe",
	"美丽", "壮观", "神秘", "古老", "珍贵", "独特", "震撼", "感动", "敬畏",
}

func emotionScore(content string) float64 {
	lower := strings.ToLower(content)
	count := 0
	for _, w := range emotionWords {
		if strings.Contains(lower, w) {
			count++
		}
	}
	switch {
	case count >= 2:
		return 15
	case count == 1:
		return 10
	default:
		return 0
	}
}
