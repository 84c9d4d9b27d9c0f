package advice

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/normalize"
)

var (
	sleepPattern  = regexp.MustCompile(`(?:睡眠|sleep|slept)\s*([0-9]+(?:\.[0-9]+)?)\s*(?:時間|h\b|hours?)`)
	stressPattern = regexp.MustCompile(`(?:ストレス|stress)\s*([1-5])`)
	savePhrases   = regexp.MustCompile(`(?:肌日記(?:として)?保存して|日記として保存して|保存して$)`)
)

// journalSymptoms are the symptom words picked out of free-text notes.
var journalSymptoms = []string{
	"赤み", "乾燥", "かゆみ", "ヒリつき", "ひりつき", "ニキビ", "皮むけ", "つっぱり",
	"ベタつき", "てかり", "毛穴目立ち", "くすみ",
	"redness", "dryness", "itch", "stinging", "acne", "flaking", "tightness",
	"oiliness", "shine", "pores", "dullness",
}

// productHints are the product words picked out of free-text notes.
var productHints = []string{
	"化粧水", "乳液", "美容液", "クリーム", "洗顔", "クレンジング", "日焼け止め", "パック",
	"toner", "serum", "moisturizer", "cream", "cleanser", "sunscreen", "mask",
}

// ParseJournalText turns a free-text note such as "乾燥 睡眠6時間 ストレス4
// 化粧水" into a diary entry dated date. Unrecognised text is kept as the
// note.
func ParseJournalText(text string, date domain.Date) domain.DiaryEntry {
	raw := strings.TrimSpace(text)
	folded := normalize.Default.Fold(raw)

	e := domain.DiaryEntry{Date: date}
	if m := sleepPattern.FindStringSubmatch(folded); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			e.SleepHours = &v
		}
	}
	if m := stressPattern.FindStringSubmatch(folded); m != nil {
		v, _ := strconv.Atoi(m[1])
		e.StressLevel = &v
	}
	tt := newTermText(raw)
	e.Symptoms = matchWords(tt, journalSymptoms)
	e.UsedItems = matchWords(tt, productHints)

	note := savePhrases.ReplaceAllString(raw, "")
	e.Note = strings.Trim(note, " 。、")
	return e
}

func matchWords(text termText, words []string) []string {
	var out []string
	for _, w := range words {
		if text.contains(w) {
			out = append(out, w)
		}
	}
	return out
}
