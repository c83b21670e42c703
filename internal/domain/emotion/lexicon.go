package emotion

import "strings"

// emotionLexicon backs the offline fallback classifier. Keyword hits are
// normalized into pseudo-confidence scores.
var emotionLexicon = map[string][]string{
	"joy":      {"happy", "joy", "excited", "pleased", "content", "grateful", "wonderful", "great"},
	"sadness":  {"sad", "depressed", "down", "melancholy", "grief", "lonely", "hopeless", "crying"},
	"anger":    {"angry", "mad", "furious", "irritated", "rage", "frustrated", "annoyed"},
	"fear":     {"afraid", "scared", "anxious", "worried", "panic", "nervous", "terrified", "overwhelmed"},
	"surprise": {"surprised", "shocked", "amazed", "astonished", "unexpected"},
	"disgust":  {"disgusted", "revolted", "repulsed", "sick", "awful"},
	"neutral":  {"neutral", "calm", "okay", "fine", "alright"},
}

// lexiconClassify scores text by keyword matching. It never fails, making it
// a safe fallback when the remote model is unreachable.
func lexiconClassify(text string) Scores {
	lowered := strings.ToLower(text)
	words := strings.Fields(lowered)

	hits := make(map[string]int)
	total := 0
	for label, keywords := range emotionLexicon {
		for _, keyword := range keywords {
			for _, word := range words {
				if strings.Trim(word, ".,!?;:'\"") == keyword {
					hits[label]++
					total++
				}
			}
		}
	}

	scores := make(Scores, len(Labels))
	if total == 0 {
		for _, label := range Labels {
			scores[label] = 0
		}
		scores["neutral"] = 0.6
		return scores
	}
	for _, label := range Labels {
		scores[label] = float64(hits[label]) / float64(total)
	}
	return scores
}
