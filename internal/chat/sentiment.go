package chat

import (
	"math"
	"strings"
	"unicode"
)

// lexicon maps lowercase words to a valence in roughly [-4, 4].
var lexicon = map[string]float64{
	"happy": 2.7, "glad": 2.0, "good": 1.9, "great": 3.1, "awesome": 3.1, "amazing": 2.8,
	"excited": 2.2, "love": 3.2, "loved": 2.9, "fun": 2.3, "calm": 1.3, "relaxed": 2.2,
	"proud": 2.1, "grateful": 2.3, "thankful": 2.0, "better": 1.9, "best": 3.2, "nice": 1.8,
	"hopeful": 2.3, "joy": 2.8, "peaceful": 2.2, "energetic": 1.8, "confident": 2.2, "okay": 0.9,
	"ok": 0.9, "fine": 0.8, "cool": 1.3, "win": 2.8, "won": 2.7, "smile": 1.5, "laugh": 2.6,
	"sad": -2.1, "bad": -2.5, "terrible": -2.1, "awful": -2.0, "angry": -2.3, "mad": -2.2,
	"upset": -1.6, "anxious": -1.0, "anxiety": -0.7, "stressed": -1.4, "stress": -1.8,
	"worried": -1.2, "scared": -1.9, "afraid": -2.0, "lonely": -1.8, "alone": -1.0, "tired": -1.0,
	"exhausted": -1.5, "hate": -2.7, "hurt": -2.4, "cry": -2.1, "crying": -2.1, "depressed": -2.3,
	"hopeless": -2.0, "worthless": -1.9, "miserable": -2.2, "sick": -1.7,
	"fail": -2.5, "failed": -2.3, "failing": -2.3, "broken": -1.4, "pain": -2.3, "lost": -1.3,
	"suicide": -3.5, "die": -2.9, "dead": -3.3, "kill": -3.7, "panic": -2.4, "overwhelmed": -1.6,
	"nervous": -1.1, "bored": -1.1, "annoyed": -1.6, "frustrated": -2.1, "disappointed": -1.9,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "dont": true, "don't": true, "isnt": true, "isn't": true,
	"cant": true, "can't": true, "wont": true, "won't": true, "didnt": true, "didn't": true,
	"aint": true, "ain't": true, "nothing": true, "nobody": true, "without": true,
}

var boosters = map[string]float64{
	"very": 0.293, "really": 0.293, "so": 0.293, "extremely": 0.293, "super": 0.293,
	"totally": 0.293, "incredibly": 0.293, "absolutely": 0.293,
	"slightly": -0.293, "kinda": -0.293, "somewhat": -0.293, "barely": -0.293,
}

const (
	negationScalar = -0.74
	normAlpha      = 15.0
)

// Sentiment scores text with a small valence lexicon and returns a compound
// score in [-1, 1]. Negations within three words flip and dampen a term;
// intensifiers immediately before a term scale it.
func Sentiment(text string) float64 {
	tokens := tokenize(text)
	var sum float64
	for i, tok := range tokens {
		valence, ok := lexicon[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if b, ok := boosters[tokens[i-1]]; ok {
				if valence > 0 {
					valence += b
				} else {
					valence -= b
				}
			}
		}
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			if negations[tokens[j]] {
				valence *= negationScalar
				break
			}
		}
		sum += valence
	}
	if exclaim := strings.Count(text, "!"); exclaim > 0 && sum != 0 {
		boost := math.Min(float64(exclaim), 4) * 0.292
		if sum > 0 {
			sum += boost
		} else {
			sum -= boost
		}
	}
	return normalize(sum)
}

func normalize(score float64) float64 {
	if score == 0 {
		return 0
	}
	v := score / math.Sqrt(score*score+normAlpha)
	return math.Max(-1, math.Min(1, v))
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
