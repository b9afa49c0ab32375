package interview

import (
	"encoding/json"
	"regexp"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

type forbiddenPhrase struct {
	name string
	re   *regexp.Regexp
}

// forbiddenPhrases is the advice-giving language a report must not contain.
var forbiddenPhrases = []forbiddenPhrase{
	{"you should", regexp.MustCompile(`(?i)\byou (really |definitely )?(should|ought to)\b`)},
	{"you'd better", regexp.MustCompile(`(?i)\byou(['’]d| had) better\b`)},
	{"recommendation", regexp.MustCompile(`(?i)\b(i|we) (would )?(recommend|suggest|advise)\b|\bmy (recommendation|advice)\b|\b(is|are) recommended\b`)},
	{"the answer is", regexp.MustCompile(`(?i)\bthe (right |correct )?answer is\b`)},
	{"best choice", regexp.MustCompile(`(?i)\bthe (best|right|correct|obvious) (choice|option|decision|path) (is|would be)\b`)},
	{"choose option", regexp.MustCompile(`(?i)\b(choose|pick|select|go with|take) (option|plan|choice|path) ?[a-z0-9]\b`)},
	{"in conclusion", regexp.MustCompile(`(?i)\b(in conclusion|the conclusion is|my verdict)\b`)},
	{"추천", regexp.MustCompile(`추천(합니다|드립니다|해요|드려요)`)},
	{"권장", regexp.MustCompile(`권(장|유)(합니다|드립니다|해요)|권합니다`)},
	{"해야 합니다", regexp.MustCompile(`(해야|하셔야) (합니다|해요|한다)`)},
	{"선택하세요", regexp.MustCompile(`(선택|결정)하(세요|십시오)`)},
	{"정답", regexp.MustCompile(`정답은|결론적으로|최선의 선택은`)},
}

// scanPolicy returns the names of forbidden phrases found in the serialized
// document, each name at most once.
func scanPolicy(doc entity.ReportDocument) []string {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	return scanText(string(raw))
}

func scanText(text string) []string {
	var found []string
	for _, f := range forbiddenPhrases {
		if f.re.MatchString(text) {
			found = append(found, f.name)
		}
	}
	return found
}
