package timeparse

import (
	"fmt"
	"sync"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	nlpOnce   sync.Once
	nlpParser *when.Parser
)

func naturalParser() *when.Parser {
	nlpOnce.Do(func() {
		nlpParser = when.New(nil)
		nlpParser.Add(en.All...)
		nlpParser.Add(common.All...)
	})
	return nlpParser
}

// ParseNaturalLanguage parses English time expressions like "tomorrow",
// "next monday at 2pm", and "3 days ago" relative to now.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	r, err := naturalParser().Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("natural language parse failed: %w", err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("no time expression found in %q", s)
	}
	return r.Time, nil
}
