package chatlog_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatework/tasks/internal/chatlog"
)

const spanTranscript = `<!-- task:007 -->
**[M001] 2026-08-25 10:01:30 UTC**
set up the retry scaffold

**[M002] 2026-08-25 10:02:10 UTC**
> gate: write the failing case

use exponential backoff please

<!-- /task:007 -->
**[M003] 2026-08-25 10:05:00 UTC**
unrelated chatter

<!-- task:009 -->
**[M004] 2026-08-25 10:06:00 UTC**
other task message

<!-- /task:009 -->
`

func TestContextMessagesSpans(t *testing.T) {
	msgs, attributed := chatlog.ContextMessages(spanTranscript, 7, time.Time{})
	require.True(t, attributed)
	require.Len(t, msgs, 2)
	assert.Equal(t, "[M001] 2026-08-25 10:01:30 UTC set up the retry scaffold", msgs[0])
	// The gate-echo block is excluded from the compacted body.
	assert.Equal(t, "[M002] 2026-08-25 10:02:10 UTC use exponential backoff please", msgs[1])
}

func TestContextMessagesOtherSpan(t *testing.T) {
	msgs, attributed := chatlog.ContextMessages(spanTranscript, 9, time.Time{})
	require.True(t, attributed)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "[M004]")
}

func TestContextMessagesSince(t *testing.T) {
	since := time.Date(2026, 8, 25, 10, 2, 0, 0, time.UTC)
	msgs, attributed := chatlog.ContextMessages(spanTranscript, 7, since)
	require.True(t, attributed)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "[M002]")
}

func TestContextMessagesTailFallback(t *testing.T) {
	msgs, attributed := chatlog.ContextMessages(spanTranscript, 42, time.Time{})
	assert.False(t, attributed)
	assert.Len(t, msgs, 4, "fallback scans every message regardless of spans")
}

func TestContextMessagesTailCap(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 25; i++ {
		fmt.Fprintf(&b, "**[M%03d] 2026-08-25 10:%02d:00 UTC**\nmessage %d\n\n", i, i, i)
	}

	msgs, attributed := chatlog.ContextMessages(b.String(), 7, time.Time{})
	assert.False(t, attributed)
	require.Len(t, msgs, 20)
	assert.Contains(t, msgs[0], "[M006]")
	assert.Contains(t, msgs[19], "[M025]")
}

func TestCompactTruncates(t *testing.T) {
	m := chatlog.Message{
		ID:   "M001",
		At:   time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		Body: []string{strings.Repeat("words ", 100)},
	}

	line := chatlog.Compact(m)
	assert.LessOrEqual(t, len([]rune(line)), chatlog.CompactBudget)
	assert.True(t, strings.HasSuffix(line, "…"), "line = %q", line)
}

func TestCompactHeaderOnly(t *testing.T) {
	m := chatlog.Message{
		ID:   "M009",
		At:   time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		Body: []string{"", "> gate: all of it", "   "},
	}
	assert.Equal(t, "[M009] 2026-08-25 10:00:00 UTC", chatlog.Compact(m))
}

func TestContextFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat_log.md")
	require.NoError(t, os.WriteFile(path, []byte(spanTranscript), 0o600))

	msgs, attributed, err := chatlog.ContextFromFile(path, 7, time.Time{})
	require.NoError(t, err)
	assert.True(t, attributed)
	assert.Len(t, msgs, 2)

	msgs, attributed, err = chatlog.ContextFromFile(filepath.Join(dir, "absent.md"), 7, time.Time{})
	require.NoError(t, err)
	assert.False(t, attributed)
	assert.Empty(t, msgs)
}
