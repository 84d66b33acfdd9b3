package song

import (
	"fmt"
	"strings"
)

// ExportText renders a song as a markdown chord sheet. Without metadata only
// the body is written.
func ExportText(s Song, withMetadata bool, chordPrefix string) string {
	var b strings.Builder
	if withMetadata {
		b.WriteString("# ")
		b.WriteString(strings.TrimSpace(s.Title))
		b.WriteString("\n\n")
		if s.Key != "" {
			b.WriteString(fmt.Sprintf("**Key:** %s\n", s.Key))
		}
		if s.Tempo > 0 {
			b.WriteString(fmt.Sprintf("**Tempo:** %d BPM\n", s.Tempo))
		}
		if s.TimeSignature != "" {
			b.WriteString(fmt.Sprintf("**Time Signature:** %s\n", s.TimeSignature))
		}
		if len(s.Tags) > 0 {
			b.WriteString(fmt.Sprintf("**Tags:** %s\n", strings.Join(s.Tags, ", ")))
		}
		b.WriteString("\n---\n\n")
	}
	b.WriteString(s.Sheet(chordPrefix))
	if withMetadata && strings.TrimSpace(s.Notes) != "" {
		b.WriteString("\n\n---\n**Notes:**\n")
		b.WriteString(s.Notes)
	}
	b.WriteString("\n")
	return b.String()
}
