package songfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lyricsheet/internal/song"
)

var Extensions = []string{".txt", ".md"}

type File struct {
	SourcePath    string
	Raw           string
	Title         string
	Key           string
	Tempo         int
	TimeSignature string
	Tags          []string
	Body          string
	Notes         string
	Warnings      []string
}

var (
	titleRe   = regexp.MustCompile(`^#[ \t]+(.+?)[ \t#]*$`)
	headerRe  = regexp.MustCompile(`(?i)^\*{0,2}(key|tempo|time signature|tags)\*{0,2}[ \t]*:[ \t]*\*{0,2}[ \t]*(.*?)[ \t]*$`)
	notesRe   = regexp.MustCompile(`(?i)^\*{0,2}notes\*{0,2}[ \t]*:[ \t]*\*{0,2}[ \t]*$`)
	leadIntRe = regexp.MustCompile(`^\d+`)
	wordSepRe = regexp.MustCompile(`[_\-.]+`)
)

func ParseFile(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("读取文件失败（%s）：%w", path, err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	f := Parse(string(raw), base)
	f.SourcePath = path
	return f, nil
}

// IsSongFile reports whether path has a supported extension.
func IsSongFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Parse reads an optional "# Title" heading, Key/Tempo/Time Signature/Tags
// header lines, an optional "---" separator, the body, and an optional
// trailing "---" + "**Notes:**" block.
func Parse(raw, fallbackTitle string) File {
	raw = strings.TrimPrefix(raw, "\ufeff")
	text := strings.ReplaceAll(strings.ReplaceAll(raw, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(text, "\n")
	f := File{Raw: raw, Tags: []string{}}

	i := skipBlank(lines, 0)
	if i < len(lines) {
		if m := titleRe.FindStringSubmatch(strings.TrimSpace(lines[i])); m != nil {
			f.Title = strings.TrimSpace(m[1])
			i++
		}
	}

	sawHeader := false
	for {
		j := skipBlank(lines, i)
		if j >= len(lines) {
			i = j
			break
		}
		m := headerRe.FindStringSubmatch(strings.TrimSpace(lines[j]))
		if m == nil {
			break
		}
		f.setHeader(m[1], m[2])
		sawHeader = true
		i = j + 1
	}
	if j := skipBlank(lines, i); (f.Title != "" || sawHeader) && j < len(lines) && strings.TrimSpace(lines[j]) == "---" {
		i = j + 1
	}

	body := lines[min(i, len(lines)):]
	if end, notes, ok := splitNotes(body); ok {
		body = body[:end]
		f.Notes = notes
	}
	f.Body = strings.Trim(strings.Join(body, "\n"), "\n")

	if f.Title == "" {
		f.Title = NormalizeTitle(fallbackTitle)
	}
	if strings.TrimSpace(f.Body) == "" {
		f.Warnings = append(f.Warnings, "文件没有歌词内容")
	}
	return f
}

func (f *File) setHeader(name, value string) {
	switch strings.ToLower(name) {
	case "key":
		f.Key = value
	case "tempo":
		if n, err := strconv.Atoi(leadIntRe.FindString(value)); err == nil {
			f.Tempo = n
		} else if value != "" {
			f.Warnings = append(f.Warnings, fmt.Sprintf("无法识别的速度：%s", value))
		}
	case "time signature":
		f.TimeSignature = value
	case "tags":
		f.Tags = song.ParseTags(value)
	}
}

// splitNotes finds the last "---" line that is followed by a Notes heading.
func splitNotes(lines []string) (int, string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "---" {
			continue
		}
		j := skipBlank(lines, i+1)
		if j < len(lines) && notesRe.MatchString(strings.TrimSpace(lines[j])) {
			notes := strings.TrimSpace(strings.Join(lines[j+1:], "\n"))
			return i, notes, true
		}
	}
	return 0, "", false
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

// NormalizeTitle turns a file name such as "night_drive" or "nightDrive"
// into "Night Drive".
func NormalizeTitle(name string) string {
	name = wordSepRe.ReplaceAllString(name, " ")
	var b strings.Builder
	prev := rune(0)
	for _, r := range name {
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	title := strings.Join(strings.Fields(b.String()), " ")
	if title == "" {
		return song.DefaultTitle
	}
	return cases.Title(language.English).String(title)
}

// Song builds a new song from the parsed header. Lyrics and chords are left to
// the caller.
func (f File) Song() song.Song {
	sg := song.New(f.Title, "", "")
	sg.Lyrics = ""
	if f.Key != "" {
		sg.Key = f.Key
	}
	if f.Tempo > 0 {
		sg.Tempo = f.Tempo
	}
	if f.TimeSignature != "" {
		sg.TimeSignature = f.TimeSignature
	}
	sg.Tags = append([]string{}, f.Tags...)
	sg.Notes = f.Notes
	return sg
}
