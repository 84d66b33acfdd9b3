package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// Contract names the output format a completion must follow.
type Contract string

const (
	ContractAlternating   Contract = "alternating"
	ContractRewriteLine   Contract = "rewriteLine"
	ContractSuggestChords Contract = "suggestChords"
	ContractFirstDraft    Contract = "firstDraft"
	ContractPolish        Contract = "polish"
	ContractContinueSong  Contract = "continueSong"
	ContractFormatOnly    Contract = "formatOnly"
	ContractReGenre       Contract = "reGenre"
	ContractRhyme         Contract = "rhyme"
)

const SystemPrompt = "You are a precise songwriting assistant. " +
	"Follow the user's format contract exactly and be terse. " +
	"Never include analysis, chain-of-thought, or commentary. " +
	"Never use code fences or Markdown headings. " +
	"When applicable, return chords and lyrics on alternating lines and label sections in square brackets."

const outputRules = "Rules (obey strictly): " +
	"1) Return ONLY the requested content. " +
	"2) No explanations, analysis, reasoning, or commentary. " +
	"3) No greetings or prefaces; no summaries. " +
	"4) Do NOT use Markdown or code fences. " +
	"5) No titles or metadata, only section labels in square brackets when applicable. " +
	"6) Trim trailing spaces; at most one blank line between sections."

var contractText = map[Contract]string{
	ContractAlternating: "Format: alternate lines, chords line then lyrics line, repeating. " +
		"Section labels must be on their own line in square brackets (e.g., [Verse 1]). " +
		"Do not include a title or metadata. Ensure an even number of non-label lines.",
	ContractRewriteLine: "Return only the rewritten line(s). Keep original line breaks. " +
		"No chords, no section labels, no extra text.",
	ContractSuggestChords: "For each lyric line, output one chords line above it. " +
		"Section labels remain on their own [Label] lines. " +
		"No other text. Ensure an even number of non-label lines.",
	ContractFirstDraft: "Create a complete song with common sections. Use alternating lines (chords/lyrics). " +
		"Section labels on their own [Label] lines. No title/metadata outside labels.",
	ContractPolish: "Preserve structure and meaning. Use alternating lines (chords/lyrics). " +
		"Section labels on [Label] lines. No extra commentary or metadata.",
	ContractContinueSong: "Append continuation only. Use alternating lines (chords/lyrics). " +
		"Section labels on [Label] lines. Do not repeat provided text.",
	ContractFormatOnly: "Reformat only; do not change words unless spacing/labels are incorrect. " +
		"Output alternating lines (chords/lyrics) with [Label] lines; no metadata.",
	ContractReGenre: "Rewrite in target genre while preserving meaning and structure. " +
		"Use alternating lines (chords/lyrics) with [Label] lines; no metadata.",
	ContractRhyme: "Return ONLY a concise, comma-separated list of rhyme candidates. " +
		"No extra words, no numbering, no pre/post text.",
}

var contractRules = []struct {
	re       *regexp.Regexp
	contract Contract
}{
	{regexp.MustCompile(`(?i)^find rhymes for:`), ContractRhyme},
	{regexp.MustCompile(`(?i)^suggest alternative wording`), ContractRewriteLine},
	{regexp.MustCompile(`(?i)^rewrite this line`), ContractRewriteLine},
	{regexp.MustCompile(`(?i)^continue the (song|lyrics)`), ContractContinueSong},
	{regexp.MustCompile(`(?i)^suggest chord progressions`), ContractSuggestChords},
	{regexp.MustCompile(`(?i)^write a complete first draft`), ContractFirstDraft},
	{regexp.MustCompile(`(?i)^polish the following lyrics`), ContractPolish},
	{regexp.MustCompile(`(?i)^rewrite these lyrics in the style`), ContractAlternating},
	{regexp.MustCompile(`(?i)^clean up the formatting for this song`), ContractFormatOnly},
	{regexp.MustCompile(`(?i)^rewrite the following song in the .* genre`), ContractReGenre},
}

// ChooseContract picks the format contract from the prompt's opening words.
func ChooseContract(prompt string) Contract {
	p := strings.TrimSpace(prompt)
	for _, r := range contractRules {
		if r.re.MatchString(p) {
			return r.contract
		}
	}
	return ContractAlternating
}

func (c Contract) Text() string {
	return contractText[c]
}

// BuildPrompt prefixes the prompt with its contract and appends the user's notes.
func BuildPrompt(prompt string, c Contract, notes string) string {
	base := c.Text()
	if c != ContractRhyme {
		base = strings.TrimSpace(outputRules + " " + base)
	}
	parts := []string{base, strings.TrimSpace(prompt)}
	if n := strings.TrimSpace(notes); n != "" {
		parts = append(parts, "Additional notes: "+n)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

// Task is a generation request a user can ask for by name.
type Task string

const (
	TaskDraft    Task = "draft"
	TaskPolish   Task = "polish"
	TaskStyle    Task = "style"
	TaskContinue Task = "continue"
	TaskChords   Task = "chords"
	TaskFormat   Task = "format"
	TaskGenre    Task = "genre"
	TaskRhyme    Task = "rhyme"
	TaskReword   Task = "reword"
	TaskRewrite  Task = "rewrite"
)

var Tasks = []Task{TaskDraft, TaskPolish, TaskStyle, TaskContinue, TaskChords, TaskFormat, TaskGenre, TaskRhyme, TaskReword, TaskRewrite}

func ParseTask(s string) (Task, error) {
	t := Task(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tasks {
		if t == known {
			return t, nil
		}
	}
	names := make([]string, 0, len(Tasks))
	for _, known := range Tasks {
		names = append(names, string(known))
	}
	return "", fmt.Errorf("未知的生成任务：%s（可选 %s）", s, strings.Join(names, " / "))
}

type TaskInput struct {
	Title         string
	Key           string
	Tempo         int
	TimeSignature string
	Tags          []string
	// Sheet is the song rendered with chords above lyrics.
	Sheet string
	// Style doubles as the target genre for TaskGenre.
	Style     string
	Selection string
}

const alternatingAsk = "Return chords and lyrics on alternating lines with section labels in square brackets."

// TaskPrompt phrases a task so that ChooseContract maps it back to its contract.
func TaskPrompt(task Task, in TaskInput) (string, error) {
	switch task {
	case TaskDraft:
		style := strings.TrimSpace(in.Style)
		if style == "" {
			style = "a popular contemporary style"
		}
		return fmt.Sprintf("Write a complete first draft of song lyrics in %s with chord suggestions. %s", style, alternatingAsk), nil
	case TaskPolish:
		return fmt.Sprintf("Polish the following lyrics for flow, rhyme, and clarity and suggest suitable chords. %s\n%s", alternatingAsk, in.Sheet), nil
	case TaskStyle:
		if strings.TrimSpace(in.Style) == "" {
			return "", fmt.Errorf("style 任务需要指定风格")
		}
		return fmt.Sprintf("Rewrite these lyrics in the style of %s with chord suggestions. %s\n%s", strings.TrimSpace(in.Style), alternatingAsk, in.Sheet), nil
	case TaskContinue:
		return fmt.Sprintf("Continue the song after these lyrics, adding chord suggestions. %s\n%s", alternatingAsk, in.Sheet), nil
	case TaskChords:
		return fmt.Sprintf("Suggest chord progressions for the following lyrics. %s\n%s", alternatingAsk, in.Sheet), nil
	case TaskFormat:
		return fmt.Sprintf("Clean up the formatting for this song and return chords and lyrics on alternating lines with section labels in square brackets.\nTitle: %s\nKey: %s\nTempo: %d\nTime Signature: %s\n\n%s",
			in.Title, in.Key, in.Tempo, in.TimeSignature, in.Sheet), nil
	case TaskGenre:
		if strings.TrimSpace(in.Style) == "" {
			return "", fmt.Errorf("genre 任务需要指定目标风格")
		}
		return fmt.Sprintf("Rewrite the following song in the %s genre while preserving meaning and structure. %s\nTitle: %s\nKey: %s\nTempo: %d\nTags: %s\n\n%s",
			strings.TrimSpace(in.Style), alternatingAsk, in.Title, in.Key, in.Tempo, strings.Join(in.Tags, ", "), in.Sheet), nil
	case TaskRhyme:
		if strings.TrimSpace(in.Selection) == "" {
			return "", fmt.Errorf("rhyme 任务需要提供文本")
		}
		return "Find rhymes for: " + strings.TrimSpace(in.Selection), nil
	case TaskReword:
		if strings.TrimSpace(in.Selection) == "" {
			return "", fmt.Errorf("reword 任务需要提供文本")
		}
		return "Suggest alternative wording for: " + strings.TrimSpace(in.Selection), nil
	case TaskRewrite:
		if strings.TrimSpace(in.Selection) == "" {
			return "", fmt.Errorf("rewrite 任务需要提供文本")
		}
		return "Rewrite this line in a different tone: " + strings.TrimSpace(in.Selection), nil
	default:
		return "", fmt.Errorf("未知的生成任务：%s", task)
	}
}
