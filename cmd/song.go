package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"lyricsheet/internal/section"
	"lyricsheet/internal/song"
)

func newRenderCmd(stdout io.Writer, flags *globalFlags) *cobra.Command {
	metadata := false
	prefix := ""
	cmd := &cobra.Command{
		Use:           "render <song>",
		Short:         "输出歌曲的和弦谱",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sg, err := s.FindSong(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("prefix") {
				prefix = s.Config.Chords.Prefix
			}
			fmt.Fprint(stdout, song.ExportText(sg, metadata, prefix))
			return nil
		},
	}
	cmd.Flags().BoolVar(&metadata, "metadata", false, "包含标题、调号等元数据")
	cmd.Flags().StringVar(&prefix, "prefix", "", "和弦行前缀，默认读取配置")
	return cmd
}

func newSongCmd(stdout io.Writer, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "song",
		Short:         "管理歌曲库",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	tagFilter := ""
	listCmd := &cobra.Command{
		Use:           "list",
		Short:         "列出歌曲",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			songs, err := s.Songs()
			if err != nil {
				return err
			}
			for _, sg := range songs {
				if tagFilter != "" && !sg.HasTag(tagFilter) {
					continue
				}
				fmt.Fprintln(stdout, songLine(sg))
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&tagFilter, "tag", "", "只列出带该标签的歌曲")

	prosody := false
	showCmd := &cobra.Command{
		Use:           "show <song>",
		Short:         "显示歌曲",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sg, err := s.FindSong(args[0])
			if err != nil {
				return err
			}
			if prosody {
				fmt.Fprintln(stdout, prosodyText(sg.Lyrics))
				return nil
			}
			fmt.Fprint(stdout, song.ExportText(sg, true, s.Config.Chords.Prefix))
			return nil
		},
	}
	showCmd.Flags().BoolVar(&prosody, "prosody", false, "显示每行音节数与押韵分组")

	var (
		lyricsFile string
		tags       string
	)
	newCmd := &cobra.Command{
		Use:           "new <title>",
		Short:         "新建歌曲",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lyrics := ""
			if lyricsFile != "" {
				raw, err := os.ReadFile(lyricsFile)
				if err != nil {
					return fmt.Errorf("读取文件失败（%s）：%w", lyricsFile, err)
				}
				lyrics = string(raw)
			}
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sg, err := s.NewSong(args[0], lyrics, song.ParseTags(tags))
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, songLine(sg))
			return nil
		},
	}
	newCmd.Flags().StringVar(&lyricsFile, "lyrics-file", "", "歌词文件，默认使用段落骨架")
	newCmd.Flags().StringVar(&tags, "tags", "", "逗号分隔的标签")

	rmCmd := &cobra.Command{
		Use:           "rm <song>",
		Short:         "删除歌曲（同时从歌单中移除）",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sg, err := s.RemoveSong(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "已删除：%s\n", sg.Title)
			return nil
		},
	}

	backupCmd := &cobra.Command{
		Use:           "backup <file>",
		Short:         "备份歌曲库为 JSON",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			n, err := s.Backup(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "已备份 %d 首歌曲：%s\n", n, args[0])
			return nil
		},
	}

	restoreCmd := &cobra.Command{
		Use:           "restore <file>",
		Short:         "从 JSON 备份恢复歌曲与歌单",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			res, err := s.Restore(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "已恢复：歌曲 %d，歌单 %d，重新分配 ID %d，跳过空白歌曲 %d\n", res.Songs, res.Setlists, res.Reassigned, res.Skipped)
			return nil
		},
	}

	var (
		title   string
		key     string
		tempo   int
		timeSig string
		notes   string
	)
	editCmd := &cobra.Command{
		Use:           "edit <song>",
		Short:         "修改歌曲元数据",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sg, err := s.UpdateSong(args[0], func(sg *song.Song) error {
				changed := cmd.Flags().Changed
				if changed("title") {
					if strings.TrimSpace(title) == "" {
						return fmt.Errorf("歌曲标题不能为空")
					}
					sg.Title = strings.TrimSpace(title)
				}
				if changed("key") {
					sg.Key = strings.TrimSpace(key)
				}
				if changed("tempo") {
					if tempo < 0 {
						return fmt.Errorf("速度不能为负数：%d", tempo)
					}
					sg.Tempo = tempo
				}
				if changed("time-signature") {
					sg.TimeSignature = strings.TrimSpace(timeSig)
				}
				if changed("notes") {
					sg.Notes = notes
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, songLine(sg))
			return nil
		},
	}
	editCmd.Flags().StringVar(&title, "title", "", "标题")
	editCmd.Flags().StringVar(&key, "key", "", "调号")
	editCmd.Flags().IntVar(&tempo, "tempo", 0, "速度（BPM）")
	editCmd.Flags().StringVar(&timeSig, "time-signature", "", "拍号")
	editCmd.Flags().StringVar(&notes, "notes", "", "备注")

	tagCmd := newTagCmd(stdout, flags, "tag <song> <tag ...>", "添加标签", func(sg *song.Song, tag string) { sg.AddTag(tag) })
	untagCmd := newTagCmd(stdout, flags, "untag <song> <tag ...>", "移除标签", func(sg *song.Song, tag string) { sg.RemoveTag(tag) })

	chordsCmd := &cobra.Command{
		Use:           "chords <song> <chords_file>",
		Short:         "按演唱行顺序套用和弦文件（每行一个和弦行）",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sg, err := s.ApplyChordFile(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, sg.Sheet(s.Config.Chords.Prefix))
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, newCmd, editCmd, tagCmd, untagCmd, chordsCmd, rmCmd, backupCmd, restoreCmd)
	return cmd
}

func newTagCmd(stdout io.Writer, flags *globalFlags, use, short string, apply func(*song.Song, string)) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sg, err := s.UpdateSong(args[0], func(sg *song.Song) error {
				for _, tag := range args[1:] {
					apply(sg, tag)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, songLine(sg))
			return nil
		},
	}
}

func songLine(sg song.Song) string {
	line := fmt.Sprintf("%s  %s", shortID(sg.ID), sg.Title)
	if len(sg.Tags) > 0 {
		line += "  [" + strings.Join(sg.Tags, ", ") + "]"
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// prosodyText lists each sung line with its syllable count and rhyme letter.
func prosodyText(lyrics string) string {
	lines := []string{}
	for _, l := range strings.Split(lyrics, "\n") {
		if strings.TrimSpace(l) == "" || section.IsLabel(l) {
			continue
		}
		lines = append(lines, strings.TrimSpace(l))
	}
	letters := make([]string, len(lines))
	for gi, group := range song.RhymeGroups(lines) {
		for _, idx := range group {
			letters[idx] = string(rune('A' + gi%26))
		}
	}
	out := make([]string, 0, len(lines))
	for i, l := range lines {
		letter := letters[i]
		if letter == "" {
			letter = "-"
		}
		out = append(out, fmt.Sprintf("%2d %s  %s", song.LineSyllables(l), letter, l))
	}
	return strings.Join(out, "\n")
}
