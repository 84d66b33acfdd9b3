package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"lyricsheet/internal/align"
	"lyricsheet/internal/app"
	"lyricsheet/internal/importer"
	"lyricsheet/internal/section"
	"lyricsheet/internal/song"
	"lyricsheet/internal/textclean"
)

func newImportCmd(stdout io.Writer, flags *globalFlags) *cobra.Command {
	strict := false
	cmd := &cobra.Command{
		Use:           "import [file_or_dir ...]",
		Short:         "导入歌曲文件（.txt / .md）到歌曲库",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, stdout)
			if err != nil {
				return err
			}
			defer s.Close()

			start := time.Now()
			res, err := s.Import(cmd.Context(), app.ImportOptions{Inputs: args, Strict: strict})
			if err != nil {
				return err
			}
			finalLine := fmt.Sprintf("导入完成：成功 %d，失败 %d，总耗时 %s", res.Succeeded, res.Failed, formatDurationMS(time.Since(start).Milliseconds()))
			if res.Failed > 0 {
				return fmt.Errorf("%s", finalLine)
			}
			if !flags.verboseArg {
				fmt.Fprintln(stdout, finalLine)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "按和弦行与歌词行严格交替解析")
	return cmd
}

func newCleanCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:           "clean [file]",
		Short:         "去除生成文本中的客套话与 Markdown 装饰",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, textclean.Clean(raw))
			return nil
		},
	}
}

func newNormalizeCmd(stdout io.Writer, flags *globalFlags) *cobra.Command {
	strict := false
	numberVerses := false
	prefix := ""
	cmd := &cobra.Command{
		Use:           "normalize [file]",
		Short:         "清洗文本并输出和弦谱",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			im := importer.New(cfg.Classifier())
			var res importer.Result
			if strict {
				res = im.ImportStrict(raw)
			} else {
				res = im.Import(raw)
			}
			if err := importer.Check(raw, res); err != nil {
				return err
			}
			if numberVerses {
				res.Lyrics = section.AutoNumberVerses(res.Lyrics)
			}
			if !cmd.Flags().Changed("prefix") {
				prefix = cfg.Chords.Prefix
			}
			fmt.Fprintln(stdout, song.Song{Lyrics: res.Lyrics, Chords: res.Chords}.Sheet(prefix))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "按和弦行与歌词行严格交替解析")
	cmd.Flags().BoolVar(&numberVerses, "number-verses", false, "按出现顺序重新编号主歌段落")
	cmd.Flags().StringVar(&prefix, "prefix", "", "和弦行前缀，默认读取配置")
	return cmd
}

func newMergeCmd(stdout io.Writer) *cobra.Command {
	prefix := ""
	cmd := &cobra.Command{
		Use:           "merge <lyrics_file> <chords_file>",
		Short:         "逐行合并歌词与和弦",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lyrics, err := readFileLines(args[0])
			if err != nil {
				return err
			}
			chords, err := readFileLines(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, textclean.CompactBlankLines(strings.Join(align.Merge(lyrics, chords, prefix), "\n")))
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "和弦行前缀")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败：%w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("读取文件失败（%s）：%w", args[0], err)
	}
	return string(raw), nil
}

func readFileLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败（%s）：%w", path, err)
	}
	text := strings.TrimRight(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}
