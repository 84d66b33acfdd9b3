package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"lyricsheet/internal/app"
	"lyricsheet/internal/llm"
	"lyricsheet/internal/song"
)

func newGenCmd(stdout io.Writer, flags *globalFlags) *cobra.Command {
	var (
		title     string
		style     string
		selection string
		notes     string
		mode      string
	)
	taskNames := make([]string, 0, len(llm.Tasks))
	for _, t := range llm.Tasks {
		taskNames = append(taskNames, string(t))
	}
	cmd := &cobra.Command{
		Use:           "gen <task> [song]",
		Short:         "调用生成服务创作或改写歌曲（" + strings.Join(taskNames, " / ") + "）",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := llm.ParseTask(args[0])
			if err != nil {
				return err
			}
			m, err := song.ParseMode(mode)
			if err != nil {
				return err
			}
			ref := ""
			if len(args) > 1 {
				ref = args[1]
			}

			logOut := io.Writer(io.Discard)
			if flags.verboseArg {
				logOut = stdout
			}
			s, err := openSession(flags, logOut)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.Generate(cmd.Context(), app.GenerateOptions{
				SongRef:   ref,
				Title:     title,
				Task:      task,
				Style:     style,
				Selection: selection,
				Notes:     notes,
				Mode:      m,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, out.Text)
			if out.Saved && !flags.verboseArg {
				fmt.Fprintf(stdout, "\n已保存：%s（%s），耗时 %s\n", out.Song.Title, shortID(out.Song.ID), formatDurationMS(out.LatencyMS))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "draft 任务的新歌标题")
	cmd.Flags().StringVar(&style, "style", "", "style / genre 任务的目标风格，draft 任务的体裁")
	cmd.Flags().StringVar(&selection, "selection", "", "rhyme / reword / rewrite 任务的文本")
	cmd.Flags().StringVar(&notes, "notes", "", "附加说明")
	cmd.Flags().StringVar(&mode, "mode", "replace", "写入方式（replace / append）")
	return cmd
}
