package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"lyricsheet/internal/app"
	"lyricsheet/internal/config"
	"lyricsheet/internal/setlist"
)

func newExportCmd(stdout io.Writer, flags *globalFlags) *cobra.Command {
	var (
		dir      string
		metadata bool
	)
	cmd := &cobra.Command{
		Use:           "export [song ...]",
		Short:         "导出歌曲为 Markdown 文件，默认导出全部",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			paths, err := s.Export(app.ExportOptions{Refs: args, Dir: dir, WithMetadata: metadata})
			for _, p := range paths {
				fmt.Fprintln(stdout, p)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "输出目录，默认读取配置 export.dir")
	cmd.Flags().BoolVar(&metadata, "metadata", true, "包含标题、调号等元数据")
	return cmd
}

func newSetlistCmd(stdout io.Writer, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "setlist",
		Short:         "管理歌单",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	listCmd := &cobra.Command{
		Use:           "list",
		Short:         "列出歌单",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sets, err := s.Setlists()
			if err != nil {
				return err
			}
			for _, sl := range sets {
				fmt.Fprintln(stdout, setlistLine(sl))
			}
			return nil
		},
	}

	name := ""
	importCmd := &cobra.Command{
		Use:           "import <file>",
		Short:         "从每行一个标题的文本导入歌单",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			res, err := s.ImportSetlist(name, args[0])
			if errors.Is(err, setlist.ErrNoMatches) {
				return fmt.Errorf("%w：%s", err, strings.Join(res.NotFound, "、"))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "已导入歌单：%s（%d 首）\n", res.Setlist.Name, res.Imported)
			if len(res.NotFound) > 0 {
				fmt.Fprintf(stdout, "未匹配：%s\n", strings.Join(res.NotFound, "、"))
			}
			return nil
		},
	}
	importCmd.Flags().StringVar(&name, "name", "", "歌单名称，默认使用文件名")

	var (
		format  string
		outFile string
	)
	exportCmd := &cobra.Command{
		Use:           "export <setlist>",
		Short:         "导出歌单（" + strings.Join(setlist.Formats, " / ") + "）",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			raw, err := s.ExportSetlist(args[0], format)
			if err != nil {
				return err
			}
			if outFile == "" {
				fmt.Fprintln(stdout, string(raw))
				return nil
			}
			if err := os.WriteFile(outFile, raw, 0o644); err != nil {
				return fmt.Errorf("写入文件失败（%s）：%w", outFile, err)
			}
			fmt.Fprintln(stdout, outFile)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "导出格式")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "输出文件，默认打印到标准输出")

	newCmd := newSetlistEditCmd(stdout, flags, "new <name> [song ...]", "新建歌单", cobra.MinimumNArgs(1),
		func(s *app.Session, args []string) (setlist.Setlist, error) {
			return s.NewSetlist(args[0], args[1:])
		})
	addCmd := newSetlistEditCmd(stdout, flags, "add <setlist> <song>", "向歌单添加歌曲", cobra.ExactArgs(2),
		func(s *app.Session, args []string) (setlist.Setlist, error) {
			return s.AddToSetlist(args[0], args[1])
		})
	dropCmd := newSetlistEditCmd(stdout, flags, "drop <setlist> <song>", "从歌单移除歌曲", cobra.ExactArgs(2),
		func(s *app.Session, args []string) (setlist.Setlist, error) {
			return s.RemoveFromSetlist(args[0], args[1])
		})
	delta := 0
	moveCmd := newSetlistEditCmd(stdout, flags, "move <setlist> <song> --by <n>", "调整歌曲在歌单中的位置", cobra.ExactArgs(2),
		func(s *app.Session, args []string) (setlist.Setlist, error) {
			if delta == 0 {
				return setlist.Setlist{}, fmt.Errorf("请用 --by 指定位移（负数上移）")
			}
			return s.MoveInSetlist(args[0], args[1], delta)
		})
	moveCmd.Flags().IntVar(&delta, "by", 0, "位移，负数上移，正数下移")
	dupCmd := newSetlistEditCmd(stdout, flags, "dup <setlist>", "复制歌单", cobra.ExactArgs(1),
		func(s *app.Session, args []string) (setlist.Setlist, error) {
			return s.DuplicateSetlist(args[0])
		})
	renameCmd := newSetlistEditCmd(stdout, flags, "rename <setlist> <name>", "重命名歌单", cobra.ExactArgs(2),
		func(s *app.Session, args []string) (setlist.Setlist, error) {
			return s.UpdateSetlist(args[0], func(sl *setlist.Setlist) error { return sl.Rename(args[1]) })
		})
	rmCmd := newSetlistEditCmd(stdout, flags, "rm <setlist>", "删除歌单", cobra.ExactArgs(1),
		func(s *app.Session, args []string) (setlist.Setlist, error) {
			return s.RemoveSetlist(args[0])
		})

	cmd.AddCommand(listCmd, importCmd, exportCmd, newCmd, addCmd, dropCmd, moveCmd, dupCmd, renameCmd, rmCmd)
	return cmd
}

func newSetlistEditCmd(stdout io.Writer, flags *globalFlags, use, short string, args cobra.PositionalArgs, run func(*app.Session, []string) (setlist.Setlist, error)) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, io.Discard)
			if err != nil {
				return err
			}
			defer s.Close()
			sl, err := run(s, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, setlistLine(sl))
			return nil
		},
	}
}

func setlistLine(sl setlist.Setlist) string {
	return fmt.Sprintf("%s  %s（%d 首）", shortID(sl.ID), sl.Name, len(sl.SongIDs))
}

func newSetCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "set",
		Short:         "修改本地设置",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	keyCmd := &cobra.Command{
		Use:           "key <api_key>",
		Short:         "保存生成服务的 API Key 到 ~/.lyricsheet/.env",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if key == "" {
				return fmt.Errorf("API Key 不能为空")
			}
			cfg, paths, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return config.UpsertEnvVar(paths.EnvPath, cfg.APIKeyEnv, key)
		},
	}
	cmd.AddCommand(keyCmd)
	return cmd
}
