package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"lyricsheet/internal/app"
	"lyricsheet/internal/config"
)

type globalFlags struct {
	configArg      string
	dbArg          string
	concurrencyArg int
	maxRetriesArg  int
	providerArg    string
	logFileArg     string
	verboseArg     bool
}

func Execute() error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(normalizeArgs(os.Args[1:]))
	return root.Execute()
}

func NewRootCmd(stdout, stderr *os.File) *cobra.Command {
	flags := &globalFlags{}
	showVersion := false

	root := &cobra.Command{
		Use:           "lyricsheet [file_or_dir ...]",
		Short:         "整理歌词与和弦文本，管理歌曲库与歌单",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(stdout)
				return nil
			}
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.HiddenDefaultCmd = true
	bindGlobalFlags(root, flags)
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "显示版本信息")

	root.AddCommand(
		newImportCmd(stdout, flags),
		newCleanCmd(stdout),
		newNormalizeCmd(stdout, flags),
		newMergeCmd(stdout),
		newRenderCmd(stdout, flags),
		newGenCmd(stdout, flags),
		newExportCmd(stdout, flags),
		newSongCmd(stdout, flags),
		newSetlistCmd(stdout, flags),
		newSetCmd(flags),
		newVersionCmd(stdout),
	)
	return root
}

func bindGlobalFlags(cmd *cobra.Command, flags *globalFlags) {
	cmd.PersistentFlags().StringVar(&flags.configArg, "config", "", "配置文件路径，默认 ~/.lyricsheet/config.yaml")
	cmd.PersistentFlags().StringVar(&flags.dbArg, "db", "", "歌曲库路径，默认读取配置 db_path")
	cmd.PersistentFlags().IntVar(&flags.concurrencyArg, "concurrency", 0, "导入并发数")
	cmd.PersistentFlags().IntVar(&flags.maxRetriesArg, "max-retries", 0, "生成请求最大重试次数")
	cmd.PersistentFlags().StringVar(&flags.providerArg, "provider", "", "覆盖配置中的 provider（openrouter / openai）")
	cmd.PersistentFlags().StringVar(&flags.logFileArg, "log-file", "", "NDJSON 日志文件路径")
	cmd.PersistentFlags().BoolVar(&flags.verboseArg, "verbose", false, "输出详细 NDJSON（机器友好）")
}

func openSession(flags *globalFlags, stdout io.Writer) (*app.Session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("读取当前目录失败：%w", err)
	}
	return app.Open(app.Options{
		ConfigPath:  flags.configArg,
		DBPath:      flags.dbArg,
		LogFile:     flags.logFileArg,
		Provider:    flags.providerArg,
		Concurrency: flags.concurrencyArg,
		MaxRetries:  flags.maxRetriesArg,
		Verbose:     flags.verboseArg,
		CWD:         cwd,
		Stdout:      stdout,
	})
}

// loadConfig reads the config without opening the song library.
func loadConfig(flags *globalFlags) (*config.Config, *config.Paths, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("读取当前目录失败：%w", err)
	}
	return config.Load(flags.configArg, cwd)
}

func formatDurationMS(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60_000 {
		return fmt.Sprintf("%.2fs", float64(ms)/1000.0)
	}
	minutes := ms / 60_000
	remainMS := ms % 60_000
	if remainMS == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm%.1fs", minutes, float64(remainMS)/1000.0)
}

var subcommands = map[string]struct{}{
	"import": {}, "clean": {}, "normalize": {}, "merge": {}, "render": {}, "gen": {}, "export": {},
	"song": {}, "setlist": {}, "set": {}, "version": {}, "help": {}, "completion": {},
}

// normalizeArgs turns `lyricsheet a.md` into `lyricsheet import a.md`.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	first := args[0]
	if _, ok := subcommands[first]; ok {
		return args
	}
	if first == "-h" || first == "--help" || first == "-v" || first == "--version" {
		return args
	}
	if !containsPositionalSource(args) {
		return args
	}
	return append([]string{"import"}, args...)
}

var valueFlags = []string{"--config", "--db", "--concurrency", "--max-retries", "--provider", "--log-file"}

func containsPositionalSource(args []string) bool {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return i+1 < len(args)
		}
		if isValueFlag(arg) {
			i++
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return true
	}
	return false
}

func isValueFlag(arg string) bool {
	for _, f := range valueFlags {
		if arg == f {
			return true
		}
	}
	return false
}
