package main

import (
	"context"
	"fmt"
	"os"

	"github.com/SlpAus/discussion-enhancer/internal/platform/config"
	"github.com/SlpAus/discussion-enhancer/internal/platform/logging"
	"github.com/SlpAus/discussion-enhancer/internal/platform/shutdown"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// 全局参数
	configPath string
	pagePath   string
	outPath    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd 是命令行入口
var rootCmd = &cobra.Command{
	Use:   "enhancer",
	Short: "对讨论页面投票、评论，并输出更新后的页面",
	Long: `enhancer 读取一个讨论页面（本地文件或站点URL），向站点提交投票或评论，
然后按站点的响应修改页面上的分数、箭头状态与评论表单，最后输出修改后的HTML。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认查找 ./config/config.yaml 与 ./config.yaml）")
	rootCmd.PersistentFlags().StringVar(&pagePath, "page", "", "页面文件路径或站点URL")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "-", "修改后页面的输出位置，- 表示标准输出")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")

	rootCmd.AddCommand(voteCmd, commentCmd, replyCmd, inspectCmd)
}

func main() {
	coordinator := shutdown.NewCoordinator(nil)
	ctx, stop := coordinator.Context(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
