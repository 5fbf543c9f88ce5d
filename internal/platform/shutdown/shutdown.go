package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SlpAus/discussion-enhancer/internal/platform/logging"
	"go.uber.org/zap"
)

// Coordinator 负责在收到停机信号时取消正在进行的请求。
type Coordinator struct {
	logger  *zap.Logger
	signals []os.Signal
}

// NewCoordinator 创建一个新的停机协调器，默认监听 SIGINT 与 SIGTERM。
func NewCoordinator(logger *zap.Logger, signals ...os.Signal) *Coordinator {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	return &Coordinator{logger: logging.OrNop(logger), signals: signals}
}

// Context 返回一个在收到信号或 parent 结束时被取消的上下文。
// 调用方必须在结束时调用返回的 stop 以释放信号监听。
func (c *Coordinator) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, c.signals...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-sigChan:
			c.logger.Info("收到关闭信号，取消进行中的请求", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	stop := func() {
		signal.Stop(sigChan)
		cancel()
		<-done
	}
	return ctx, stop
}
