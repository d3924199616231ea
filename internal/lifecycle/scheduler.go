package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner 由调度器周期性调用的任务
type Runner interface {
	Run(ctx context.Context)
}

// Scheduler 基于 cron 的清理调度器，上一次未结束时跳过本次触发
type Scheduler struct {
	cron       *cron.Cron
	entryID    cron.EntryID
	spec       string
	runOnStart bool
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler 创建调度器，spec 支持标准 cron 表达式与 @every 描述符
func NewScheduler(runner Runner, spec string, runOnStart bool, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:       spec,
		runOnStart: runOnStart,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	id, err := s.cron.AddFunc(spec, func() { runner.Run(s.ctx) })
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	s.entryID = id
	return s, nil
}

// Start 启动调度，runOnStart 时立即触发一次
func (s *Scheduler) Start() {
	s.cron.Start()

	if s.runOnStart {
		// 经过同一条 chain，与定时触发互斥
		job := s.cron.Entry(s.entryID).WrappedJob
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.Run()
		}()
	}

	s.logger.Info("sweep scheduler started",
		zap.String("schedule", s.spec),
		zap.Time("next_run", s.NextRun()),
	)
}

// NextRun 下一次定时触发的时间
func (s *Scheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Stop 取消正在执行的清理并等待其退出，最多等待 timeout
func (s *Scheduler) Stop(timeout time.Duration) {
	s.cancel()
	stopped := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sweep scheduler stopped")
	case <-time.After(timeout):
		s.logger.Warn("sweep scheduler stop timed out", zap.Duration("timeout", timeout))
	}
}

// cronLogger 将 cron 日志转到 zap，cron 的 Info 较频繁，按 Debug 输出
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
