// Package jobs はセッション保守の非同期ジョブを提供します。
// filesystemバックエンドが残す期限切れセッションファイルを、
// Asynqのスケジューラで定期的に掃除します。
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/yourusername/login-roles/internal/config"
)

const (
	taskTypeSweep = "session:sweep"

	queueMaintenance = "maintenance"
)

// Manager はジョブの投入・スケジュール・実行をまとめます。
type Manager struct {
	cfg       *config.Config
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *log.Logger
}

// NewManager は Manager を初期化し、掃除タスクを定期実行に登録します。
func NewManager(cfg *config.Config, logger *log.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	opt, err := asynq.ParseRedisURI(cfg.QueueRedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				queueMaintenance: 1,
			},
		},
	)
	scheduler := asynq.NewScheduler(opt, nil)

	mux := asynq.NewServeMux()
	manager := &Manager{
		cfg:       cfg,
		client:    client,
		server:    server,
		scheduler: scheduler,
		mux:       mux,
		logger:    logger,
	}
	mux.HandleFunc(taskTypeSweep, manager.handleSweepTask)

	interval := cfg.SweepIntervalHours
	if interval <= 0 {
		interval = 1
	}
	task := asynq.NewTask(taskTypeSweep, nil, asynq.Queue(queueMaintenance))
	if _, err := scheduler.Register(fmt.Sprintf("@every %dh", interval), task); err != nil {
		return nil, fmt.Errorf("failed to register sweep schedule: %w", err)
	}

	return manager, nil
}

// StartWorkers はAsynqサーバーとスケジューラをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			m.logf("asynq server stopped with error: %v", err)
		}
	}()
	go func() {
		if err := m.scheduler.Run(); err != nil {
			m.logf("asynq scheduler stopped with error: %v", err)
		}
	}()
}

// Shutdown はスケジューラ・サーバー・クライアントを閉じます。
// 実行中のタスクが終わるまでブロックします。
func (m *Manager) Shutdown() {
	m.scheduler.Shutdown()
	m.server.Shutdown()
	_ = m.client.Close()
}

// EnqueueSweep は掃除タスクを即時投入します。起動直後の一回に使います。
func (m *Manager) EnqueueSweep(ctx context.Context) (string, error) {
	task := asynq.NewTask(taskTypeSweep, nil, asynq.Queue(queueMaintenance))
	info, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(1))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (m *Manager) handleSweepTask(ctx context.Context, task *asynq.Task) error {
	maxAge := time.Duration(m.cfg.SessionMaxAgeDays) * 24 * time.Hour
	removed, err := Sweep(m.cfg.SessionFileDir, maxAge)
	if err != nil {
		return err
	}
	if removed > 0 {
		m.logf("session sweep removed %d expired file(s) from %s", removed, m.cfg.SessionFileDir)
	}
	return nil
}

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
