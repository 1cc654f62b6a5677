package main

import (
	"log"

	"github.com/yourusername/login-roles/internal/config"
	"github.com/yourusername/login-roles/internal/jobs"
)

// setupJobs はセッション掃除ジョブを構成します。
// filesystemバックエンド以外、またはRedis未設定のときは無効（nil）を返します。
func setupJobs(cfg *config.Config) (*jobs.Manager, error) {
	if cfg.SessionBackend != "filesystem" || cfg.QueueRedisURL == "" {
		return nil, nil
	}

	manager, err := jobs.NewManager(cfg, log.Default())
	if err != nil {
		return nil, err
	}
	return manager, nil
}
