package main

import (
	"context"

	"go.uber.org/zap"

	"finsight/internal/services"
)

// syncRunner is satisfied by both the in-process sync service and the
// pipeline client.
type syncRunner interface {
	SyncAllUsers(ctx context.Context) (*services.SyncAllResult, error)
}

type syncJob struct {
	runner syncRunner
	log    *zap.SugaredLogger
}

// Run performs one sync of every user and logs the outcome.
func (j *syncJob) Run(ctx context.Context) (*services.SyncAllResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := j.runner.SyncAllUsers(ctx)
	if err != nil {
		j.log.Errorw("sync run failed", "error", err)
		return nil, err
	}

	log := j.log.Infow
	if result.FailedUsers > 0 {
		log = j.log.Warnw
	}
	log("sync run completed",
		"users", result.Users,
		"failed_users", result.FailedUsers,
		"added", result.Added,
		"modified", result.Modified,
		"removed", result.Removed,
		"duration", result.Duration.String(),
	)
	return result, nil
}

// exitCode is 2 when some users failed, so schedulers can tell partial runs apart.
func exitCode(result *services.SyncAllResult) int {
	if result != nil && result.FailedUsers > 0 {
		return 2
	}
	return 0
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
