package cron

import (
	"testing"

	"GymChat/internal/job"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaultPattern(t *testing.T) {
	mgr := NewCronManager("", job.NewAttachmentCleanupJob(nil, job.RedisLocker{}, 24))
	require.NoError(t, mgr.RegisterJobs())
	assert.Len(t, mgr.engine.Entries(), 1)
}

func TestRegisterBadPattern(t *testing.T) {
	mgr := NewCronManager("every hour", job.NewAttachmentCleanupJob(nil, job.RedisLocker{}, 24))
	assert.Error(t, mgr.RegisterJobs())
}

func TestInitCronStartsEngine(t *testing.T) {
	mgr := NewCronManager("0 0 3 * * *", job.NewAttachmentCleanupJob(nil, job.RedisLocker{}, 24))
	require.NoError(t, InitCron(mgr))
	defer mgr.Stop()

	entries := mgr.engine.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Next.Hour())
}

func TestInitCronRejectsBadPattern(t *testing.T) {
	mgr := NewCronManager("61 * * * * *", job.NewAttachmentCleanupJob(nil, job.RedisLocker{}, 24))
	assert.Error(t, InitCron(mgr))
	assert.Empty(t, mgr.engine.Entries())
}
