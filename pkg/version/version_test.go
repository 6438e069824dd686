package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date

	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })

	Version, Commit, Date = "dev", "none", "unknown"

	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: vcsRevision, Value: "0123456789abcdef0123"},
			{Key: vcsTime, Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "v1.2.3", Version)
	assert.Equal(t, "0123456789ab", Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", Date)
	assert.Equal(t, "v1.2.3 (commit: 0123456789ab, built: 2026-01-02T03:04:05Z)", String())
}

func TestApplyKeepsLinkerValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date

	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })

	Version, Commit, Date = "v9", "abc", "today"

	apply(&debug.BuildInfo{
		Main:     debug.Module{Version: develVersion},
		Settings: []debug.BuildSetting{{Key: vcsRevision, Value: "ffff"}},
	})

	assert.Equal(t, "v9", Version)
	assert.Equal(t, "abc", Commit)
	assert.Equal(t, "today", Date)
}
