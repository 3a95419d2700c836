package runmanifest

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/actioncap/pkg/config"
)

func TestNewPopulatesCaptureSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Capture.FlushOnExit = true
	cfg.Output.Path = "actions.jsonl"
	created := time.Date(2024, 5, 12, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))

	man := New(Options{
		CreatedAt:  created,
		Hostname:   "workstation",
		AppVersion: "1.2.3",
		Config:     cfg,
		Devices:    []string{"/dev/input/event3"},
		Target:     "window:0x3a00007",
	})

	_, err := uuid.Parse(man.SessionID)
	require.NoError(t, err, "generated session id is a uuid")
	assert.Equal(t, SchemaVersion, man.SchemaVersion)
	assert.Equal(t, time.UTC, man.CreatedAt.Location())
	assert.Equal(t, "<defaults>", man.ConfigSource)
	assert.Equal(t, CaptureSettings{
		Source:          config.SourceEvdev,
		Devices:         []string{"/dev/input/event3"},
		Target:          "window:0x3a00007",
		Output:          "actions.jsonl",
		SuppressRepeats: true,
		FlushOnExit:     true,
	}, man.Capture)
	assert.Equal(t, StatePending, man.Status.State)
}

func TestNewKeepsExplicitSessionID(t *testing.T) {
	man := New(Options{SessionID: "fixed", Config: config.Default()})
	assert.Equal(t, "fixed", man.SessionID)
	assert.Equal(t, "none", man.Capture.Target)
}

func TestLifecycleAndRoundTrip(t *testing.T) {
	base := time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)
	man := New(Options{SessionID: "s1", CreatedAt: base, Config: config.Default()})

	man.MarkStarted(base)
	assert.Equal(t, StateRecording, man.Status.State)
	man.RecordController("paused", "SIGUSR1", base.Add(time.Second))
	man.RecordController("running", "SIGUSR2", base.Add(2*time.Second))
	man.MarkFinished(base.Add(time.Minute), "stopped", Counters{Accepted: 12, Records: 4, Abandoned: 1}, nil)

	assert.Equal(t, StateCompleted, man.Status.State)
	assert.Equal(t, "4 records from 12 events", man.Status.Summary)

	path := filepath.Join(t.TempDir(), "nested", "session.json")
	require.NoError(t, Save(man, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, man, loaded)
}

func TestMarkFinishedWithError(t *testing.T) {
	man := New(Options{Config: config.Default()})
	man.MarkFinished(time.Now(), "error", Counters{}, errors.New("emit batch: broken pipe"))

	assert.Equal(t, StateErrored, man.Status.State)
	assert.Equal(t, "emit batch: broken pipe", man.Status.Summary)
	require.NotNil(t, man.Status.Counters)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
