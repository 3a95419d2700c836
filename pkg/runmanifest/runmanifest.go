// Package runmanifest describes a recording session on disk so downstream
// tooling can correlate a record stream with how it was produced.
package runmanifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/offlinefirst/actioncap/pkg/config"
)

// SchemaVersion captures the manifest version for compatibility checks.
const SchemaVersion = 1

// Session lifecycle states.
const (
	StatePending   = "pending"
	StateRecording = "recording"
	StateCompleted = "completed"
	StateErrored   = "error"
)

// CaptureSettings records how input was captured for the session.
type CaptureSettings struct {
	Source          string   `json:"source"`
	Devices         []string `json:"devices,omitempty"`
	Target          string   `json:"target"`
	Output          string   `json:"output"`
	SuppressRepeats bool     `json:"suppress_repeats"`
	FlushOnExit     bool     `json:"flush_on_exit"`
}

// Counters mirror the classifier and capture statistics at session end.
type Counters struct {
	Delivered int64 `json:"delivered"`
	Gated     int64 `json:"gated"`
	Accepted  int   `json:"accepted"`
	Filtered  int   `json:"filtered"`
	Ignored   int   `json:"ignored"`
	Repeats   int   `json:"repeats"`
	Records   int   `json:"records"`
	Abandoned int   `json:"abandoned"`
}

// Status summarises the lifecycle of a recording session.
type Status struct {
	State       string                    `json:"state"`
	Summary     string                    `json:"summary,omitempty"`
	StartedAt   *time.Time                `json:"started_at,omitempty"`
	EndedAt     *time.Time                `json:"ended_at,omitempty"`
	Termination string                    `json:"termination,omitempty"`
	Controller  []ControllerTimelineEntry `json:"controller_timeline,omitempty"`
	Counters    *Counters                 `json:"counters,omitempty"`
}

// ControllerTimelineEntry records pause/resume/stop requests for diagnostics.
type ControllerTimelineEntry struct {
	State     string    `json:"state"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Manifest is the durable metadata describing a recording session.
type Manifest struct {
	SchemaVersion int             `json:"schema_version"`
	SessionID     string          `json:"session_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Hostname      string          `json:"hostname"`
	AppVersion    string          `json:"app_version"`
	ConfigSource  string          `json:"config_source"`
	Capture       CaptureSettings `json:"capture"`
	Status        Status          `json:"status"`
}

// Options captures the knobs for creating a new manifest.
type Options struct {
	SessionID  string
	CreatedAt  time.Time
	Hostname   string
	AppVersion string
	Config     config.Config
	Devices    []string
	Target     string
}

// NewSessionID returns a random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// New constructs a manifest using the supplied options. A missing session id
// is generated.
func New(opts Options) Manifest {
	id := opts.SessionID
	if id == "" {
		id = NewSessionID()
	}
	target := opts.Target
	if target == "" {
		target = opts.Config.Capture.Target.Mode
	}
	return Manifest{
		SchemaVersion: SchemaVersion,
		SessionID:     id,
		CreatedAt:     opts.CreatedAt.UTC(),
		Hostname:      opts.Hostname,
		AppVersion:    opts.AppVersion,
		ConfigSource:  opts.Config.Source,
		Capture: CaptureSettings{
			Source:          opts.Config.Capture.Source,
			Devices:         opts.Devices,
			Target:          target,
			Output:          opts.Config.Output.Path,
			SuppressRepeats: opts.Config.Capture.SuppressRepeats,
			FlushOnExit:     opts.Config.Capture.FlushOnExit,
		},
		Status: Status{State: StatePending},
	}
}

// MarkStarted moves the manifest into the recording state.
func (m *Manifest) MarkStarted(at time.Time) {
	started := at.UTC()
	m.Status.State = StateRecording
	m.Status.StartedAt = &started
}

// RecordController appends a controller transition to the timeline.
func (m *Manifest) RecordController(state, reason string, at time.Time) {
	m.Status.Controller = append(m.Status.Controller, ControllerTimelineEntry{
		State:     state,
		Reason:    reason,
		Timestamp: at.UTC(),
	})
}

// MarkFinished records the outcome of the session. A non-nil err marks the
// session as errored and stores its message as the summary.
func (m *Manifest) MarkFinished(at time.Time, termination string, counters Counters, err error) {
	ended := at.UTC()
	m.Status.EndedAt = &ended
	m.Status.Termination = termination
	m.Status.Counters = &counters
	if err != nil {
		m.Status.State = StateErrored
		m.Status.Summary = err.Error()
		return
	}
	m.Status.State = StateCompleted
	m.Status.Summary = fmt.Sprintf("%d records from %d events", counters.Records, counters.Accepted)
}

// Save writes the manifest JSON to disk with indentation for readability.
func Save(man Manifest, path string) error {
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Load reads a manifest JSON file from disk.
func Load(path string) (Manifest, error) {
	var man Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return man, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &man); err != nil {
		return man, fmt.Errorf("decode manifest: %w", err)
	}
	return man, nil
}
