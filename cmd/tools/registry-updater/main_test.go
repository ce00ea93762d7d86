package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"wecelebrate-notifier/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinActivities_Valid(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: builtinActivities()}
	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 7)
}

func TestGenerateThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	var out bytes.Buffer
	require.NoError(t, run([]string{"generate", "-path", path}, &out))
	assert.Contains(t, out.String(), "Wrote 7 activities")

	out.Reset()
	require.NoError(t, run([]string{"validate", "-path", path}, &out))
	assert.Contains(t, out.String(), "Found 7 activities")
}

func TestGenerate_KeepsManualEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := generate(path, now)
	require.NoError(t, err)
	require.NoError(t, updateActivity(path, "trigger-event", "status", registry.StatusVerified, now))
	require.NoError(t, updateActivity(path, "trigger-event", "version", "1.2.0", now))

	reg, err := generate(path, now)
	require.NoError(t, err)
	a, ok := reg.Find("email-automation.trigger-event")
	require.True(t, ok)
	assert.Equal(t, registry.StatusVerified, a.ImplementationStatus)
	assert.Equal(t, "1.2.0", a.Version)
	assert.Len(t, reg.Activities, 7)
}

func TestValidate_StaleSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	reg, err := generate(path, time.Now())
	require.NoError(t, err)

	a, _ := reg.Find("template.render-preview")
	a.InputSchema = json.RawMessage(`{"type":"object"}`)
	require.NoError(t, reg.Save(path))

	_, err = validateRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale")
}

// ==========================
// update
// ==========================

func TestUpdateActivity_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	_, err := generate(path, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name  string
		id    string
		field string
		value string
	}{
		{name: "unknown id", id: "nope", field: "status", value: "verified"},
		{name: "unknown field", id: "trigger-event", field: "owner", value: "x"},
		{name: "bad status", id: "trigger-event", field: "status", value: "done"},
		{name: "bad timeout", id: "trigger-event", field: "timeout", value: "later"},
		{name: "bad max jobs", id: "trigger-event", field: "maxJobsActive", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, updateActivity(path, tt.id, tt.field, tt.value, time.Now()))
		})
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"publish"}, &out))
	assert.Contains(t, out.String(), "Usage: registry-updater")
	assert.Error(t, run(nil, &out))
}
