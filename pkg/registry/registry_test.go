package registry

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActivity(id, taskType string) Activity {
	return Activity{
		ID:                   id,
		DisplayName:          "Trigger Event",
		Category:             "automation",
		Version:              "1.0.0",
		TaskType:             taskType,
		ImplementationStatus: StatusCompleted,
		InputSchema:          json.RawMessage(`{"type":"object","required":["siteId"]}`),
		Timeout:              "30s",
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")

	reg := &ActivityRegistry{Version: "1.0.0"}
	reg.Upsert(sampleActivity("trigger-event", "email-automation.trigger-event"), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05Z", loaded.LastUpdated)
	require.Len(t, loaded.Activities, 1)

	a, ok := loaded.Find("email-automation.trigger-event")
	require.True(t, ok)
	assert.Equal(t, "trigger-event", a.ID)
	assert.JSONEq(t, `{"type":"object","required":["siteId"]}`, string(a.InputSchema))

	_, ok = loaded.Find("unknown")
	assert.False(t, ok)
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestUpsert_Replaces(t *testing.T) {
	reg := &ActivityRegistry{}
	now := time.Now()
	reg.Upsert(sampleActivity("a", "task.a"), now)

	updated := sampleActivity("a", "task.a")
	updated.Version = "1.1.0"
	reg.Upsert(updated, now)

	require.Len(t, reg.Activities, 1)
	assert.Equal(t, "1.1.0", reg.Activities[0].Version)
}

// ==========================
// Validate
// ==========================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{name: "valid", mutate: func(r *ActivityRegistry) {}},
		{name: "empty", mutate: func(r *ActivityRegistry) { r.Activities = nil }, wantErr: "no activities"},
		{name: "missing id", mutate: func(r *ActivityRegistry) { r.Activities[0].ID = "" }, wantErr: "ID"},
		{name: "duplicate id", mutate: func(r *ActivityRegistry) { r.Activities[1].ID = "a" }, wantErr: "duplicate activity ID"},
		{name: "duplicate task type", mutate: func(r *ActivityRegistry) { r.Activities[1].TaskType = "task.a" }, wantErr: "duplicate task type"},
		{name: "missing category", mutate: func(r *ActivityRegistry) { r.Activities[0].Category = "" }, wantErr: "Category"},
		{name: "bad timeout", mutate: func(r *ActivityRegistry) { r.Activities[0].Timeout = "soon" }, wantErr: "invalid timeout"},
		{name: "bad schema", mutate: func(r *ActivityRegistry) {
			r.Activities[0].InputSchema = json.RawMessage(`{"type": 12}`)
		}, wantErr: "invalid input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{
				sampleActivity("a", "task.a"),
				sampleActivity("b", "task.b"),
			}}
			tt.mutate(reg)

			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
