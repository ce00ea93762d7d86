package registry

import "encoding/json"

// ActivityRegistry is the on-disk catalogue of job types this service
// handles, kept in configs/activity-registry.json for BPMN authors.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID                   string          `json:"id"`
	DisplayName          string          `json:"displayName"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	Version              string          `json:"version"`
	TaskType             string          `json:"taskType"`
	ImplementationStatus string          `json:"implementationStatus"`
	InputSchema          json.RawMessage `json:"inputSchema"`
	ErrorCodes           []string        `json:"errorCodes"`
	Timeout              string          `json:"timeout"`
	MaxJobsActive        int             `json:"maxJobsActive"`
	Tags                 []string        `json:"tags"`
}

const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)
