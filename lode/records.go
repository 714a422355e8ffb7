package lode

// RecordKindRun is the discriminator for run records.
const RecordKindRun = "run"

// RunRecord is the storage format for one completed phase of a run.
type RunRecord struct {
	RunID      string `json:"run_id"`
	Phase      string `json:"phase"`
	TargetURL  string `json:"target_url,omitempty"`
	Outcome    string `json:"outcome"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Message    string `json:"message,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	DurationMS int64  `json:"duration_ms"`

	// Capture phase
	DocumentSource string `json:"document_source,omitempty"`
	ImageSource    string `json:"image_source,omitempty"`

	// Generation phase
	Model string   `json:"model,omitempty"`
	Trail []string `json:"trail,omitempty"`

	// Files archived under the run's files/ prefix.
	Files []string `json:"files,omitempty"`
}

// toRunRecordMap converts a RunRecord to the map form Lode's HiveLayout
// requires, adding the discriminator and partition keys.
func toRunRecordMap(rec RunRecord, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind": RecordKindRun,
		"run_id":      cfg.RunID,
		"phase":       rec.Phase,
		"outcome":     rec.Outcome,
		"started_at":  rec.StartedAt,
		"finished_at": rec.FinishedAt,
		"duration_ms": rec.DurationMS,
		"source":      cfg.Source,
		"day":         cfg.Day,
	}
	optional := map[string]string{
		"target_url":      rec.TargetURL,
		"error_kind":      rec.ErrorKind,
		"message":         rec.Message,
		"document_source": rec.DocumentSource,
		"image_source":    rec.ImageSource,
		"model":           rec.Model,
	}
	for k, v := range optional {
		if v != "" {
			m[k] = v
		}
	}
	if len(rec.Trail) > 0 {
		m["trail"] = rec.Trail
	}
	if len(rec.Files) > 0 {
		m["files"] = rec.Files
	}
	return m
}

// fromRunRecordMap converts a decoded JSONL record back to a RunRecord.
func fromRunRecordMap(m map[string]any) RunRecord {
	rec := RunRecord{
		RunID:          toString(m["run_id"]),
		Phase:          toString(m["phase"]),
		TargetURL:      toString(m["target_url"]),
		Outcome:        toString(m["outcome"]),
		ErrorKind:      toString(m["error_kind"]),
		Message:        toString(m["message"]),
		StartedAt:      toString(m["started_at"]),
		FinishedAt:     toString(m["finished_at"]),
		DocumentSource: toString(m["document_source"]),
		ImageSource:    toString(m["image_source"]),
		Model:          toString(m["model"]),
		Trail:          toStrings(m["trail"]),
		Files:          toStrings(m["files"]),
	}
	switch v := m["duration_ms"].(type) {
	case float64:
		rec.DurationMS = int64(v)
	case int64:
		rec.DurationMS = v
	case int:
		rec.DurationMS = int64(v)
	}
	return rec
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toStrings(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
