package attach

import "encoding/json"

// Report captures what an overlay session reconciled: which keys were
// injected at begin, which new bindings were persisted or dropped, which
// namespace keys were deleted, and the key that failed the immutability check
// if any.
type Report struct {
	BackupID  string   `json:"backup_id"`
	Scope     string   `json:"scope,omitempty"`
	Injected  []string `json:"injected,omitempty"`
	Persisted []string `json:"persisted,omitempty"`
	Dropped   []string `json:"dropped,omitempty"`
	Deleted   []string `json:"deleted,omitempty"`
	FailedKey string   `json:"failed_key,omitempty"`
}

// ToJSON serialises the report for logging or transport helpers.
func (r Report) ToJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(alias(r))
}

// ReportFromJSON deserialises a payload previously generated via ToJSON.
func ReportFromJSON(payload []byte) (Report, error) {
	type alias Report
	var report alias
	if err := json.Unmarshal(payload, &report); err != nil {
		return Report{}, err
	}
	return Report(report), nil
}

func (r Report) clone() Report {
	out := r
	out.Injected = append([]string(nil), r.Injected...)
	out.Persisted = append([]string(nil), r.Persisted...)
	out.Dropped = append([]string(nil), r.Dropped...)
	out.Deleted = append([]string(nil), r.Deleted...)
	return out
}
