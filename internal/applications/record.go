package applications

import (
	"encoding/json"
	"fmt"

	"github.com/garnizeh/jobboard/pkg/models"
)

const applicationsField = "applications"

// userRecord is a remote user kept as raw JSON members. Writing it back
// re-emits every member exactly as it was read; only the applications array
// is ever rewritten, and inside it only the entries that were changed.
type userRecord struct {
	fields map[string]json.RawMessage
	apps   []json.RawMessage
}

func decodeUserRecord(fields map[string]json.RawMessage) (*userRecord, error) {
	r := &userRecord{fields: fields}
	if r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
	}
	raw, ok := r.fields[applicationsField]
	if !ok || string(raw) == "null" {
		return r, nil
	}
	if err := json.Unmarshal(raw, &r.apps); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}
	return r, nil
}

// applications decodes every entry.
func (r *userRecord) applications() ([]models.Application, error) {
	out := make([]models.Application, 0, len(r.apps))
	for i, raw := range r.apps {
		var a models.Application
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode application %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// find returns the index of the entry for jobID, or -1.
func (r *userRecord) find(jobID string) (int, error) {
	for i, raw := range r.apps {
		var key struct {
			JobID string `json:"jobId"`
		}
		if err := json.Unmarshal(raw, &key); err != nil {
			return -1, fmt.Errorf("decode application %d: %w", i, err)
		}
		if key.JobID == jobID {
			return i, nil
		}
	}
	return -1, nil
}

func (r *userRecord) appendApplication(a models.Application) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	r.apps = append(r.apps, b)
	return r.storeApplications()
}

// setStatus rewrites the status member of entry i and leaves its other
// members untouched.
func (r *userRecord) setStatus(i int, s models.ApplicationStatus) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(r.apps[i], &members); err != nil {
		return fmt.Errorf("decode application %d: %w", i, err)
	}
	status, err := json.Marshal(s)
	if err != nil {
		return err
	}
	members["status"] = status
	b, err := json.Marshal(members)
	if err != nil {
		return err
	}
	r.apps[i] = b
	return r.storeApplications()
}

func (r *userRecord) storeApplications() error {
	b, err := json.Marshal(r.apps)
	if err != nil {
		return err
	}
	r.fields[applicationsField] = b
	return nil
}

// MarshalJSON emits the record with every member it was read with.
func (r *userRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields)
}
