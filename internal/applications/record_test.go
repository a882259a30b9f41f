package applications

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/jobboard/pkg/models"
)

func decode(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &fields))
	return fields
}

func TestUserRecord_NullOrMissingApplications(t *testing.T) {
	for _, body := range []string{`{"id":"1"}`, `{"id":"1","applications":null}`} {
		rec, err := decodeUserRecord(decode(t, body))
		require.NoError(t, err, body)
		apps, err := rec.applications()
		require.NoError(t, err)
		assert.NotNil(t, apps)
		assert.Empty(t, apps)

		require.NoError(t, rec.appendApplication(models.Application{JobID: "2", Status: models.StatusApplied}))
		out, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1","applications":[{"jobId":"2","status":"applied","appliedAt":"","jobTitle":"","company":""}]}`, string(out))
	}
}

func TestUserRecord_MalformedApplications(t *testing.T) {
	_, err := decodeUserRecord(decode(t, `{"applications":{"jobId":"1"}}`))
	require.Error(t, err)

	rec, err := decodeUserRecord(decode(t, `{"applications":[42]}`))
	require.NoError(t, err)
	_, err = rec.find("1")
	require.Error(t, err)
}

func TestUserRecord_SetStatusKeepsEntryMembers(t *testing.T) {
	rec, err := decodeUserRecord(decode(t, `{"applications":[{"jobId":"1","status":"applied","source":"referral"}]}`))
	require.NoError(t, err)

	idx, err := rec.find("1")
	require.NoError(t, err)
	require.NoError(t, rec.setStatus(idx, models.StatusHired))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"applications":[{"jobId":"1","status":"hired","source":"referral"}]}`, string(out))
}
