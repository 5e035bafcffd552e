package redisadapter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	jobID := uuid.New()

	msg, err := ParseMessage(redis.XMessage{ID: "1-0", Values: map[string]any{
		"job_id":   jobID.String(),
		"attempt":  "2",
		"trace_id": "abc",
	}})
	require.NoError(t, err)
	assert.Equal(t, "1-0", msg.ID)
	assert.Equal(t, jobID, msg.JobID)
	assert.Equal(t, 2, msg.Attempt)
	assert.Equal(t, "abc", msg.TraceID)
	assert.Empty(t, msg.LastError)
}

func TestParseMessageDefaultsAttempt(t *testing.T) {
	msg, err := ParseMessage(redis.XMessage{ID: "1-0", Values: map[string]any{"job_id": uuid.NewString()}})
	require.NoError(t, err)
	assert.Equal(t, 1, msg.Attempt)
}

func TestParseMessageRejectsBadPayloads(t *testing.T) {
	for name, values := range map[string]map[string]any{
		"missing job": {"attempt": "1"},
		"bad job id":  {"job_id": "nope"},
		"bad attempt": {"job_id": uuid.NewString(), "attempt": "x"},
	} {
		_, err := ParseMessage(redis.XMessage{ID: "1-0", Values: values})
		assert.Error(t, err, name)
	}
}

func TestMessageValuesRoundTrip(t *testing.T) {
	in := Message{JobID: uuid.New(), Attempt: 3, TraceID: "t", LastError: "boom"}
	out, err := ParseMessage(redis.XMessage{ID: "9-0", Values: messageValues(in)})
	require.NoError(t, err)
	assert.Equal(t, in.JobID, out.JobID)
	assert.Equal(t, 3, out.Attempt)
	assert.Equal(t, "boom", out.LastError)
}
