package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 8, 15, 18, 30, 0, 0, time.UTC)
	distance := 11.1
	a := domain.Assessment{
		ID:          "7d1f5c1e-0b7a-4c55-9d0e-3f1b2a8c9e10",
		Coordinate:  domain.Coordinate{Lat: 40.0, Lon: -120.0},
		Predicted:   5,
		DistanceKm:  &distance,
		Verdict:     domain.RiskVerdict{Classification: domain.WithinRadius, DangerRadius: 12.6, MaxRadius: 15.1},
		Message:     "You are within the high-risk radius of 12.6 km.",
		EvaluatedAt: now,
	}

	msg, err := serializeToMessage(a)
	require.NoError(t, err)

	assert.Equal(t, []byte(a.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"classification":"within_radius"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "verdict", msg.Headers[0].Key)
	assert.Equal(t, []byte("within_radius"), msg.Headers[0].Value)
	assert.Equal(t, "evaluated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.Assessment
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, a.ID, decoded.ID)
	require.NotNil(t, decoded.DistanceKm)
	assert.Equal(t, distance, *decoded.DistanceKm)
}
