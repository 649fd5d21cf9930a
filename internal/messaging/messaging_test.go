package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventia/ventia-backend/internal/entity"
)

func TestWrapOpenRoundTrip(t *testing.T) {
	queried := entity.UnconfirmedProductQueried{
		EventID:       "evt-1",
		BusinessID:    7,
		ProductID:     42,
		ProductName:   "Tortillas",
		CustomerPhone: "5215559999",
		QueriedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := Wrap(queried)
	require.NoError(t, err)

	env, err := Open(raw)
	require.NoError(t, err)
	assert.Equal(t, queried.EventType(), env.Type)

	var decoded entity.UnconfirmedProductQueried
	require.NoError(t, env.Decode(&decoded))
	assert.Equal(t, queried, decoded)
}

func TestWrapTagsEachEventType(t *testing.T) {
	raw, err := Wrap(entity.ProductDecisionApplied{EventID: "evt-2", ProductID: 42})
	require.NoError(t, err)

	env, err := Open(raw)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductDecisionApplied{}.EventType(), env.Type)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("{not json"))
	assert.Error(t, err)
}
