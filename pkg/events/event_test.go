package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{}

func (failing) Publish(context.Context, Event) error {
	return errors.New("bus down")
}

func TestMarshalEnvelope(t *testing.T) {
	data, err := Marshal(New(PatternCreated, map[string]interface{}{"id": "p1"}))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, PatternCreated, got["type"])
	assert.Equal(t, map[string]interface{}{"id": "p1"}, got["data"])
	assert.NotEmpty(t, got["occurred_at"])
}

func TestFanout(t *testing.T) {
	assert.Nil(t, Fanout(nil, nil))

	only := &Recorder{}
	assert.Same(t, only, Fanout(nil, only))

	a, b := &Recorder{}, &Recorder{}
	err := Fanout(a, failing{}, b).Publish(context.Background(), New(ViewDeleted, nil))
	assert.EqualError(t, err, "bus down")
	assert.Equal(t, []string{ViewDeleted}, a.Types())
	assert.Equal(t, []string{ViewDeleted}, b.Types())
}
