package mqtt

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		pattern, topic string
		want           bool
	}{
		{"pancy/request/moderation/unwarn", "pancy/request/moderation/unwarn", true},
		{"pancy/request/moderation/+", "pancy/request/moderation/unwarn", true},
		{"pancy/request/#", "pancy/request/moderation/unwarn", true},
		{"pancy/request/#", "pancy/request", true},
		{"pancy/request/+", "pancy/request/moderation/unwarn", false},
		{"pancy/request/moderation/unwarn", "pancy/request/moderation", false},
		{"pancy/request/moderation/warn", "pancy/request/moderation/unwarn", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, topicMatch(tt.pattern, tt.topic), "%s vs %s", tt.pattern, tt.topic)
	}
}

func TestDispatch(t *testing.T) {
	var got map[string]interface{}
	handler := func(payload map[string]interface{}) (interface{}, error) {
		got = payload
		return "ok", nil
	}

	topic, resp, ok := dispatch(
		"pancy/request/moderation/unwarn",
		"pancy/request/moderation/unwarn",
		[]byte(`{"correlationId":"c1","payload":{"actor":"admin"}}`),
		handler,
	)

	require.True(t, ok)
	assert.Equal(t, "pancy/response/moderation/unwarn/c1", topic)
	assert.Equal(t, "c1", resp.CorrelationID)
	assert.Equal(t, "ok", resp.Data)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "admin", got["actor"])
	assert.Equal(t, "moderation/unwarn", got["_topic"])
}

func TestDispatchIgnoresBadMessages(t *testing.T) {
	handler := func(map[string]interface{}) (interface{}, error) { return nil, nil }

	_, _, ok := dispatch("pancy/request/a", "pancy/request/a", []byte(`not json`), handler)
	assert.False(t, ok)

	_, _, ok = dispatch("pancy/request/a", "pancy/request/a", []byte(`{"payload":{}}`), handler)
	assert.False(t, ok)

	_, _, ok = dispatch("pancy/request/a", "pancy/request/b", []byte(`{"correlationId":"c1"}`), handler)
	assert.False(t, ok)
}

func TestDispatchReportsHandlerErrorsAndPanics(t *testing.T) {
	_, resp, ok := dispatch("pancy/request/a", "pancy/request/a", []byte(`{"correlationId":"c1"}`),
		func(map[string]interface{}) (interface{}, error) { return nil, errors.New("boom") })
	require.True(t, ok)
	assert.Equal(t, "boom", resp.Error)

	_, resp, ok = dispatch("pancy/request/a", "pancy/request/a", []byte(`{"correlationId":"c2"}`),
		func(map[string]interface{}) (interface{}, error) { panic("kaboom") })
	require.True(t, ok)
	assert.Contains(t, resp.Error, "kaboom")
}

type fakeUnwarner struct {
	got    warns.UnwarnRequest
	result *warns.UnwarnResult
	err    error
}

func (f *fakeUnwarner) Unwarn(_ context.Context, req warns.UnwarnRequest) (*warns.UnwarnResult, error) {
	f.got = req
	return f.result, f.err
}

type fakeEvents struct {
	mu     sync.Mutex
	events []interface{}
	err    error
}

func (f *fakeEvents) PublishEvent(name string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, payload)
	return nil
}

func TestUnwarnHandlerDecodesPayload(t *testing.T) {
	svc := &fakeUnwarner{result: &warns.UnwarnResult{
		User:        &models.User{ID: "u1"},
		Removed:     models.Warning{ID: "w1", Reason: "spam"},
		ActiveCount: 2,
		Threshold:   3,
	}}
	events := &fakeEvents{}

	data, err := UnwarnHandler(svc, events)(map[string]interface{}{
		"targets": []interface{}{"u1"},
		"date":    "2024-03",
		"actor":   "panel",
		"_topic":  "moderation/unwarn",
	})

	require.NoError(t, err)
	assert.Equal(t, warns.UnwarnRequest{Targets: []string{"u1"}, Disambiguator: "2024-03", Actor: "panel"}, svc.got)
	summary, ok := data.(warns.UnwarnSummary)
	require.True(t, ok)
	assert.Equal(t, "spam", summary.Removed)

	require.Len(t, events.events, 1)
	audit := events.events[0].(UnwarnAudit)
	assert.Equal(t, "panel", audit.Actor)
	assert.Equal(t, "mqtt", audit.Source)
	assert.Equal(t, "u1", audit.UserID)
}

func TestUnwarnHandlerErrors(t *testing.T) {
	svc := &fakeUnwarner{err: &warns.InputError{Targets: 2}}
	events := &fakeEvents{}
	handler := UnwarnHandler(svc, events)

	_, err := handler(map[string]interface{}{"targets": []interface{}{"u1", "u2"}, "actor": "panel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_target")

	_, err = handler(map[string]interface{}{"targets": []interface{}{"u1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_request")

	_, err = handler(map[string]interface{}{"targets": "u1", "actor": "panel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_request")

	assert.Empty(t, events.events)
}

func TestPublishUnwarnSkipsNoOp(t *testing.T) {
	events := &fakeEvents{}

	PublishUnwarn(events, "a", "web", &warns.UnwarnResult{User: &models.User{ID: "u1"}, NoOp: true})
	PublishUnwarn(nil, "a", "web", &warns.UnwarnResult{User: &models.User{ID: "u1"}})
	assert.Empty(t, events.events)

	events.err = errors.New("mqtt not connected")
	assert.NotPanics(t, func() {
		PublishUnwarn(events, "a", "web", &warns.UnwarnResult{User: &models.User{ID: "u1"}})
	})
}

func TestOnRecordsRoutesWhileOffline(t *testing.T) {
	mc := &MqttCommunicator{routes: make(map[string]mqtt.MessageHandler)}

	mc.On("moderation/unwarn", func(map[string]interface{}) (interface{}, error) { return nil, nil })
	mc.On("moderation/+", func(map[string]interface{}) (interface{}, error) { return nil, nil })
	mc.On("moderation/unwarn", func(map[string]interface{}) (interface{}, error) { return nil, nil })

	assert.Equal(t, []string{
		"pancy/request/moderation/+",
		"pancy/request/moderation/unwarn",
	}, mc.Routes())
	assert.False(t, mc.IsConnected())
}
