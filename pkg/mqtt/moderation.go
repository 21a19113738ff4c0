package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
	"github.com/goccy/go-json"
)

// Moderation topics, relative to the request and event prefixes
const (
	UnwarnTopic = "moderation/unwarn"
	UnwarnEvent = "moderation/unwarn"
)

const requestTimeout = 30 * time.Second

// Unwarner is the part of the moderation service MQTT needs
type Unwarner interface {
	Unwarn(ctx context.Context, req warns.UnwarnRequest) (*warns.UnwarnResult, error)
}

// EventPublisher publishes audit events
type EventPublisher interface {
	PublishEvent(name string, payload interface{}) error
}

// UnwarnPayload is the body of a remote unwarn request
type UnwarnPayload struct {
	Targets []string `json:"targets"`
	Date    string   `json:"date,omitempty"`
	Actor   string   `json:"actor"`
}

// UnwarnAudit is published after every successful unwarn
type UnwarnAudit struct {
	warns.UnwarnSummary
	Actor  string    `json:"actor"`
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

// decodePayload converts a generic request payload into v
func decodePayload(payload map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// UnwarnHandler serves pancy/request/moderation/unwarn. Errors are prefixed
// with their warns.Code so clients can branch on them.
func UnwarnHandler(svc Unwarner, events EventPublisher) RequestHandler {
	return func(payload map[string]interface{}) (interface{}, error) {
		var req UnwarnPayload
		if err := decodePayload(payload, &req); err != nil {
			return nil, fmt.Errorf("bad_request: %v", err)
		}
		if req.Actor == "" {
			return nil, fmt.Errorf("bad_request: actor is required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := svc.Unwarn(ctx, warns.UnwarnRequest{
			Targets:       req.Targets,
			Disambiguator: req.Date,
			Actor:         req.Actor,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %v", warns.Code(err), err)
		}

		PublishUnwarn(events, req.Actor, "mqtt", result)
		return result.Summary(), nil
	}
}

// PublishUnwarn emits the audit event of a completed unwarn. No-op results and
// a missing or disconnected publisher are skipped.
func PublishUnwarn(events EventPublisher, actor, source string, result *warns.UnwarnResult) {
	if events == nil || result == nil || result.NoOp {
		return
	}
	audit := UnwarnAudit{
		UnwarnSummary: result.Summary(),
		Actor:         actor,
		Source:        source,
		At:            time.Now().UTC(),
	}
	if err := events.PublishEvent(UnwarnEvent, audit); err != nil {
		logger.Debug("No se publicó el evento de unwarn: "+err.Error(), "MQTT")
	}
}

// RegisterModeration subscribes the moderation request handlers
func (mc *MqttCommunicator) RegisterModeration(svc Unwarner) {
	mc.On(UnwarnTopic, UnwarnHandler(svc, mc))
	logger.System("Handlers MQTT de moderación registrados", "MQTT")
}
