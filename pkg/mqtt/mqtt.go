// Package mqtt provides MQTT communication capabilities for the bot.
// It publishes moderation events and answers request/response calls.
package mqtt

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	requestPrefix  = "pancy/request/"
	responsePrefix = "pancy/response/"
	eventPrefix    = "pancy/events/"
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// MqttCommunicator handles MQTT communication. Request routes registered
// with On are remembered and subscribed again after every reconnect.
type MqttCommunicator struct {
	client   mqtt.Client
	clientID string

	mu     sync.RWMutex
	routes map[string]mqtt.MessageHandler
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator
func Init(host, port, username, password, clientID string) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(host, port, username, password, clientID)
	})
	return communicator
}

// Get returns the global MQTT communicator
func Get() *MqttCommunicator {
	return communicator
}

// NewMqttCommunicator creates a new MQTT communicator. Connection failures are
// logged and retried in the background.
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	mc := &MqttCommunicator{
		clientID: clientID,
		routes:   make(map[string]mqtt.MessageHandler),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(fmt.Sprintf("%s_%s", clientID, uuid.New().String())).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(mc.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc.client = mqtt.NewClient(opts)

	token := mc.client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return mc
}

// onConnect restores the request routes on a fresh session
func (mc *MqttCommunicator) onConnect(c mqtt.Client) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s (%d rutas)", mc.clientID, len(mc.routes)), "MQTT")
	for topic, handler := range mc.routes {
		if token := c.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
			logger.Error(fmt.Sprintf("Error suscribiendo a %s: %v", topic, token.Error()), "MQTT")
		}
	}
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc != nil && mc.client != nil && mc.client.IsConnected()
}

// Publish sends a message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 0, false, jsonData)
	token.Wait()
	return token.Error()
}

// PublishEvent publishes payload on pancy/events/<name>
func (mc *MqttCommunicator) PublishEvent(name string, payload interface{}) error {
	if !mc.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}
	return mc.Publish(eventPrefix+name, payload)
}

// RequestHandler is a function type for handling MQTT requests
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// On registers a handler for a request topic. requestTopic may use the
// '+' and '#' wildcards. Replies go to pancy/response/<topic>/<correlationId>.
func (mc *MqttCommunicator) On(requestTopic string, callback RequestHandler) {
	topic := requestPrefix + requestTopic
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		responseTopic, response, ok := dispatch(topic, msg.Topic(), msg.Payload(), callback)
		if !ok {
			return
		}
		if err := mc.Publish(responseTopic, response); err != nil {
			logger.Error(fmt.Sprintf("Error respondiendo en %s: %v", responseTopic, err), "MQTT")
		}
	}

	mc.mu.Lock()
	mc.routes[topic] = handler
	mc.mu.Unlock()

	// While offline the route is subscribed by onConnect
	if !mc.IsConnected() {
		return
	}
	if token := mc.client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, token.Error()), "MQTT")
	}
}

// Routes returns the registered request topics
func (mc *MqttCommunicator) Routes() []string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	topics := make([]string, 0, len(mc.routes))
	for topic := range mc.routes {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// dispatch decodes one request received on topic, runs callback and builds
// the response. ok is false when the message must be ignored.
func dispatch(pattern, topic string, raw []byte, callback RequestHandler) (responseTopic string, response MqttResponse, ok bool) {
	if !topicMatch(pattern, topic) {
		return "", MqttResponse{}, false
	}

	var request MqttRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return "", MqttResponse{}, false
	}
	if request.CorrelationID == "" {
		logger.Warn("Petición MQTT sin correlationId en "+topic, "MQTT")
		return "", MqttResponse{}, false
	}

	actualTopic := strings.TrimPrefix(topic, requestPrefix)
	responseTopic = fmt.Sprintf("%s%s/%s", responsePrefix, actualTopic, request.CorrelationID)

	payloadMap := make(map[string]interface{})
	if pm, isMap := request.Payload.(map[string]interface{}); isMap {
		payloadMap = pm
	}
	payloadMap["_topic"] = actualTopic

	response = MqttResponse{CorrelationID: request.CorrelationID}
	data, err := runHandler(callback, payloadMap)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}
	return responseTopic, response, true
}

func runHandler(callback RequestHandler, payload map[string]interface{}) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Panic en handler MQTT: %v", r), "MQTT")
			err = fmt.Errorf("internal: %v", r)
		}
	}()
	return callback(payload)
}

// topicMatch checks if a received topic matches a pattern (with wildcards)
// '+' matches exactly one topic level
// '#' matches zero or more topic levels and must be the last character
func topicMatch(pattern, topic string) bool {
	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	for i, part := range patternParts {
		if part == "#" {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if part != "+" && part != topicParts[i] {
			return false
		}
	}

	return len(patternParts) == len(topicParts)
}
