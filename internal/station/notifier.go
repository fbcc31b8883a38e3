package station

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Notifier tells the playback engine that schedules changed and it should
// re-evaluate what is due to play. The signal is advisory and fire-and-forget:
// publish failures are logged and otherwise ignored.
type Notifier interface {
	NotifyReload(force bool)
}

// MQTTNotifier publishes reload hints to the station's broker.
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("[notifier] MQTT connection lost")
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("[notifier] connected to MQTT broker")
}

// NewMQTTNotifier connects to the broker and prepares the reload topic for
// the given station.
func NewMQTTNotifier(brokerURL, stationID string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("cadence-%s", stationID))
	opts.SetConnectTimeout(5 * time.Second)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTNotifier{
		client: client,
		topic:  fmt.Sprintf("station/%s/schedules", stationID),
	}, nil
}

func (n *MQTTNotifier) NotifyReload(force bool) {
	payload, _ := json.Marshal(map[string]any{
		"event": "schedules-changed",
		"force": force,
		"at":    time.Now().UTC().Format(time.RFC3339),
	})
	token := n.client.Publish(n.topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Warn().Err(err).Str("topic", n.topic).Msg("[notifier] reload publish failed")
		return
	}
	log.Debug().Str("topic", n.topic).Bool("force", force).Msg("[notifier] reload hint published")
}

func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}

// NopNotifier discards reload hints; used in tests and when no broker is
// configured.
type NopNotifier struct{}

func (NopNotifier) NotifyReload(bool) {}

var _ Notifier = (*MQTTNotifier)(nil)
var _ Notifier = NopNotifier{}
