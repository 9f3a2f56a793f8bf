package acquire

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
)

// BrokerOptions identify the MQTT endpoint.
type BrokerOptions struct {
	// Addr in paho form, e.g. tcp://192.168.1.10:1883.
	Addr     string
	ClientID string
	Username string
	Password string
}

// PahoBroker adapts an eclipse/paho client to the Broker interface. One
// instance serves one wake cycle; auto-reconnect stays off because the
// sequencer owns all retry policy.
type PahoBroker struct {
	client mqtt.Client
}

// NewPahoBroker builds the client without connecting.
func NewPahoBroker(o BrokerOptions) *PahoBroker {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(o.Addr)
	opts.SetClientID(o.ClientID)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetCleanSession(true)

	return &PahoBroker{client: mqtt.NewClient(opts)}
}

// Connect dials the broker within the remaining context budget.
func (b *PahoBroker) Connect(ctx context.Context) error {
	token := b.client.Connect()
	if !token.WaitTimeout(tokenBudget(ctx)) {
		return errors.New("broker connect timeout")
	}
	return errors.Wrap(token.Error(), "broker connect")
}

// Subscribe registers handler for topic at QoS 0. Retained delivery on the
// publisher side means the latest value arrives right after subscribing.
func (b *PahoBroker) Subscribe(topic string, handler func(payload []byte)) error {
	token := b.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	if !token.WaitTimeout(2 * time.Second) {
		return errors.Errorf("subscribe %s timeout", topic)
	}
	return errors.Wrapf(token.Error(), "subscribe %s", topic)
}

// Disconnect closes the session with a short grace period.
func (b *PahoBroker) Disconnect() {
	if b.client.IsConnected() {
		b.client.Disconnect(250)
	}
}

// tokenBudget converts the context deadline into a paho wait timeout.
func tokenBudget(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 5 * time.Second
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return time.Millisecond
	}
	return remaining
}
