package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const fanoutChannel = "support-chat:fanout"

// RedisFanout replica las publicaciones via Redis PubSub para que lleguen a
// suscriptores colgados de otros nodos. Todo pasa por Redis, incluido el
// trafico local: el loop de Run es quien alimenta el hub, asi la entrega es
// identica con uno o varios nodos. Si Redis no responde, se degrada a
// entrega local directa.
type RedisFanout struct {
	hub    *Hub
	client *redis.Client
	logger *zap.Logger
}

type fanoutEnvelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

func NewRedisFanout(hub *Hub, client *redis.Client, logger *zap.Logger) *RedisFanout {
	return &RedisFanout{hub: hub, client: client, logger: logger}
}

func (f *RedisFanout) Publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		f.logger.Warn("fanout payload marshal failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	env, err := json.Marshal(fanoutEnvelope{Topic: topic, Payload: data})
	if err != nil {
		f.logger.Warn("fanout envelope marshal failed", zap.String("topic", topic), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.client.Publish(ctx, fanoutChannel, env).Err(); err != nil {
		f.logger.Warn("redis publish failed, delivering locally", zap.String("topic", topic), zap.Error(err))
		f.hub.Publish(topic, json.RawMessage(data))
	}
}

// Run consume el canal de Redis y re-publica en el hub local hasta que el
// contexto se cancele. Pensado para correr en su propia goroutine.
func (f *RedisFanout) Run(ctx context.Context) {
	sub := f.client.Subscribe(ctx, fanoutChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env fanoutEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				f.logger.Warn("fanout envelope decode failed", zap.Error(err))
				continue
			}
			f.hub.Publish(env.Topic, env.Payload)
		}
	}
}
