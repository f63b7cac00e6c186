package eventbus

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "storefront:signal:"

// Redis bridges signals between processes over Redis pub/sub, the server-side
// analog of a browser's cross-tab storage event. Local subscribers receive
// both locally emitted and remote signals; a signal emitted here is published
// so every other process sees it too.
type Redis struct {
	local  *Memory
	client *redis.Client
	pubsub *redis.PubSub
	origin string
	log    zerolog.Logger
	cancel context.CancelFunc
}

// NewRedis subscribes to the shared signal channels and starts the delivery
// loop. Close must be called to release the subscription.
func NewRedis(client *redis.Client, log zerolog.Logger) *Redis {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Redis{
		local:  NewMemory(),
		client: client,
		pubsub: client.PSubscribe(ctx, channelPrefix+"*"),
		origin: uuid.NewString(),
		log:    log,
		cancel: cancel,
	}
	go b.run(ctx)
	return b
}

func (b *Redis) Emit(kind string) {
	// Payload carries the emitting bus's origin id so the loopback delivery
	// of our own publish can be dropped in run.
	payload := b.origin + "|" + kind
	if err := b.client.Publish(context.Background(), channelPrefix+kind, payload).Err(); err != nil {
		b.log.Warn().Err(err).Str("kind", kind).Msg("signal publish failed, delivering locally only")
	}
	b.local.Emit(kind)
}

func (b *Redis) Subscribe(kind string, handler Handler) func() {
	return b.local.Subscribe(kind, handler)
}

// Close stops the delivery loop and releases the Redis subscription.
func (b *Redis) Close() error {
	b.cancel()
	return b.pubsub.Close()
}

// run drains remote signals and fans them out to local subscribers.
func (b *Redis) run(ctx context.Context) {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			origin, kind, found := strings.Cut(msg.Payload, "|")
			if !found {
				kind = msg.Payload
			} else if origin == b.origin {
				// Our own publish looping back; Emit already delivered it.
				continue
			}
			b.log.Debug().Str("kind", kind).Msg("remote signal received")
			b.local.Emit(kind)
		}
	}
}
