package realtime

import (
	"sync"

	"github.com/wm-metals/trade-api/internal/cache"
	"go.uber.org/zap"
)

// Bridge keeps the query cache consistent with the change stream: every
// event on a watched table invalidates the same tags a direct mutation
// through the service layer would. Consuming from the hub rather than
// hooking each service means changes applied by jobs or imports
// invalidate too.
type Bridge struct {
	hub         *Hub
	invalidator cache.Invalidator
	logger      *zap.Logger

	sub  *Subscription
	done chan struct{}
	once sync.Once
}

// NewBridge wires a hub to a cache invalidator
func NewBridge(hub *Hub, invalidator cache.Invalidator, logger *zap.Logger) *Bridge {
	return &Bridge{
		hub:         hub,
		invalidator: invalidator,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Start subscribes to every watched table and begins applying
// invalidations. Events for tables without cache dependencies are
// ignored.
func (b *Bridge) Start() {
	b.sub = b.hub.Subscribe(cache.WatchedTables()...)

	go func() {
		defer close(b.done)
		for e := range b.sub.C {
			tags := cache.TagsForTable(e.Table)
			if len(tags) == 0 {
				continue
			}
			b.invalidator.InvalidateTags(tags...)
			b.logger.Debug("cache invalidated from change event",
				zap.String("table", e.Table),
				zap.String("op", string(e.Op)),
				zap.Strings("tags", tags))
		}
	}()
}

// Stop detaches from the hub and waits for the consumer loop to drain
func (b *Bridge) Stop() {
	b.once.Do(func() {
		if b.sub == nil {
			close(b.done)
			return
		}
		b.sub.Close()
		<-b.done
	})
}
