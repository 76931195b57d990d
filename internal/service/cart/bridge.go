package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
	"podcast-storefront/internal/identity"
	"podcast-storefront/internal/kv"
)

// SnapshotKey is the storage key of an identity's saved cart.
func SnapshotKey(uid string) string {
	return "cart_" + uid
}

// Bridge mirrors a Store into a per-identity kv slot. It is best effort: storage
// and decode failures leave the cart empty and are only logged.
type Bridge struct {
	store    *Store
	kv       kv.Store
	identity identity.Provider
	logger   *zap.Logger

	mu  sync.Mutex
	uid string
	ctx context.Context

	stops []func()
}

func NewBridge(store *Store, slots kv.Store, provider identity.Provider, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{store: store, kv: slots, identity: provider, logger: logger}
}

// Start subscribes to identity and cart changes and applies the current identity.
// The context bounds every storage call made by the bridge.
func (b *Bridge) Start(ctx context.Context) {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	b.stops = append(b.stops,
		b.identity.Subscribe(b.onIdentity),
		b.store.Subscribe(b.onCart),
	)
	b.onIdentity(b.identity.Current())
}

// Stop detaches the bridge. The store keeps its items.
func (b *Bridge) Stop() {
	for _, stop := range b.stops {
		stop()
	}
	b.stops = nil
}

func (b *Bridge) onIdentity(id *identity.Identity) {
	uid := ""
	if id != nil {
		uid = id.UID
	}

	b.mu.Lock()
	same := uid != "" && uid == b.uid
	b.uid = uid
	ctx := b.ctx
	b.mu.Unlock()

	// Profile refreshes republish the same identity; the cart stays as it is.
	if same {
		return
	}
	if uid == "" {
		b.store.Replace(nil)
		return
	}
	b.store.Replace(b.load(ctx, uid))
}

func (b *Bridge) load(ctx context.Context, uid string) []domain.LineItem {
	raw, err := b.kv.Get(ctx, SnapshotKey(uid))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			b.logger.Warn("cart snapshot load failed", zap.String("uid", uid), zap.Error(err))
		}
		return nil
	}
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		b.logger.Warn("cart snapshot decode failed", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	return sanitize(items)
}

func (b *Bridge) onCart(ev Event) {
	if ev.Op == OpLoad {
		return
	}
	b.mu.Lock()
	uid := b.uid
	ctx := b.ctx
	b.mu.Unlock()
	if uid == "" {
		return
	}

	key := SnapshotKey(uid)
	if ev.Op == OpClear || len(ev.Items) == 0 {
		if err := b.kv.Remove(ctx, key); err != nil {
			b.logger.Warn("cart snapshot remove failed", zap.String("uid", uid), zap.Error(err))
		}
		return
	}
	raw, err := json.Marshal(ev.Items)
	if err != nil {
		b.logger.Warn("cart snapshot encode failed", zap.String("uid", uid), zap.Error(err))
		return
	}
	if err := b.kv.Set(ctx, key, raw); err != nil {
		b.logger.Warn("cart snapshot save failed", zap.String("uid", uid), zap.Error(err))
	}
}

// sanitize drops entries a hand-edited or older snapshot could carry: unknown kinds,
// non-positive quantities and duplicate (id, kind) pairs.
func sanitize(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, li := range items {
		if _, err := domain.ParseKind(string(li.Kind)); err != nil || li.ID == "" || li.Quantity <= 0 {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen.Matches(li.ID, li.Kind) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, li)
		}
	}
	return out
}
