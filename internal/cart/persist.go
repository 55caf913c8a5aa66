package cart

import (
	"context"
	"log/slog"

	"github.com/green-tasty/preorder-gateway/internal/models"
	"github.com/green-tasty/preorder-gateway/internal/storage"
)

// persistedState is the snapshot blob layout. Only the cart slice is
// persisted; other session state is explicitly excluded.
type persistedState struct {
	Cart []models.CartItem `json:"cart"`
}

// AttachPersistence restores the persisted snapshot into the store, then
// subscribes a listener that writes a fresh snapshot after every committed
// mutation. Snapshot write failures are logged, never surfaced to the
// mutation that triggered them.
func AttachPersistence(ctx context.Context, store *Store, st storage.Storage) error {

	var state persistedState

	found, err := st.Get(ctx, storage.PersistRootKey, &state)
	if err != nil {
		return err
	}

	if found {
		store.Hydrate(state.Cart)
		slog.Info("Cart snapshot restored", slog.Int("items", len(state.Cart)))
	}

	store.Subscribe(func(items []models.CartItem) {
		if err := st.Set(context.Background(), storage.PersistRootKey, persistedState{Cart: items}); err != nil {
			slog.Error("Failed to persist cart snapshot", slog.String("error", err.Error()))
		}
	})

	return nil
}
