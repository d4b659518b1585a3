package service

import (
	"context"
	"encoding/json"
	"time"

	"seogate/internal/platform/store"
	"seogate/internal/services/cache/domain"
)

const hotPrefix = "seogate:cache:"

// hot is the redis read-through layer in front of the postgres cache
type hot struct {
	kv store.KV
}

func (h hot) enabled() bool { return h.kv != nil }

func (h hot) get(ctx context.Context, checksum string) (domain.Entry, bool, error) {
	raw, ok, err := h.kv.Get(ctx, hotPrefix+checksum)
	if err != nil || !ok {
		return domain.Entry{}, false, err
	}
	var e domain.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// unreadable value, drop it so the next write heals the key
		_ = h.kv.Del(ctx, hotPrefix+checksum)
		return domain.Entry{}, false, nil
	}
	return e, true, nil
}

// put stores e for whatever remains of its freshness window
func (h hot) put(ctx context.Context, e domain.Entry, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return h.kv.Set(ctx, hotPrefix+e.Checksum, raw, remaining)
}
