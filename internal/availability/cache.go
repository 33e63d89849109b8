package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
)

const keyPrefix = "availability:"

// Cache stores computed slots in one Redis hash per barber and date, keyed by
// service id. Writers to bookings or working windows drop the affected keys.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func dayKey(barberID, date string) string {
	return keyPrefix + barberID + ":" + date
}

type cachedSlot struct {
	Start time.Time `json:"s"`
	End   time.Time `json:"e"`
}

// Get returns the cached slots and whether the entry existed.
func (c *Cache) Get(ctx context.Context, barberID, date, serviceID string) ([]schedule.Slot, bool, error) {
	raw, err := c.client.HGet(ctx, dayKey(barberID, date), serviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("availability cache get: %w", err)
	}

	var cached []cachedSlot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("availability cache decode: %w", err)
	}
	slots := make([]schedule.Slot, len(cached))
	for i, s := range cached {
		slots[i] = schedule.Slot{Start: s.Start, End: s.End}
	}
	return slots, true, nil
}

func (c *Cache) Set(ctx context.Context, barberID, date, serviceID string, slots []schedule.Slot) error {
	cached := make([]cachedSlot, len(slots))
	for i, s := range slots {
		cached[i] = cachedSlot{Start: s.Start, End: s.End}
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("availability cache encode: %w", err)
	}

	key := dayKey(barberID, date)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, serviceID, raw)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("availability cache set: %w", err)
	}
	return nil
}

// InvalidateDay drops every service's slots for one barber and date.
func (c *Cache) InvalidateDay(ctx context.Context, barberID, date string) error {
	if err := c.client.Del(ctx, dayKey(barberID, date)).Err(); err != nil {
		return fmt.Errorf("availability cache invalidate %s: %w", date, err)
	}
	return nil
}

// InvalidateBarber drops every cached date of a barber.
func (c *Cache) InvalidateBarber(ctx context.Context, barberID string) error {
	iter := c.client.Scan(ctx, 0, dayKey(barberID, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("availability cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("availability cache invalidate barber: %w", err)
	}
	return nil
}
