package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SettingsRepository persists the per-user proximity settings and the
// notified-friends set. The notified set is always overwritten whole;
// it is never merged, so a crashed evaluation can at worst cause one
// duplicate notification, never a missed one.
type SettingsRepository interface {
	SaveRadius(ctx context.Context, uid string, radiusMeters float64) error
	GetRadius(ctx context.Context, uid string) (float64, error)
	SaveNotificationStatus(ctx context.Context, uid string, enabled bool) error
	IsNotificationEnabled(ctx context.Context, uid string) (bool, error)
	SaveNotifiedFriends(ctx context.Context, uid string, friendUIDs []string) error
	GetNotifiedFriends(ctx context.Context, uid string) ([]string, error)
}

const (
	radiusKeyFmt          = "settings:%s:radius"
	notificationKeyFmt    = "settings:%s:notification_status"
	notifiedFriendsKeyFmt = "proximity:%s:notified_friends"

	// Stale notified sets self-expire; the next evaluation rewrites
	// them anyway.
	notifiedFriendsTTL = 24 * time.Hour
)

type settingsRepository struct {
	client        *redis.Client
	defaultRadius float64
}

func NewSettingsRepository(client *redis.Client, defaultRadiusMeters float64) SettingsRepository {
	return &settingsRepository{client: client, defaultRadius: defaultRadiusMeters}
}

// SaveRadius stores the radius string-encoded, the format the mobile
// clients already wrote into their local preferences.
func (r *settingsRepository) SaveRadius(ctx context.Context, uid string, radiusMeters float64) error {
	key := fmt.Sprintf(radiusKeyFmt, uid)
	return r.client.Set(ctx, key, strconv.FormatFloat(radiusMeters, 'f', -1, 64), 0).Err()
}

func (r *settingsRepository) GetRadius(ctx context.Context, uid string) (float64, error) {
	key := fmt.Sprintf(radiusKeyFmt, uid)
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return r.defaultRadius, nil
	}
	if err != nil {
		return 0, err
	}

	radius, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return r.defaultRadius, nil
	}
	return radius, nil
}

func (r *settingsRepository) SaveNotificationStatus(ctx context.Context, uid string, enabled bool) error {
	key := fmt.Sprintf(notificationKeyFmt, uid)
	return r.client.Set(ctx, key, strconv.FormatBool(enabled), 0).Err()
}

// IsNotificationEnabled defaults to enabled when the user never
// touched the setting.
func (r *settingsRepository) IsNotificationEnabled(ctx context.Context, uid string) (bool, error) {
	key := fmt.Sprintf(notificationKeyFmt, uid)
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

func (r *settingsRepository) SaveNotifiedFriends(ctx context.Context, uid string, friendUIDs []string) error {
	key := fmt.Sprintf(notifiedFriendsKeyFmt, uid)
	if friendUIDs == nil {
		friendUIDs = []string{}
	}
	data, err := json.Marshal(friendUIDs)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, notifiedFriendsTTL).Err()
}

func (r *settingsRepository) GetNotifiedFriends(ctx context.Context, uid string) ([]string, error) {
	key := fmt.Sprintf(notifiedFriendsKeyFmt, uid)
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var uids []string
	if err := json.Unmarshal([]byte(val), &uids); err != nil {
		// A corrupt set only risks one duplicate notification; treat
		// it as empty instead of wedging evaluations.
		return []string{}, nil
	}
	return uids, nil
}
