package service

import (
	"context"
	"errors"

	"proximity-service/internal/adapters/kafka"
	"proximity-service/internal/models"
	"proximity-service/internal/repository"
	"proximity-service/internal/store"
	"proximity-service/pkg/geo"
	"proximity-service/pkg/logger"
)

// InRadius returns the friends whose last known location lies within
// radiusMeters of origin. Pure function: output order follows input
// order, friends without a location are skipped, the boundary is
// inclusive.
func InRadius(origin geo.Point, friends []*models.User, radiusMeters float64) []*models.User {
	inRange := make([]*models.User, 0, len(friends))
	for _, friend := range friends {
		if friend.LastKnownLocation == nil {
			continue
		}
		if geo.InRadius(origin, *friend.LastKnownLocation, radiusMeters) {
			inRange = append(inRange, friend)
		}
	}
	return inRange
}

// ProximityService turns location updates into deduplicated
// friend-nearby events. Each evaluation works on the snapshot of
// friend locations taken when it starts; a location update landing
// mid-evaluation shows up in the next cycle.
type ProximityService struct {
	store    store.UserStore
	settings repository.SettingsRepository
	notifier kafka.Notifier
	log      *logger.Logger
}

func NewProximityService(
	st store.UserStore,
	settings repository.SettingsRepository,
	notifier kafka.Notifier,
	log *logger.Logger,
) *ProximityService {
	return &ProximityService{store: st, settings: settings, notifier: notifier, log: log}
}

// UpdateLocation persists a fresh location fix for uid and runs a
// proximity evaluation on it. This is the entry point the periodic
// location worker calls. Returns the friends that were newly notified.
func (s *ProximityService) UpdateLocation(ctx context.Context, uid string, lat, lng float64) ([]*models.User, error) {
	point := geo.Point{Latitude: lat, Longitude: lng}
	if err := s.store.UpdateField(ctx, uid, store.FieldLastKnownLocation, point); err != nil {
		return nil, err
	}
	return s.EvaluateAndNotify(ctx, uid)
}

// EvaluateAndNotify runs one proximity evaluation for uid:
// load friends and their locations, compute the in-range set, diff it
// against the persisted notified set, emit one event per newly
// in-range friend, then overwrite the notified set with the full
// current in-range set. A friend who stays in range is notified once;
// a friend who leaves and comes back is notified again.
func (s *ProximityService) EvaluateAndNotify(ctx context.Context, uid string) ([]*models.User, error) {
	enabled, err := s.settings.IsNotificationEnabled(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}

	user, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user.LastKnownLocation == nil {
		return nil, nil
	}

	friends := make([]*models.User, 0, len(user.FriendsList))
	for _, friendUID := range user.FriendsList {
		friend, err := s.store.Get(ctx, friendUID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		friends = append(friends, friend)
	}

	radius, err := s.settings.GetRadius(ctx, uid)
	if err != nil {
		return nil, err
	}

	inRange := InRadius(*user.LastKnownLocation, friends, radius)

	notified, err := s.settings.GetNotifiedFriends(ctx, uid)
	if err != nil {
		return nil, err
	}

	newlyInRange := make([]*models.User, 0, len(inRange))
	for _, friend := range inRange {
		if models.Contains(notified, friend.UID) {
			continue
		}
		if err := s.notifier.Notify(ctx, uid, friend.UID, friend.DisplayName()); err != nil {
			// Dispatch is fire-and-forget; a failed publish must not
			// abort the evaluation or block the other events.
			s.log.Warnw("nearby notification publish failed",
				"uid", uid, "friendUid", friend.UID, "error", err)
			continue
		}
		newlyInRange = append(newlyInRange, friend)
	}

	inRangeUIDs := make([]string, 0, len(inRange))
	for _, friend := range inRange {
		inRangeUIDs = append(inRangeUIDs, friend.UID)
	}
	if err := s.settings.SaveNotifiedFriends(ctx, uid, inRangeUIDs); err != nil {
		return nil, err
	}

	return newlyInRange, nil
}

// SetRadius stores the notification radius in meters.
func (s *ProximityService) SetRadius(ctx context.Context, uid string, radiusMeters float64) error {
	return s.settings.SaveRadius(ctx, uid, radiusMeters)
}

func (s *ProximityService) Radius(ctx context.Context, uid string) (float64, error) {
	return s.settings.GetRadius(ctx, uid)
}

func (s *ProximityService) SetNotificationsEnabled(ctx context.Context, uid string, enabled bool) error {
	return s.settings.SaveNotificationStatus(ctx, uid, enabled)
}

func (s *ProximityService) NotificationsEnabled(ctx context.Context, uid string) (bool, error) {
	return s.settings.IsNotificationEnabled(ctx, uid)
}
