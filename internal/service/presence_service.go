package service

import (
	"context"

	"proximity-service/internal/models"
	"proximity-service/internal/repository"
	"proximity-service/internal/store"
)

// PresenceService keeps the volatile redis presence keys and the
// durable isOnline field on the user document in step.
type PresenceService struct {
	presenceRepo repository.PresenceRepository
	store        store.UserStore
}

func NewPresenceService(presenceRepo repository.PresenceRepository, st store.UserStore) *PresenceService {
	return &PresenceService{presenceRepo: presenceRepo, store: st}
}

func (s *PresenceService) SetOnline(ctx context.Context, uid string) error {
	if err := s.presenceRepo.SetOnline(ctx, uid); err != nil {
		return err
	}
	if err := s.store.UpdateField(ctx, uid, store.FieldIsOnline, true); err != nil {
		return err
	}
	return s.presenceRepo.PublishStatusUpdate(ctx, &models.StatusUpdate{UserID: uid, IsOnline: true})
}

func (s *PresenceService) SetOffline(ctx context.Context, uid string) error {
	if err := s.presenceRepo.SetOffline(ctx, uid); err != nil {
		return err
	}
	if err := s.store.UpdateField(ctx, uid, store.FieldIsOnline, false); err != nil {
		return err
	}
	return s.presenceRepo.PublishStatusUpdate(ctx, &models.StatusUpdate{UserID: uid, IsOnline: false})
}

// OnlineFriends returns the subset of uid's friends currently online.
func (s *PresenceService) OnlineFriends(ctx context.Context, uid string) ([]string, error) {
	user, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.presenceRepo.OnlineFriends(ctx, user.FriendsList)
}
