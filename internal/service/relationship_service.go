package service

import (
	"context"
	"errors"
	"fmt"

	"proximity-service/internal/models"
	"proximity-service/internal/store"
	"proximity-service/pkg/logger"
)

// RelationshipService is the only writer of the denormalized relation
// lists. Every transition reads the two affected user documents,
// computes the new lists, and writes both sides; the symmetry
// invariants (friends, pending pair, share pair) hold after any
// successful operation.
//
// Two operations deliberately do NOT run in a transaction:
// DeleteFriendRequest and the share pair. They issue two sequential
// single-document updates, so a failure after the first commit leaves
// one side updated. That window matches the shipped behavior and is
// surfaced, never hidden.
type RelationshipService struct {
	store store.UserStore
	log   *logger.Logger
}

func NewRelationshipService(st store.UserStore, log *logger.Logger) *RelationshipService {
	return &RelationshipService{store: st, log: log}
}

// SendFriendRequest records a pending request from uid to fid. It is
// idempotent: an existing friendship, an existing pending request in
// either direction, or a block on either side makes it a no-op.
func (s *RelationshipService) SendFriendRequest(ctx context.Context, uid, fid string) error {
	if uid == fid {
		return fmt.Errorf("%w: cannot send a friend request to yourself", store.ErrPreconditionFailed)
	}

	return s.store.RunTransaction(ctx, func(tx store.Tx) error {
		sender, err := tx.Get(uid)
		if err != nil {
			return err
		}
		recipient, err := tx.Get(fid)
		if err != nil {
			return err
		}

		if models.Contains(sender.FriendsList, fid) ||
			models.Contains(sender.SentFriendRequests, fid) ||
			models.Contains(sender.FriendRequests, fid) ||
			models.Contains(sender.BlockedList, fid) ||
			models.Contains(recipient.BlockedList, uid) {
			return nil
		}

		if err := tx.UpdateField(uid, store.FieldSentFriendRequests, models.Add(sender.SentFriendRequests, fid)); err != nil {
			return err
		}
		return tx.UpdateField(fid, store.FieldFriendRequests, models.Add(recipient.FriendRequests, uid))
	})
}

// AcceptFriendRequest turns the pending request from fid to uid into a
// friendship. Accepting twice, or accepting when no request is
// pending, is a no-op.
func (s *RelationshipService) AcceptFriendRequest(ctx context.Context, uid, fid string) error {
	return s.store.RunTransaction(ctx, func(tx store.Tx) error {
		accepter, err := tx.Get(uid)
		if err != nil {
			return err
		}
		requester, err := tx.Get(fid)
		if err != nil {
			return err
		}

		if models.Contains(accepter.FriendsList, fid) {
			return nil
		}
		if !models.Contains(accepter.FriendRequests, fid) {
			return nil
		}

		if err := tx.UpdateField(uid, store.FieldFriendRequests, models.Remove(accepter.FriendRequests, fid)); err != nil {
			return err
		}
		if err := tx.UpdateField(fid, store.FieldSentFriendRequests, models.Remove(requester.SentFriendRequests, uid)); err != nil {
			return err
		}
		if err := tx.UpdateField(uid, store.FieldFriendsList, models.Add(accepter.FriendsList, fid)); err != nil {
			return err
		}
		return tx.UpdateField(fid, store.FieldFriendsList, models.Add(requester.FriendsList, uid))
	})
}

// DeleteFriendRequest declines the pending request from fid to uid.
// The two removals are sequential single-document updates: if the
// second write fails the first has already committed, and the error is
// returned to the caller with that state in place.
func (s *RelationshipService) DeleteFriendRequest(ctx context.Context, uid, fid string) error {
	recipient, err := s.store.Get(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.store.UpdateField(ctx, uid, store.FieldFriendRequests, models.Remove(recipient.FriendRequests, fid)); err != nil {
		return err
	}

	requester, err := s.store.Get(ctx, fid)
	if err != nil {
		return err
	}
	if err := s.store.UpdateField(ctx, fid, store.FieldSentFriendRequests, models.Remove(requester.SentFriendRequests, uid)); err != nil {
		s.log.Warnw("friend request removal committed on one side only",
			"uid", uid, "fid", fid, "error", err)
		return err
	}
	return nil
}

// DeleteFriend removes the friendship in both directions atomically.
// Partial unfriending (A unfriended, B still friended) is the most
// user-visible inconsistency, so this one always goes through the
// store transaction.
func (s *RelationshipService) DeleteFriend(ctx context.Context, uid, fid string) error {
	return s.store.RunTransaction(ctx, func(tx store.Tx) error {
		current, err := tx.Get(uid)
		if err != nil {
			return err
		}
		friend, err := tx.Get(fid)
		if err != nil {
			return err
		}

		if err := tx.UpdateField(uid, store.FieldFriendsList, models.Remove(current.FriendsList, fid)); err != nil {
			return err
		}
		return tx.UpdateField(fid, store.FieldFriendsList, models.Remove(friend.FriendsList, uid))
	})
}

// BlockUser adds fid to uid's blocked list and severs the friendship
// and any pending requests in both directions, all in one transaction.
// The block itself is stored only on uid's side.
func (s *RelationshipService) BlockUser(ctx context.Context, uid, fid string) error {
	if uid == fid {
		return fmt.Errorf("%w: cannot block yourself", store.ErrPreconditionFailed)
	}

	return s.store.RunTransaction(ctx, func(tx store.Tx) error {
		current, err := tx.Get(uid)
		if err != nil {
			return err
		}
		target, err := tx.Get(fid)
		if err != nil {
			return err
		}

		if err := tx.UpdateField(uid, store.FieldBlockedList, models.Add(current.BlockedList, fid)); err != nil {
			return err
		}
		if err := tx.UpdateField(uid, store.FieldFriendsList, models.Remove(current.FriendsList, fid)); err != nil {
			return err
		}
		if err := tx.UpdateField(uid, store.FieldFriendRequests, models.Remove(current.FriendRequests, fid)); err != nil {
			return err
		}
		if err := tx.UpdateField(uid, store.FieldSentFriendRequests, models.Remove(current.SentFriendRequests, fid)); err != nil {
			return err
		}

		if err := tx.UpdateField(fid, store.FieldFriendsList, models.Remove(target.FriendsList, uid)); err != nil {
			return err
		}
		if err := tx.UpdateField(fid, store.FieldFriendRequests, models.Remove(target.FriendRequests, uid)); err != nil {
			return err
		}
		return tx.UpdateField(fid, store.FieldSentFriendRequests, models.Remove(target.SentFriendRequests, uid))
	})
}

// UnblockUser removes fid from uid's blocked list. It never restores
// the severed friendship.
func (s *RelationshipService) UnblockUser(ctx context.Context, uid, fid string) error {
	current, err := s.store.Get(ctx, uid)
	if err != nil {
		return err
	}
	return s.store.UpdateField(ctx, uid, store.FieldBlockedList, models.Remove(current.BlockedList, fid))
}

// ShareLocation grants fid visibility of uid's live location. Unlike
// the request flow this is not idempotent: sharing twice is rejected
// so the client can tell "already shared" apart from success.
func (s *RelationshipService) ShareLocation(ctx context.Context, uid, fid string) error {
	current, err := s.store.Get(ctx, uid)
	if err != nil {
		return err
	}
	friend, err := s.store.Get(ctx, fid)
	if err != nil {
		return err
	}

	if models.Contains(current.LocationSharedWith, fid) {
		return fmt.Errorf("%w: location already shared with %s", store.ErrPreconditionFailed, fid)
	}

	if err := s.store.UpdateField(ctx, uid, store.FieldLocationSharedWith, models.Add(current.LocationSharedWith, fid)); err != nil {
		return err
	}
	if err := s.store.UpdateField(ctx, fid, store.FieldLocationSharedBy, models.Add(friend.LocationSharedBy, uid)); err != nil {
		s.log.Warnw("share-location committed on one side only",
			"uid", uid, "fid", fid, "error", err)
		return err
	}
	return nil
}

// StopSharingLocation revokes a grant made by ShareLocation. Stopping
// a share that does not exist is rejected, not silently accepted.
func (s *RelationshipService) StopSharingLocation(ctx context.Context, uid, fid string) error {
	current, err := s.store.Get(ctx, uid)
	if err != nil {
		return err
	}
	friend, err := s.store.Get(ctx, fid)
	if err != nil {
		return err
	}

	if !models.Contains(current.LocationSharedWith, fid) {
		return fmt.Errorf("%w: location not shared with %s", store.ErrPreconditionFailed, fid)
	}

	if err := s.store.UpdateField(ctx, uid, store.FieldLocationSharedWith, models.Remove(current.LocationSharedWith, fid)); err != nil {
		return err
	}
	if err := s.store.UpdateField(ctx, fid, store.FieldLocationSharedBy, models.Remove(friend.LocationSharedBy, uid)); err != nil {
		s.log.Warnw("stop-sharing committed on one side only",
			"uid", uid, "fid", fid, "error", err)
		return err
	}
	return nil
}

// Friends loads the full user records of uid's friends. Friends whose
// records have vanished are skipped rather than failing the whole
// read.
func (s *RelationshipService) Friends(ctx context.Context, uid string) ([]*models.User, error) {
	current, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	friends := make([]*models.User, 0, len(current.FriendsList))
	for _, friendUID := range current.FriendsList {
		friend, err := s.store.Get(ctx, friendUID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		friends = append(friends, friend)
	}
	return friends, nil
}

// RecommendedFriends scans all user records and returns everyone who
// is not uid, not already a friend, not blocked by uid, and not
// blocking uid. Full-collection scan; fine at current scale.
func (s *RelationshipService) RecommendedFriends(ctx context.Context, uid string) ([]*models.User, error) {
	current, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	recommended := make([]*models.User, 0, len(all))
	for _, candidate := range all {
		if candidate.UID == uid {
			continue
		}
		if models.Contains(current.FriendsList, candidate.UID) {
			continue
		}
		if models.Contains(current.BlockedList, candidate.UID) {
			continue
		}
		if models.Contains(candidate.BlockedList, uid) {
			continue
		}
		recommended = append(recommended, candidate)
	}
	return recommended, nil
}
