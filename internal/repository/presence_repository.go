package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"proximity-service/internal/models"
)

type PresenceRepository interface {
	SetOnline(ctx context.Context, uid string) error
	SetOffline(ctx context.Context, uid string) error
	GetStatus(ctx context.Context, uid string) (string, error)
	OnlineFriends(ctx context.Context, uids []string) ([]string, error)
	PublishStatusUpdate(ctx context.Context, update *models.StatusUpdate) error
	SubscribeToStatusUpdates(ctx context.Context) (<-chan *models.StatusUpdate, error)
	Close() error
}

const statusUpdateChannel = "presence:updates"

type presenceRepository struct {
	client *redis.Client
	pubsub *redis.PubSub
}

func NewPresenceRepository(client *redis.Client) PresenceRepository {
	return &presenceRepository{client: client}
}

// SetOnline - key "presence:{uid}", TTL 5 minutes; the client's
// periodic location ping keeps it alive.
func (r *presenceRepository) SetOnline(ctx context.Context, uid string) error {
	return r.client.Set(ctx, "presence:"+uid, "online", 5*time.Minute).Err()
}

// SetOffline - short TTL to avoid flicker when a connection drops and
// immediately re-establishes.
func (r *presenceRepository) SetOffline(ctx context.Context, uid string) error {
	return r.client.Set(ctx, "presence:"+uid, "offline", time.Minute).Err()
}

func (r *presenceRepository) GetStatus(ctx context.Context, uid string) (string, error) {
	return r.client.Get(ctx, "presence:"+uid).Result()
}

// OnlineFriends filters uids down to those currently online, with one
// pipelined round trip.
func (r *presenceRepository) OnlineFriends(ctx context.Context, uids []string) ([]string, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	cmds, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, uid := range uids {
			pipe.Get(ctx, "presence:"+uid)
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, err
	}

	online := make([]string, 0, len(uids))
	for i, cmd := range cmds {
		if val, _ := cmd.(*redis.StringCmd).Result(); val == "online" {
			online = append(online, uids[i])
		}
	}
	return online, nil
}

func (r *presenceRepository) PublishStatusUpdate(ctx context.Context, update *models.StatusUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, statusUpdateChannel, data).Err()
}

func (r *presenceRepository) SubscribeToStatusUpdates(ctx context.Context) (<-chan *models.StatusUpdate, error) {
	r.pubsub = r.client.Subscribe(ctx, statusUpdateChannel)

	updates := make(chan *models.StatusUpdate)
	go func() {
		defer close(updates)
		for msg := range r.pubsub.Channel() {
			var update models.StatusUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				continue
			}
			select {
			case updates <- &update:
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates, nil
}

func (r *presenceRepository) Close() error {
	if r.pubsub != nil {
		return r.pubsub.Close()
	}
	return nil
}
