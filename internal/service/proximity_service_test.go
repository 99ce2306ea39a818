package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proximity-service/internal/models"
	"proximity-service/internal/store"
	"proximity-service/pkg/geo"
	"proximity-service/pkg/logger"
)

var (
	midtown    = geo.Point{Latitude: 40.748817, Longitude: -73.985428}
	brooklyn   = geo.Point{Latitude: 40.730610, Longitude: -73.935242}
	losAngeles = geo.Point{Latitude: 34.052235, Longitude: -118.243683}
)

// fakeSettings mirrors the redis repository's defaults: notifications
// on, the configured default radius, empty notified set.
type fakeSettings struct {
	mu       sync.Mutex
	radius   map[string]float64
	disabled map[string]bool
	notified map[string][]string

	defaultRadius float64
}

func newFakeSettings(defaultRadius float64) *fakeSettings {
	return &fakeSettings{
		radius:        make(map[string]float64),
		disabled:      make(map[string]bool),
		notified:      make(map[string][]string),
		defaultRadius: defaultRadius,
	}
}

func (f *fakeSettings) SaveRadius(_ context.Context, uid string, radiusMeters float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.radius[uid] = radiusMeters
	return nil
}

func (f *fakeSettings) GetRadius(_ context.Context, uid string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.radius[uid]; ok {
		return r, nil
	}
	return f.defaultRadius, nil
}

func (f *fakeSettings) SaveNotificationStatus(_ context.Context, uid string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled[uid] = !enabled
	return nil
}

func (f *fakeSettings) IsNotificationEnabled(_ context.Context, uid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.disabled[uid], nil
}

func (f *fakeSettings) SaveNotifiedFriends(_ context.Context, uid string, friendUIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified[uid] = append([]string(nil), friendUIDs...)
	return nil
}

func (f *fakeSettings) GetNotifiedFriends(_ context.Context, uid string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.notified[uid]...), nil
}

// recordingNotifier captures every published event and can fail on
// selected friend UIDs.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string // "uid->friendUid"
	fail   map[string]error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{fail: make(map[string]error)}
}

func (n *recordingNotifier) Notify(_ context.Context, userID, friendUID, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.fail[friendUID]; ok {
		return err
	}
	n.events = append(n.events, userID+"->"+friendUID)
	return nil
}

func (n *recordingNotifier) published() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func newProximityFixture(t *testing.T) (*ProximityService, *store.MemoryStore, *fakeSettings, *recordingNotifier) {
	t.Helper()
	st := store.NewMemoryStore()
	settings := newFakeSettings(5000)
	notifier := newRecordingNotifier()
	svc := NewProximityService(st, settings, notifier, logger.NewNop())
	return svc, st, settings, notifier
}

func seedUser(t *testing.T, st *store.MemoryStore, uid string, loc *geo.Point, friends ...string) {
	t.Helper()
	require.NoError(t, st.Create(context.Background(), &models.User{
		UID:               uid,
		FirstName:         uid,
		EmailAddress:      uid + "@example.com",
		PhoneNumber:       "+1" + uid,
		FriendsList:       friends,
		LastKnownLocation: loc,
	}))
}

func TestInRadius(t *testing.T) {
	friends := []*models.User{
		{UID: "same-spot", LastKnownLocation: &midtown},
		{UID: "across-town", LastKnownLocation: &brooklyn},
		{UID: "west-coast", LastKnownLocation: &losAngeles},
	}

	inRange := InRadius(midtown, friends, 5000)
	require.Len(t, inRange, 2)
	assert.Equal(t, "same-spot", inRange[0].UID)
	assert.Equal(t, "across-town", inRange[1].UID)
}

func TestInRadiusSkipsFriendsWithoutLocation(t *testing.T) {
	friends := []*models.User{
		{UID: "no-fix"},
		{UID: "here", LastKnownLocation: &midtown},
	}

	inRange := InRadius(midtown, friends, 100)
	require.Len(t, inRange, 1)
	assert.Equal(t, "here", inRange[0].UID)
}

func TestInRadiusBoundaryInclusive(t *testing.T) {
	d := geo.Distance(midtown, brooklyn)
	friends := []*models.User{{UID: "edge", LastKnownLocation: &brooklyn}}

	assert.Len(t, InRadius(midtown, friends, d), 1)
	assert.Len(t, InRadius(midtown, friends, d-1), 0)
}

func TestEvaluateAndNotify(t *testing.T) {
	svc, st, settings, notifier := newProximityFixture(t)
	ctx := context.Background()

	seedUser(t, st, "alice", &midtown, "bob", "carol", "dave")
	seedUser(t, st, "bob", &midtown, "alice")
	seedUser(t, st, "carol", &brooklyn, "alice")
	seedUser(t, st, "dave", &losAngeles, "alice")

	newlyInRange, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, newlyInRange, 2)
	assert.Equal(t, "bob", newlyInRange[0].UID)
	assert.Equal(t, "carol", newlyInRange[1].UID)
	assert.Equal(t, []string{"alice->bob", "alice->carol"}, notifier.published())

	saved, _ := settings.GetNotifiedFriends(ctx, "alice")
	assert.ElementsMatch(t, []string{"bob", "carol"}, saved)
}

func TestEvaluateAndNotifyDedupsAcrossEvaluations(t *testing.T) {
	svc, st, _, notifier := newProximityFixture(t)
	ctx := context.Background()

	seedUser(t, st, "alice", &midtown, "bob")
	seedUser(t, st, "bob", &midtown, "alice")

	first, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// bob stays in range; the second evaluation must not re-notify.
	second, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, []string{"alice->bob"}, notifier.published())
}

func TestEvaluateAndNotifyReNotifiesAfterLeaving(t *testing.T) {
	svc, st, _, notifier := newProximityFixture(t)
	ctx := context.Background()

	seedUser(t, st, "alice", &midtown, "bob")
	seedUser(t, st, "bob", &midtown, "alice")

	_, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)

	// bob leaves the radius; the evaluation clears him from the set.
	require.NoError(t, st.UpdateField(ctx, "bob", store.FieldLastKnownLocation, losAngeles))
	gone, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, gone)

	// bob comes back and is notified a second time.
	require.NoError(t, st.UpdateField(ctx, "bob", store.FieldLastKnownLocation, midtown))
	back, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, []string{"alice->bob", "alice->bob"}, notifier.published())
}

func TestEvaluateAndNotifyDisabled(t *testing.T) {
	svc, st, settings, notifier := newProximityFixture(t)
	ctx := context.Background()

	seedUser(t, st, "alice", &midtown, "bob")
	seedUser(t, st, "bob", &midtown, "alice")
	require.NoError(t, settings.SaveNotificationStatus(ctx, "alice", false))

	newlyInRange, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, newlyInRange)
	assert.Empty(t, notifier.published())
}

func TestEvaluateAndNotifyWithoutLocation(t *testing.T) {
	svc, st, _, notifier := newProximityFixture(t)
	ctx := context.Background()

	seedUser(t, st, "alice", nil, "bob")
	seedUser(t, st, "bob", &midtown, "alice")

	newlyInRange, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, newlyInRange)
	assert.Empty(t, notifier.published())
}

func TestEvaluateAndNotifySkipsVanishedFriends(t *testing.T) {
	svc, st, _, _ := newProximityFixture(t)
	ctx := context.Background()

	seedUser(t, st, "alice", &midtown, "bob", "ghost")
	seedUser(t, st, "bob", &midtown, "alice")

	newlyInRange, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, newlyInRange, 1)
	assert.Equal(t, "bob", newlyInRange[0].UID)
}

func TestEvaluateAndNotifyPublishFailure(t *testing.T) {
	svc, st, settings, notifier := newProximityFixture(t)
	ctx := context.Background()

	seedUser(t, st, "alice", &midtown, "bob", "carol")
	seedUser(t, st, "bob", &midtown, "alice")
	seedUser(t, st, "carol", &midtown, "alice")
	notifier.fail["bob"] = errors.New("broker unavailable")

	newlyInRange, err := svc.EvaluateAndNotify(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, newlyInRange, 1)
	assert.Equal(t, "carol", newlyInRange[0].UID)

	// The notified set records the full in-range set, failed publish
	// included, so bob's event is dropped rather than retried.
	saved, _ := settings.GetNotifiedFriends(ctx, "alice")
	assert.ElementsMatch(t, []string{"bob", "carol"}, saved)
}

func TestUpdateLocation(t *testing.T) {
	svc, st, _, notifier := newProximityFixture(t)
	ctx := context.Background()

	seedUser(t, st, "alice", nil, "bob")
	seedUser(t, st, "bob", &midtown, "alice")

	newlyInRange, err := svc.UpdateLocation(ctx, "alice", midtown.Latitude, midtown.Longitude)
	require.NoError(t, err)
	require.Len(t, newlyInRange, 1)
	assert.Equal(t, []string{"alice->bob"}, notifier.published())

	alice, _ := st.Get(ctx, "alice")
	require.NotNil(t, alice.LastKnownLocation)
	assert.Equal(t, midtown, *alice.LastKnownLocation)
}

func TestRadiusSettingRoundTrip(t *testing.T) {
	svc, _, _, _ := newProximityFixture(t)
	ctx := context.Background()

	radius, err := svc.Radius(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, radius)

	require.NoError(t, svc.SetRadius(ctx, "alice", 250))
	radius, err = svc.Radius(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 250.0, radius)
}
