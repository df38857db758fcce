package inmemory

import (
	"context"
	"testing"
	"time"

	"myfeed/internal/adapter/out/storage"
	"myfeed/internal/model"
	"myfeed/internal/service"
	"myfeed/pkg/pagination"

	"github.com/stretchr/testify/require"
)

// ticking returns a clock that advances one second per call.
func ticking(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func seed(t *testing.T, st *PreferenceStorage, userID string, status model.ContentPreferenceStatus, refs ...string) []model.ContentPreference {
	t.Helper()

	out := make([]model.ContentPreference, 0, len(refs))
	for _, ref := range refs {
		p, err := st.UpsertPreference(context.Background(), model.ContentPreference{
			UserID:      userID,
			ReferenceID: ref,
			Type:        model.ContentPreferenceTypeUser,
			Status:      status,
		})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func ids(ps []model.ContentPreference) []int64 {
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestPreferenceStorage_Upsert(t *testing.T) {
	t.Parallel()

	st := NewPreferenceStorage()
	ctx := context.Background()

	p, err := st.UpsertPreference(ctx, model.ContentPreference{
		UserID: "u1", ReferenceID: "u2", Type: model.ContentPreferenceTypeUser, Status: model.ContentPreferenceStatusFollow,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ID)
	require.WithinDuration(t, time.Now(), p.CreatedAt, time.Second)

	again, err := st.UpsertPreference(ctx, model.ContentPreference{
		UserID: "u1", ReferenceID: "u2", Type: model.ContentPreferenceTypeUser, Status: model.ContentPreferenceStatusSubscribed,
	})
	require.NoError(t, err)
	require.Equal(t, p.ID, again.ID)
	require.Equal(t, model.ContentPreferenceStatusSubscribed, again.Status)

	scoped, err := st.UpsertPreference(ctx, model.ContentPreference{
		UserID: "u1", ReferenceID: "u2", Type: model.ContentPreferenceTypeUser, Status: model.ContentPreferenceStatusBlocked, FeedID: "f1",
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), scoped.ID)
}

func TestPreferenceStorage_Delete(t *testing.T) {
	t.Parallel()

	st := NewPreferenceStorage()
	ctx := context.Background()
	seed(t, st, "u1", model.ContentPreferenceStatusFollow, "u2")
	_, err := st.UpsertPreference(ctx, model.ContentPreference{
		UserID: "u1", ReferenceID: "u2", Type: model.ContentPreferenceTypeUser, Status: model.ContentPreferenceStatusBlocked, FeedID: "f1",
	})
	require.NoError(t, err)

	n, err := st.DeletePreference(ctx, storage.DeletePreferenceParams{
		UserID: "u1", ReferenceID: "u2", Type: model.ContentPreferenceTypeUser,
		Statuses: []model.ContentPreferenceStatus{model.ContentPreferenceStatusBlocked},
	})
	require.NoError(t, err)
	require.Zero(t, n, "the block lives in feed f1")

	n, err = st.DeletePreference(ctx, storage.DeletePreferenceParams{
		UserID: "u1", ReferenceID: "u2", Type: model.ContentPreferenceTypeUser, AnyFeed: true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestPreferenceStorage_List_OrderDESC_and_Limit(t *testing.T) {
	t.Parallel()

	st := NewPreferenceStorage()
	st.now = ticking(time.Date(2025, 9, 24, 12, 0, 0, 0, time.UTC))

	seed(t, st, "u1", model.ContentPreferenceStatusBlocked, "a", "b", "c", "d", "e")
	seed(t, st, "u1", model.ContentPreferenceStatusFollow, "f")
	seed(t, st, "u2", model.ContentPreferenceStatusBlocked, "g")

	got, err := st.ListPreferences(context.Background(), storage.ListPreferencesParams{
		UserID:   "u1",
		Type:     model.ContentPreferenceTypeUser,
		Statuses: []model.ContentPreferenceStatus{model.ContentPreferenceStatusBlocked},
		Limit:    3,
	})
	require.NoError(t, err)
	require.Equal(t, []int64{5, 4, 3}, ids(got))
}

func TestPreferenceStorage_List_Cursor(t *testing.T) {
	t.Parallel()

	st := NewPreferenceStorage()
	st.now = ticking(time.Date(2025, 9, 24, 12, 0, 0, 0, time.UTC))
	rows := seed(t, st, "u1", model.ContentPreferenceStatusBlocked, "a", "b", "c", "d", "e")

	cur := pagination.Cursor{CreatedAt: rows[2].CreatedAt, ID: rows[2].ID}
	base := storage.ListPreferencesParams{
		UserID: "u1",
		Type:   model.ContentPreferenceTypeUser,
		Cursor: &cur,
		Limit:  5,
	}

	after := base
	after.Direction = storage.DirectionAfter
	got, err := st.ListPreferences(context.Background(), after)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1}, ids(got))

	before := base
	before.Direction = storage.DirectionBefore
	before.Limit = 1
	got, err = st.ListPreferences(context.Background(), before)
	require.NoError(t, err)
	require.Equal(t, []int64{4}, ids(got))

	_, err = st.ListPreferences(context.Background(), base)
	require.ErrorIs(t, err, storage.ErrDirectionUnset)
}

func TestPreferenceStorage_WithService(t *testing.T) {
	t.Parallel()

	st := NewPreferenceStorage()
	st.now = ticking(time.Date(2025, 9, 24, 12, 0, 0, 0, time.UTC))
	svc := service.NewContentPreferenceService(st, NoopTxManager{})
	ctx := context.Background()

	_, err := svc.Follow(ctx, service.FollowRequest{
		UserID: "u1", ReferenceID: "u2", Type: model.ContentPreferenceTypeUser, Status: model.ContentPreferenceStatusFollow,
	})
	require.NoError(t, err)

	for _, ref := range []string{"u2", "u3", "u4"} {
		_, err := svc.Block(ctx, service.BlockRequest{UserID: "u1", ReferenceID: ref, Type: model.ContentPreferenceTypeUser})
		require.NoError(t, err)
	}

	following, err := svc.UserFollowing(ctx, service.ListRequest{UserID: "u1", Type: model.ContentPreferenceTypeUser})
	require.NoError(t, err)
	require.Zero(t, following.Count, "block replaced the follow")

	req := service.ListRequest{UserID: "u1", Type: model.ContentPreferenceTypeUser, Page: pagination.PageRequest{Limit: 2}}
	first, err := svc.UserBlocked(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, first.Count)
	require.True(t, first.HasNextPage)
	require.Equal(t, "u4", first.Items[0].ReferenceID)

	req.Page.AfterCursor = first.EndCursor
	second, err := svc.UserBlocked(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, second.Count)
	require.False(t, second.HasNextPage)
	require.Equal(t, "u2", second.Items[0].ReferenceID)
}
