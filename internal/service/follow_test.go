package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activityhub/internal/model"
	"activityhub/internal/queue"
)

func usernames(profiles []model.Profile) []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Username)
	}
	return names
}

func TestFollowService_Toggle_IsSymmetric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.user(t, "bob")
	f.user(t, "tom")

	listBoth := func() (followers, following []string) {
		res, err := f.followSvc.List(ctx, ListFollowings{Actor: bob, Username: "tom", Predicate: model.FollowPredicateFollowers})
		require.NoError(t, err)
		followers = usernames(res.Value)

		res, err = f.followSvc.List(ctx, ListFollowings{Actor: bob, Username: "bob", Predicate: model.FollowPredicateFollowing})
		require.NoError(t, err)
		following = usernames(res.Value)
		return followers, following
	}

	res, err := f.followSvc.Toggle(ctx, FollowToggle{Actor: bob, TargetUsername: "tom"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess, res.Error)

	followers, following := listBoth()
	assert.Equal(t, []string{"bob"}, followers)
	assert.Equal(t, []string{"tom"}, following)

	res, err = f.followSvc.Toggle(ctx, FollowToggle{Actor: bob, TargetUsername: "tom"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess, res.Error)

	followers, following = listBoth()
	assert.Empty(t, followers)
	assert.Empty(t, following)

	assert.Equal(t, []string{queue.EventUserFollowed, queue.EventUserUnfollowed}, f.publisher.Types())
}

func TestFollowService_Toggle_InvalidatesBothProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.user(t, "bob")
	f.user(t, "tom")
	f.user(t, "sally")
	for _, name := range []string{"bob", "tom", "sally"} {
		require.NoError(t, f.profiles.Set(ctx, &model.Profile{Username: name}))
	}

	res, err := f.followSvc.Toggle(ctx, FollowToggle{Actor: bob, TargetUsername: "tom"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess, res.Error)

	for name, want := range map[string]bool{"bob": false, "tom": false, "sally": true} {
		_, found, err := f.profiles.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, want, found, name)
	}
}

func TestFollowService_Toggle_Self(t *testing.T) {
	f := newFixture(t)
	bob := f.user(t, "bob")

	res, err := f.followSvc.Toggle(context.Background(), FollowToggle{Actor: bob, TargetUsername: "bob"})

	require.NoError(t, err)
	assert.True(t, res.IsFailure())
	assert.Equal(t, "You cannot follow yourself", res.Error)
	assert.Empty(t, f.publisher.Types())
}

func TestFollowService_List_MarksActorFollowing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.user(t, "bob")
	tom := f.user(t, "tom")
	jane := f.user(t, "jane")

	for _, pair := range []struct {
		actor  model.Actor
		target string
	}{
		{tom, "jane"},
		{bob, "jane"},
		{jane, "tom"},
	} {
		res, err := f.followSvc.Toggle(ctx, FollowToggle{Actor: pair.actor, TargetUsername: pair.target})
		require.NoError(t, err)
		require.True(t, res.IsSuccess)
	}

	// jane's followers as seen by jane: she follows tom back, not bob.
	res, err := f.followSvc.List(ctx, ListFollowings{Actor: jane, Username: "jane"})
	require.NoError(t, err)
	require.Len(t, res.Value, 2)
	for _, p := range res.Value {
		assert.Equal(t, p.Username == "tom", p.Following, p.Username)
	}

	missing, err := f.followSvc.List(ctx, ListFollowings{Actor: jane, Username: "nobody"})
	require.NoError(t, err)
	assert.True(t, missing.IsEmpty())
}
