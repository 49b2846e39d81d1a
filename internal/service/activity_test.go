package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activityhub/internal/core"
	"activityhub/internal/model"
)

// =============================================================================
// LIST FILTERS
// =============================================================================

func TestActivityService_List_AttendanceFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.user(t, "bob")
	other := f.user(t, "tom")

	going := f.createActivity(t, other, "A", future(1))
	f.toggleAttendance(t, user, going)
	hosting := f.createActivity(t, user, "B", future(2))
	neither := f.createActivity(t, other, "C", future(3))
	// Before the start date, never listed.
	f.createActivity(t, user, "Past", future(-3))

	tests := []struct {
		name    string
		isGoing bool
		isHost  bool
		want    []uuid.UUID
	}{
		{"going only", true, false, []uuid.UUID{going}},
		{"host only", false, true, []uuid.UUID{hosting}},
		{"neither", false, false, []uuid.UUID{going, hosting, neither}},
		{"both", true, true, []uuid.UUID{going, hosting, neither}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.activitySvc.List(ctx, ListActivities{
				Actor:   user,
				IsGoing: tt.isGoing,
				IsHost:  tt.isHost,
			})
			require.NoError(t, err)
			require.True(t, res.IsSuccess)

			var got []uuid.UUID
			for _, a := range res.Value.Items {
				got = append(got, a.ID)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), res.Value.TotalCount)
		})
	}
}

func TestActivityService_List_Paginates(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "bob")

	for i := 1; i <= 7; i++ {
		f.createActivity(t, host, "Activity", future(i))
	}

	res, err := f.activitySvc.List(context.Background(), ListActivities{
		Actor:  host,
		Paging: core.PagingParams{PageNumber: 2, PageSize: 3},
	})
	require.NoError(t, err)

	page := res.Value
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.PageSize)
	assert.Equal(t, 7, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 3)
	for i := 1; i < len(page.Items); i++ {
		assert.True(t, !page.Items[i].Date.Before(page.Items[i-1].Date), "items ordered by date")
	}
}

func TestActivityService_List_StartDateIsInclusive(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "bob")

	start := future(5)
	on := f.createActivity(t, host, "On", start)
	f.createActivity(t, host, "Before", start.Add(-time.Hour))

	res, err := f.activitySvc.List(context.Background(), ListActivities{Actor: host, StartDate: start})
	require.NoError(t, err)
	require.Len(t, res.Value.Items, 1)
	assert.Equal(t, on, res.Value.Items[0].ID)
}

// =============================================================================
// ATTENDANCE TOGGLE
// =============================================================================

func TestActivityService_UpdateAttendance_GuestRoundTrip(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "bob")
	guest := f.user(t, "tom")
	id := f.createActivity(t, host, "X", future(1))

	f.toggleAttendance(t, guest, id)
	attendance, err := f.attendance.Get(context.Background(), guest.UserID, id)
	require.NoError(t, err)
	assert.False(t, attendance.IsHost)

	f.toggleAttendance(t, guest, id)
	_, err = f.attendance.Get(context.Background(), guest.UserID, id)
	assert.ErrorIs(t, err, model.ErrAttendanceNotFound)

	assert.Len(t, f.details(t, guest, id).Attendees, 1)
}

func TestActivityService_UpdateAttendance_HostTogglesCancellation(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "bob")
	id := f.createActivity(t, host, "X", future(1))

	for _, wantCancelled := range []bool{true, false, true} {
		f.toggleAttendance(t, host, id)

		dto := f.details(t, host, id)
		assert.Equal(t, wantCancelled, dto.IsCancelled)
		require.Len(t, dto.Attendees, 1)
		assert.True(t, dto.Attendees[0].IsHost)
	}
}

func TestSetCancelled_StaleExpectationAffectsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.user(t, "bob")
	id := f.createActivity(t, host, "X", future(1))

	// Another request cancelled the activity after this one read it.
	tx, err := f.db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	ok, err := f.activities.SetCancelled(ctx, tx, id, false, true)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, tx.Commit())

	tx, err = f.db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	ok, err = f.activities.SetCancelled(ctx, tx, id, false, true)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Rollback())
}

func TestActivityService_UpdateAttendance_UnknownActor(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "bob")
	id := f.createActivity(t, host, "X", future(1))

	res, err := f.activitySvc.UpdateAttendance(context.Background(), UpdateAttendance{
		Actor: model.Actor{UserID: uuid.New(), Username: "ghost"},
		ID:    id,
	})
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
}

// =============================================================================
// EDIT / DELETE / DETAILS
// =============================================================================

func TestActivityService_Edit_MergesProvidedFields(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "bob")
	id := f.createActivity(t, host, "X", future(1))

	title := "Renamed"
	res, err := f.activitySvc.Edit(context.Background(), EditActivity{Actor: host, ID: id, Title: &title})
	require.NoError(t, err)
	require.True(t, res.IsSuccess, res.Error)

	dto := f.details(t, host, id)
	assert.Equal(t, "Renamed", dto.Title)
	assert.Equal(t, "Museum", dto.Venue)
	assert.Equal(t, "London", dto.City)
}

func TestActivityService_Delete_CascadesAttendance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.user(t, "bob")
	guest := f.user(t, "tom")
	id := f.createActivity(t, host, "X", future(1))
	f.toggleAttendance(t, guest, id)

	res, err := f.activitySvc.Delete(ctx, DeleteActivity{Actor: host, ID: id})
	require.NoError(t, err)
	require.True(t, res.IsSuccess)
	require.False(t, res.IsEmpty())

	_, err = f.attendance.Get(ctx, guest.UserID, id)
	assert.ErrorIs(t, err, model.ErrAttendanceNotFound)

	details, err := f.activitySvc.Details(ctx, ActivityDetails{Actor: host, ID: id})
	require.NoError(t, err)
	assert.True(t, details.IsEmpty())
}

func TestActivityService_Details_MarksFollowedAttendees(t *testing.T) {
	f := newFixture(t)
	host := f.user(t, "bob")
	guest := f.user(t, "tom")
	viewer := f.user(t, "jane")
	id := f.createActivity(t, host, "X", future(1))
	f.toggleAttendance(t, guest, id)

	res, err := f.followSvc.Toggle(context.Background(), FollowToggle{Actor: viewer, TargetUsername: "tom"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess)

	dto := f.details(t, viewer, id)
	require.Len(t, dto.Attendees, 2)
	assert.Equal(t, "bob", dto.Attendees[0].Username)
	assert.False(t, dto.Attendees[0].Following)
	assert.Equal(t, "tom", dto.Attendees[1].Username)
	assert.True(t, dto.Attendees[1].Following)
	assert.Equal(t, 1, dto.Attendees[1].FollowersCount)
}

// =============================================================================
// NOT FOUND VS FAILURE
// =============================================================================

func TestActivityService_UnknownActivityIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.user(t, "bob")
	missing := uuid.New()
	title := "x"

	tests := []struct {
		name string
		run  func() (empty bool, failure bool, err error)
	}{
		{"edit", func() (bool, bool, error) {
			r, err := f.activitySvc.Edit(ctx, EditActivity{Actor: actor, ID: missing, Title: &title})
			return r.IsEmpty(), r.IsFailure(), err
		}},
		{"delete", func() (bool, bool, error) {
			r, err := f.activitySvc.Delete(ctx, DeleteActivity{Actor: actor, ID: missing})
			return r.IsEmpty(), r.IsFailure(), err
		}},
		{"details", func() (bool, bool, error) {
			r, err := f.activitySvc.Details(ctx, ActivityDetails{Actor: actor, ID: missing})
			return r.IsEmpty(), r.IsFailure(), err
		}},
		{"attendance", func() (bool, bool, error) {
			r, err := f.activitySvc.UpdateAttendance(ctx, UpdateAttendance{Actor: actor, ID: missing})
			return r.IsEmpty(), r.IsFailure(), err
		}},
		{"follow", func() (bool, bool, error) {
			r, err := f.followSvc.Toggle(ctx, FollowToggle{Actor: actor, TargetUsername: "nobody"})
			return r.IsEmpty(), r.IsFailure(), err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			empty, failure, err := tt.run()
			require.NoError(t, err)
			assert.True(t, empty)
			assert.False(t, failure)
		})
	}
}

// =============================================================================
// SCENARIO
// =============================================================================

func TestActivityService_CreateAttendCancelScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.user(t, "bob")
	u2 := f.user(t, "tom")

	x := f.createActivity(t, u1, "X", future(1))

	list, err := f.activitySvc.List(ctx, ListActivities{Actor: u1})
	require.NoError(t, err)
	require.Len(t, list.Value.Items, 1)
	assert.Equal(t, x, list.Value.Items[0].ID)
	assert.Equal(t, "bob", list.Value.Items[0].HostUsername)

	f.toggleAttendance(t, u2, x)
	dto := f.details(t, u1, x)
	require.Len(t, dto.Attendees, 2)
	for _, a := range dto.Attendees {
		if a.Username == "tom" {
			assert.False(t, a.IsHost)
		}
	}

	f.toggleAttendance(t, u1, x)
	dto = f.details(t, u1, x)
	assert.True(t, dto.IsCancelled)
	assert.Len(t, dto.Attendees, 2)
}
