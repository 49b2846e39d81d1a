package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"activityhub/internal/core"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
)

func TestRegister_CoversEveryRequest(t *testing.T) {
	f := newFixture(t)
	reg := mediator.NewRegistry()
	f.activitySvc.Register(reg)
	f.followSvc.Register(reg)
	f.photoSvc.Register(reg)
	f.profileSvc.Register(reg)
	f.commentSvc.Register(reg)

	m, err := reg.Build(zap.NewNop(), Requests()...)
	require.NoError(t, err)
	assert.ElementsMatch(t, Requests(), m.Names())
}

func TestRegister_MissingServiceFailsBuild(t *testing.T) {
	f := newFixture(t)
	reg := mediator.NewRegistry()
	f.activitySvc.Register(reg)

	_, err := reg.Build(zap.NewNop(), Requests()...)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "FollowToggle")
}

func TestSend_ValidatesBeforeHandler(t *testing.T) {
	f := newFixture(t)
	reg := mediator.NewRegistry()
	f.activitySvc.Register(reg)
	m, err := reg.Build(zap.NewNop())
	require.NoError(t, err)
	host := f.user(t, "bob")

	_, err = mediator.Send[core.Unit](context.Background(), m, CreateActivity{Actor: host, Title: "No date"})

	var verr *mediator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "date")
	assert.Contains(t, verr.Fields, "venue")

	res, err := mediator.Send[core.Page[model.ActivityDto]](context.Background(), m, ListActivities{Actor: host})
	require.NoError(t, err)
	assert.Empty(t, res.Value.Items)
}
