package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/auth"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/monocle-dev/tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownerIdentity(f fixture) auth.Identity {
	return auth.Identity{ID: f.owner.ID, Name: f.owner.Name, Email: f.owner.Email}
}

func newTestMembership(f fixture, queue MailQueue) *Membership {
	return NewMembership(f.db, queue, MembershipConfig{
		FrontendURL: "https://tracker.test",
		From:        "Tracker <noreply@tracker.test>",
		ExpiryHours: 24,
	}, nullLogger())
}

func TestInviteByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	queue := &recordingQueue{}
	membership := newTestMembership(f, queue)

	invite, token, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), " New@Example.com ", 0)
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", invite.Email)
	assert.Equal(t, types.InvitePending, invite.Status)
	assert.Len(t, token, 64)
	assert.Equal(t, hashInviteToken(token), invite.TokenHash)
	assert.NotContains(t, invite.TokenHash, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), invite.ExpiresAt, time.Minute)

	sent := queue.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "new@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "Apollo")
	assert.Contains(t, sent[0].HTML, "https://tracker.test/invite/accept?token="+token)
	assert.Contains(t, sent[0].HTML, "https://tracker.test/invite/reject?token="+token)

	_, _, err = membership.InviteByEmail(ctx, f.project, ownerIdentity(f), "new@example.com", 0)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "pending invite exists")
}

func TestInviteByEmailPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	membership := newTestMembership(f, &recordingQueue{})

	_, _, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), "not-an-email", 0)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, _, err = membership.InviteByEmail(ctx, f.project, ownerIdentity(f), f.member.Email, 0)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	memberIdentity := auth.Identity{ID: f.member.ID, Name: f.member.Name}
	_, _, err = membership.InviteByEmail(ctx, f.project, memberIdentity, "new@example.com", 0)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestInviteSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	queue := &recordingQueue{err: errors.New("queue full")}
	membership := newTestMembership(f, queue)

	invite, _, err := membership.InviteByEmail(context.Background(), f.project, ownerIdentity(f), "new@example.com", 2)
	require.NoError(t, err)

	var stored models.Invite
	require.NoError(t, f.db.First(&stored, "id = ?", invite.ID).Error)
	assert.Equal(t, types.InvitePending, stored.Status)
}

func TestAcceptInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	membership := newTestMembership(f, &recordingQueue{})

	_, token, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), f.outsider.Email, 0)
	require.NoError(t, err)

	invite, err := membership.AcceptInvite(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, types.InviteAccepted, invite.Status)
	assert.True(t, f.reload(t).IsMember(f.outsider.ID))

	_, err = membership.AcceptInvite(ctx, token)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = membership.RejectInvite(ctx, token)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestAcceptInviteFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	membership := newTestMembership(f, &recordingQueue{})

	_, err := membership.AcceptInvite(ctx, "unknown")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = membership.AcceptInvite(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	t.Run("unregistered invitee", func(t *testing.T) {
		_, token, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), "later@example.com", 0)
		require.NoError(t, err)

		_, err = membership.AcceptInvite(ctx, token)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		createUser(t, f.db, "Later", "later@example.com")
		_, err = membership.AcceptInvite(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		_, token, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), f.outsider.Email, 1)
		require.NoError(t, err)

		membership.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { membership.now = time.Now }()

		_, err = membership.AcceptInvite(ctx, token)
		assert.True(t, apperr.Is(err, apperr.KindGone))

		_, err = membership.RejectInvite(ctx, token)
		assert.True(t, apperr.Is(err, apperr.KindGone))
	})

	t.Run("accepted then expired", func(t *testing.T) {
		invitee := createUser(t, f.db, "Iris", "iris@example.com")
		_, token, err := membership.InviteByEmail(ctx, f.reload(t), ownerIdentity(f), invitee.Email, 1)
		require.NoError(t, err)

		_, err = membership.AcceptInvite(ctx, token)
		require.NoError(t, err)

		membership.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { membership.now = time.Now }()

		_, err = membership.AcceptInvite(ctx, token)
		assert.True(t, apperr.Is(err, apperr.KindGone))
	})
}

func TestReinviteAfterExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	queue := &recordingQueue{}
	membership := newTestMembership(f, queue)

	_, stale, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), "new@example.com", 1)
	require.NoError(t, err)

	membership.now = func() time.Time { return time.Now().Add(5 * time.Hour) }

	invite, fresh, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), "new@example.com", 1)
	require.NoError(t, err)
	assert.NotEqual(t, stale, fresh)
	assert.Equal(t, types.InvitePending, invite.Status)
	assert.Len(t, queue.sent(), 2)

	_, err = membership.RejectInvite(ctx, stale)
	assert.True(t, apperr.Is(err, apperr.KindGone))

	_, err = membership.RejectInvite(ctx, fresh)
	assert.NoError(t, err)
}

func TestRejectInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	membership := newTestMembership(f, &recordingQueue{})

	_, token, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), f.outsider.Email, 0)
	require.NoError(t, err)

	invite, err := membership.RejectInvite(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, types.InviteRejected, invite.Status)
	assert.False(t, f.reload(t).IsMember(f.outsider.ID))

	_, err = membership.AcceptInvite(ctx, token)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// A settled invite does not block a new one.
	_, _, err = membership.InviteByEmail(ctx, f.project, ownerIdentity(f), f.outsider.Email, 0)
	assert.NoError(t, err)
}

func TestAddAndRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	membership := newTestMembership(f, &recordingQueue{})

	err := membership.AddMember(ctx, f.project, f.owner.ID, f.member.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	err = membership.AddMember(ctx, f.project, f.member.ID, f.outsider.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, membership.AddMember(ctx, f.project, f.owner.ID, f.outsider.ID))
	project := f.reload(t)
	assert.True(t, project.IsMember(f.outsider.ID))

	require.NoError(t, membership.RemoveMember(ctx, project, f.owner.ID, f.outsider.ID))
	project = f.reload(t)
	assert.False(t, project.IsMember(f.outsider.ID))

	before := len(project.ProjectMemberships)
	err = membership.RemoveMember(ctx, project, f.owner.ID, f.outsider.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Len(t, f.reload(t).ProjectMemberships, before)

	err = membership.RemoveMember(ctx, project, f.owner.ID, f.owner.ID)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestListInvites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	membership := newTestMembership(f, &recordingQueue{})

	_, token, err := membership.InviteByEmail(ctx, f.project, ownerIdentity(f), "a@example.com", 0)
	require.NoError(t, err)
	_, _, err = membership.InviteByEmail(ctx, f.project, ownerIdentity(f), "b@example.com", 0)
	require.NoError(t, err)
	_, err = membership.RejectInvite(ctx, token)
	require.NoError(t, err)

	invites, err := membership.ListInvites(ctx, f.project, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, invites, 2)

	_, err = membership.ListInvites(ctx, f.project, f.member.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
