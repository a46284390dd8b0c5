package services

import (
	"context"
	"testing"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guard := NewGuard(f.db)

	ticket, err := NewTickets(f.db, nullLogger()).Create(ctx, f.project, CreateTicketInput{Title: "T", Description: "D"})
	require.NoError(t, err)

	t.Run("owner by project", func(t *testing.T) {
		access, err := guard.Resolve(ctx, f.owner.ID, Scope{ProjectID: idPtr(f.project.ID)})
		require.NoError(t, err)
		assert.True(t, access.Project.ID.Equal(f.project.ID))
		assert.Nil(t, access.Ticket)
		assert.True(t, access.Project.IsMember(f.member.ID))
	})

	t.Run("member by ticket", func(t *testing.T) {
		access, err := guard.Resolve(ctx, f.member.ID, Scope{TicketID: idPtr(ticket.ID)})
		require.NoError(t, err)
		assert.True(t, access.Project.ID.Equal(f.project.ID))
		require.NotNil(t, access.Ticket)
		assert.True(t, access.Ticket.ID.Equal(ticket.ID))
	})

	t.Run("outsider", func(t *testing.T) {
		_, err := guard.Resolve(ctx, f.outsider.ID, Scope{ProjectID: idPtr(f.project.ID)})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))

		_, err = guard.Resolve(ctx, f.outsider.ID, Scope{TicketID: idPtr(ticket.ID)})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("nothing to resolve", func(t *testing.T) {
		_, err := guard.Resolve(ctx, f.owner.ID, Scope{})
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))

		_, err = guard.Resolve(ctx, f.owner.ID, Scope{TicketID: idPtr(ids.New())})
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	})

	t.Run("unknown ticket within a project", func(t *testing.T) {
		access, err := guard.Resolve(ctx, f.member.ID, Scope{ProjectID: idPtr(f.project.ID), TicketID: idPtr(ids.New())})
		require.NoError(t, err)
		assert.Nil(t, access.Ticket)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := guard.Resolve(ctx, f.owner.ID, Scope{ProjectID: idPtr(ids.New())})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("ticket from another project", func(t *testing.T) {
		other, err := NewProjects(f.db, nullLogger()).Create(ctx, f.owner.ID, "Gemini", "")
		require.NoError(t, err)

		_, err = guard.Resolve(ctx, f.owner.ID, Scope{ProjectID: idPtr(other.ID), TicketID: idPtr(ticket.ID)})
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	})
}
