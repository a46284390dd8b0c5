package services

import (
	"context"
	"sync"
	"testing"

	"github.com/monocle-dev/tracker/db"
	"github.com/monocle-dev/tracker/internal/config"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/mail"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	logger, _ := test.NewNullLogger()
	database, err := db.Open(config.DatabaseConfig{Driver: "sqlite", URL: "file::memory:"}, logger)
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.MigrateDatabase(database))
	return database
}

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func createUser(t *testing.T, database *gorm.DB, name, email string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, PasswordHash: "unused"}
	require.NoError(t, database.Create(&user).Error)
	return user
}

// fixture is a project owned by Owner with Member already added.
type fixture struct {
	db       *gorm.DB
	owner    models.User
	member   models.User
	outsider models.User
	project  models.Project
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	database := newTestDB(t)
	f := fixture{
		db:       database,
		owner:    createUser(t, database, "Olivia Owner", "olivia@example.com"),
		member:   createUser(t, database, "Max Member", "max@example.com"),
		outsider: createUser(t, database, "Victor Outsider", "victor@example.com"),
	}

	projects := NewProjects(database, nullLogger())
	project, err := projects.Create(context.Background(), f.owner.ID, "Apollo", "Moon landing")
	require.NoError(t, err)

	membership := NewMembership(database, &recordingQueue{}, MembershipConfig{}, nullLogger())
	require.NoError(t, membership.AddMember(context.Background(), project, f.owner.ID, f.member.ID))

	f.project = project
	f.project = f.reload(t)
	return f
}

// reload returns the project the way the guard hands it to operations.
func (f fixture) reload(t *testing.T) models.Project {
	t.Helper()

	access, err := NewGuard(f.db).Resolve(context.Background(), f.owner.ID, Scope{ProjectID: idPtr(f.project.ID)})
	require.NoError(t, err)
	return access.Project
}

type recordingQueue struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (q *recordingQueue) Enqueue(msg mail.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.messages = append(q.messages, msg)
	return nil
}

func (q *recordingQueue) sent() []mail.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]mail.Message(nil), q.messages...)
}

func idPtr(id ids.ID) *ids.ID {
	return &id
}
