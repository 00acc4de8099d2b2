package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/collective-recitation/internal/database"
	"github.com/iliyamo/collective-recitation/internal/model"
)

// openTestDB connects to the database named by TEST_DB_DSN and runs
// the migrations. Tests that need a live MySQL skip when the variable
// is unset, so the pure-logic tests in this package still run
// anywhere. The DSN must include parseTime=true; clientFoundRows is
// appended when missing because the repositories read RowsAffected as
// matched rows, the same way database.Open configures it.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping database integration test")
	}
	if !strings.Contains(dsn, "clientFoundRows") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "clientFoundRows=true"
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Ping())
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// newTestUser registers a throwaway user with a unique email.
func newTestUser(t *testing.T, users *UserRepo, tag string) uint64 {
	t.Helper()
	email := fmt.Sprintf("%s-%d@test.local", tag, time.Now().UnixNano())
	id, err := users.Create(context.Background(), tag, &email, nil, "pw", "en", 4)
	require.NoError(t, err)
	return id
}

func newTestRecitation(t *testing.T, recs *RecitationRepo, creator uint64, total int) uint64 {
	t.Helper()
	id, err := recs.CreateAll(context.Background(), &model.Recitation{
		Title:         "test recitation",
		CreatorID:     creator,
		ContentType:   "custom",
		PortionType:   "part",
		TotalPortions: total,
		Language:      "en",
	})
	require.NoError(t, err)
	return id
}

func TestCreateAllSeedsEveryPortion(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	recs := NewRecitationRepo(db)
	ctx := context.Background()

	creator := newTestUser(t, users, "creator")
	recID := newTestRecitation(t, recs, creator, 5)

	det, err := recs.GetDetail(ctx, recID)
	require.NoError(t, err)
	assert.Equal(t, model.RecitationActive, det.Status)
	require.Len(t, det.Portions, 5)
	for i, p := range det.Portions {
		assert.Equal(t, i+1, p.PortionNumber)
		assert.Nil(t, p.UserID)
		assert.False(t, p.IsCompleted)
	}

	// The creator is auto-joined, so a second join must conflict.
	parts := NewParticipantRepo(db)
	err = parts.Join(ctx, recID, creator)
	assert.ErrorIs(t, err, ErrAlreadyParticipant)
}

func TestAssignExactlyOneWinner(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	recs := NewRecitationRepo(db)
	parts := NewParticipantRepo(db)
	portions := NewPortionRepo(db)
	ctx := context.Background()

	creator := newTestUser(t, users, "creator")
	recID := newTestRecitation(t, recs, creator, 1)

	const racers = 8
	ids := make([]uint64, racers)
	for i := range ids {
		ids[i] = newTestUser(t, users, fmt.Sprintf("racer%d", i))
		require.NoError(t, parts.Join(ctx, recID, ids[i]))
	}

	var wg sync.WaitGroup
	wins := make(chan uint64, racers)
	for _, uid := range ids {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			if err := portions.Assign(ctx, recID, 1, uid); err == nil {
				wins <- uid
			}
		}(uid)
	}
	wg.Wait()
	close(wins)

	winners := make([]uint64, 0, racers)
	for uid := range wins {
		winners = append(winners, uid)
	}
	require.Len(t, winners, 1)

	det, err := recs.GetDetail(ctx, recID)
	require.NoError(t, err)
	require.NotNil(t, det.Portions[0].UserID)
	assert.Equal(t, winners[0], *det.Portions[0].UserID)
}

func TestCompleteRestrictedToAssignee(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	recs := NewRecitationRepo(db)
	parts := NewParticipantRepo(db)
	portions := NewPortionRepo(db)
	ctx := context.Background()

	creator := newTestUser(t, users, "creator")
	other := newTestUser(t, users, "other")
	recID := newTestRecitation(t, recs, creator, 2)
	require.NoError(t, parts.Join(ctx, recID, other))

	require.NoError(t, portions.Assign(ctx, recID, 1, creator))

	// Not the assignee.
	_, err := portions.Complete(ctx, recID, 1, other)
	assert.ErrorIs(t, err, ErrNotAssignee)
	// Unassigned portion.
	_, err = portions.Complete(ctx, recID, 2, creator)
	assert.ErrorIs(t, err, ErrNotAssignee)

	done, err := portions.Complete(ctx, recID, 1, creator)
	require.NoError(t, err)
	assert.False(t, done, "one of two portions must not complete the recitation")

	// Completing twice matches no row.
	_, err = portions.Complete(ctx, recID, 1, creator)
	assert.ErrorIs(t, err, ErrNotAssignee)
}

func TestRecitationCompletesWithLastPortion(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	recs := NewRecitationRepo(db)
	portions := NewPortionRepo(db)
	stats := NewStatsRepo(db)
	ctx := context.Background()

	creator := newTestUser(t, users, "creator")
	recID := newTestRecitation(t, recs, creator, 3)

	for n := 1; n <= 3; n++ {
		require.NoError(t, portions.Assign(ctx, recID, n, creator))
	}
	for n := 1; n <= 3; n++ {
		done, err := portions.Complete(ctx, recID, n, creator)
		require.NoError(t, err)
		assert.Equal(t, n == 3, done)
	}

	det, err := recs.GetDetail(ctx, recID)
	require.NoError(t, err)
	assert.Equal(t, model.RecitationCompleted, det.Status)

	s, err := stats.ForRecitation(ctx, recID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalPortions)
	assert.Equal(t, 3, s.CompletedPortions)
	assert.Equal(t, 0, s.UnassignedPortions)
	assert.Equal(t, 0, s.ActiveReciters)
	assert.InDelta(t, 100.0, s.CompletionPercentage, 0.001)

	us, err := stats.ForUser(ctx, creator)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, us.PortionsCompleted, 3)
	assert.GreaterOrEqual(t, us.RecitationsJoined, 1)
}

func TestUpdateProgressAndNotes(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	recs := NewRecitationRepo(db)
	portions := NewPortionRepo(db)
	notes := NewProgressNoteRepo(db)
	ctx := context.Background()

	creator := newTestUser(t, users, "creator")
	stranger := newTestUser(t, users, "stranger")
	recID := newTestRecitation(t, recs, creator, 1)
	require.NoError(t, portions.Assign(ctx, recID, 1, creator))

	note := "halfway through"
	require.NoError(t, portions.UpdateProgress(ctx, recID, 1, creator, 50, &note))
	assert.ErrorIs(t, portions.UpdateProgress(ctx, recID, 1, stranger, 10, nil),
		ErrNotAssignee)

	// Re-posting the identical percentage right away changes nothing
	// in the row, but it is still the assignee reporting and must
	// append a second note, not bounce.
	require.NoError(t, portions.UpdateProgress(ctx, recID, 1, creator, 50, nil))

	pid, err := portions.PortionID(ctx, recID, 1)
	require.NoError(t, err)
	history, err := notes.ListByPortion(ctx, pid)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 50, history[0].ProgressPercentage)
	for _, h := range history {
		if h.Notes != nil {
			assert.Equal(t, note, *h.Notes)
		}
	}

	// Completion freezes the portion; further reports are rejected.
	_, err = portions.Complete(ctx, recID, 1, creator)
	require.NoError(t, err)
	assert.ErrorIs(t, portions.UpdateProgress(ctx, recID, 1, creator, 60, nil),
		ErrNotAssignee)
}

func TestContentTypeUpdateKeepsExistingValues(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	catalog := NewContentTypeRepo(db)
	ctx := context.Background()

	admin := newTestUser(t, users, "admin")
	name := fmt.Sprintf("work_%d", time.Now().UnixNano())
	id, err := catalog.Create(ctx, name, "Some Work", nil, map[string]int{"part": 10}, admin)
	require.NoError(t, err)

	// Updating a row to the values it already holds matches one row
	// and changes none; it must still count as found.
	display := "Some Work"
	upd := ContentTypeUpdate{DisplayName: &display}
	require.NoError(t, catalog.Update(ctx, id, upd))
	require.NoError(t, catalog.Update(ctx, id, upd))

	assert.ErrorIs(t, catalog.Update(ctx, id+1000000, upd), ErrNotFound)
}

func TestResolvePortionCountAgainstCatalog(t *testing.T) {
	db := openTestDB(t)
	catalog := NewContentTypeRepo(db)
	ctx := context.Background()

	n, err := catalog.ResolvePortionCount(ctx, "quran", "juz", nil)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	n, err = catalog.ResolvePortionCount(ctx, "sahifa_sajjadiya", "dua", nil)
	require.NoError(t, err)
	assert.Equal(t, 54, n)

	// Explicit totals always win, even over a known mapping.
	seven := 7
	n, err = catalog.ResolvePortionCount(ctx, "quran", "juz", &seven)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = catalog.ResolvePortionCount(ctx, "custom", "part", nil)
	assert.ErrorIs(t, err, ErrTotalRequired)

	_, err = catalog.ResolvePortionCount(ctx, "quran", "verse", nil)
	assert.ErrorIs(t, err, ErrUnsupportedCombination)

	_, err = catalog.ResolvePortionCount(ctx, "no_such_work", "juz", nil)
	assert.ErrorIs(t, err, ErrUnsupportedCombination)
}
