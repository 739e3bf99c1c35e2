package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/cryptox"
	"github.com/dmitrijs2005/pointpool/internal/logging"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/config"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pointpool/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	db       *sql.DB
	users    *services.UserService
	sessions *services.SessionService
	points   *services.PointsService
	cfg      *config.Config
}

func setup(t *testing.T) *env {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	db, err := repomanager.OpenDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewPostgresRepositoryManager()
	require.NoError(t, rm.RunMigrations(ctx, db))

	_, err = db.ExecContext(ctx, `TRUNCATE users, sessions RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE champions SET points = 0`)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PoolCapacity = 5

	ps := services.NewPointsService(db, rm, cfg, logging.Nop{})
	require.NoError(t, ps.EnsurePool(ctx))
	setPool(t, db, 200, time.Now().Add(-time.Minute))

	gen, err := auth.NewRandomGenerator()
	require.NoError(t, err)

	hasher := cryptox.NewHasher(cryptox.Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32})
	ss := services.NewSessionService(db, rm, gen, nil, cfg, logging.Nop{})
	us, err := services.NewUserService(db, rm, ss, hasher, logging.Nop{})
	require.NoError(t, err)

	return &env{
		db:       db,
		users:    us,
		sessions: ss,
		points:   ps,
		cfg:      cfg,
	}
}

func setPool(t *testing.T, db *sql.DB, points int64, openAt time.Time) {
	t.Helper()
	_, err := db.Exec(`UPDATE points_pool SET points = $1, open_at = $2 WHERE id = 1`, points, openAt)
	require.NoError(t, err)
}

func (e *env) signup(t *testing.T, name string) int64 {
	t.Helper()
	u, _, err := e.users.Signup(context.Background(), name, "pw")
	require.NoError(t, err)
	return u.ID
}

// parallel runs fn n times at once and collects the errors.
func parallel(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestConcurrentCollectOnLastPoint(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	const n = 8
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = e.signup(t, fmt.Sprintf("racer-%d", i))
	}
	setPool(t, e.db, 1, time.Now().Add(-time.Minute))

	errs := parallel(n, func(i int) error {
		_, err := e.points.Collect(ctx, ids[i])
		return err
	})

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrPoolClosed), errors.Is(err, common.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one collector wins the last point")

	pool, err := e.points.PoolStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, e.cfg.PoolCapacity, pool.Points)
	assert.True(t, pool.OpenAt.After(time.Now().Add(e.cfg.PoolRefillDelay-time.Minute)))

	var total int64
	require.NoError(t, e.db.QueryRow(`SELECT COALESCE(SUM(points), 0) FROM users`).Scan(&total))
	assert.Equal(t, int64(1), total)

	_, err = e.points.Collect(ctx, e.signup(t, "late"))
	assert.ErrorIs(t, err, common.ErrPoolClosed)
}

func TestCollectCooldown(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	id := e.signup(t, "patient")

	balance, err := e.points.Collect(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), balance)

	before, err := e.points.PoolStatus(ctx)
	require.NoError(t, err)

	_, err = e.points.Collect(ctx, id)
	var tooSoon *common.TooSoonError
	require.ErrorAs(t, err, &tooSoon)
	assert.True(t, tooSoon.NextEligible.After(time.Now()))

	after, err := e.points.PoolStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Points, after.Points)

	b, err := e.points.Balance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Points)
	assert.Equal(t, tooSoon.NextEligible.Unix(), b.CanGetPointsTime.Unix())
}

func TestConcurrentCollectsBySameUser(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	id := e.signup(t, "eager")

	const n = 8
	errs := parallel(n, func(int) error {
		_, err := e.points.Collect(ctx, id)
		return err
	})

	var ok, tooSoon int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrTooSoon):
			tooSoon++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, tooSoon)

	b, err := e.points.Balance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Points)
}

func TestConcurrentAssignsToOneChampion(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	var championID int64
	require.NoError(t, e.db.QueryRow(`SELECT id FROM champions ORDER BY id LIMIT 1`).Scan(&championID))

	const users, each = 5, 4
	ids := make([]int64, users)
	for i := range ids {
		ids[i] = e.signup(t, fmt.Sprintf("giver-%d", i))
		_, err := e.db.Exec(`UPDATE users SET points = $1 WHERE id = $2`, each, ids[i])
		require.NoError(t, err)
	}

	// One extra attempt per user must fail with insufficient funds.
	errs := parallel(users*(each+1), func(i int) error {
		_, err := e.points.Assign(ctx, ids[i%users], championID)
		return err
	})

	var ok, broke int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrInsufficientFunds):
			broke++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, users*each, ok)
	assert.Equal(t, users, broke)

	var champion int64
	require.NoError(t, e.db.QueryRow(`SELECT points FROM champions WHERE id = $1`, championID).Scan(&champion))
	assert.Equal(t, int64(users*each), champion)

	var left int64
	require.NoError(t, e.db.QueryRow(`SELECT COALESCE(SUM(points), 0) FROM users`).Scan(&left))
	assert.Zero(t, left)
}

func TestAssignUnknownChampionRollsBack(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	id := e.signup(t, "lost")

	_, err := e.points.Collect(ctx, id)
	require.NoError(t, err)

	_, err = e.points.Assign(ctx, id, 999999)
	require.ErrorIs(t, err, common.ErrNotFound)

	b, err := e.points.Balance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Points)
}

func TestSessionLifecycle(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, _, err := e.users.Signup(ctx, "ab cd", "pw")
	require.ErrorIs(t, err, common.ErrInvalidName)

	u, token, err := e.users.Signup(ctx, "session-user", "pw")
	require.NoError(t, err)

	_, _, err = e.users.Signup(ctx, "session-user", "pw")
	require.ErrorIs(t, err, common.ErrNameExists)

	got, ok, err := e.sessions.Resolve(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)

	_, second, err := e.users.Login(ctx, "session-user", "pw")
	require.NoError(t, err)
	assert.NotEqual(t, token, second)

	require.NoError(t, e.users.Logout(ctx, auth.NewIdentity(*got, token)))
	_, ok, err = e.sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.sessions.Resolve(ctx, second)
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, err = e.users.Login(ctx, "session-user", "wrong")
	require.ErrorIs(t, err, common.ErrWrongPassword)
}
