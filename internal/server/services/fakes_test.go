package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/dbx"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/champions"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/pool"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/teams"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	mu      sync.Mutex
	byName  map[string]*models.User
	nextID  int64
	getErr  error
	created int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[u.Name]; ok {
		return nil, common.ErrNameExists
	}
	cp := *u
	cp.ID = f.nextID
	f.nextID++
	f.byName[u.Name] = &cp
	f.created++
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) GetByName(_ context.Context, name string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

// --- sessions ---

type fakeSession struct {
	userID    int64
	expiresAt time.Time
}

type fakeSessionsRepo struct {
	mu        sync.Mutex
	rows      map[string]fakeSession
	users     *fakeUsersRepo
	createErr error
	findErr   error
	findCalls int
	// afterFind runs once a row was read, before FindUser returns.
	afterFind func()
}

func newFakeSessionsRepo(u *fakeUsersRepo) *fakeSessionsRepo {
	return &fakeSessionsRepo{rows: map[string]fakeSession{}, users: u}
}

func (f *fakeSessionsRepo) Create(_ context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[string(s.Token)] = fakeSession{userID: s.UserID, expiresAt: s.ExpiresAt}
	return nil
}

func (f *fakeSessionsRepo) FindUser(ctx context.Context, token []byte, now time.Time) (*models.User, time.Time, error) {
	f.mu.Lock()
	f.findCalls++
	if f.findErr != nil {
		f.mu.Unlock()
		return nil, time.Time{}, f.findErr
	}
	row, ok := f.rows[string(token)]
	f.mu.Unlock()
	if !ok || !row.expiresAt.After(now) {
		return nil, time.Time{}, common.ErrNotFound
	}
	u, err := f.users.GetByID(ctx, row.userID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if f.afterFind != nil {
		f.afterFind()
	}
	return u, row.expiresAt, nil
}

func (f *fakeSessionsRepo) Delete(_ context.Context, token []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, string(token))
	return nil
}

func (f *fakeSessionsRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, row := range f.rows {
		if !row.expiresAt.After(now) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

// --- ledger ---

type fakeLedgerRepo struct {
	points      int64
	cooldown    time.Time
	cooldownErr error
	credits     []int64
	nextCollect time.Time
	debits      []int64
	creditErr   error
	// committed is the cooldown a concurrent transaction committed; reads
	// outside the transaction see it.
	committed time.Time
}

func (f *fakeLedgerRepo) GetCooldown(context.Context, int64) (time.Time, error) {
	return f.cooldown, f.cooldownErr
}

func (f *fakeLedgerRepo) Credit(_ context.Context, _ int64, delta int64, next time.Time) (int64, error) {
	if f.creditErr != nil {
		return 0, f.creditErr
	}
	f.credits = append(f.credits, delta)
	f.points += delta
	f.nextCollect = next
	return f.points, nil
}

func (f *fakeLedgerRepo) Debit(_ context.Context, _ int64, delta int64) (int64, error) {
	if f.points < delta {
		return 0, common.ErrInsufficientFunds
	}
	f.debits = append(f.debits, delta)
	f.points -= delta
	return f.points, nil
}

func (f *fakeLedgerRepo) Balance(context.Context, int64) (*models.Balance, error) {
	if !f.committed.IsZero() {
		return &models.Balance{Points: f.points, CanGetPointsTime: f.committed}, nil
	}
	return &models.Balance{Points: f.points, CanGetPointsTime: f.cooldown}, nil
}

// --- pool ---

type fakePoolRepo struct {
	points    int64
	openAt    time.Time
	takes     int
	refills   int
	ensured   bool
	refillCap int64
}

func (f *fakePoolRepo) Take(_ context.Context, now time.Time) (int64, error) {
	f.takes++
	if f.points <= 0 || now.Before(f.openAt) {
		return 0, common.ErrPoolClosed
	}
	f.points--
	return f.points, nil
}

func (f *fakePoolRepo) Refill(_ context.Context, capacity int64, openAt time.Time) error {
	f.refills++
	f.refillCap = capacity
	f.points = capacity
	f.openAt = openAt
	return nil
}

func (f *fakePoolRepo) Ensure(_ context.Context, capacity int64, openAt time.Time) error {
	if f.ensured {
		return nil
	}
	f.ensured = true
	f.points = capacity
	f.openAt = openAt
	return nil
}

func (f *fakePoolRepo) Get(context.Context) (*models.Pool, error) {
	return &models.Pool{Points: f.points, OpenAt: f.openAt}, nil
}

// --- champions, teams ---

type fakeChampionsRepo struct {
	list    []models.Champion
	credits []int64
}

func (f *fakeChampionsRepo) List(context.Context) ([]models.Champion, error) {
	return f.list, nil
}

func (f *fakeChampionsRepo) Credit(_ context.Context, id int64, delta int64) (int64, error) {
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].Points += delta
			f.credits = append(f.credits, delta)
			return f.list[i].Points, nil
		}
	}
	return 0, common.ErrNotFound
}

type fakeTeamsRepo struct {
	list []models.Team
	err  error
}

func (f *fakeTeamsRepo) List(context.Context) ([]models.Team, error) {
	return f.list, f.err
}

// --- manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	s  *fakeSessionsRepo
	l  *fakeLedgerRepo
	p  *fakePoolRepo
	c  *fakeChampionsRepo
	tm *fakeTeamsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	u := newFakeUsersRepo()
	return &fakeRepoManager{
		u:  u,
		s:  newFakeSessionsRepo(u),
		l:  &fakeLedgerRepo{},
		p:  &fakePoolRepo{},
		c:  &fakeChampionsRepo{},
		tm: &fakeTeamsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository            { return m.u }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository      { return m.s }
func (m *fakeRepoManager) Ledger(dbx.DBTX) ledger.Repository          { return m.l }
func (m *fakeRepoManager) Pool(dbx.DBTX) pool.Repository              { return m.p }
func (m *fakeRepoManager) Champions(dbx.DBTX) champions.Repository    { return m.c }
func (m *fakeRepoManager) Teams(dbx.DBTX) teams.Repository            { return m.tm }

func newTestUser(name string) *models.User {
	return &models.User{Name: name, PasswordHash: "x"}
}
