package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/cryptox"
	"github.com/dmitrijs2005/pointpool/internal/logging"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheapParams = cryptox.Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func newUserService(t *testing.T, rm *fakeRepoManager) (*UserService, *SessionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	cfg := &config.Config{}
	cfg.LoadDefaults()

	sessions := NewSessionService(db, rm, auth.NewGenerator([32]byte{1}), nil, cfg, logging.Nop{})
	users, err := NewUserService(db, rm, sessions, cryptox.NewHasher(cheapParams), logging.Nop{})
	require.NoError(t, err)
	return users, sessions, mock
}

func TestSignup_CreatesUserAndSession(t *testing.T) {
	rm := newFakeRepoManager()
	users, sessions, mock := newUserService(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit()

	u, token, err := users.Signup(context.Background(), "alice-1", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice-1", u.Name)
	assert.Empty(t, u.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())

	stored, err := rm.u.GetByName(context.Background(), "alice-1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)

	resolved, ok, err := sessions.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.ID, resolved.ID)
}

func TestSignup_ValidationBeforeStorage(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		want     error
	}{
		{"space in name", "ab cd", "pw", common.ErrInvalidName},
		{"empty name", "", "pw", common.ErrInvalidName},
		{"too long", "abcdefghijklmnopqrst", "pw", common.ErrInvalidName},
		{"empty password", "bob", "", common.ErrMissingDetails},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := newFakeRepoManager()
			users, _, mock := newUserService(t, rm)

			_, _, err := users.Signup(context.Background(), tt.user, tt.password)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, rm.u.created)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSignup_NameExists(t *testing.T) {
	rm := newFakeRepoManager()
	users, _, mock := newUserService(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, _, err := users.Signup(context.Background(), "carol", "pw")
	require.NoError(t, err)

	_, _, err = users.Signup(context.Background(), "carol", "other")
	require.ErrorIs(t, err, common.ErrNameExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_SessionFailureRollsBack(t *testing.T) {
	rm := newFakeRepoManager()
	rm.s.createErr = errors.New("db error: boom")
	users, _, mock := newUserService(t, rm)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, _, err := users.Signup(context.Background(), "dave", "pw")
	require.Error(t, err)
	assert.Equal(t, common.KindInternal, common.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	rm := newFakeRepoManager()
	users, sessions, mock := newUserService(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, first, err := users.Signup(context.Background(), "erin", "pw")
	require.NoError(t, err)

	u, second, err := users.Login(context.Background(), "erin", "pw")
	require.NoError(t, err)
	assert.Equal(t, "erin", u.Name)
	assert.Empty(t, u.PasswordHash)
	assert.NotEqual(t, first, second)

	for _, tok := range []auth.SessionToken{first, second} {
		_, ok, err := sessions.Resolve(context.Background(), tok)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	_, _, err = users.Login(context.Background(), "erin", "wrong")
	require.ErrorIs(t, err, common.ErrWrongPassword)
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, _, err = users.Login(context.Background(), "nobody", "pw")
	require.ErrorIs(t, err, common.ErrUserDoesNotExist)
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, _, err = users.Login(context.Background(), "", "pw")
	require.ErrorIs(t, err, common.ErrMissingDetails)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_StorageError(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.getErr = errors.New("db error: timeout")
	users, _, _ := newUserService(t, rm)

	_, _, err := users.Login(context.Background(), "erin", "pw")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrInvalidCredentials))
}

func TestLogout(t *testing.T) {
	rm := newFakeRepoManager()
	users, sessions, mock := newUserService(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit()

	u, token, err := users.Signup(context.Background(), "frank", "pw")
	require.NoError(t, err)

	id := auth.NewIdentity(*u, token)
	require.NoError(t, users.Logout(context.Background(), id))
	require.NoError(t, users.Logout(context.Background(), id))

	_, ok, err := sessions.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, users.Logout(context.Background(), auth.Anonymous()))
}

func TestSessionService_ExpiryAndPurge(t *testing.T) {
	rm := newFakeRepoManager()
	_, sessions, _ := newUserService(t, rm)
	sessions.ttl = time.Minute

	now := testNow
	sessions.nowFunc = func() time.Time { return now }

	_, err := rm.u.Create(context.Background(), newTestUser("gina"))
	require.NoError(t, err)

	token, err := sessions.Issue(context.Background(), nil, 1)
	require.NoError(t, err)

	_, ok, err := sessions.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = sessions.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := sessions.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSessionService_UnknownTokenIsNotAnError(t *testing.T) {
	rm := newFakeRepoManager()
	_, sessions, _ := newUserService(t, rm)

	u, ok, err := sessions.Resolve(context.Background(), auth.SessionToken{9})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, u)
}

func TestSessionService_ResolveStorageError(t *testing.T) {
	rm := newFakeRepoManager()
	rm.s.findErr = errors.New("db error: closed")
	_, sessions, _ := newUserService(t, rm)

	_, _, err := sessions.Resolve(context.Background(), auth.SessionToken{9})
	require.Error(t, err)
}

func TestRunPurger_StopsOnCancel(t *testing.T) {
	rm := newFakeRepoManager()
	_, sessions, _ := newUserService(t, rm)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessions.RunPurger(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purger did not stop")
	}
}
