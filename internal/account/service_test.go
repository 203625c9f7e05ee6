package account

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/user-portal/internal/users"
)

type fakeSession struct {
	user       *SessionUser
	loginErr   error
	destroyErr error
	destroyed  int
}

func (s *fakeSession) User() (SessionUser, bool) {
	if s.user == nil {
		return SessionUser{}, false
	}
	return *s.user, true
}

func (s *fakeSession) Login(user SessionUser) error {
	if s.loginErr != nil {
		return s.loginErr
	}
	s.user = &user
	return nil
}

func (s *fakeSession) Destroy() error {
	s.destroyed++
	if s.destroyErr != nil {
		return s.destroyErr
	}
	s.user = nil
	return nil
}

// countingStore は書き込み回数を数え、任意のエラーを注入できる Store です。
type countingStore struct {
	*users.MemoryStore
	creates   int
	getErr    error
	createErr error
	// beforeCreate は Get と Create の間に割り込む処理です。
	beforeCreate func()
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: users.NewMemoryStore()}
}

func (s *countingStore) Get(ctx context.Context, email string) (*users.Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStore.Get(ctx, email)
}

func (s *countingStore) Create(ctx context.Context, record *users.Record) error {
	if s.beforeCreate != nil {
		s.beforeCreate()
	}
	if s.createErr != nil {
		return s.createErr
	}
	s.creates++
	return s.MemoryStore.Create(ctx, record)
}

type failingHasher struct{ err error }

func (h failingHasher) Hash(string) (string, error)         { return "", h.err }
func (h failingHasher) Verify(string, string) (bool, error) { return false, h.err }

func newTestService(t *testing.T, store users.Store) *Service {
	t.Helper()
	hasher, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	svc, err := NewService(store, hasher)
	require.NoError(t, err)
	return svc
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	var wfErr *Error
	require.True(t, errors.As(err, &wfErr), "expected *account.Error, got %v", err)
	require.Equal(t, kind, wfErr.Kind)
	return wfErr
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, failingHasher{})
	assert.Error(t, err)
	_, err = NewService(users.NewMemoryStore(), nil)
	assert.Error(t, err)
}

func TestSignupMissingFields(t *testing.T) {
	cases := []struct{ name, email, password string }{
		{"", "ann@x.com", "pw1"},
		{"Ann", "", "pw1"},
		{"Ann", "ann@x.com", ""},
		{"   ", "ann@x.com", "pw1"},
		{"", "", ""},
	}
	for _, tc := range cases {
		store := newCountingStore()
		svc := newTestService(t, store)

		err := svc.Signup(context.Background(), tc.name, tc.email, tc.password)
		wfErr := requireKind(t, err, KindValidation)
		assert.Equal(t, "All fields are required.", wfErr.Message)
		assert.Zero(t, store.creates)
	}
}

func TestWhitespacePasswordIsAccepted(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	svc := newTestService(t, store)

	require.NoError(t, svc.Signup(ctx, "Ann", "ann@x.com", "   "))
	assert.Equal(t, 1, store.creates)

	session := &fakeSession{}
	require.NoError(t, svc.Signin(ctx, session, "ann@x.com", "   "))
	assert.Equal(t, &SessionUser{Email: "ann@x.com", Name: "Ann"}, session.user)

	// 空白の数が違えば別のパスワードとして扱う
	err := svc.Signin(ctx, &fakeSession{}, "ann@x.com", " ")
	requireKind(t, err, KindAuth)
}

func TestSignupPasswordTooLong(t *testing.T) {
	store := newCountingStore()
	svc := newTestService(t, store)

	err := svc.Signup(context.Background(), "Ann", "ann@x.com", strings.Repeat("a", 73))
	requireKind(t, err, KindValidation)
	assert.Zero(t, store.creates)
}

func TestSignupStoresHashedPassword(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	svc := newTestService(t, store)

	require.NoError(t, svc.Signup(ctx, "Ann", "ann@x.com", "pw1"))
	assert.Equal(t, 1, store.creates)

	record, err := store.Get(ctx, "ann@x.com")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "ann@x.com", record.Email)
	assert.Equal(t, "Ann", record.Name)
	assert.NotEqual(t, "pw1", record.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte("pw1")))
}

func TestSignupSamePasswordDifferentHashes(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	svc := newTestService(t, store)

	require.NoError(t, svc.Signup(ctx, "Ann", "ann@x.com", "same"))
	require.NoError(t, svc.Signup(ctx, "Bob", "bob@x.com", "same"))

	ann, _ := store.Get(ctx, "ann@x.com")
	bob, _ := store.Get(ctx, "bob@x.com")
	assert.NotEqual(t, ann.PasswordHash, bob.PasswordHash)
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	svc := newTestService(t, store)

	require.NoError(t, svc.Signup(ctx, "Ann", "ann@x.com", "pw1"))
	before, _ := store.Get(ctx, "ann@x.com")

	err := svc.Signup(ctx, "Bob", "ann@x.com", "pw2")
	wfErr := requireKind(t, err, KindConflict)
	assert.Equal(t, "Email already registered.", wfErr.Message)
	assert.Equal(t, 1, store.creates)

	after, _ := store.Get(ctx, "ann@x.com")
	assert.Equal(t, before, after)
}

func TestSignupLosesRaceWithoutOverwriting(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	svc := newTestService(t, store)

	// Get の後、Create の前に別のサインアップが完了したケース
	store.beforeCreate = func() {
		store.beforeCreate = nil
		require.NoError(t, store.MemoryStore.Create(ctx, &users.Record{Email: "ann@x.com", Name: "Winner", PasswordHash: "winner-hash"}))
	}

	err := svc.Signup(ctx, "Loser", "ann@x.com", "pw2")
	requireKind(t, err, KindConflict)

	record, _ := store.Get(ctx, "ann@x.com")
	assert.Equal(t, "Winner", record.Name)
	assert.Equal(t, "winner-hash", record.PasswordHash)
}

func TestSignupServerErrors(t *testing.T) {
	boom := errors.New("store unavailable")

	t.Run("lookup", func(t *testing.T) {
		store := newCountingStore()
		store.getErr = boom
		err := newTestService(t, store).Signup(context.Background(), "Ann", "ann@x.com", "pw1")
		wfErr := requireKind(t, err, KindServer)
		assert.Equal(t, "Server error during signup.", wfErr.Message)
		assert.ErrorIs(t, err, boom)
		assert.NotContains(t, wfErr.Message, boom.Error())
	})

	t.Run("create", func(t *testing.T) {
		store := newCountingStore()
		store.createErr = boom
		err := newTestService(t, store).Signup(context.Background(), "Ann", "ann@x.com", "pw1")
		requireKind(t, err, KindServer)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("hash", func(t *testing.T) {
		store := newCountingStore()
		svc, err := NewService(store, failingHasher{err: boom})
		require.NoError(t, err)
		err = svc.Signup(context.Background(), "Ann", "ann@x.com", "pw1")
		requireKind(t, err, KindServer)
		assert.Zero(t, store.creates)
	})
}

func TestSigninMissingFields(t *testing.T) {
	svc := newTestService(t, newCountingStore())

	for _, tc := range [][2]string{{"", "pw1"}, {"ann@x.com", ""}, {"", ""}} {
		sess := &fakeSession{}
		err := svc.Signin(context.Background(), sess, tc[0], tc[1])
		wfErr := requireKind(t, err, KindValidation)
		assert.Equal(t, "Email and password required.", wfErr.Message)
		assert.Nil(t, sess.user)
	}
}

func TestSigninSuccessStoresOnlyEmailAndName(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newCountingStore())
	require.NoError(t, svc.Signup(ctx, "Ann", "ann@x.com", "pw1"))

	sess := &fakeSession{}
	require.NoError(t, svc.Signin(ctx, sess, "ann@x.com", "pw1"))

	user, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, SessionUser{Email: "ann@x.com", Name: "Ann"}, user)
}

func TestSigninFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newCountingStore())
	require.NoError(t, svc.Signup(ctx, "Ann", "ann@x.com", "pw1"))

	wrongPassword := svc.Signin(ctx, &fakeSession{}, "ann@x.com", "wrong")
	unknownEmail := svc.Signin(ctx, &fakeSession{}, "nobody@x.com", "pw1")
	tooLong := svc.Signin(ctx, &fakeSession{}, "ann@x.com", strings.Repeat("a", 100))

	a := requireKind(t, wrongPassword, KindAuth)
	b := requireKind(t, unknownEmail, KindAuth)
	c := requireKind(t, tooLong, KindAuth)
	assert.Equal(t, "Invalid credentials.", a.Message)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, a.Message, c.Message)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestSigninServerErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("lookup", func(t *testing.T) {
		store := newCountingStore()
		store.getErr = boom
		err := newTestService(t, store).Signin(ctx, &fakeSession{}, "ann@x.com", "pw1")
		wfErr := requireKind(t, err, KindServer)
		assert.Equal(t, "Server error during signin.", wfErr.Message)
	})

	t.Run("corrupt hash", func(t *testing.T) {
		store := newCountingStore()
		require.NoError(t, store.Create(ctx, &users.Record{Email: "ann@x.com", Name: "Ann", PasswordHash: "garbage"}))
		err := newTestService(t, store).Signin(ctx, &fakeSession{}, "ann@x.com", "pw1")
		requireKind(t, err, KindServer)
	})

	t.Run("session save", func(t *testing.T) {
		store := newCountingStore()
		svc := newTestService(t, store)
		require.NoError(t, svc.Signup(ctx, "Ann", "ann@x.com", "pw1"))
		err := svc.Signin(ctx, &fakeSession{loginErr: boom}, "ann@x.com", "pw1")
		requireKind(t, err, KindServer)
		assert.ErrorIs(t, err, boom)
	})
}

func TestSignoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newCountingStore())

	sess := &fakeSession{user: &SessionUser{Email: "ann@x.com", Name: "Ann"}}
	require.NoError(t, svc.Signout(ctx, sess))
	require.NoError(t, svc.Signout(ctx, sess))

	_, ok := sess.User()
	assert.False(t, ok)
	assert.Equal(t, 2, sess.destroyed)
}

func TestSignoutDestroyFailure(t *testing.T) {
	err := newTestService(t, newCountingStore()).Signout(context.Background(), &fakeSession{destroyErr: errors.New("redis down")})
	requireKind(t, err, KindServer)
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newCountingStore())

	require.NoError(t, svc.Signup(ctx, "Ann", "ann@x.com", "pw1"))

	sess := &fakeSession{}
	require.NoError(t, svc.Signin(ctx, sess, "ann@x.com", "pw1"))
	assert.Equal(t, &SessionUser{Email: "ann@x.com", Name: "Ann"}, sess.user)

	requireKind(t, svc.Signin(ctx, &fakeSession{}, "ann@x.com", "wrong"), KindAuth)
	requireKind(t, svc.Signup(ctx, "Bob", "ann@x.com", "pw2"), KindConflict)
}
