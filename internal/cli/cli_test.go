package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/friendskids/friendskids/internal/secrets"
	"github.com/friendskids/friendskids/internal/store"
	"github.com/friendskids/friendskids/internal/store/rest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// MockStore mocks the store calls the commands make. Unmocked methods panic
// through the nil embedded interface.
type MockStore struct {
	store.Store
	mock.Mock
}

func (m *MockStore) ListKidRecords(ctx context.Context, userID uuid.UUID) ([]engine.KidRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]engine.KidRecord), args.Error(1)
}

func (m *MockStore) GetFriend(ctx context.Context, userID, friendID uuid.UUID) (models.Friend, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Get(0).(models.Friend), args.Error(1)
}

func (m *MockStore) CreateKid(ctx context.Context, k models.Kid) (models.Kid, error) {
	args := m.Called(ctx, k)
	return k, args.Error(0)
}

func (m *MockStore) Close() {}

type fetcherFunc func(ctx context.Context, url, user, pass string) (io.ReadCloser, error)

func (f fetcherFunc) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	return f(ctx, url, user, pass)
}

const testCards = `BEGIN:VCARD
VERSION:3.0
FN:Mia Jones
BDAY:2020-02-10
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:No Year
BDAY:--0630
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Zoe Jones
BDAY:20180704
END:VCARD
`

var cliNow = time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)

func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.Backend.Mode = config.BackendModePostgres
	s.Backend.DatabaseURL = "postgres://localhost/test"
	s.Auth.JWTSecret = "cli-secret"
	return s
}

// newTestApp returns an App whose store is st and whose settings are s.
func newTestApp(s config.Settings, st store.Store) *App {
	return &App{
		OpenStore: func(context.Context, config.Settings) (store.Store, error) {
			if st == nil {
				return nil, errors.New("store must not be opened")
			}
			return st, nil
		},
		Clock:        engine.FixedClock(cliNow),
		LoadSettings: func(string) (config.Settings, error) { return s, nil },
	}
}

func execute(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := app.Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion_SkipsSettings(t *testing.T) {
	app := newTestApp(config.Settings{}, nil)
	app.LoadSettings = func(string) (config.Settings, error) {
		return config.Settings{}, errors.New("broken config")
	}

	out, err := execute(t, app, "", config.CmdVersion)
	require.NoError(t, err)
	assert.Contains(t, out, config.AppName)
	assert.Contains(t, out, config.Version)
}

func TestLoad_DebugFlagAndLogging(t *testing.T) {
	app := newTestApp(testSettings(), nil)

	var got config.Settings
	calls := 0
	closer := &closeRecorder{}
	app.SetupLogging = func(s config.Settings) io.Closer {
		calls++
		got = s
		return closer
	}
	app.ResolveSecrets = func(s *config.Settings) { s.Backend.ServiceKey = "from-keyring" }

	_, err := execute(t, app, "", "--"+config.FlagDebug, config.CmdUpcoming, "--user", "not-a-uuid")
	require.Error(t, err)

	assert.Equal(t, 1, calls)
	assert.True(t, got.Log.Debug)
	assert.Equal(t, "from-keyring", app.Settings().Backend.ServiceKey)

	app.Close()
	assert.True(t, closer.closed)
}

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestUpcoming(t *testing.T) {
	userID := uuid.New()
	st := new(MockStore)
	withToken := mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := store.AccessToken(ctx)
		return ok
	})
	st.On("ListKidRecords", withToken, userID).Return([]engine.KidRecord{
		{Kid: models.Kid{ID: uuid.New(), Name: "Later", Birthdate: "2017-06-01"}, FriendName: "Tom"},
		{Kid: models.Kid{ID: uuid.New(), Name: "Ava", Birthdate: "2019-02-01"}, FriendName: "Sarah"},
		{Kid: models.Kid{ID: uuid.New(), Name: "Ben", Birthdate: "2020-02-02"}, FriendName: "Sarah"},
		{Kid: models.Kid{ID: uuid.New(), Name: "Broken", Birthdate: "02/03/2020"}, FriendName: "Sarah"},
	}, nil)

	out, err := execute(t, newTestApp(testSettings(), st), "", config.CmdUpcoming, "--user", userID.String())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, out)
	assert.Contains(t, lines[0], "FRIEND")
	assert.True(t, strings.HasPrefix(lines[1], "Ava"))
	assert.Contains(t, lines[1], "2024-02-01")
	assert.Contains(t, lines[1], "Today!")
	assert.Contains(t, lines[1], "Milestone")
	assert.True(t, strings.HasPrefix(lines[2], "Ben"))
	assert.Contains(t, lines[2], "Tomorrow")
	assert.True(t, strings.HasPrefix(lines[3], "Later"))
	st.AssertExpectations(t)
}

func TestUpcoming_SearchAndLimit(t *testing.T) {
	userID := uuid.New()
	st := new(MockStore)
	st.On("ListKidRecords", mock.Anything, userID).Return([]engine.KidRecord{
		{Kid: models.Kid{Name: "Ava", Birthdate: "2019-02-01"}, FriendName: "Sarah"},
		{Kid: models.Kid{Name: "Ben", Birthdate: "2020-02-02"}, FriendName: "Sarah"},
		{Kid: models.Kid{Name: "Chloé", Birthdate: "2020-03-02"}, FriendName: "Tom"},
	}, nil)
	app := newTestApp(testSettings(), st)

	out, err := execute(t, app, "", config.CmdUpcoming, "--user", userID.String(), "--search", "sarah", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ava")
	assert.NotContains(t, out, "Ben")

	out, err = execute(t, app, "", config.CmdUpcoming, "--user", userID.String(), "--search", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No upcoming birthdays\n", out)
}

func TestUpcoming_Errors(t *testing.T) {
	t.Run("invalid user", func(t *testing.T) {
		_, err := execute(t, newTestApp(testSettings(), nil), "", config.CmdUpcoming, "--user", "42")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrUserIDInvalid)
	})

	t.Run("missing user flag", func(t *testing.T) {
		_, err := execute(t, newTestApp(testSettings(), nil), "", config.CmdUpcoming)
		require.Error(t, err)
	})

	t.Run("rest backend needs a signing secret", func(t *testing.T) {
		s := testSettings()
		s.Backend.Mode = config.BackendModeREST
		s.Auth.JWTSecret = ""
		_, err := execute(t, newTestApp(s, nil), "", config.CmdUpcoming, "--user", uuid.NewString())
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrJWTSecretEmpty)
	})
}

func writeCards(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family.vcf")
	require.NoError(t, os.WriteFile(path, []byte(testCards), config.FilePermUserRW))
	return path
}

func TestImport_DryRun(t *testing.T) {
	out, err := execute(t, newTestApp(testSettings(), nil), "", config.CmdImport, writeCards(t), "--"+config.FlagDryRun)
	require.NoError(t, err)

	assert.Contains(t, out, "Mia Jones\t2020-02-10\n")
	assert.Contains(t, out, "Zoe Jones\t2018-07-04\n")
	assert.NotContains(t, out, "No Year")
	assert.Contains(t, out, "3 contacts, 2 with a full birthday, 1 without year, 0 malformed")
	assert.Contains(t, out, config.MsgImportDryRun)
}

func TestImport_CreatesKids(t *testing.T) {
	userID, friendID := uuid.New(), uuid.New()
	st := new(MockStore)
	st.On("GetFriend", mock.Anything, userID, friendID).Return(models.Friend{ID: friendID}, nil)
	st.On("CreateKid", mock.Anything, mock.MatchedBy(func(k models.Kid) bool {
		return k.FriendID == friendID && k.RSVPStatus == models.StatusNA && k.ReminderEnabled
	})).Return(nil)

	_, err := execute(t, newTestApp(testSettings(), st), "", config.CmdImport, writeCards(t),
		"--user", userID.String(), "--friend", friendID.String())
	require.NoError(t, err)

	st.AssertNumberOfCalls(t, "CreateKid", 2)
}

func TestImport_ForeignFriend(t *testing.T) {
	userID, friendID := uuid.New(), uuid.New()
	st := new(MockStore)
	st.On("GetFriend", mock.Anything, userID, friendID).Return(models.Friend{}, store.ErrNotFound)

	_, err := execute(t, newTestApp(testSettings(), st), "", config.CmdImport, writeCards(t),
		"--user", userID.String(), "--friend", friendID.String())
	require.ErrorIs(t, err, store.ErrNotFound)
	st.AssertNotCalled(t, "CreateKid", mock.Anything, mock.Anything)
}

func TestImport_Arguments(t *testing.T) {
	app := newTestApp(testSettings(), nil)

	_, err := execute(t, app, "", config.CmdImport, "--"+config.FlagDryRun)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrImportSource)

	_, err = execute(t, app, "", config.CmdImport, writeCards(t), "--url", "https://example.com/c.vcf", "--"+config.FlagDryRun)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrImportSource)

	_, err = execute(t, app, "", config.CmdImport, writeCards(t), "--user", uuid.NewString(), "--friend", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrFriendIDInvalid)
}

func TestImport_URLUsesKeyringPassword(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, secrets.Set(secrets.WebPasswordName("bob"), "hunter2"))

	app := newTestApp(testSettings(), nil)
	var gotUser, gotPass string
	app.Fetcher = fetcherFunc(func(_ context.Context, url, user, pass string) (io.ReadCloser, error) {
		gotUser, gotPass = user, pass
		return io.NopCloser(strings.NewReader(testCards)), nil
	})

	out, err := execute(t, app, "", config.CmdImport,
		"--url", "https://dav.example.com/contacts.vcf", "--web-user", "bob", "--"+config.FlagDryRun)
	require.NoError(t, err)
	assert.Equal(t, "bob", gotUser)
	assert.Equal(t, "hunter2", gotPass)
	assert.Contains(t, out, "Mia Jones")

	_, err = execute(t, app, "", config.CmdImport,
		"--url", "https://dav.example.com/contacts.vcf", "--web-user", "alice", "--"+config.FlagDryRun)
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestKeyring_SetAndDelete(t *testing.T) {
	keyring.MockInit()
	app := newTestApp(testSettings(), nil)

	out, err := execute(t, app, "  s3cret  \n", config.CmdKeyring, config.CmdSet, config.SecretJWTSecret)
	require.NoError(t, err)
	assert.Contains(t, out, config.SecretJWTSecret)

	v, err := secrets.Get(config.SecretJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = execute(t, app, "pw\n", config.CmdKeyring, config.CmdSet, "web:bob")
	require.NoError(t, err)

	_, err = execute(t, app, "", config.CmdKeyring, config.CmdDelete, config.SecretJWTSecret)
	require.NoError(t, err)
	_, err = secrets.Get(config.SecretJWTSecret)
	assert.ErrorIs(t, err, secrets.ErrNotFound)

	_, err = execute(t, app, "", config.CmdKeyring, config.CmdDelete, config.SecretJWTSecret)
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestKeyring_Rejects(t *testing.T) {
	keyring.MockInit()
	app := newTestApp(testSettings(), nil)

	_, err := execute(t, app, "x\n", config.CmdKeyring, config.CmdSet, "password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSecretUnknown)

	_, err = execute(t, app, "x\n", config.CmdKeyring, config.CmdSet, config.SecretWebPrefix)
	require.Error(t, err)

	_, err = execute(t, app, "", config.CmdKeyring, config.CmdSet, config.SecretServiceKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSecretEmpty)

	keyring.MockInitWithError(errors.New("locked"))
	_, err = execute(t, app, "x\n", config.CmdKeyring, config.CmdSet, config.SecretServiceKey)
	assert.ErrorIs(t, err, secrets.ErrKeyringUnavailable)
}

func TestServe_RequiresJWTSecret(t *testing.T) {
	s := testSettings()
	s.Auth.JWTSecret = ""

	_, err := execute(t, newTestApp(s, nil), "", config.CmdServe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrJWTSecretEmpty)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("postgres without url", func(t *testing.T) {
		s := config.DefaultSettings()
		s.Backend.Mode = config.BackendModePostgres
		_, err := OpenStore(ctx, s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrDatabaseURLEmpty)
	})

	t.Run("rest without url", func(t *testing.T) {
		_, err := OpenStore(ctx, config.DefaultSettings())
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrBackendURLEmpty)
	})

	t.Run("rest", func(t *testing.T) {
		s := config.DefaultSettings()
		s.Backend.URL = "https://project.example.co"
		s.Backend.AnonKey = "anon"
		st, err := OpenStore(ctx, s)
		require.NoError(t, err)
		assert.IsType(t, &rest.Client{}, st)
		st.Close()
	})

	t.Run("unknown mode", func(t *testing.T) {
		s := config.DefaultSettings()
		s.Backend.Mode = "sqlite"
		_, err := OpenStore(ctx, s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrModeUnsupport)
	})
}
