package services

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluentlink/fluentlink-be/internal/apperror"
	"github.com/fluentlink/fluentlink-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func requireAppError(t *testing.T, err error, status int) *apperror.Error {
	t.Helper()
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr), "expected an application error, got %v", err)
	require.Equal(t, status, appErr.Status)
	return appErr
}

func TestCreateUser(t *testing.T) {
	s := NewUserService(newTestDB(t))

	user, err := s.CreateUser("ann@example.com", "secret1", "Ann")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "ann@example.com", user.Email)
	require.Equal(t, "Ann", user.FullName)
	require.Empty(t, user.PasswordHash)
	require.False(t, user.IsOnboarded)
	require.Contains(t, user.ProfilePic, "avatar.iran.liara.run")
}

func TestCreateUserValidation(t *testing.T) {
	s := NewUserService(newTestDB(t))

	cases := []struct {
		name                      string
		email, password, fullName string
		wantMessage               string
	}{
		{"missing email", "", "secret1", "Ann", "Please fill all the fields"},
		{"missing password", "ann@example.com", "", "Ann", "Please fill all the fields"},
		{"missing name", "ann@example.com", "secret1", "", "Please fill all the fields"},
		{"short password", "ann@example.com", "12345", "Ann", "Password must be at least 6 characters"},
		{"bad email", "not-an-email", "secret1", "Ann", "Invalid email format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateUser(tc.email, tc.password, tc.fullName)
			appErr := requireAppError(t, err, 400)
			require.Equal(t, tc.wantMessage, appErr.Message)
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := NewUserService(newTestDB(t))

	_, err := s.CreateUser("ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	_, err = s.CreateUser("ann@example.com", "another1", "Other Ann")
	appErr := requireAppError(t, err, 400)
	require.Equal(t, "Email already exists, please use a different", appErr.Message)

	// The store still holds exactly one record for the email.
	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", "ann@example.com").Scan(&count))
	require.Equal(t, 1, count)
}

func TestAuthenticateUser(t *testing.T) {
	s := NewUserService(newTestDB(t))

	created, err := s.CreateUser("ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	user, err := s.AuthenticateUser("ann@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Empty(t, user.PasswordHash)
}

func TestAuthenticateUserUniformFailure(t *testing.T) {
	s := NewUserService(newTestDB(t))

	_, err := s.CreateUser("ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	_, badPassword := s.AuthenticateUser("ann@example.com", "wrong-password")
	_, badEmail := s.AuthenticateUser("nobody@example.com", "secret1")

	// The failure never reveals which of the two was wrong.
	wrongPass := requireAppError(t, badPassword, 401)
	wrongMail := requireAppError(t, badEmail, 401)
	require.Equal(t, wrongPass.Message, wrongMail.Message)
	require.Equal(t, "Invalid email or password", wrongPass.Message)
}

func TestGetUserByID(t *testing.T) {
	s := NewUserService(newTestDB(t))

	created, err := s.CreateUser("ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	user, err := s.GetUserByID(created.ID)
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", user.Email)
	require.Empty(t, user.PasswordHash)

	_, err = s.GetUserByID("no-such-id")
	requireAppError(t, err, 404)
}

func TestOnboardUser(t *testing.T) {
	s := NewUserService(newTestDB(t))

	created, err := s.CreateUser("ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	profile := OnboardingProfile{
		FullName:         "Ann Chovey",
		Bio:              "Learning languages",
		NativeLanguage:   "english",
		LearningLanguage: "spanish",
		Location:         "Lisbon, Portugal",
	}
	user, err := s.OnboardUser(created.ID, profile)
	require.NoError(t, err)
	require.True(t, user.IsOnboarded)
	require.Equal(t, profile.FullName, user.FullName)
	require.Equal(t, profile.Bio, user.Bio)
	require.Equal(t, profile.NativeLanguage, user.NativeLanguage)
	require.Equal(t, profile.LearningLanguage, user.LearningLanguage)
	require.Equal(t, profile.Location, user.Location)
}

func TestOnboardUserMissingFields(t *testing.T) {
	s := NewUserService(newTestDB(t))

	created, err := s.CreateUser("ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	_, err = s.OnboardUser(created.ID, OnboardingProfile{FullName: "Ann", Bio: "hi"})
	appErr := requireAppError(t, err, 400)
	require.ElementsMatch(t, []string{"nativeLanguage", "learningLanguage", "location"}, appErr.Fields)
}

func TestOnboardUserGone(t *testing.T) {
	s := NewUserService(newTestDB(t))

	_, err := s.OnboardUser("vanished", OnboardingProfile{
		FullName:         "Ann",
		Bio:              "hi",
		NativeLanguage:   "english",
		LearningLanguage: "spanish",
		Location:         "Lisbon",
	})
	requireAppError(t, err, 404)
}

func TestPresenceSyncBookkeeping(t *testing.T) {
	s := NewUserService(newTestDB(t))

	created, err := s.CreateUser("ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	// New users start unsynced.
	unsynced, err := s.GetUnsyncedUsers(10)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	require.Equal(t, created.ID, unsynced[0].ID)

	require.NoError(t, s.MarkPresenceSynced(created.ID, true))
	unsynced, err = s.GetUnsyncedUsers(10)
	require.NoError(t, err)
	require.Empty(t, unsynced)

	require.NoError(t, s.MarkPresenceSynced(created.ID, false))
	unsynced, err = s.GetUnsyncedUsers(10)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
}
