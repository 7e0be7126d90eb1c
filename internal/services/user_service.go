package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fluentlink/fluentlink-be/internal/apperror"
	"github.com/fluentlink/fluentlink-be/internal/models"
)

// UserServiceProvider defines the interface for user account services.
type UserServiceProvider interface {
	CreateUser(email, password, fullName string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	OnboardUser(id string, profile OnboardingProfile) (models.User, error)
	MarkPresenceSynced(id string, synced bool) error
	GetUnsyncedUsers(limit int) ([]models.User, error)
}

// OnboardingProfile carries the profile fields submitted during onboarding.
type OnboardingProfile struct {
	FullName         string `json:"fullname"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
}

// Matches the shape check the signup form applies; full RFC parsing is not
// the goal here.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const userColumns = `id, email, password_hash, full_name, profile_pic, bio,
	native_language, learning_language, location, is_onboarded, presence_synced, created_at`

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.ProfilePic, &user.Bio, &user.NativeLanguage, &user.LearningLanguage,
		&user.Location, &user.IsOnboarded, &user.PresenceSynced, &user.CreatedAt)
	return user, err
}

// CreateUser validates the signup fields, hashes the password and persists a
// new user with a placeholder avatar. The caller receives the stored record
// with the password hash stripped.
func (s *UserService) CreateUser(email, password, fullName string) (models.User, error) {
	if email == "" || password == "" || fullName == "" {
		return models.User{}, apperror.Validation("Please fill all the fields")
	}
	if len(password) < 6 {
		return models.User{}, apperror.Validation("Password must be at least 6 characters")
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, apperror.Validation("Invalid email format")
	}

	var existing int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&existing); err != nil {
		return models.User{}, err
	}
	if existing > 0 {
		return models.User{}, apperror.Conflict("Email already exists, please use a different")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:         uuid.New().String(),
		Email:      email,
		FullName:   fullName,
		ProfilePic: randomAvatarURL(),
	}

	_, err = s.db.Exec("INSERT INTO users(id, email, password_hash, full_name, profile_pic) VALUES(?, ?, ?, ?, ?)",
		user.ID, user.Email, string(hashed), user.FullName, user.ProfilePic)
	if err != nil {
		// Two concurrent signups can both pass the pre-check; the UNIQUE
		// constraint decides the winner.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.User{}, apperror.Conflict("Email already exists, please use a different")
		}
		return models.User{}, err
	}

	return s.GetUserByID(user.ID)
}

// AuthenticateUser verifies a user's credentials. Unknown email and wrong
// password produce the same failure so the response never reveals which of
// the two was wrong.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, apperror.Validation("Please fill all the fields")
	}

	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperror.Auth("Invalid email or password")
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, apperror.Auth("Invalid email or password")
	}

	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID, excluding the password hash.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperror.NotFound("User not found")
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// OnboardUser merges the submitted profile fields into the user record and
// marks the user as onboarded. Every field is required; the failure lists the
// absent ones by name.
func (s *UserService) OnboardUser(id string, profile OnboardingProfile) (models.User, error) {
	var missing []string
	if profile.FullName == "" {
		missing = append(missing, "fullname")
	}
	if profile.Bio == "" {
		missing = append(missing, "bio")
	}
	if profile.NativeLanguage == "" {
		missing = append(missing, "nativeLanguage")
	}
	if profile.LearningLanguage == "" {
		missing = append(missing, "learningLanguage")
	}
	if profile.Location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return models.User{}, apperror.Validation("All fields are required", missing...)
	}

	res, err := s.db.Exec(`UPDATE users SET full_name = ?, bio = ?, native_language = ?,
		learning_language = ?, location = ?, is_onboarded = 1 WHERE id = ?`,
		profile.FullName, profile.Bio, profile.NativeLanguage, profile.LearningLanguage, profile.Location, id)
	if err != nil {
		return models.User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// The verified identity can vanish between middleware and handler.
		return models.User{}, apperror.NotFound("User not found")
	}

	return s.GetUserByID(id)
}

// MarkPresenceSynced records whether the user's identity is mirrored to the
// chat-presence collaborator.
func (s *UserService) MarkPresenceSynced(id string, synced bool) error {
	_, err := s.db.Exec("UPDATE users SET presence_synced = ? WHERE id = ?", synced, id)
	return err
}

// GetUnsyncedUsers lists users whose last presence mirror attempt failed, for
// the background syncer to retry.
func (s *UserService) GetUnsyncedUsers(limit int) ([]models.User, error) {
	rows, err := s.db.Query("SELECT "+userColumns+" FROM users WHERE presence_synced = 0 ORDER BY created_at LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = ""
		users = append(users, user)
	}
	return users, rows.Err()
}

// randomAvatarURL picks one of the hosted placeholder avatars.
func randomAvatarURL() string {
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.Intn(100)+1)
}
