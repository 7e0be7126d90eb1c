package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/apperror"
	"github.com/fluentlink/fluentlink-be/internal/models"
	ws "github.com/fluentlink/fluentlink-be/internal/websocket"
)

// FriendServiceProvider defines the interface for friend management services.
type FriendServiceProvider interface {
	GetRecommendedUsers(userID string) ([]models.User, error)
	GetFriends(userID string) ([]models.User, error)
	SendFriendRequest(senderID, recipientID string) (models.FriendRequest, error)
	AcceptFriendRequest(userID, requestID string) (models.FriendRequest, error)
	GetIncomingRequests(userID string) (incoming, accepted []models.FriendRequest, err error)
	GetOutgoingRequests(userID string) ([]models.FriendRequest, error)
}

// Notifier pushes a real-time message to every connection a user has open.
// Implemented by the websocket hub.
type Notifier interface {
	NotifyUser(userID string, message []byte)
}

// FriendService provides business logic for friendships and friend requests.
type FriendService struct {
	db       *sql.DB
	notifier Notifier
}

// NewFriendService creates a new FriendService. The notifier may be nil, in
// which case no real-time events are pushed.
func NewFriendService(db *sql.DB, notifier Notifier) *FriendService {
	return &FriendService{db: db, notifier: notifier}
}

const requestColumns = `fr.id, fr.status, fr.created_at,
	s.id, s.email, s.full_name, s.profile_pic, s.bio, s.native_language, s.learning_language, s.location, s.is_onboarded, s.created_at,
	r.id, r.email, r.full_name, r.profile_pic, r.bio, r.native_language, r.learning_language, r.location, r.is_onboarded, r.created_at`

const requestJoins = ` FROM friend_requests fr
	JOIN users s ON s.id = fr.sender_id
	JOIN users r ON r.id = fr.recipient_id`

func scanFriendRequest(row rowScanner) (models.FriendRequest, error) {
	var req models.FriendRequest
	err := row.Scan(&req.ID, &req.Status, &req.CreatedAt,
		&req.Sender.ID, &req.Sender.Email, &req.Sender.FullName, &req.Sender.ProfilePic,
		&req.Sender.Bio, &req.Sender.NativeLanguage, &req.Sender.LearningLanguage,
		&req.Sender.Location, &req.Sender.IsOnboarded, &req.Sender.CreatedAt,
		&req.Recipient.ID, &req.Recipient.Email, &req.Recipient.FullName, &req.Recipient.ProfilePic,
		&req.Recipient.Bio, &req.Recipient.NativeLanguage, &req.Recipient.LearningLanguage,
		&req.Recipient.Location, &req.Recipient.IsOnboarded, &req.Recipient.CreatedAt)
	return req, err
}

// GetRecommendedUsers lists onboarded users who are potential language
// partners: not the requesting user, not already a friend and with no pending
// request in either direction.
func (s *FriendService) GetRecommendedUsers(userID string) ([]models.User, error) {
	rows, err := s.db.Query(`SELECT `+userColumns+` FROM users
		WHERE id != ? AND is_onboarded = 1
		AND id NOT IN (SELECT friend_id FROM friendships WHERE user_id = ?)
		AND id NOT IN (SELECT recipient_id FROM friend_requests WHERE sender_id = ? AND status = 'pending')
		AND id NOT IN (SELECT sender_id FROM friend_requests WHERE recipient_id = ? AND status = 'pending')
		ORDER BY created_at DESC`, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// GetFriends lists the user's accepted friends.
func (s *FriendService) GetFriends(userID string) ([]models.User, error) {
	rows, err := s.db.Query(`SELECT `+prefixedUserColumns("u")+` FROM users u
		JOIN friendships f ON f.friend_id = u.id
		WHERE f.user_id = ?
		ORDER BY u.full_name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// SendFriendRequest creates a pending request from sender to recipient and
// notifies the recipient if they are connected.
func (s *FriendService) SendFriendRequest(senderID, recipientID string) (models.FriendRequest, error) {
	if senderID == recipientID {
		return models.FriendRequest{}, apperror.Validation("You can't send a friend request to yourself")
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE id = ?", recipientID).Scan(&exists); err != nil {
		return models.FriendRequest{}, err
	}
	if exists == 0 {
		return models.FriendRequest{}, apperror.NotFound("Recipient not found")
	}

	if err := s.db.QueryRow("SELECT COUNT(1) FROM friendships WHERE user_id = ? AND friend_id = ?",
		senderID, recipientID).Scan(&exists); err != nil {
		return models.FriendRequest{}, err
	}
	if exists > 0 {
		return models.FriendRequest{}, apperror.Validation("You are already friends with this user")
	}

	if err := s.db.QueryRow(`SELECT COUNT(1) FROM friend_requests
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)`,
		senderID, recipientID, recipientID, senderID).Scan(&exists); err != nil {
		return models.FriendRequest{}, err
	}
	if exists > 0 {
		return models.FriendRequest{}, apperror.Conflict("A friend request already exists between you and this user")
	}

	id := uuid.New().String()
	_, err := s.db.Exec("INSERT INTO friend_requests(id, sender_id, recipient_id, status) VALUES(?, ?, ?, ?)",
		id, senderID, recipientID, models.FriendRequestPending)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.FriendRequest{}, apperror.Conflict("A friend request already exists between you and this user")
		}
		return models.FriendRequest{}, err
	}

	request, err := s.getRequestByID(id)
	if err != nil {
		return models.FriendRequest{}, err
	}

	s.notify(request.Recipient.ID, ws.EventFriendRequestReceived, request)
	return request, nil
}

// AcceptFriendRequest marks a pending request as accepted and records the
// friendship in both directions. Only the recipient may accept.
func (s *FriendService) AcceptFriendRequest(userID, requestID string) (models.FriendRequest, error) {
	request, err := s.getRequestByID(requestID)
	if err != nil {
		return models.FriendRequest{}, err
	}
	if request.Recipient.ID != userID {
		return models.FriendRequest{}, apperror.Forbidden("You are not authorized to accept this request")
	}
	if request.Status != models.FriendRequestPending {
		return models.FriendRequest{}, apperror.Validation("This friend request has already been accepted")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.FriendRequest{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE friend_requests SET status = ? WHERE id = ?",
		models.FriendRequestAccepted, requestID); err != nil {
		return models.FriendRequest{}, err
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO friendships(user_id, friend_id) VALUES(?, ?), (?, ?)`,
		request.Sender.ID, request.Recipient.ID, request.Recipient.ID, request.Sender.ID); err != nil {
		return models.FriendRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.FriendRequest{}, err
	}

	request.Status = models.FriendRequestAccepted
	s.notify(request.Sender.ID, ws.EventFriendRequestAccepted, request)
	return request, nil
}

// GetIncomingRequests returns the user's pending incoming requests and their
// own sent requests that were accepted.
func (s *FriendService) GetIncomingRequests(userID string) (incoming, accepted []models.FriendRequest, err error) {
	incoming, err = s.listRequests("fr.recipient_id = ? AND fr.status = 'pending'", userID)
	if err != nil {
		return nil, nil, err
	}
	accepted, err = s.listRequests("fr.sender_id = ? AND fr.status = 'accepted'", userID)
	if err != nil {
		return nil, nil, err
	}
	return incoming, accepted, nil
}

// GetOutgoingRequests returns the user's sent requests that are still pending.
func (s *FriendService) GetOutgoingRequests(userID string) ([]models.FriendRequest, error) {
	return s.listRequests("fr.sender_id = ? AND fr.status = 'pending'", userID)
}

func (s *FriendService) getRequestByID(id string) (models.FriendRequest, error) {
	row := s.db.QueryRow("SELECT "+requestColumns+requestJoins+" WHERE fr.id = ?", id)
	request, err := scanFriendRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.FriendRequest{}, apperror.NotFound("Friend request not found")
		}
		return models.FriendRequest{}, err
	}
	return request, nil
}

func (s *FriendService) listRequests(where string, args ...interface{}) ([]models.FriendRequest, error) {
	rows, err := s.db.Query("SELECT "+requestColumns+requestJoins+" WHERE "+where+" ORDER BY fr.created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.FriendRequest{}
	for rows.Next() {
		request, err := scanFriendRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func (s *FriendService) notify(userID, eventType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	message, err := json.Marshal(ws.Message{Type: eventType, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("Failed to encode notification")
		return
	}
	s.notifier.NotifyUser(userID, message)
}

func collectUsers(rows *sql.Rows) ([]models.User, error) {
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

// prefixedUserColumns qualifies the shared user column list with a table alias.
func prefixedUserColumns(alias string) string {
	cols := strings.Split(userColumns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}
