package users

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrSignatureInvalid = errors.New("webhook signature invalid")

// Service interface defines the contract for user mirroring and favorites
type Service interface {
	// Identity webhook processing
	VerifyWebhookSignature(payload []byte, signature string) error
	ProcessIdentityEvent(ctx context.Context, event IdentityEvent) error

	// Profile and favorites
	GetUser(ctx context.Context, id string) (*User, error)
	ToggleFavorite(ctx context.Context, userID, movieID string) (bool, error)
	GetFavorites(ctx context.Context, userID string) (StringList, error)
}

type service struct {
	repo          Repository
	webhookSecret string
}

func NewService(repo Repository, webhookSecret string) Service {
	return &service{
		repo:          repo,
		webhookSecret: webhookSecret,
	}
}

// VerifyWebhookSignature checks the hex-encoded HMAC-SHA256 of the raw payload
// against the shared webhook secret. Nothing from the payload is trusted
// before this passes.
func (s *service) VerifyWebhookSignature(payload []byte, signature string) error {
	if s.webhookSecret == "" || signature == "" {
		return ErrSignatureInvalid
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureInvalid
	}
	return nil
}

// ProcessIdentityEvent applies a verified user-sync event from the identity
// provider. Upserts are replay-safe; deleting an already-absent user is a
// no-op.
func (s *service) ProcessIdentityEvent(ctx context.Context, event IdentityEvent) error {
	switch event.Type {
	case "user.created", "user.updated":
		if event.Data.ID == "" {
			return fmt.Errorf("identity event has no user id")
		}

		role := RoleUser
		if IsValidRole(event.Data.Role) {
			role = Role(event.Data.Role)
		}

		user := &User{
			ID:    event.Data.ID,
			Name:  strings.TrimSpace(event.Data.FirstName + " " + event.Data.LastName),
			Email: event.Data.Email,
			Image: event.Data.ImageURL,
			Role:  role,
		}
		return s.repo.Upsert(ctx, user)

	case "user.deleted":
		if event.Data.ID == "" {
			return fmt.Errorf("identity event has no user id")
		}
		return s.repo.Delete(ctx, event.Data.ID)

	default:
		// Unknown event types are acknowledged and ignored
		return nil
	}
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ToggleFavorite adds the movie to the user's favorites if absent, removes it
// if present. Returns true when the movie ended up favorited.
func (s *service) ToggleFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	var favorites StringList
	added := true
	for _, id := range user.Favorites {
		if id == movieID {
			added = false
			continue
		}
		favorites = append(favorites, id)
	}
	if added {
		favorites = append(user.Favorites, movieID)
	}
	if favorites == nil {
		favorites = StringList{}
	}

	if err := s.repo.UpdateFavorites(ctx, userID, favorites); err != nil {
		return false, err
	}
	return added, nil
}

func (s *service) GetFavorites(ctx context.Context, userID string) (StringList, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Favorites == nil {
		return StringList{}, nil
	}
	return user.Favorites, nil
}
