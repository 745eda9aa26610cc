package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoot/roomlobby/internal/dependencies/random"
	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/storage"
)

const (
	// GuestSuffix marks generated guest names
	GuestSuffix = "_guest"
	// GuestRating is the fixed rating every guest starts with
	GuestRating = 1200
	// GuestNameLength is the number of random characters before the suffix
	GuestNameLength = 4
)

// Action is what the session should do once connected
type Action int

const (
	// ActionDefer waits for the authenticated user record
	ActionDefer Action = iota
	// ActionResume sends a login with the stored player token
	ActionResume
	// ActionRegister sends a register with a guest or user identity
	ActionRegister
)

func (a Action) String() string {
	switch a {
	case ActionDefer:
		return "defer"
	case ActionResume:
		return "resume"
	case ActionRegister:
		return "register"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Inputs are everything the branch decision depends on
type Inputs struct {
	PlayerToken model.PlayerToken
	AccessToken model.AccessToken
	User        *model.AuthenticatedUser
}

// Decision is the outcome of one resolution. Exactly one of Login/Register is
// set for Resume/Register; neither for Defer.
type Decision struct {
	Action   Action
	Login    *LoginRequest
	Register *RegisterRequest
	Guest    bool
}

// LoginRequest resumes an identity
type LoginRequest struct {
	PlayerToken model.PlayerToken
}

// RegisterRequest asks for a new identity
type RegisterRequest struct {
	DisplayName string
	Rating      int
}

// Resolver picks between resume, guest registration and user registration
type Resolver struct {
	random random.Random
}

// NewResolver creates a Resolver drawing guest names from r
func NewResolver(r random.Random) *Resolver {
	return &Resolver{random: r}
}

// Resolve decides the identity action. A stored player token always wins.
func (r *Resolver) Resolve(in Inputs) Decision {
	switch {
	case in.PlayerToken != "":
		return Decision{
			Action: ActionResume,
			Login:  &LoginRequest{PlayerToken: in.PlayerToken},
		}

	case in.AccessToken == "":
		return Decision{
			Action:   ActionRegister,
			Register: &RegisterRequest{DisplayName: r.GuestName(), Rating: GuestRating},
			Guest:    true,
		}

	case in.User == nil:
		return Decision{Action: ActionDefer}

	default:
		return Decision{
			Action:   ActionRegister,
			Register: &RegisterRequest{DisplayName: in.User.DisplayName, Rating: in.User.Rating},
		}
	}
}

// GuestName generates a fresh guest display name
func (r *Resolver) GuestName() string {
	return r.random.String(GuestNameLength, random.Base36) + GuestSuffix
}

// LoadInputs reads the stored tokens. Absent keys are empty; any other store
// error is returned.
func LoadInputs(ctx context.Context, store storage.SessionStore, user *model.AuthenticatedUser) (Inputs, error) {
	playerToken, err := readKey(ctx, store, storage.KeyPlayerToken)
	if err != nil {
		return Inputs{}, err
	}
	accessToken, err := readKey(ctx, store, storage.KeyAccessToken)
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{
		PlayerToken: model.PlayerToken(playerToken),
		AccessToken: model.AccessToken(accessToken),
		User:        user,
	}, nil
}

func readKey(ctx context.Context, store storage.SessionStore, key storage.Key) (string, error) {
	v, err := store.Get(ctx, key)
	if errors.Is(err, model.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}
