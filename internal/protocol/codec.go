package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/roomlobby/internal/model"
)

// ErrMalformed is returned for frames that are not a valid envelope
var ErrMalformed = errors.New("malformed message")

// Inbound is a decoded server -> client message. Exactly one field matching
// Type is set; unknown types leave all of them nil.
type Inbound struct {
	Type        MessageType
	PlayerInfo  *model.PlayerInfo
	Games       []model.GameInfo
	CurrentGame *model.Assignment
	Error       *model.ServerError
}

// Encode wraps payload in an envelope and marshals it
func Encode(t MessageType, payload any) ([]byte, error) {
	env, err := NewEnvelope(t, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// NewEnvelope marshals payload into an envelope of type t
func NewEnvelope(t MessageType, payload any) (Envelope, error) {
	env := Envelope{Type: t}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", t, err)
		}
		env.Payload = data
	}
	return env, nil
}

// Decode parses one inbound frame
func Decode(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Inbound{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return DecodeEnvelope(env)
}

// DecodeEnvelope converts an already framed envelope into a typed message
func DecodeEnvelope(env Envelope) (Inbound, error) {
	in := Inbound{Type: env.Type}

	switch env.Type {
	case TypePlayerInfo:
		var p PlayerInfo
		if err := unmarshalPayload(env, &p); err != nil {
			return Inbound{}, err
		}
		info := p.ToModel()
		in.PlayerInfo = &info

	case TypeGames:
		var games []GameInfo
		if err := unmarshalPayload(env, &games); err != nil {
			return Inbound{}, err
		}
		// A null or missing list is an empty snapshot, not "no change"
		in.Games = GamesToModel(games)

	case TypeCurrentGame:
		var cg CurrentGame
		if err := unmarshalPayload(env, &cg); err != nil {
			return Inbound{}, err
		}
		if cg.GameID == "" {
			return Inbound{}, fmt.Errorf("%w: current-game without gameId", ErrMalformed)
		}
		in.CurrentGame = &model.Assignment{GameID: model.GameID(cg.GameID)}

	case TypeError:
		var e ErrorPayload
		if err := unmarshalPayload(env, &e); err != nil {
			return Inbound{}, err
		}
		in.Error = e.ToModel()
	}

	return in, nil
}

func unmarshalPayload(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: bad %s payload: %v", ErrMalformed, env.Type, err)
	}
	return nil
}
