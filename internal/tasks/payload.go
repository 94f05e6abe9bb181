package tasks

import (
	"errors"
	"fmt"
)

// Task types carried on the ingest stream.
const (
	TypeIngest  = "ingest"
	TypeCleanup = "cleanup"
	TypeSweep   = "sweep"
)

// Payload is one stream entry. Redis stores stream fields as flat strings,
// so there is no nested data.
type Payload struct {
	Type   string
	GameID string
}

func (p Payload) Values() map[string]any {
	values := map[string]any{"type": p.Type}
	if p.GameID != "" {
		values["gameId"] = p.GameID
	}
	return values
}

func Ingest(gameID string) map[string]any {
	return Payload{Type: TypeIngest, GameID: gameID}.Values()
}

func Decode(values map[string]any) (Payload, error) {
	typ, ok := values["type"].(string)
	if !ok || typ == "" {
		return Payload{}, errors.New("missing task type")
	}
	payload := Payload{Type: typ}
	if raw, present := values["gameId"]; present {
		gameID, ok := raw.(string)
		if !ok {
			return Payload{}, fmt.Errorf("gameId is %T, want string", raw)
		}
		payload.GameID = gameID
	}
	return payload, nil
}
