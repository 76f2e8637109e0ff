package game

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ReplayVersion tags the replay wire format.
const ReplayVersion = 1

// ReplayData is everything needed to re-run a game bit-identically:
// the rules, the exact map, the RNG seed, and every action each tank
// took. Playing it back skips the brains entirely.
type ReplayData struct {
	Version     int        `msgpack:"version"`
	Settings    Settings   `msgpack:"settings"`
	FieldText   string     `msgpack:"field"`
	Seed        int64      `msgpack:"seed"`
	ActionsRed  [][]Action `msgpack:"actions_red"`
	ActionsBlue [][]Action `msgpack:"actions_blue"`
}

// Encode serializes the replay.
func (r *ReplayData) Encode() ([]byte, error) {
	return msgpack.Marshal(r)
}

// DecodeReplay parses an encoded replay and rejects unknown versions.
func DecodeReplay(data []byte) (*ReplayData, error) {
	var r ReplayData
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	if r.Version != ReplayVersion {
		return nil, fmt.Errorf("replay: unsupported version %d", r.Version)
	}
	return &r, nil
}
