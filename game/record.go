package game

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Record is the save format of a game: the rules, the starting player and the
// ordered moves. Replaying it reconstructs the exact final state.
type Record struct {
	Rules Rules  `yaml:"rules"`
	Start Player `yaml:"start"`
	Moves []Move `yaml:"moves"`
}

func NewRecord(rules Rules, h *History) Record {
	return Record{
		Rules: rules,
		Start: h.Initial().ActivePlayer(),
		Moves: h.Moves(),
	}
}

func (r Record) Replay() (*History, error) {
	initial, err := r.Rules.NewState(r.Start)
	if err != nil {
		return nil, err
	}
	h, err := Replay(r.Rules, initial, r.Moves)
	if err != nil {
		return nil, fmt.Errorf("failed to replay record: %w", err)
	}
	return h, nil
}

func WriteRecord(w io.Writer, r Record) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return encoder.Close()
}

func ReadRecord(r io.Reader) (Record, error) {
	var record Record
	if err := yaml.NewDecoder(r).Decode(&record); err != nil {
		return Record{}, fmt.Errorf("failed to read record: %w", err)
	}
	return record, nil
}
