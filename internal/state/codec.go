package state

import (
	"encoding/json"
	"fmt"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"github.com/shopspring/decimal"
)

// record is the stored form of a team state. The budget is written as a bare
// JSON number.
type record struct {
	Drivers            []string    `json:"drivers"`
	Constructors       []string    `json:"constructors"`
	AvailableTransfers *int        `json:"available_transfers"`
	RemainingBudget    json.Number `json:"remaining_budget"`
}

func encode(s roster.TeamState) ([]byte, error) {
	available := s.AvailableTransfers
	rec := record{
		Drivers:            nonNil(s.Drivers),
		Constructors:       nonNil(s.Constructors),
		AvailableTransfers: &available,
		RemainingBudget:    json.Number(s.RemainingBudget.String()),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode team state: %w", err)
	}
	return append(data, '\n'), nil
}

func decode(data []byte) (roster.TeamState, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return roster.TeamState{}, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	if rec.AvailableTransfers == nil {
		return roster.TeamState{}, fmt.Errorf("%w: available_transfers missing", ErrStateCorrupt)
	}
	if *rec.AvailableTransfers < 0 {
		return roster.TeamState{}, fmt.Errorf("%w: negative available_transfers %d", ErrStateCorrupt, *rec.AvailableTransfers)
	}
	if rec.RemainingBudget == "" {
		return roster.TeamState{}, fmt.Errorf("%w: remaining_budget missing", ErrStateCorrupt)
	}
	budget, err := decimal.NewFromString(rec.RemainingBudget.String())
	if err != nil {
		return roster.TeamState{}, fmt.Errorf("%w: remaining_budget: %v", ErrStateCorrupt, err)
	}
	if len(rec.Drivers) > roster.DriverSlots || len(rec.Constructors) > roster.ConstructorSlots {
		return roster.TeamState{}, fmt.Errorf("%w: roster holds %d drivers and %d constructors",
			ErrStateCorrupt, len(rec.Drivers), len(rec.Constructors))
	}
	return roster.TeamState{
		Drivers:            nonNil(rec.Drivers),
		Constructors:       nonNil(rec.Constructors),
		AvailableTransfers: *rec.AvailableTransfers,
		RemainingBudget:    budget,
	}, nil
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return append([]string{}, names...)
}
