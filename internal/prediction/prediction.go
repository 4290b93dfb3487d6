// Package prediction defines the normalized game-prediction view model the UI
// renders against, and the pure mapping from raw odds-feed records into it.
//
// The JSON field names mirror the structured-output contract the model is
// instructed to emit, so view models mapped here and view models extracted
// from a model response key and render identically.
package prediction

import "encoding/json"

// GameStatus is the fixed enumeration of live game states.
type GameStatus string

// Recognized game statuses. Anything else from upstream is coerced to
// StatusScheduled at the boundary.
const (
	StatusScheduled GameStatus = "Scheduled"
	StatusLive      GameStatus = "Live"
	StatusFinal     GameStatus = "Final"
	StatusPostponed GameStatus = "Postponed"
	StatusHalftime  GameStatus = "Halftime"
	StatusDelayed   GameStatus = "Delayed"
	StatusUpcoming  GameStatus = "Upcoming"
)

// CoerceStatus maps an upstream status string to a recognized GameStatus,
// defaulting to StatusScheduled for anything unrecognized.
func CoerceStatus(raw string) GameStatus {
	switch GameStatus(raw) {
	case StatusScheduled, StatusLive, StatusFinal, StatusPostponed,
		StatusHalftime, StatusDelayed, StatusUpcoming:
		return GameStatus(raw)
	default:
		return StatusScheduled
	}
}

// TotalPointsPick is the over/under call: OVER, UNDER or N/A.
type TotalPointsPick string

// Total points picks.
const (
	PickOver  TotalPointsPick = "OVER"
	PickUnder TotalPointsPick = "UNDER"
	PickNone  TotalPointsPick = "N/A"
)

// CoercePick normalizes an upstream over/under prediction, defaulting to
// PickNone when empty or unrecognized.
func CoercePick(raw string) TotalPointsPick {
	switch TotalPointsPick(raw) {
	case PickOver, PickUnder:
		return TotalPointsPick(raw)
	default:
		return PickNone
	}
}

// KellyStake is a Kelly criterion bankroll percentage, or the "No Bet"
// sentinel when the edge is non-positive (or the upstream value was not a
// positive number at all).
type KellyStake struct {
	Percent float64
	NoBet   bool
}

// NewKellyStake coerces a raw stake: positive numeric values pass through,
// everything else (zero, negative, non-numeric) becomes "No Bet".
func NewKellyStake(value float64, numeric bool) KellyStake {
	if !numeric || value <= 0 {
		return KellyStake{NoBet: true}
	}
	return KellyStake{Percent: value}
}

// MarshalJSON renders the stake as a number or the literal string "No Bet".
func (k KellyStake) MarshalJSON() ([]byte, error) {
	if k.NoBet {
		return json.Marshal("No Bet")
	}
	return json.Marshal(k.Percent)
}

// UnmarshalJSON accepts a number or the "No Bet" sentinel (any non-numeric
// value is treated as "No Bet", per the defensive default).
func (k *KellyStake) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*k = NewKellyStake(f, true)
		return nil
	}
	*k = KellyStake{NoBet: true}
	return nil
}

// MoneyLine is the home/away moneyline pair.
type MoneyLine struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// SportsbookRawData is the book's raw lines carried on the view model.
type SportsbookRawData struct {
	MoneyLine       MoneyLine `json:"money_line"`
	TotalPointsLine float64   `json:"total_points_line"`
}

// SidePair is a home/away pair of signed floats.
type SidePair struct {
	HomeTeam float64 `json:"home_team"`
	AwayTeam float64 `json:"away_team"`
}

// KellyStakePair is a home/away pair of Kelly stakes.
type KellyStakePair struct {
	HomeTeam KellyStake `json:"home_team"`
	AwayTeam KellyStake `json:"away_team"`
}

// Details is the AI prediction block of a view model.
type Details struct {
	PredictedWinner              string          `json:"predicted_winner"`
	WinnerConfidencePercent      float64         `json:"winner_confidence_percent"`
	TotalPointsPick              TotalPointsPick `json:"total_points_pick"`
	TotalPointsConfidencePercent float64         `json:"total_points_confidence_percent"`
	ExpectedValue                *SidePair       `json:"expected_value,omitempty"`
	ModelUsed                    string          `json:"model_used"`
	KellyCriterionStakePercent   *KellyStakePair `json:"kelly_criterion_stake_percent,omitempty"`
}

// LiveData is the live game state block of a view model.
type LiveData struct {
	Status        GameStatus `json:"status"`
	HomeScore     *int       `json:"home_score,omitempty"`
	AwayScore     *int       `json:"away_score,omitempty"`
	CurrentPeriod string     `json:"current_period,omitempty"`
	TimeRemaining string     `json:"time_remaining,omitempty"`
	LastUpdated   string     `json:"last_updated,omitempty"`
}

// GamePrediction is the normalized view model for one game. It is constructed
// fresh on every fetch or parse and never mutated in place.
//
// GameIdentifier is "home_team:away_team" and is stable across the preload
// mapper and the model's structured output, so UI components can key on it.
type GamePrediction struct {
	GameIdentifier   string            `json:"game_identifier"`
	GameTitle        string            `json:"gameTitle,omitempty"`
	AwayTeam         string            `json:"away_team"`
	HomeTeam         string            `json:"home_team"`
	AwayTeamLogoURL  string            `json:"away_team_logo_url,omitempty"`
	HomeTeamLogoURL  string            `json:"home_team_logo_url,omitempty"`
	SportsbookName   string            `json:"sportsbook_name"`
	SportsbookRaw    SportsbookRawData `json:"sportsbook_raw_data"`
	Details          Details           `json:"ai_prediction_details"`
	GameStartTimeUTC string            `json:"game_start_time_utc,omitempty"`
	KeyBettingAdvice string            `json:"keyBettingAdvice,omitempty"`
	Live             *LiveData         `json:"live_data,omitempty"`
}
