package odds

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FeedPayload is the response body of the odds backend's GET /predictions.
// The feed is loosely typed upstream; every field is re-validated or coerced
// at the boundary rather than trusted.
type FeedPayload struct {
	Timestamp   string               `json:"timestamp,omitempty"`
	Sportsbook  string               `json:"sportsbook"`
	TotalGames  int                  `json:"total_games,omitempty"`
	OddsData    map[string]BookLines `json:"odds_data,omitempty"`
	Predictions []FeedPrediction     `json:"predictions"`
}

// BookLines carries the sportsbook's raw lines for one game, keyed in
// FeedPayload.OddsData by "home_team:away_team". Pointers distinguish a
// missing line from a zero line.
type BookLines struct {
	HomeMoneyLine *float64 `json:"home_money_line,omitempty"`
	AwayMoneyLine *float64 `json:"away_money_line,omitempty"`
	UnderOver     *float64 `json:"under_over,omitempty"`
}

// FeedPrediction is one game record from the predictions array.
//
// Some feed versions nest live game state under live_data, others emit the
// same fields flat on the record; both shapes are kept so the mapper can
// prefer the nested form and fall back to the flat one.
type FeedPrediction struct {
	HomeTeam        string `json:"home_team"`
	AwayTeam        string `json:"away_team"`
	HomeTeamLogoURL string `json:"home_team_logo_url,omitempty"`
	AwayTeamLogoURL string `json:"away_team_logo_url,omitempty"`

	HomeOdds float64 `json:"home_odds"`
	AwayOdds float64 `json:"away_odds"`

	PredictedWinner     string     `json:"predicted_winner"`
	WinnerConfidence    float64    `json:"winner_confidence"`
	UnderOverLine       FlexFloat  `json:"under_over_line"`
	UnderOverPrediction string     `json:"under_over_prediction"`
	UnderOverConfidence float64    `json:"under_over_confidence"`
	ExpectedValue       *SidePair  `json:"expected_value,omitempty"`
	KellyCriterion      *KellyPair `json:"kelly_criterion,omitempty"`
	Model               string     `json:"model"`

	GameStartTimeUTC string        `json:"game_start_time_utc,omitempty"`
	LiveData         *FeedLiveData `json:"live_data,omitempty"`

	// Flat live fields emitted by older feed versions.
	Status          string `json:"status,omitempty"`
	HomeScore       *int   `json:"home_score,omitempty"`
	AwayScore       *int   `json:"away_score,omitempty"`
	CurrentPeriod   string `json:"current_period,omitempty"`
	TimeRemaining   string `json:"time_remaining,omitempty"`
	LastUpdatedTime string `json:"last_updated_time,omitempty"`
}

// FeedLiveData is the nested live game state block.
type FeedLiveData struct {
	Status        string `json:"status,omitempty"`
	HomeScore     *int   `json:"home_score,omitempty"`
	AwayScore     *int   `json:"away_score,omitempty"`
	CurrentPeriod string `json:"current_period,omitempty"`
	TimeRemaining string `json:"time_remaining,omitempty"`
	LastUpdated   string `json:"last_updated,omitempty"`
}

// SidePair is a home/away pair of signed floats (expected value per side).
type SidePair struct {
	HomeTeam float64 `json:"home_team"`
	AwayTeam float64 `json:"away_team"`
}

// KellyPair is a home/away pair of Kelly criterion stakes.
type KellyPair struct {
	HomeTeam KellyValue `json:"home_team"`
	AwayTeam KellyValue `json:"away_team"`
}

// KellyValue holds one Kelly criterion stake from the feed. The feed normally
// emits a number, but string sentinels have been observed; anything
// non-numeric is treated as "no value" and downstream mapping renders it as
// "No Bet".
type KellyValue struct {
	value   float64
	numeric bool
}

// NumericKelly builds a numeric KellyValue. Intended for tests and fixtures.
func NumericKelly(v float64) KellyValue {
	return KellyValue{value: v, numeric: true}
}

// Float returns the numeric stake and whether the value was numeric at all.
func (k KellyValue) Float() (float64, bool) {
	return k.value, k.numeric
}

// UnmarshalJSON accepts a JSON number, a numeric string, or any other value.
// Non-numeric input yields a non-numeric KellyValue instead of an error.
func (k *KellyValue) UnmarshalJSON(data []byte) error {
	*k = KellyValue{}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		k.value = f
		k.numeric = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			k.value = f
			k.numeric = true
		}
	}
	return nil
}

// MarshalJSON round-trips the original numeric value, or null when the feed
// value was not numeric.
func (k KellyValue) MarshalJSON() ([]byte, error) {
	if !k.numeric {
		return []byte("null"), nil
	}
	return json.Marshal(k.value)
}

// FlexFloat is a float64 that also accepts numeric strings when unmarshaling.
// The feed's under_over_line has been observed in both forms.
type FlexFloat float64

// UnmarshalJSON accepts a JSON number or a numeric string. Anything else
// (including null) decodes as zero rather than failing the whole payload.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = 0
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = FlexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = FlexFloat(v)
		}
	}
	return nil
}
