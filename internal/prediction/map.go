package prediction

import "github.com/hoopsight/hoopsight/internal/odds"

const (
	placeholderAwayLogo = "/logos/placeholder_away.png"
	placeholderHomeLogo = "/logos/placeholder_home.png"

	defaultAdvice = "AI analysis will provide advice."

	unknownSportsbook = "N/A"
)

// MapFeedPayload maps every prediction record of a feed payload into view
// models, in feed order.
func MapFeedPayload(payload *odds.FeedPayload) []GamePrediction {
	if payload == nil {
		return nil
	}
	out := make([]GamePrediction, 0, len(payload.Predictions))
	for _, p := range payload.Predictions {
		out = append(out, MapFeedPrediction(p, payload))
	}
	return out
}

// MapFeedPrediction converts one raw feed record into a GamePrediction view
// model. The payload supplies the sportsbook name and the per-game raw book
// lines; when the book lines are missing the record's own odds are used.
//
// Pure function: no I/O, no mutation of its inputs.
func MapFeedPrediction(p odds.FeedPrediction, payload *odds.FeedPayload) GamePrediction {
	gameKey := p.HomeTeam + ":" + p.AwayTeam

	sportsbook := unknownSportsbook
	var book odds.BookLines
	if payload != nil {
		if payload.Sportsbook != "" {
			sportsbook = payload.Sportsbook
		}
		book = payload.OddsData[gameKey]
	}

	moneyLine := MoneyLine{Home: p.HomeOdds, Away: p.AwayOdds}
	if book.HomeMoneyLine != nil {
		moneyLine.Home = *book.HomeMoneyLine
	}
	if book.AwayMoneyLine != nil {
		moneyLine.Away = *book.AwayMoneyLine
	}

	totalPoints := float64(p.UnderOverLine)
	if book.UnderOver != nil {
		totalPoints = *book.UnderOver
	}

	return GamePrediction{
		GameIdentifier:   gameKey,
		GameTitle:        p.AwayTeam + " @ " + p.HomeTeam,
		AwayTeam:         p.AwayTeam,
		HomeTeam:         p.HomeTeam,
		AwayTeamLogoURL:  logoOr(p.AwayTeamLogoURL, placeholderAwayLogo),
		HomeTeamLogoURL:  logoOr(p.HomeTeamLogoURL, placeholderHomeLogo),
		SportsbookName:  sportsbook,
		SportsbookRaw: SportsbookRawData{
			MoneyLine:       moneyLine,
			TotalPointsLine: totalPoints,
		},
		Details:          mapDetails(p),
		GameStartTimeUTC: p.GameStartTimeUTC,
		KeyBettingAdvice: defaultAdvice,
		Live:             mapLiveData(p),
	}
}

func mapDetails(p odds.FeedPrediction) Details {
	d := Details{
		PredictedWinner:              p.PredictedWinner,
		WinnerConfidencePercent:      p.WinnerConfidence,
		TotalPointsPick:              CoercePick(p.UnderOverPrediction),
		TotalPointsConfidencePercent: p.UnderOverConfidence,
		ModelUsed:                    p.Model,
	}
	if p.ExpectedValue != nil {
		d.ExpectedValue = &SidePair{
			HomeTeam: p.ExpectedValue.HomeTeam,
			AwayTeam: p.ExpectedValue.AwayTeam,
		}
	}
	if p.KellyCriterion != nil {
		home, homeOK := p.KellyCriterion.HomeTeam.Float()
		away, awayOK := p.KellyCriterion.AwayTeam.Float()
		d.KellyCriterionStakePercent = &KellyStakePair{
			HomeTeam: NewKellyStake(home, homeOK),
			AwayTeam: NewKellyStake(away, awayOK),
		}
	}
	return d
}

// mapLiveData prefers the nested live_data block, falling back to the flat
// live fields older feed versions emit on the record itself.
func mapLiveData(p odds.FeedPrediction) *LiveData {
	live := LiveData{
		Status:        CoerceStatus(p.Status),
		HomeScore:     p.HomeScore,
		AwayScore:     p.AwayScore,
		CurrentPeriod: p.CurrentPeriod,
		TimeRemaining: p.TimeRemaining,
		LastUpdated:   p.LastUpdatedTime,
	}
	if n := p.LiveData; n != nil {
		if n.Status != "" {
			live.Status = CoerceStatus(n.Status)
		}
		if n.HomeScore != nil {
			live.HomeScore = n.HomeScore
		}
		if n.AwayScore != nil {
			live.AwayScore = n.AwayScore
		}
		if n.CurrentPeriod != "" {
			live.CurrentPeriod = n.CurrentPeriod
		}
		if n.TimeRemaining != "" {
			live.TimeRemaining = n.TimeRemaining
		}
		if n.LastUpdated != "" {
			live.LastUpdated = n.LastUpdated
		}
	}
	return &live
}

func logoOr(u, fallback string) string {
	if u != "" {
		return u
	}
	return fallback
}
