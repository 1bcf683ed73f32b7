package scoring

// DistanceQuality labels how close a guess landed.
func DistanceQuality(meters int) string {
	switch {
	case meters < 10:
		return "Spot on!"
	case meters < 50:
		return "Very close!"
	case meters < 100:
		return "Close!"
	case meters < 250:
		return "Not too far!"
	case meters < 500:
		return "Getting warmer!"
	default:
		return "Keep exploring!"
	}
}

// ScoreQuality labels a total relative to the best possible total.
func ScoreQuality(score, maxScore int) string {
	if maxScore <= 0 {
		return "Keep trying!"
	}
	pct := float64(score) / float64(maxScore) * 100
	switch {
	case pct >= 90:
		return "Perfect!"
	case pct >= 80:
		return "Excellent!"
	case pct >= 60:
		return "Great!"
	case pct >= 40:
		return "Good!"
	case pct >= 20:
		return "Not bad!"
	default:
		return "Keep trying!"
	}
}
