package playtest

import "time"

const (
	workerChannelMultiplier = 2
	settlePollInterval      = 100 * time.Millisecond
	percentageMultiplier    = 100
	playerNamePrefix        = "bot_"
)
