package focus

import "github.com/rs/zerolog"

// SleepClientID is the focus client used while the system suspends.
const SleepClientID = "system-sleep"

// onPrepareForSleep takes transient focus before suspend and gives it back
// after resume, so the holder pauses across sleep and resumes on wake.
func onPrepareForSleep(a Arbiter, body []any, log zerolog.Logger) {
	if len(body) != 1 {
		return
	}
	starting, ok := body[0].(bool)
	if !ok {
		return
	}
	if starting {
		log.Info().Msg("System suspending")
		a.Request(Request{ID: SleepClientID, Kind: GainTransient})
		return
	}
	log.Info().Msg("System resumed")
	a.Abandon(SleepClientID)
}
