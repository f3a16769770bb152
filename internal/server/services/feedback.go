package services

import "math/rand/v2"

// System feedback is the one-line remark the "operating system" attaches to
// a freshly committed log entry. The candidate pool is conditioned on the
// entry's category, type and any embedded weather/mood/energy metadata; when
// the conditions yield fewer than three candidates the generic pool is mixed
// in so the pick never feels hardwired. Selection is uniform over the final
// pool. Picked once at creation, never regenerated.

const genericPoolThreshold = 3

var genericFeedback = []string{
	"Entry committed to long-term storage.",
	"Log received. System nominal.",
	"Record archived without anomalies.",
	"Telemetry appended to operator history.",
	"Checkpoint saved.",
}

var categoryFeedback = map[string][]string{
	"DREAM": {
		"Subconscious buffer flushed successfully.",
		"REM-cycle diagnostics recorded.",
		"Dream fragment indexed for later analysis.",
	},
	"HEALTH": {
		"Biometric subsystem acknowledges the report.",
		"Vital signs logged. Keep monitoring.",
		"Maintenance routine registered for the chassis.",
	},
	"WORK": {
		"Productivity module credits this cycle.",
		"Task output committed to the main branch of your day.",
		"Workload telemetry stored.",
	},
}

var typeFeedback = map[string][]string{
	"ERROR": {
		"Anomaly detected. Containment suggested.",
		"Fault recorded. The system remembers so you can forget.",
		"Error trace captured for future debugging.",
	},
	"SUCCESS": {
		"Objective complete. Reward dispatched.",
		"Milestone registered. Well executed, operator.",
		"Positive outcome archived.",
	},
	"WARNING": {
		"Early warning acknowledged. Watch the gauges.",
		"Deviation noted before it became a failure.",
		"Caution flag hoisted and logged.",
	},
}

var (
	sunnyGlyphs = map[string]bool{"☀": true, "☀️": true, "🌞": true, "🌤": true}
	rainGlyphs  = map[string]bool{"🌧": true, "🌧️": true, "☔": true, "⛈": true}

	sunnyFeedback = []string{
		"Solar input detected. Conditions favorable.",
		"Clear-sky operations logged.",
	}
	rainFeedback = []string{
		"Precipitation noted. Indoor subroutines advised.",
		"Weather dampeners engaged for this entry.",
	}
)

var (
	happyGlyphs = map[string]bool{"😊": true, "🙂": true, "😄": true, "😁": true}
	sadGlyphs   = map[string]bool{"😢": true, "😞": true, "😔": true, "☹": true}

	happyFeedback = []string{
		"Mood sensors read green across the board.",
		"Positive affect logged. Keep that loop running.",
	}
	sadFeedback = []string{
		"Low-mood signal received. Be gentle with the hardware.",
		"Emotional load registered. Scheduling recovery time is valid work.",
	}
)

var (
	lowEnergyFeedback = []string{
		"Power reserves below 30%. Recharge cycle recommended.",
		"Running on fumes. The system suggests rest, not heroics.",
	}
	highEnergyFeedback = []string{
		"Energy levels excellent. Burn it on something that matters.",
		"Reactor output above 80%. Full speed ahead.",
	}
)

// GenerateFeedback builds the conditioned candidate pool for
// (category, type, content) and picks one phrase uniformly at random.
// Content is only consulted for an embedded metadata object; free text
// contributes nothing to the conditions.
func GenerateFeedback(category, logType, content string) string {
	meta := liftContentMetadata(content)

	var pool []string
	pool = append(pool, categoryFeedback[category]...)
	pool = append(pool, typeFeedback[logType]...)

	if meta.Weather != nil {
		switch {
		case sunnyGlyphs[*meta.Weather]:
			pool = append(pool, sunnyFeedback...)
		case rainGlyphs[*meta.Weather]:
			pool = append(pool, rainFeedback...)
		}
	}
	if meta.Mood != nil {
		switch {
		case happyGlyphs[*meta.Mood]:
			pool = append(pool, happyFeedback...)
		case sadGlyphs[*meta.Mood]:
			pool = append(pool, sadFeedback...)
		}
	}
	if meta.Energy != nil {
		if *meta.Energy < 30 {
			pool = append(pool, lowEnergyFeedback...)
		} else if *meta.Energy > 80 {
			pool = append(pool, highEnergyFeedback...)
		}
	}

	if len(pool) < genericPoolThreshold {
		pool = append(pool, genericFeedback...)
	}
	return pool[rand.IntN(len(pool))]
}
