package quota

import "time"

// Plan describes a subscription tier's metered allowance for unknown contacts.
type Plan struct {
	ID           string
	MeteredLimit int
	Duration     func(start time.Time) time.Time
}

func oneMonth(start time.Time) time.Time { return start.AddDate(0, 1, 0) }

func trialWeek(start time.Time) time.Time { return start.AddDate(0, 0, 7) }

const (
	PlanTrial        = "trial"
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanUnlimited    = "unlimited"
)

var plans = map[string]Plan{
	PlanTrial:        {ID: PlanTrial, MeteredLimit: 9, Duration: trialWeek},
	PlanStarter:      {ID: PlanStarter, MeteredLimit: 9, Duration: oneMonth},
	PlanProfessional: {ID: PlanProfessional, MeteredLimit: 14, Duration: oneMonth},
	PlanUnlimited:    {ID: PlanUnlimited, MeteredLimit: 50, Duration: oneMonth},
}

// Response packs add top-up balance on purchase.
var packs = map[string]int{
	"pack_10": 10,
	"pack_25": 25,
	"pack_50": 50,
}

// LookupPlan resolves a plan id.
func LookupPlan(id string) (Plan, bool) {
	p, ok := plans[id]
	return p, ok
}

// PackSize resolves a response pack id to its message count.
func PackSize(packID string) (int, bool) {
	n, ok := packs[packID]
	return n, ok
}
