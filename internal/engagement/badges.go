package engagement

// snapshot is the state a badge predicate sees: the ledger counters after
// the completion was folded in, plus situational context about the rest of
// the day's list.
type snapshot struct {
	Streak           int
	TotalCompleted   int
	CompletionHour   int
	RemainingToday   *int
	RemainingOverdue *int
}

// BadgeDef defines one earnable badge.
type BadgeDef struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      func(snapshot) bool
}

var catalog = []BadgeDef{
	{
		ID: "streak_3", Name: "Momentum", Icon: "🔥",
		Description: "Completed a task on 3 days in a row.",
		Earned:      func(s snapshot) bool { return s.Streak >= 3 },
	},
	{
		ID: "streak_7", Name: "On Fire", Icon: "⚡",
		Description: "Completed a task on 7 days in a row.",
		Earned:      func(s snapshot) bool { return s.Streak >= 7 },
	},
	{
		ID: "streak_30", Name: "Unstoppable", Icon: "🏆",
		Description: "Completed a task on 30 days in a row.",
		Earned:      func(s snapshot) bool { return s.Streak >= 30 },
	},
	{
		ID: "total_10", Name: "Getting Things Done", Icon: "✅",
		Description: "Completed 10 tasks overall.",
		Earned:      func(s snapshot) bool { return s.TotalCompleted >= 10 },
	},
	{
		ID: "total_50", Name: "Half Century", Icon: "🎯",
		Description: "Completed 50 tasks overall.",
		Earned:      func(s snapshot) bool { return s.TotalCompleted >= 50 },
	},
	{
		ID: "total_100", Name: "Centurion", Icon: "💯",
		Description: "Completed 100 tasks overall.",
		Earned:      func(s snapshot) bool { return s.TotalCompleted >= 100 },
	},
	{
		ID: "early_bird", Name: "Early Bird", Icon: "🌅",
		Description: "Completed a task before 9 in the morning.",
		Earned:      func(s snapshot) bool { return s.CompletionHour < 9 },
	},
	{
		ID: "clean_sweep", Name: "Clean Sweep", Icon: "🧹",
		Description: "Finished everything planned for the day.",
		Earned:      func(s snapshot) bool { return s.RemainingToday != nil && *s.RemainingToday == 0 },
	},
	{
		ID: "clear_horizon", Name: "Clear Horizon", Icon: "🌤",
		Description: "Completed a task with nothing overdue left.",
		Earned:      func(s snapshot) bool { return s.RemainingOverdue != nil && *s.RemainingOverdue == 0 },
	},
}

// Catalog returns the fixed badge catalog in display order.
func Catalog() []BadgeDef {
	return catalog
}
