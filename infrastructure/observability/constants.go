package observability

// Metric name prefixes
const (
	MetricPrefix = "levelbot"
)

// Metric names
const (
	// Discord metrics
	MessagesCountedTotal = MetricPrefix + ".messages.counted_total"
	CommandsTotal        = MetricPrefix + ".commands.total"

	// Level metrics
	LevelChangesTotal = MetricPrefix + ".levels.changes_total"

	// Ledger metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"

	// Wager metrics
	WagersSettledTotal = MetricPrefix + ".wagers.settled_total"
	WagersPayoutTotal  = MetricPrefix + ".wagers.payout_total"
	WagersActive       = MetricPrefix + ".wagers.active"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelGame      = "game"
	LabelOutcome   = "outcome"
	LabelLevel     = "level"
	LabelCommand   = "command"
)
