package observability

// Metric name prefixes
const (
	MetricPrefix = "revshare"
)

// Metric names
const (
	// Distribution metrics
	DistributionsTotal     = MetricPrefix + ".distributions.total"
	DistributionDuration   = MetricPrefix + ".distributions.duration"
	PayoutsTotal           = MetricPrefix + ".payouts.total"
	DistributedAmountTotal = MetricPrefix + ".distributions.amount_total"

	// Event sink metrics
	EventsPublishedTotal = MetricPrefix + ".events.published_total"
	EventsReceivedTotal  = MetricPrefix + ".events.received_total"
)

// Label keys
const (
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
	LabelSink      = "sink"
	LabelResult    = "result"
)

// Publish results
const (
	ResultOK    = "ok"
	ResultError = "error"
)
