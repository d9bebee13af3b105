package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Jobs struct {
	created  prometheus.Counter
	unlocks  prometheus.Counter
	messages prometheus.Counter
	flags    *prometheus.CounterVec
}

func NewJobs(registerer prometheus.Registerer) *Jobs {
	factory := promauto.With(registerer)
	return &Jobs{
		created: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobs_created_total",
			Help: "Jobs created.",
		}),
		unlocks: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobs_contact_unlocks_total",
			Help: "Contact policies unlocked.",
		}),
		messages: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobs_messages_posted_total",
			Help: "Chat messages accepted.",
		}),
		flags: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobs_compliance_flags_total",
			Help: "Compliance flags raised by kind.",
		}, []string{"kind"}),
	}
}

func (j *Jobs) JobCreated()      { j.created.Inc() }
func (j *Jobs) ContactUnlocked() { j.unlocks.Inc() }
func (j *Jobs) MessagePosted()   { j.messages.Inc() }

func (j *Jobs) ComplianceFlagged(kind string) {
	j.flags.WithLabelValues(kind).Inc()
}
