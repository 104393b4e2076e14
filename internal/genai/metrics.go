package genai

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opGenerate  = "generate"
	opSummarize = "summarize"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reportdesk",
			Subsystem: "genai",
			Name:      "calls_total",
			Help:      "Generation service calls, by operation.",
		},
		[]string{"op"},
	)

	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reportdesk",
			Subsystem: "genai",
			Name:      "failures_total",
			Help:      "Generation service calls that returned an error, by operation.",
		},
		[]string{"op"},
	)
)

type instrumented struct {
	next Service
}

// Instrument counts calls and failures of svc.
func Instrument(svc Service) Service {
	return instrumented{next: svc}
}

func (s instrumented) GenerateReport(ctx context.Context, prompt string) (string, error) {
	callsTotal.WithLabelValues(opGenerate).Inc()
	out, err := s.next.GenerateReport(ctx, prompt)
	if err != nil {
		failuresTotal.WithLabelValues(opGenerate).Inc()
	}
	return out, err
}

func (s instrumented) SummarizeContent(ctx context.Context, content string) (string, error) {
	callsTotal.WithLabelValues(opSummarize).Inc()
	out, err := s.next.SummarizeContent(ctx, content)
	if err != nil {
		failuresTotal.WithLabelValues(opSummarize).Inc()
	}
	return out, err
}

// OpStats is the call count of one operation since the process started.
type OpStats struct {
	Op       string `json:"op"`
	Calls    int    `json:"calls"`
	Failures int    `json:"failures"`
}

// Stats reads the counters recorded by Instrument from g, one entry per operation.
func Stats(g prometheus.Gatherer) ([]OpStats, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	out := []OpStats{{Op: opGenerate}, {Op: opSummarize}}
	for _, mf := range families {
		var failures bool
		switch mf.GetName() {
		case "reportdesk_genai_calls_total":
		case "reportdesk_genai_failures_total":
			failures = true
		default:
			continue
		}
		for _, m := range mf.GetMetric() {
			op := ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "op" {
					op = lp.GetValue()
				}
			}
			for i := range out {
				if out[i].Op != op {
					continue
				}
				n := int(m.GetCounter().GetValue())
				if failures {
					out[i].Failures = n
				} else {
					out[i].Calls = n
				}
			}
		}
	}
	return out, nil
}
