package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	solutionsGradedTotal *prometheus.CounterVec
	gradingFailuresTotal *prometheus.CounterVec
	queueTasksTotal      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the grading
// pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		solutionsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradeflow_solutions_graded_total",
			Help: "Total number of solutions graded, by grading mode.",
		}, []string{"mode"})

		gradingFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradeflow_grading_failures_total",
			Help: "Total number of failed grading passes, by reason.",
		}, []string{"reason"})

		queueTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradeflow_queue_tasks_total",
			Help: "Total number of queue tasks processed, by kind and outcome.",
		}, []string{"kind", "status"})

		prometheus.MustRegister(solutionsGradedTotal, gradingFailuresTotal, queueTasksTotal)
	})
}

// SolutionsGraded exposes the counter for completed grading passes.
func SolutionsGraded() *prometheus.CounterVec {
	RegisterMetrics()
	return solutionsGradedTotal
}

// GradingFailures exposes the counter for failed grading passes.
func GradingFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingFailuresTotal
}

// QueueTasks exposes the counter for processed queue tasks.
func QueueTasks() *prometheus.CounterVec {
	RegisterMetrics()
	return queueTasksTotal
}
