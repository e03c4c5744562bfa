// Package metrics учитывает исходы операций аутентификации в Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	svc "streamnest/internal/auth/ports/services"
)

const (
	namespace = "auth"
	labelOp   = "operation"
	labelRes  = "result"
)

// Prometheus реализует AuthMetrics поверх собственного реестра.
type Prometheus struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// NewPrometheus создает реестр со счетчиком операций и стандартными коллекторами процесса.
func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Authentication operations by outcome.",
	}, []string{labelOp, labelRes})

	registry.MustRegister(
		operations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Prometheus{registry: registry, operations: operations}
}

// ObserveAttempt увеличивает счетчик для операции и ее исхода.
func (p *Prometheus) ObserveAttempt(operation, result string) {
	p.operations.WithLabelValues(operation, result).Inc()
}

// Handler отдает метрики в формате Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Counter возвращает счетчик для пары меток.
func (p *Prometheus) Counter(operation, result string) prometheus.Counter {
	return p.operations.WithLabelValues(operation, result)
}

var _ svc.AuthMetrics = (*Prometheus)(nil)
