package server

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the server's Prometheus collectors.
type metrics struct {
	uploadsTotal      *prometheus.CounterVec
	deletesTotal      *prometheus.CounterVec
	cacheLookupsTotal *prometheus.CounterVec
	backupsTotal      prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logodepot_uploads_total",
			Help: "Processed upload files by result",
		}, []string{"result"}),

		deletesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logodepot_deletes_total",
			Help: "Logo deletion requests by result",
		}, []string{"result"}),

		cacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logodepot_cache_lookups_total",
			Help: "Image cache lookups by outcome",
		}, []string{"outcome"}),

		backupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logodepot_backups_total",
			Help: "Backup archives served",
		}),
	}

	reg.MustRegister(m.uploadsTotal, m.deletesTotal, m.cacheLookupsTotal, m.backupsTotal)
	return m
}
