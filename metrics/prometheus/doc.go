// Package prometheus exports bigfield operation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	obs, err := bfprom.NewObserver(reg)
//	bf, _ := bigfield.New(store, bigfield.WithMetricsObserver(obs))
package prometheus
