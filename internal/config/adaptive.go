package config

import "runtime"

// Resolution chain for Concurrency (highest priority first):
//   1. CLI flag (--concurrency)
//   2. Environment variable (FIELDFMT_CONCURRENCY)
//   3. Hardware estimation (this file)

// ApplyAdaptiveDefaults fills settings left at their zero value with
// estimates derived from the host. Explicit values are preserved.
func ApplyAdaptiveDefaults(cfg AppConfig) AppConfig {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = EstimateConcurrency()
	}
	return cfg
}

// EstimateConcurrency returns the number of documents to mask in parallel:
// one per core, at most 16.
func EstimateConcurrency() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU <= 1:
		return 1
	case numCPU <= 16:
		return numCPU
	default:
		return 16
	}
}
