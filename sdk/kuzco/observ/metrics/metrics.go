// Package metrics constructs the metrics the application will track.
package metrics

import (
	"expvar"
	"runtime"
	"time"
)

var m metrics

type metrics struct {
	goroutines    *expvar.Int
	requests      *expvar.Int
	errors        *expvar.Int
	panics        *expvar.Int
	modelLoadTime *avgMetric
	rerankTime    *avgMetric
	embedTime     *avgMetric
	rerankDocs    *avgMetric
	embedTexts    *avgMetric
}

func init() {
	m = metrics{
		goroutines:    expvar.NewInt("service_goroutines"),
		requests:      expvar.NewInt("service_requests"),
		errors:        expvar.NewInt("service_errors"),
		panics:        expvar.NewInt("service_panics"),
		modelLoadTime: newAvgMetric("model_load"),
		rerankTime:    newAvgMetric("model_rerank"),
		embedTime:     newAvgMetric("model_embed"),
		rerankDocs:    newAvgMetric("usage_rerank_documents"),
		embedTexts:    newAvgMetric("usage_embed_texts"),
	}
}

// AddGoroutines refreshes the goroutine metric.
func AddGoroutines() int64 {
	g := int64(runtime.NumGoroutine())
	m.goroutines.Set(g)
	return g
}

// AddRequests increments the request metric by 1.
func AddRequests() int64 {
	m.requests.Add(1)
	return m.requests.Value()
}

// AddErrors increments the errors metric by 1.
func AddErrors() int64 {
	m.errors.Add(1)
	return m.errors.Value()
}

// AddPanics increments the panics metric by 1.
func AddPanics() int64 {
	m.panics.Add(1)
	return m.panics.Value()
}

// AddModelLoadTime captures the specified duration for loading a model file.
func AddModelLoadTime(duration time.Duration) {
	m.modelLoadTime.add(duration.Seconds())
}

// AddRerank captures the document count and duration of a rerank pass.
func AddRerank(documents int, duration time.Duration) {
	m.rerankDocs.add(float64(documents))
	m.rerankTime.add(duration.Seconds())
}

// AddEmbeddings captures the text count and duration of an embedding pass.
func AddEmbeddings(texts int, duration time.Duration) {
	m.embedTexts.add(float64(texts))
	m.embedTime.add(duration.Seconds())
}
