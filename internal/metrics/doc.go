// Package metrics provides dynamo.Metric implementations for quantum state
// trajectories. Metrics are fed every recorded point of a solve and report a
// single number at the end.
package metrics
