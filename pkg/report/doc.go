// Package report publishes the outcome of transfer cycles.
//
// Every finished cycle becomes a CycleReport. Reports are always logged,
// and published to an MQTT broker when one is configured:
//
//   <prefix>cycles - CycleReport, protobuf encoded
//   <prefix>state  - engine state name, retained
package report
