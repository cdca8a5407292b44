// Package services implements the driving port interfaces.
//
// The operation drivers (publish, edit, pause, activate, delete) run one
// queue row through its remote call sequence and classify every failure.
// BatchService groups pending rows by seller credentials and operation,
// Runner repeats passes while the run switch is on.
//
// Services depend only on the domain and the ports, plus zap, uuid and decimal.
package services
