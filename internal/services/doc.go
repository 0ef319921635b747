// Package services groups clients for the external tools the pipeline
// shells out to. Each client owns its binary invocation, output parsing,
// and failure classification, and takes an Executor so tests never spawn
// real processes.
package services
