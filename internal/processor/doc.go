// Package processor contains the core business logic of the kikitori
// pipeline. It orchestrates vocabulary fetching, sentence generation,
// audio narration, page sync and review pushing. This package serves
// as the main coordinator between all other components.
package processor
