// Package generation mocks draft generation: a Simulator yields progress
// values, a Composer assembles a markdown draft rendered to HTML with
// goldmark, and a Runner drives both against a store ticket.
package generation
