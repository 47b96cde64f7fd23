// Package domain contains the core business entities of the vocabulary
// review engine: word cards, owner statistics and the errors shared by the
// service and store layers. It has no knowledge of persistence or transport.
package domain
