// Package services implements the entity stores: the only writers of the
// local store and the only components allowed to clear a record's sync
// status by talking to the server.
//
// Every mutation follows the same contract: apply the change locally first
// (optimistic write), enqueue a durable sync item in the same transaction,
// then — when the client looks online — attempt one immediate flush. A
// failed flush leaves the queue item in place for the sync queue processor
// to retry later.
package services
