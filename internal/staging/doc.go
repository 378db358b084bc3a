// Package staging builds batches of inbound items ahead of bulk receiving.
// Identities and short codes are generated at staging time; nothing is
// persisted until the batch is committed to a warehouse.
package staging
