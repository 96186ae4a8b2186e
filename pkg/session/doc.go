/*
Package session serializes access to stored documents.

A Manager keeps a single writer per document: in-process through a
reference-counted mutex per document id, and across replicas through an
optional ports.DistributedLocker. Each Edit loads the document bytes, opens
a pagecraft.Engine on them, runs the caller's mutations and saves the result
back to the ports.DocumentStore.
*/
package session
