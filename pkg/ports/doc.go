/*
Package ports defines the driven ports (interfaces) around the page engine.

These interfaces decouple document handling from concrete backends, so the same
session manager and HTTP/MCP surfaces run on memory, files, Redis or Postgres.

# Key Interfaces

  - DocumentStore: persists and loads raw document bytes by document id.
  - DistributedLocker: serializes writers of one document across replicas.
  - Publisher: uploads exported HTML and returns where it can be fetched.
*/
package ports
