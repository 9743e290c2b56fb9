/*
Package outputs orchestrates access to DataOutput records.

It serializes read-modify-write updates of a single output (a print running in the
background reports progress while the HTTP API reads it), and coordinates the
retention janitor across replicas through an optional distributed lock.
*/
package outputs
