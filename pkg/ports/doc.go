/*
Package ports defines the driven ports (interfaces) for the printdesk print service.

These interfaces decouple the print engine from its storage backends, renderers and
locking primitives, so that the same engine runs against SQLite, Redis, a loam
template library or plain memory.

# Key Interfaces

  - TemplateStore / SnippetStore: label and report template persistence.
  - ItemSource: resolves inventory items by model type and id.
  - OutputStore: persists DataOutput records and prunes expired ones.
  - MediaStore: stores generated files and uploaded assets.
  - Renderer: turns rendered HTML pages into a single PDF.
  - DistributedLocker: coordinates periodic jobs across replicas.
*/
package ports
