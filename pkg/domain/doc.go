/*
Package domain contains the core domain models for the printdesk print service.

It defines the entities exchanged between the print engine, its storage adapters and
the client-side components (print trigger, spotlight, screenshot driver). This package
is kept free of I/O and persistence concerns.

# Key Entities

  - Template: A label or report rendering definition, scoped to a ModelType.
  - Item: An inventory object (part, stock item, build order, ...) that can be printed.
  - PrintRequest: A transient submission asking for a template to be printed against items.
  - DataOutput: The server-side record of one print operation and its generated file.
  - Field / FieldSet: Descriptors of the fields a print dialog submits.
*/
package domain
