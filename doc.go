/*
Package printdesk prints labels and reports for inventory items.

Templates (HTML with Go template syntax) are stored per kind, label or report, and
bound to one model type such as part or stockitem. A print request names a template
and a list of items; printdesk renders one page per item, merges the pages into a
single document and records the outcome as a data output that clients poll or
download.

# Key Features

  - Template filters ("key=value,...") narrow which templates apply to a selection of items.
  - Label printing is delegated to plugins; the builtin printer merges labels into one PDF.
  - Reports are rendered through wkhtmltopdf, or to plain HTML in debug mode.
  - Outputs are kept for a retention period and pruned by a janitor.
  - Lifecycle hooks expose every print for metrics and event streams.

# Usage

	eng, err := printdesk.New("./media",
		printdesk.WithItemSource(items),
	)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := eng.SeedDefaults(ctx); err != nil {
		log.Fatal(err)
	}

	out, err := eng.PrintReports(ctx, domain.User{Username: "alice"}, domain.PrintRequest{
		Template: 1,
		Items:    []int64{42},
	})

Validation problems are returned as *domain.ValidationError carrying one message
list per field, the same shape the HTTP API answers with.
*/
package printdesk
