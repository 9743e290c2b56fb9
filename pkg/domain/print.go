package domain

import "time"

// PrintRequest is a client-constructed submission to a print endpoint.
// It exists only for the duration of a single submission.
type PrintRequest struct {
	ModelType ModelType      `json:"model_type,omitempty"`
	Items     []int64        `json:"items"`
	Template  int64          `json:"template"`
	Plugin    string         `json:"plugin,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// DataOutput records the outcome of one print operation.
type DataOutput struct {
	ID       int64        `json:"pk"`
	Kind     TemplateKind `json:"output_type"`
	Template int64        `json:"template"`
	Plugin   string       `json:"plugin,omitempty"`
	User     string       `json:"user,omitempty"`
	Items    int          `json:"items"`
	Complete bool         `json:"complete"`
	Progress int          `json:"progress"`
	Output   string       `json:"output,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
	Created  time.Time    `json:"created"`
}

// Fail marks the output as finished with an error.
func (o *DataOutput) Fail(err error) {
	o.Complete = false
	o.Errors = append(o.Errors, err.Error())
}

// Finish marks the output complete with an optional generated file.
func (o *DataOutput) Finish(output string) {
	o.Complete = true
	o.Progress = o.Items
	o.Output = output
}
