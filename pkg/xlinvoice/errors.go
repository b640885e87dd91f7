package xlinvoice

import "github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/errs"

// Error kinds returned by Render. Match them with errors.Is.
var (
	ErrTemplateNotFound     = errs.ErrTemplateNotFound
	ErrTemplateMalformed    = errs.ErrTemplateMalformed
	ErrSheetNotFound        = errs.ErrSheetNotFound
	ErrSerializationFailure = errs.ErrSerializationFailure
	ErrInvalidInput         = errs.ErrInvalidInput
)

// RenderError reports the pipeline stage a render failed in.
type RenderError struct {
	OrderNo string
	Stage   string // validate, load, anchors, fill, serialize or repair
	Err     error
}

func (e *RenderError) Error() string {
	return "render " + e.OrderNo + " failed at " + e.Stage + ": " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Kind returns the tagged kind name of the failure ("" when untagged).
func (e *RenderError) Kind() string {
	return errs.KindOf(e.Err)
}

// KindOf returns the tagged kind name carried by err.
func KindOf(err error) string {
	return errs.KindOf(err)
}
