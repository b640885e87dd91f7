package xlinvoice

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/alloc"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/errs"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/models"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/repair"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/template"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/workbook"
	"go.uber.org/zap"
)

// Renderer runs the render pipeline. It holds no per-request state and is
// safe for concurrent use when its Source is.
type Renderer struct {
	source     template.Source
	logger     *zap.Logger
	validate   *validator.Validate
	skipRepair bool
}

// NewRenderer creates a Renderer reading templates from src.
func NewRenderer(src template.Source, opts ...Option) *Renderer {
	r := &Renderer{
		source:   src,
		logger:   zap.NewNop(),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Result is a complete, repaired document.
type Result struct {
	ID        string               `json:"id"`
	Variant   template.Variant     `json:"variant"`
	Defaulted bool                 `json:"defaulted"`
	Filename  string               `json:"filename"`
	Bytes     []byte               `json:"-"`
	Tables    []alloc.Report       `json:"tables"`
	Anchors   []alloc.AnchorResult `json:"anchors"`
	Repair    models.RepairReport  `json:"repair"`
}

// Truncated returns the number of items dropped across all tables.
func (r *Result) Truncated() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Truncated
	}
	return n
}

// Render fills the template selected by variantKey with req. It returns
// either a complete document or a single error; never partial bytes.
func (r *Renderer) Render(ctx context.Context, variantKey string, req *models.RenderRequest) (*Result, error) {
	if req == nil {
		return nil, &RenderError{Stage: "validate", Err: errs.Errorf(errs.ErrInvalidInput, "request.validate", "nil request")}
	}
	fail := func(stage string, err error) (*Result, error) {
		return nil, &RenderError{OrderNo: req.OrderNo, Stage: stage, Err: err}
	}

	if err := r.validate.Struct(req); err != nil {
		return fail("validate", errs.New(errs.ErrInvalidInput, "request.validate", err))
	}

	sel := template.Select(variantKey)
	res := &Result{
		ID:        uuid.NewString(),
		Variant:   sel.Variant,
		Defaulted: sel.Defaulted,
		Filename:  OutputFilename(req.OrderNo),
	}
	log := r.logger.With(
		zap.String("render_id", res.ID),
		zap.String("order_no", req.OrderNo),
		zap.String("variant", string(sel.Variant)),
	)
	if sel.Defaulted {
		log.Warn("Unrecognized template type, using client layout",
			zap.String("template_type", variantKey))
	}

	if err := ctx.Err(); err != nil {
		return fail("load", err)
	}
	data, err := r.source.Load(ctx, sel.Variant)
	if err != nil {
		return fail("load", err)
	}

	wb, err := workbook.Load(data)
	if err != nil {
		return fail("load", err)
	}
	defer wb.Close()

	if err := wb.RequireSheets(sel.CellMap.Sheets()...); err != nil {
		return fail("load", err)
	}

	for _, table := range sel.CellMap.Tables() {
		anchors, err := alloc.FillAnchors(wb, table, req)
		if err != nil {
			return fail("anchors", err)
		}
		res.Anchors = append(res.Anchors, anchors...)

		report, err := alloc.Fill(wb, table, req.Items)
		if err != nil {
			return fail("fill", err)
		}
		if report.Truncated > 0 {
			log.Warn("Item count exceeds template capacity, truncating",
				zap.String("table", string(report.Table)),
				zap.Int("total_items", report.Items),
				zap.Int("capacity", report.Capacity))
		}
		res.Tables = append(res.Tables, report)
	}

	if err := ctx.Err(); err != nil {
		return fail("serialize", err)
	}
	out, err := wb.Serialize()
	if err != nil {
		return fail("serialize", err)
	}

	if !r.skipRepair {
		repaired, report, err := repair.RepairBytes(out)
		if err != nil {
			return fail("repair", err)
		}
		out = repaired
		res.Repair = report
	}
	res.Bytes = out

	log.Info("Rendered document",
		zap.Int("items", len(req.Items)),
		zap.Int("bytes", len(out)),
		zap.Int("shared_string_count", res.Repair.Count),
		zap.Int("shared_string_unique", res.Repair.UniqueCount))

	return res, nil
}
