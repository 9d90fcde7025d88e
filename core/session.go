package core

import (
	"context"
	"fmt"
	"strconv"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Session is an immutable snapshot of one operator's month: the data read
// from the source plus the result computed from it. Every change returns a
// new Session with a full recomputation.
type Session struct {
	Operator schema.Operator
	Month    string
	Template []schema.KpiTemplateItem
	Inputs   schema.RawInputs
	Result   schema.ScoreResult

	engine *Engine
}

// OpenSession loads the template, raw inputs and operator aggregate
// concurrently. All three must succeed; the first error cancels the rest.
func (e *Engine) OpenSession(ctx context.Context, src contract.DataSource, person, month string) (*Session, error) {
	var (
		op       schema.Operator
		template []schema.KpiTemplateItem
		inputs   schema.RawInputs
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		op, err = src.GetOperator(gctx, person)
		if err != nil {
			return fmt.Errorf("failed to load operator %q: %w", person, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		template, err = src.GetTemplate(gctx, person)
		if err != nil {
			return fmt.Errorf("failed to load template for %q: %w", person, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		inputs, err = src.GetRawInputs(gctx, person, month)
		if err != nil {
			return fmt.Errorf("failed to load %s inputs for %q: %w", month, person, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(template) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplate, person)
	}
	if inputs == nil {
		inputs = schema.RawInputs{}
	}
	return e.NewSession(op, month, template, inputs), nil
}

// NewSession builds a session from data already in hand.
func (e *Engine) NewSession(op schema.Operator, month string, template []schema.KpiTemplateItem, inputs schema.RawInputs) *Session {
	s := &Session{
		Operator: op,
		Month:    month,
		Template: template,
		Inputs:   inputs,
		engine:   e,
	}
	s.Result = e.ComputeScores(template, inputs, op)
	return s
}

// recompute returns a new session over the given template and inputs.
func (s *Session) recompute(template []schema.KpiTemplateItem, inputs schema.RawInputs) *Session {
	return s.engine.NewSession(s.Operator, s.Month, template, inputs)
}

// Edit sets one raw input and rescores.
func (s *Session) Edit(key string, value any) *Session {
	return s.recompute(s.Template, s.Inputs.With(key, value))
}

// EditMany sets several raw inputs at once and rescores.
func (s *Session) EditMany(values map[string]string) *Session {
	if len(values) == 0 {
		return s
	}
	inputs := s.Inputs.Clone()
	for k, v := range values {
		inputs[k] = v
	}
	return s.recompute(s.Template, inputs)
}

// SetRemark stores a free-text remark for an item. Scores are unaffected.
func (s *Session) SetRemark(id schema.ItemID, text string) (*Session, error) {
	for _, item := range s.Template {
		if item.ID != id {
			continue
		}
		key := item.RemarksKey()
		if key == "" {
			return nil, fmt.Errorf("indicator %q has no editable field to attach a remark to", item.Indicator)
		}
		next := *s
		next.Inputs = s.Inputs.With(key, text)
		return &next, nil
	}
	return nil, fmt.Errorf("%w: id %s", ErrItemNotFound, id)
}

// SetCoefficient changes the coefficient. Only the final score is recomputed.
func (s *Session) SetCoefficient(c float64) (*Session, error) {
	result, err := ApplyCoefficient(s.Result, c)
	if err != nil {
		return nil, err
	}
	next := *s
	next.Inputs = s.Inputs.With(schema.CoefficientKey, strconv.FormatFloat(c, 'f', -1, 64))
	next.Result = result
	return &next, nil
}

// WithTemplate rescores against a replacement template.
func (s *Session) WithTemplate(template []schema.KpiTemplateItem) *Session {
	return s.recompute(template, s.Inputs)
}

// DisplayValue returns the "last month" value shown for an item.
func (s *Session) DisplayValue(item schema.KpiTemplateItem) string {
	return s.engine.DisplayValue(item, s.Inputs, s.Operator)
}

// Payload builds the record handed to the store on save. Scores are re-keyed
// by indicator label; shared labels are logged because one of the values is lost.
func (s *Session) Payload() schema.SavePayload {
	if dupes := LabelCollisions(s.Template); len(dupes) > 0 {
		s.engine.logger.Warn("indicator labels are not unique, saved scores keep only the last item per label",
			zap.String("operator", s.Operator.OperatorName),
			zap.Strings("labels", dupes))
	}
	return schema.SavePayload{
		PersonName:       s.Operator.OperatorName,
		PerformanceMonth: s.Month,
		Inputs:           s.Inputs.Clone(),
		Scores:           ToLabelEntries(s.Result.Scores, s.Template),
		TotalScore:       s.Result.TotalScore,
		FinalScore:       s.Result.FinalScore,
		Coefficient:      s.Result.Coefficient,
	}
}

// Save persists the session. Failures come back as *PersistenceError.
func (s *Session) Save(ctx context.Context, w contract.RecordWriter) error {
	if err := w.SaveRecord(ctx, s.Payload()); err != nil {
		return &PersistenceError{Op: fmt.Sprintf("%s record for %q", s.Month, s.Operator.OperatorName), Err: err}
	}
	return nil
}

// Sheet builds the render model for the score sheet.
func (s *Session) Sheet() schema.ScoreSheet {
	rows := make([]schema.SheetRow, 0, len(s.Template))
	for i, item := range s.Template {
		row := schema.SheetRow{
			Item:      item,
			LastMonth: s.DisplayValue(item),
			Remarks:   s.Inputs.String(item.RemarksKey()),
			Mode:      item.Mode(),
		}
		if i < len(s.Result.Items) {
			row.Kind = s.Result.Items[i].Kind
			row.Family = s.Result.Items[i].Family
			row.Score = s.Result.Items[i].Score
		}
		row.Toggleable = s.engine.vocab.IsVerificationTotal(item)
		rows = append(rows, row)
	}
	return schema.ScoreSheet{
		Operator: s.Operator,
		Month:    s.Month,
		Rows:     rows,
		Result:   s.Result,
	}
}
