// Package validation implements the rule engine that decides whether a
// product creation request is accepted.
//
// Rules are evaluated exhaustively in a fixed order and every failure is
// collected; only a rule whose precondition is false is skipped. Rules that
// consult the store run one after another in list order.
package validation

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/domain"
	"product-catalog/internal/logger"

	"go.uber.org/zap"
)

// Store is the read side of the product store the rules consult
type Store interface {
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	ExistsByNameAndBrand(ctx context.Context, name, brand string) (bool, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

// Failure is one triggered rule
type Failure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Outcome is the result of a validation run. No failures means accepted.
type Outcome struct {
	Failures []Failure
}

// Valid reports whether the request was accepted
func (o Outcome) Valid() bool {
	return len(o.Failures) == 0
}

// Messages returns the failure messages in rule order
func (o Outcome) Messages() []string {
	messages := make([]string, 0, len(o.Failures))
	for _, f := range o.Failures {
		messages = append(messages, f.Message)
	}
	return messages
}

// Validator evaluates the catalog rules against creation requests
type Validator struct {
	store  Store
	cfg    config.CatalogConfig
	logger *zap.Logger
	now    func() time.Time
	rules  []rule
}

// New builds a validator. A nil clock means time.Now.
func New(store Store, cfg config.CatalogConfig, log *zap.Logger, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}

	v := &Validator{
		store:  store,
		cfg:    cfg,
		logger: log,
		now:    now,
	}
	v.rules = v.buildRules()
	return v
}

// Validate runs every applicable rule and returns the collected failures.
// A non-nil error means a store lookup failed and no verdict was reached.
func (v *Validator) Validate(ctx context.Context, req domain.CreateProductRequest) (Outcome, error) {
	in := input{req: &req, now: v.now().UTC()}

	var outcome Outcome
	for _, r := range v.rules {
		if !r.applies(in) {
			continue
		}

		ok, err := r.check(ctx, in)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to evaluate %s rule: %w", r.field, err)
		}
		if !ok {
			outcome.Failures = append(outcome.Failures, Failure{Field: r.field, Message: r.message})
		}
	}

	if !outcome.Valid() {
		v.log(ctx).Debug("Validation rules rejected request",
			append(logger.ProductValidationFailed.Fields(), zap.Int("failures", len(outcome.Failures)))...,
		)
	}

	return outcome, nil
}

func (v *Validator) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, v.logger)
}
