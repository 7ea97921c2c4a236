// Package wizard drives one step of the product wizard: load the step's
// draft into its form, collect edits, save on navigation and hand the final
// step over to submission.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/drafts"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/submission"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
)

const (
	RouteListing     = submission.ListingRoute
	RouteBasicInfo   = "/seller/products/new/basic-info"
	RouteDescription = "/seller/products/new/description"
	RouteStock       = "/seller/products/new/stock"
	RoutePreview     = "/seller/products/new/preview"
)

// BackRoute is where the back control of a step leads.
func BackRoute(step drafts.Step) string {
	switch step {
	case drafts.Description:
		return RouteBasicInfo
	case drafts.Stock:
		return RouteDescription
	}
	return RouteListing
}

// NextRoute is where the next control of a step leads.
func NextRoute(step drafts.Step) string {
	switch step {
	case drafts.BasicInfo:
		return RouteDescription
	case drafts.Description:
		return RouteStock
	}
	return RoutePreview
}

type State int

const (
	Idle State = iota
	Loaded
	Editing
	Saved
	Navigating
	Submitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Editing:
		return "editing"
	case Saved:
		return "saved"
	case Navigating:
		return "navigating"
	case Submitted:
		return "submitted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var ErrInvalidTransition = errors.New("invalid wizard transition")

// Page is what a step shows when entered.
type Page struct {
	Step   drafts.Step   `json:"step"`
	Number int           `json:"number"`
	Total  int           `json:"total"`
	Final  bool          `json:"final"`
	Form   Form          `json:"form"`
	Draft  drafts.Fields `json:"draft"`
	Back   string        `json:"back"`
	Next   string        `json:"next"`
}

// Controller is built per request for one seller and one step.
type Controller struct {
	store  storage.Store
	fin    *submission.Finalizer
	pub    realtime.Publisher
	log    *zap.Logger
	seller uuid.UUID
	step   drafts.Step

	state   State
	edits   drafts.Fields
	ignored []string
}

func NewController(store storage.Store, fin *submission.Finalizer, pub realtime.Publisher, seller uuid.UUID, number int, log *zap.Logger) (*Controller, error) {
	step, ok := drafts.StepByNumber(number)
	if !ok {
		return nil, apperr.NotFoundErr(fmt.Sprintf("Wizard step %d does not exist.", number))
	}
	if pub == nil {
		pub = realtime.NopPublisher
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		store:  store,
		fin:    fin,
		pub:    pub,
		log:    log.With(zap.String("seller", seller.String()), zap.String("step", string(step))),
		seller: seller,
		step:   step,
		state:  Idle,
		edits:  drafts.Fields{},
	}, nil
}

func (c *Controller) State() State      { return c.state }
func (c *Controller) Step() drafts.Step { return c.step }

// Ignored lists the field names dropped from edits so far.
func (c *Controller) Ignored() []string { return c.ignored }

func (c *Controller) transition(to State, from ...State) error {
	for _, s := range from {
		if c.state == s {
			c.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, to)
}

// Enter loads the step's draft into its form. A draft that cannot be read
// shows as an empty form.
func (c *Controller) Enter(ctx context.Context) (Page, error) {
	if err := c.transition(Loaded, Idle); err != nil {
		return Page{}, err
	}
	draft, err := c.store.Drafts().Load(ctx, c.seller, c.step)
	if err != nil {
		c.log.Warn("draft unavailable, starting empty", zap.Error(err))
		draft = drafts.Fields{}
	}
	return Page{
		Step:   c.step,
		Number: c.step.Number(),
		Total:  len(drafts.Steps),
		Final:  c.step.IsFinal(),
		Form:   Populate(FormFor(c.step), draft),
		Draft:  draft,
		Back:   BackRoute(c.step),
		Next:   NextRoute(c.step),
	}, nil
}

// Edit records field changes. Unknown fields are dropped and returned;
// values of the wrong kind are rejected and nothing is recorded.
func (c *Controller) Edit(fields drafts.Fields) ([]string, error) {
	if c.state != Loaded && c.state != Editing {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, Editing)
	}
	clean, ignored, err := drafts.Sanitize(c.step, fields)
	if len(ignored) > 0 {
		c.log.Warn("ignoring unknown draft fields", zap.Strings("fields", ignored))
		c.ignored = append(c.ignored, ignored...)
	}
	var verr *drafts.ValidationError
	if errors.As(err, &verr) {
		return ignored, apperr.InvalidErr("Some fields are invalid.", verr.Fields)
	}
	if err != nil {
		return ignored, err
	}
	c.edits = c.edits.Merge(clean)
	c.state = Editing
	return ignored, nil
}

// Back leaves the step without saving.
func (c *Controller) Back() (string, error) {
	if err := c.transition(Navigating, Loaded, Editing); err != nil {
		return "", err
	}
	return BackRoute(c.step), nil
}

// Next saves the edits and returns the successor route. A failed save keeps
// the controller in its editing state so the caller can retry.
func (c *Controller) Next(ctx context.Context) (string, error) {
	if c.state != Loaded && c.state != Editing {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, Saved)
	}
	if err := c.store.Drafts().Save(ctx, c.seller, c.step, c.edits); err != nil {
		return "", err
	}
	c.state = Saved
	c.notify(ctx, realtime.Event{Type: realtime.EventDraftUpdated, Step: string(c.step)})

	c.state = Navigating
	return NextRoute(c.step), nil
}

// Submit checks the composite (stored drafts plus this step's edits) and,
// when complete, lets the finalizer save the edits and create the product
// in one transaction. Only the final step can submit.
func (c *Controller) Submit(ctx context.Context) (submission.Result, error) {
	if !c.step.IsFinal() {
		return submission.Result{}, fmt.Errorf("%w: step %s cannot submit", ErrInvalidTransition, c.step)
	}
	if c.state != Loaded && c.state != Editing {
		return submission.Result{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, Submitted)
	}

	composite, err := storage.LoadComposite(ctx, c.store.Drafts(), c.seller)
	if err != nil {
		c.log.Warn("drafts unavailable for submit check", zap.Error(err))
		composite = drafts.Composite{}
	}
	composite.Put(c.step, composite.Get(c.step).Merge(c.edits))
	if verr := submission.Check(composite); verr != nil {
		err := apperr.InvalidErr("Please complete the required product fields.", verr.Fields)
		return submission.Result{OK: false, Reason: err.PublicMsg, Err: err}, err
	}

	res := c.fin.Finalize(ctx, c.seller, &drafts.WirePayload{Step3: c.edits})
	if !res.OK {
		return res, res.Err
	}
	c.state = Submitted
	return res, nil
}

func (c *Controller) notify(ctx context.Context, ev realtime.Event) {
	if err := c.pub.Publish(ctx, c.seller, ev); err != nil {
		c.log.Warn("publish draft event failed", zap.String("event", ev.Type), zap.Error(err))
	}
}

// ClearDrafts discards drafts of a seller (every step when steps is empty)
// and tells the seller's other sessions.
func ClearDrafts(ctx context.Context, store storage.Store, pub realtime.Publisher, seller uuid.UUID, log *zap.Logger, steps ...drafts.Step) error {
	if err := store.Drafts().Clear(ctx, seller, steps...); err != nil {
		return err
	}
	if pub == nil {
		return nil
	}
	ev := realtime.Event{Type: realtime.EventDraftsCleared}
	if len(steps) == 1 {
		ev.Step = string(steps[0])
	}
	if err := pub.Publish(ctx, seller, ev); err != nil && log != nil {
		log.Warn("publish drafts_cleared failed", zap.String("seller", seller.String()), zap.Error(err))
	}
	return nil
}
