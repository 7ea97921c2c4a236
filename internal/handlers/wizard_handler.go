package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/drafts"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/preview"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/submission"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/wizard"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
)

// WizardHandler drives the three product wizard pages. Every request builds
// a fresh controller; the drafts in the store carry state between pages.
type WizardHandler struct {
	Store     storage.Store
	Finalizer *submission.Finalizer
	Renderer  *preview.Renderer
	Pub       realtime.Publisher
	Products  *ProductHandler
	Log       *zap.Logger
}

func (h *WizardHandler) controller(c *fiber.Ctx, number int) (*wizard.Controller, error) {
	seller, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	return wizard.NewController(h.Store, h.Finalizer, h.Pub, seller, number, h.Log)
}

func stepParam(c *fiber.Ctx) (int, error) {
	step, ok := drafts.ParseStep(c.Params("step"))
	if !ok {
		return 0, apperr.NotFoundErr("Wizard step does not exist.")
	}
	return step.Number(), nil
}

func parseFields(c *fiber.Ctx) (drafts.Fields, error) {
	if len(c.Body()) == 0 {
		return drafts.Fields{}, nil
	}
	f, err := drafts.ParseFields(c.Body())
	if err != nil {
		return nil, badBody()
	}
	return f, nil
}

func wizardErr(err error) error {
	if errors.Is(err, wizard.ErrInvalidTransition) {
		return apperr.InvalidErr("This action is not available on this step.", nil)
	}
	return apperr.Wrap(err)
}

// GET /api/seller/wizard/:step
func (h *WizardHandler) Enter(c *fiber.Ctx) error {
	number, err := stepParam(c)
	if err != nil {
		return err
	}
	ctl, err := h.controller(c, number)
	if err != nil {
		return err
	}
	page, err := ctl.Enter(c.UserContext())
	if err != nil {
		return wizardErr(err)
	}
	return ok(c, "", page)
}

// POST /api/seller/wizard/:step/next
func (h *WizardHandler) Next(c *fiber.Ctx) error {
	number, err := stepParam(c)
	if err != nil {
		return err
	}
	fields, err := parseFields(c)
	if err != nil {
		return err
	}
	ctl, err := h.controller(c, number)
	if err != nil {
		return err
	}
	if _, err := ctl.Enter(c.UserContext()); err != nil {
		return wizardErr(err)
	}
	if _, err := ctl.Edit(fields); err != nil {
		return wizardErr(err)
	}
	route, err := ctl.Next(c.UserContext())
	if err != nil {
		return wizardErr(err)
	}
	ignored := ctl.Ignored()
	if ignored == nil {
		ignored = []string{}
	}
	return ok(c, "Draft saved", fiber.Map{
		"redirect": route,
		"ignored":  ignored,
	})
}

// POST /api/seller/wizard/:step/back
func (h *WizardHandler) Back(c *fiber.Ctx) error {
	number, err := stepParam(c)
	if err != nil {
		return err
	}
	ctl, err := h.controller(c, number)
	if err != nil {
		return err
	}
	if _, err := ctl.Enter(c.UserContext()); err != nil {
		return wizardErr(err)
	}
	route, err := ctl.Back()
	if err != nil {
		return wizardErr(err)
	}
	return ok(c, "", fiber.Map{"redirect": route})
}

// POST /api/seller/wizard/submit, body holds the stock step's fields.
func (h *WizardHandler) Submit(c *fiber.Ctx) error {
	fields, err := parseFields(c)
	if err != nil {
		return err
	}
	ctl, err := h.controller(c, drafts.Stock.Number())
	if err != nil {
		return err
	}
	if _, err := ctl.Enter(c.UserContext()); err != nil {
		return wizardErr(err)
	}
	if _, err := ctl.Edit(fields); err != nil {
		return wizardErr(err)
	}
	res, err := ctl.Submit(c.UserContext())
	if err != nil {
		return wizardErr(err)
	}
	return h.Products.submitted(c, res)
}

// DELETE /api/seller/wizard/drafts[?step=]
func (h *WizardHandler) ClearDrafts(c *fiber.Ctx) error {
	seller, err := currentUser(c)
	if err != nil {
		return err
	}
	var steps []drafts.Step
	if raw := c.Query("step"); raw != "" {
		step, ok := drafts.ParseStep(raw)
		if !ok {
			return apperr.InvalidErr("Unknown wizard step.", nil)
		}
		steps = append(steps, step)
	}
	if err := wizard.ClearDrafts(c.UserContext(), h.Store, h.Pub, seller, h.Log, steps...); err != nil {
		return apperr.Wrap(err)
	}
	return ok(c, "Drafts cleared", nil)
}

// GET /api/seller/wizard/preview[?image=], image opens that picture in the lightbox.
func (h *WizardHandler) Preview(c *fiber.Ctx) error {
	seller, err := currentUser(c)
	if err != nil {
		return err
	}
	view := h.Renderer.Render(c.UserContext(), seller)
	if raw := c.Query("image"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return apperr.InvalidErr("Invalid image index.", nil)
		}
		if !view.OpenImage(idx) {
			return apperr.NotFoundErr("Image not found.")
		}
	}
	return ok(c, "", view)
}
