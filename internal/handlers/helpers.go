package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/supplysetu/internal/store"
	"github.com/example/supplysetu/internal/utils"
	"github.com/example/supplysetu/internal/validation"
)

// parseBody decodes the JSON body into req and validates it.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return validateStruct(req)
}

// validateStruct runs the validate tags of req and reports the first
// violation as a 400.
func validateStruct(req interface{}) error {
	if err := validation.Struct(req); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return fiber.NewError(fiber.StatusBadRequest, verr.Error())
		}
		return err
	}
	return nil
}

// lookup loads a record and maps a missing id to a 404 naming what.
func lookup[T any](ctx context.Context, coll store.Collection[T], id, what string) (*T, error) {
	rec, err := coll.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, what+" not found")
	}
	return rec, err
}

// getOne responds with the record addressed by the :param route parameter.
func getOne[T any](c *fiber.Ctx, coll store.Collection[T], param, what string) error {
	rec, err := lookup(c.UserContext(), coll, c.Params(param), what)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": rec})
}

// listBy responds with a paginated Find result.
func listBy[T any](c *fiber.Ctx, coll store.Collection[T], field string, value interface{}) error {
	items, err := coll.Find(c.UserContext(), field, value)
	if err != nil {
		return err
	}
	return paginated(c, items)
}

func paginated[T any](c *fiber.Ctx, items []T) error {
	pg := utils.ParsePagination(c)
	page := utils.Paginate(items, &pg)
	return c.JSON(fiber.Map{"success": true, "data": page, "pagination": pg})
}

func respondCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

func respond(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}
