package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/logger"
	"github.com/example/supplysetu/internal/services"
)

// UploadHandler accepts product and complaint photos.
type UploadHandler struct {
	images  *services.ImageStore
	advisor services.Advisor
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(images *services.ImageStore, advisor services.Advisor) *UploadHandler {
	return &UploadHandler{images: images, advisor: advisor}
}

// UploadImage stores the multipart "image" field in ?folder= (products by
// default). With ?analyze=true the response also carries a freshness result
// when the analysis succeeds.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest("image is required")
	}
	folder := c.Query("folder", "products")

	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := h.images.Save(folder, file.Header.Get(fiber.HeaderContentType), file.Size, f)
	switch {
	case errors.Is(err, services.ErrImageTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, services.ErrUnsupportedImage), errors.Is(err, services.ErrUnknownFolder):
		return badRequest(err.Error())
	case err != nil:
		return err
	}

	data := fiber.Map{"url": url}
	if c.QueryBool("analyze") {
		ctx, cancel := context.WithTimeout(c.UserContext(), freshnessBudget)
		defer cancel()
		result, err := h.advisor.AnalyzeFreshness(ctx, url)
		if err != nil {
			logger.FromContext(c).Warn("freshness analysis failed", zap.String("url", url), zap.Error(err))
		} else {
			data["freshness"] = result
		}
	}
	return respondCreated(c, data)
}
