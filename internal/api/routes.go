package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/odra-labs/rasterview/internal/blob"
	"github.com/odra-labs/rasterview/internal/dashboard"
	"github.com/odra-labs/rasterview/internal/raster"
	"github.com/odra-labs/rasterview/internal/render"
	"github.com/odra-labs/rasterview/internal/stac"
)

// RegisterRoutes wires the dashboard page and the JSON/PNG endpoints into the
// Fiber app.
func RegisterRoutes(app *fiber.App, svc *dashboard.Service) {
	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(dashboardPage)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/indexes", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"indexes": raster.Indexes()})
	})

	v1.Get("/colormaps", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"colormaps": render.ColormapNames()})
	})

	v1.Get("/stats", func(c *fiber.Ctx) error {
		idx, err := raster.ParseIndex(c.Query("index"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stats, err := svc.IndexStats(c.Context(), idx)
		if err != nil {
			return statErr(err)
		}
		scene, err := svc.Scene(c.Context())
		if err != nil {
			return statErr(err)
		}

		return c.JSON(fiber.Map{
			"index": idx,
			"stats": stats,
			"scene": fiber.Map{
				"id":          scene.ID,
				"cloud_cover": scene.CloudCover(),
			},
		})
	})

	v1.Post("/stats/save", func(c *fiber.Ctx) error {
		idx, err := raster.ParseIndex(c.Query("index"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := svc.SaveStats(c.Context(), idx)
		if err != nil {
			// Database failures are surfaced to the user; the session
			// keeps working.
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save stats: "+err.Error())
		}
		return c.JSON(fiber.Map{
			"message": "stats saved",
			"record":  rec,
		})
	})

	v1.Get("/stats/history", func(c *fiber.Ctx) error {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
			}
			limit = n
		}

		if c.Query("format") == "csv" {
			out, err := svc.HistoryCSV(c.Context(), limit)
			if err != nil {
				return statErr(err)
			}
			c.Set(fiber.HeaderContentType, "text/csv")
			return c.SendString(out)
		}

		records, err := svc.History(c.Context(), limit)
		if err != nil {
			return statErr(err)
		}
		return c.JSON(fiber.Map{"records": records})
	})

	v1.Get("/raster", func(c *fiber.Ctx) error {
		idx, err := raster.ParseIndex(c.Query("index"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		cmap, err := render.ParseColormap(c.Query("cmap"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		png, err := svc.RenderStored(c.Context(), idx, cmap)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no stored raster for this index and colormap")
			}
			return statErr(err)
		}

		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	})
}

// statErr maps service failures onto HTTP statuses. An empty catalog result
// means the session cannot initialize at all; everything else is a plain
// internal error.
func statErr(err error) error {
	if errors.Is(err, stac.ErrNoItems) {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
