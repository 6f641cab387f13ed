package http

import (
	"encoding/json"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/busseat/api"
)

const redocHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>BusSeat Trip API</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
  <redoc spec-url="/docs/openapi.json"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`

// SetupDocs serves the embedded OpenAPI document as YAML and JSON plus a
// Redoc page at /docs. The JSON form is rendered once at startup.
func SetupDocs(app *fiber.App) {
	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(api.OpenAPI)
	})

	doc, err := openapi3.NewLoader().LoadFromData(api.OpenAPI)
	if err != nil {
		slog.Error("load openapi document", "error", err)
		return
	}
	rendered, err := json.Marshal(doc)
	if err != nil {
		slog.Error("render openapi document", "error", err)
		return
	}
	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(rendered)
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(redocHTML)
	})
}
