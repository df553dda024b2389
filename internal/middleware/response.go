package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// ResponseFormatter ensures JSON error responses follow the standard format.
// Success responses from handlers already use the response package.
func ResponseFormatter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			return err
		}
		status := c.Response().StatusCode()
		if status < 400 {
			return nil
		}
		body := c.Response().Body()
		var parsed map[string]interface{}
		if json.Unmarshal(body, &parsed) == nil {
			if _, ok := parsed["error"]; ok {
				return nil
			}
		}
		message := "Request failed"
		if parsed != nil {
			if m, ok := parsed["message"].(string); ok {
				message = m
			}
		}
		out, _ := json.Marshal(fiber.Map{
			"status": "error",
			"error": fiber.Map{
				"message":    message,
				"statusCode": status,
				"details":    fiber.Map{},
			},
		})
		c.Response().SetBody(out)
		c.Response().Header.SetContentType(fiber.MIMEApplicationJSON)
		return nil
	}
}
