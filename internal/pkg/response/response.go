package response

import "github.com/gofiber/fiber/v2"

// SuccessBody is the standard success envelope returned by every handler.
type SuccessBody struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorBody is the standard error envelope.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail nests the message and status code.
type ErrorDetail struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Success sends 200 with the standard envelope.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(SuccessBody{Status: "success", Message: message, Data: data})
}

// Created sends 201 with the standard envelope.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(SuccessBody{Status: "success", Message: message, Data: data})
}

// Error sends the standard error envelope with the given status code.
func Error(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(ErrorBody{
		Status: "error",
		Error:  ErrorDetail{Message: message, StatusCode: statusCode},
	})
}

// Unauthorized sends 401 in the standard error shape.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized)
}
