// Package http exposes the game service over a JSON API built on fiber.
package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"chessvar/internal/core"
	"chessvar/internal/processor"
	"chessvar/internal/service"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler routes requests to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: service.WaitTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Use(contentTypeValidator)

	validateToken := svc.ValidateToken

	auth := api.Group("/auth")
	auth.Post("/register", perMinuteLimiter(5, "registrations"), h.RegisterHandler)
	auth.Post("/login", perMinuteLimiter(10, "login attempts"), h.LoginHandler)
	auth.Get("/me", AuthRequired(validateToken), h.GetCurrentUserHandler)

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	games := api.Group("/games", limiter.New(limiter.Config{
		Max:          maxReq,
		Expiration:   1 * time.Second,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}), OptionalAuth(validateToken), validationMiddleware)

	games.Post("/", h.CreateGame)
	games.Get("/:gameId", h.GetGame)
	games.Delete("/:gameId", h.DeleteGame)
	games.Post("/:gameId/moves", h.MakeMove)
	games.Get("/:gameId/board", h.GetBoard)
	games.Get("/:gameId/squares/:square", h.GetSquare)
	games.Put("/:gameId/status", h.SetStatus)
	games.Post("/:gameId/seats", AuthRequired(validateToken), h.ClaimSeat)

	return app
}

func perMinuteLimiter(max int, what string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   1 * time.Minute,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d %s per minute allowed", max, what),
			})
		},
	})
}

// clientKey prefers the first X-Forwarded-For hop over the peer address
func clientKey(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	return c.IP()
}

// contentTypeValidator ensures POST and PUT requests carry JSON
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed, fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes to HTTP status codes
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound:
		return fiber.StatusNotFound
	case core.ErrUnauthorized:
		return fiber.StatusUnauthorized
	case core.ErrNotYourSeat:
		return fiber.StatusForbidden
	case core.ErrGameOver, core.ErrSeatTaken:
		return fiber.StatusConflict
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// respond writes a processor response with the given success status
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(okStatus)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

// gameID returns the path game ID or writes a 400 when it is not a UUID
func gameID(c *fiber.Ctx) (string, bool) {
	id := c.Params("gameId")
	if _, err := uuid.Parse(id); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid game ID format",
			Code:    core.ErrInvalidRequest,
			Details: "game ID must be a valid UUID",
		})
		return "", false
	}
	return id, true
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// Health reports liveness and storage state
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewCreateGameCommand(userID(c), req))
	return respond(c, resp, fiber.StatusCreated)
}

// GetGame returns the game; with wait=true it long-polls until the move
// count differs from moveCount, the game changes, or the wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}

	if c.Query("wait") == "true" {
		moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
		if err != nil {
			moveCount = -1
		}

		ctx := c.Context()
		select {
		case <-h.svc.RegisterWait(ctx, id, moveCount):
		case <-ctx.Done():
			return nil
		}
	}

	return respond(c, h.proc.Execute(processor.NewGetGameCommand(id)), fiber.StatusOK)
}

func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	return respond(c, h.proc.Execute(processor.NewDeleteGameCommand(id)), fiber.StatusNoContent)
}

// MakeMove answers 200 for both applied and rejected moves; the body's
// applied field tells them apart.
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewMakeMoveCommand(id, userID(c), req))
	return respond(c, resp, fiber.StatusOK)
}

func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	return respond(c, h.proc.Execute(processor.NewGetBoardCommand(id)), fiber.StatusOK)
}

func (h *HTTPHandler) GetSquare(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	resp := h.proc.Execute(processor.NewGetSquareCommand(id, c.Params("square")))
	return respond(c, resp, fiber.StatusOK)
}

func (h *HTTPHandler) SetStatus(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	req, err := validatedBody[core.StatusRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.Execute(processor.NewSetStatusCommand(id, req)), fiber.StatusOK)
}

func (h *HTTPHandler) ClaimSeat(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return nil
	}
	req, err := validatedBody[core.SeatRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(processor.NewClaimSeatCommand(id, userID(c), req))
	return respond(c, resp, fiber.StatusOK)
}
