package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/arka-labs/gradeflow-api/internal/dto"
	"github.com/arka-labs/gradeflow-api/internal/service"
	"github.com/arka-labs/gradeflow-api/internal/utils"
)

// AssessmentHandler manages solution submission, regrade, and manual grading
// endpoints.
type AssessmentHandler struct {
	solutions service.SolutionService
	regrades  service.RegradeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssessmentHandler builds the handler instance.
func NewAssessmentHandler(solutions service.SolutionService, regrades service.RegradeService, validate *validator.Validate, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		solutions: solutions,
		regrades:  regrades,
		validator: validate,
		logger:    logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Post("/assessments/:assessmentID/solutions", h.submit)
	router.Post("/assessments/:assessmentID/questions/:questionID/regrade", h.regrade)
	router.Put("/solutions/:solutionID/grade", h.manualGrade)
}

func (h *AssessmentHandler) submit(c *fiber.Ctx) error {
	assessmentID, err := parseUintParam(c, "assessmentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SolutionSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.AssessmentID = assessmentID

	solution, err := h.solutions.Submit(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "solution submitted", solution)
}

func (h *AssessmentHandler) regrade(c *fiber.Ctx) error {
	assessmentID, err := parseUintParam(c, "assessmentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	questionID, err := parseUintParam(c, "questionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID, ok := c.Locals("user_id").(uint)
	if !ok {
		var payload dto.RegradeRequestPayload
		if err := c.BodyParser(&payload); err != nil || payload.StudentID == 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "student id is required")
		}
		studentID = payload.StudentID
	}

	solution, err := h.regrades.CreateRegradeRequest(c.Context(), assessmentID, questionID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "regrade requested", solution)
}

func (h *AssessmentHandler) manualGrade(c *fiber.Ctx) error {
	solutionID, err := parseUintParam(c, "solutionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ManualGradingRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	solution, err := h.regrades.ManuallyGradeSolution(c.Context(), solutionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "solution graded", solution)
}

func (h *AssessmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
	case errors.Is(err, service.ErrSolutionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "solution not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrDuplicateSubmission):
		return utils.SendError(c, fiber.StatusConflict, "solution already submitted")
	case errors.Is(err, service.ErrAssessmentCancelled):
		return utils.SendError(c, fiber.StatusConflict, "assessment is cancelled")
	case errors.Is(err, service.ErrRegradeConflict):
		return utils.SendError(c, fiber.StatusConflict, "solution is not graded")
	case errors.Is(err, service.ErrIncompleteMarking):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "marking must cover every answer")
	case errors.Is(err, service.ErrMarkOutOfRange):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "mark outside question range")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}

	return uint(parsed), nil
}
