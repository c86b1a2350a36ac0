package api

import (
	"errors"
	"log/slog"

	"github.com/exchora/auditchain/internal/audit"
	"github.com/exchora/auditchain/internal/middlewares"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// AuditHandler translates wire requests into audit log operations. It does
// no business logic of its own; the actor descriptor comes from the
// authentication middleware.
type AuditHandler struct {
	auditLog *audit.Log
}

func NewAuditHandler(auditLog *audit.Log) *AuditHandler {
	return &AuditHandler{
		auditLog: auditLog,
	}
}

func (h *AuditHandler) PostEntry(ctx *fiber.Ctx) error {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		return ctx.SendStatus(fiber.StatusUnauthorized)
	}

	var req RecordEntryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, "Malformed request body"),
		)
	}

	id, err := h.auditLog.Append(audit.AppendInput{
		Action:   req.Action,
		Actor:    actor,
		Resource: req.Resource,
		Details:  req.Details,
		Outcome:  audit.Outcome(req.Outcome),
		Severity: audit.Severity(req.Severity),
	})
	if err != nil {
		if errors.Is(err, audit.ErrSecretMissing) || errors.Is(err, audit.ErrHashing) {
			slog.Error("Failed to append audit entry", "action", req.Action, "error", err)
			return ctx.Status(fiber.StatusInternalServerError).JSON(
				NewErrorResponse(fiber.StatusInternalServerError, "Internal server error"),
			)
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, err.Error()),
		)
	}

	return ctx.Status(fiber.StatusCreated).JSON(
		NewDataResponse(RecordEntryResponse{ID: id}),
	)
}

func (h *AuditHandler) GetEntries(ctx *fiber.Ctx) error {
	filter := audit.SearchFilter{
		UserID:       ctx.Query("userId"),
		Action:       ctx.Query("action"),
		ResourceType: ctx.Query("resourceType"),
		ResourceID:   ctx.Query("resourceId"),
		FromDate:     ctx.Query("fromDate"),
		ToDate:       ctx.Query("toDate"),
		Outcome:      ctx.Query("outcome"),
		Severity:     ctx.Query("severity"),
		Offset:       cast.ToInt(ctx.Query("offset")),
		Limit:        cast.ToInt(ctx.Query("limit")),
	}

	entries := h.auditLog.Search(filter)
	offset, limit := filter.EffectivePage()

	return ctx.JSON(NewDataResponse(SearchResponse{
		Entries: entries,
		Offset:  offset,
		Limit:   limit,
	}))
}

func (h *AuditHandler) GetEntry(ctx *fiber.Ctx) error {
	entry, err := h.auditLog.GetEntry(ctx.Params("id"))
	if errors.Is(err, audit.ErrEntryNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(
			NewErrorResponse(fiber.StatusNotFound, "Audit entry not found"),
		)
	}
	return ctx.JSON(NewDataResponse(entry))
}

func (h *AuditHandler) GetChainVerify(ctx *fiber.Ctx) error {
	report := h.auditLog.VerifyChain()
	resp := ChainVerifyResponse{
		IsValid:          report.IsValid,
		TotalEntries:     report.TotalEntries,
		ValidatedEntries: report.ValidatedEntries,
		Errors:           report.Errors,
	}
	if !report.IsValid {
		brokenAt := report.BrokenAt
		resp.BrokenAt = &brokenAt
	}
	return ctx.JSON(NewDataResponse(resp))
}

func (h *AuditHandler) GetStatistics(ctx *fiber.Ctx) error {
	return ctx.JSON(NewDataResponse(h.auditLog.GetStatistics()))
}

func (h *AuditHandler) DeleteEntries(ctx *fiber.Ctx) error {
	if err := h.auditLog.Clear(); err != nil {
		return ctx.Status(fiber.StatusForbidden).JSON(
			NewErrorResponse(fiber.StatusForbidden, err.Error()),
		)
	}
	slog.Warn("Audit log cleared", "path", ctx.Path(), "ip", ctx.IP())
	return ctx.SendStatus(fiber.StatusNoContent)
}
