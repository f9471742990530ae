package http

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"resume-builder/internal/domain"
	"resume-builder/internal/locale"
	"resume-builder/internal/logging"
	"resume-builder/internal/model"
	"resume-builder/internal/scoring"
	"resume-builder/internal/usecase"
)

// ServiceInfo is reported by the health and dbcheck endpoints.
type ServiceInfo struct {
	Name    string
	Version string
	// DB names the resume store, "postgres" or "memory".
	DB string
	// DBURI must already be redacted.
	DBURI string
}

type Handler struct {
	svc  *usecase.Service
	info ServiceInfo
	log  logging.Logger
	now  func() time.Time
}

func NewHandler(svc *usecase.Service, info ServiceInfo, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{svc: svc, info: info, log: log, now: time.Now}
}

// NewApp builds the fiber app with the middleware chain and every /api route.
func NewApp(h *Handler, corsOrigins string) *fiber.App {
	onError := ErrorHandler(h.log)
	app := fiber.New(fiber.Config{
		AppName:               h.info.Name,
		ErrorHandler:          onError,
		DisableStartupMessage: true,
	})
	if corsOrigins == "" {
		corsOrigins = "*"
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{AllowOrigins: corsOrigins}))
	app.Use(RequestLogger(h.log, onError))

	h.Register(app.Group("/api"))
	return app
}

func (h *Handler) Register(api fiber.Router) {
	api.Get("/", h.Root)
	api.Get("/health", h.Health)
	api.Get("/dbcheck", h.DBCheck)

	api.Get("/locales", h.Locales)
	api.Get("/presets", h.Presets)
	api.Get("/presets/:locale/optional-fields", h.OptionalFields)
	api.Post("/sections/order", h.SectionOrder)

	api.Post("/resumes", h.CreateResume)
	api.Get("/resumes/:id", h.GetResume)
	api.Put("/resumes/:id", h.UpdateResume)
	api.Delete("/resumes/:id", h.DeleteResume)
	api.Post("/resumes/:id/score", h.ScoreResume)

	api.Post("/jd/parse", h.ParseJD)
	api.Post("/jd/coverage", h.Coverage)
	api.Post("/validate", h.Validate)
	api.Post("/preview", h.Preview)

	api.Post("/export/pdf", h.ExportPDF)
	api.Get("/export/pdf/:id", h.ExportPDFByID)
	api.Get("/export/json/:id", h.ExportJSON)
	api.Post("/export/json/:id", h.ExportJSON)

	api.Get("/privacy/info/:id", h.PrivacyInfo)
	api.Get("/local-mode/settings", h.GetLocalMode)
	api.Post("/local-mode/settings", h.SetLocalMode)
}

func badPayload() error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
}

// decodeDocument validates raw against the résumé schema.
func decodeDocument(raw []byte) (model.Document, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return model.Document{}, fiber.NewError(fiber.StatusBadRequest, "resume is required")
	}
	return model.Decode(raw)
}

type resumeResponse struct {
	model.Document
	ATS       *scoring.Result `json:"ats,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toResponse(rec *domain.ResumeRecord) resumeResponse {
	doc := rec.Document
	doc.ID = rec.ID
	return resumeResponse{Document: doc, ATS: rec.ATS, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
}

func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": h.info.Name + " backend up"})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":      true,
		"service": h.info.Name,
		"version": h.info.Version,
		"time":    h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) DBCheck(c *fiber.Ctx) error {
	body := fiber.Map{
		"ok":   true,
		"db":   h.info.DB,
		"uri":  h.info.DBURI,
		"time": h.now().UTC().Format(time.RFC3339),
	}
	if err := h.svc.Ping(c.UserContext()); err != nil {
		h.log.Warn(c.UserContext(), "db check failed", "error", err)
		body["ok"] = false
		body["error"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}

func (h *Handler) Locales(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"locales": h.svc.Locales()})
}

func (h *Handler) Presets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"presets": h.svc.Presets()})
}

func (h *Handler) OptionalFields(c *fiber.Ctx) error {
	res, err := h.svc.OptionalFields(c.Params("locale"))
	var uerr *locale.UnknownLocaleError
	if errors.As(err, &uerr) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(res)
}

type sectionOrderReq struct {
	Locale         string          `json:"locale"`
	OptionalFields map[string]bool `json:"optional_fields"`
	Overrides      map[string]bool `json:"overrides"`
}

func (h *Handler) SectionOrder(c *fiber.Ctx) error {
	var req sectionOrderReq
	if err := c.BodyParser(&req); err != nil {
		return badPayload()
	}
	return c.JSON(fiber.Map{
		"locale":        req.Locale,
		"section_order": h.svc.SectionOrder(req.Locale, req.OptionalFields, req.Overrides),
	})
}

func (h *Handler) CreateResume(c *fiber.Ctx) error {
	doc, err := decodeDocument(c.Body())
	if err != nil {
		return err
	}
	rec, err := h.svc.Save(c.UserContext(), doc)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(rec))
}

func (h *Handler) GetResume(c *fiber.Ctx) error {
	rec, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(rec))
}

func (h *Handler) UpdateResume(c *fiber.Ctx) error {
	doc, err := decodeDocument(c.Body())
	if err != nil {
		return err
	}
	rec, err := h.svc.Update(c.UserContext(), c.Params("id"), doc)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(rec))
}

func (h *Handler) DeleteResume(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "deleted": true})
}

func (h *Handler) ScoreResume(c *fiber.Ctx) error {
	res, err := h.svc.Score(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

type parseJDReq struct {
	Text string `json:"text"`
}

func (h *Handler) ParseJD(c *fiber.Ctx) error {
	var req parseJDReq
	if err := c.BodyParser(&req); err != nil {
		return badPayload()
	}
	res, err := h.svc.ParseJobDescription(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// coverageReq carries either an inline résumé or the id of a stored one.
type coverageReq struct {
	Resume   json.RawMessage `json:"resume"`
	ResumeID string          `json:"resume_id"`
	Keywords []string        `json:"keywords"`
}

func (h *Handler) Coverage(c *fiber.Ctx) error {
	var req coverageReq
	if err := c.BodyParser(&req); err != nil {
		return badPayload()
	}
	var doc model.Document
	if req.ResumeID != "" {
		rec, err := h.svc.Get(c.UserContext(), req.ResumeID)
		if err != nil {
			return err
		}
		doc = rec.Document
	} else {
		var err error
		if doc, err = decodeDocument(req.Resume); err != nil {
			return err
		}
	}
	cov, err := h.svc.Coverage(doc, req.Keywords)
	if err != nil {
		return err
	}
	return c.JSON(cov)
}

func (h *Handler) Validate(c *fiber.Ctx) error {
	doc, err := decodeDocument(c.Body())
	if err != nil {
		return err
	}
	return c.JSON(h.svc.Validate(c.UserContext(), doc))
}

type renderReq struct {
	Resume   json.RawMessage `json:"resume"`
	Template string          `json:"template"`
}

func (h *Handler) parseRenderReq(c *fiber.Ctx) (model.Document, string, error) {
	var req renderReq
	if err := c.BodyParser(&req); err != nil {
		return model.Document{}, "", badPayload()
	}
	doc, err := decodeDocument(req.Resume)
	return doc, req.Template, err
}

// Preview answers with the rendered page as JSON, or as bare HTML when
// format=html is requested.
func (h *Handler) Preview(c *fiber.Ctx) error {
	doc, tpl, err := h.parseRenderReq(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Preview(c.UserContext(), doc, tpl)
	if err != nil {
		return err
	}
	if c.Query("format") == "html" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(out.HTML)
	}
	return c.JSON(out)
}

func (h *Handler) sendPDF(c *fiber.Ctx, name string, pdf []byte) error {
	c.Attachment(name + ".pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

func (h *Handler) ExportPDF(c *fiber.Ctx) error {
	doc, tpl, err := h.parseRenderReq(c)
	if err != nil {
		return err
	}
	pdf, err := h.svc.ExportPDF(c.UserContext(), doc, tpl)
	if err != nil {
		return err
	}
	return h.sendPDF(c, "resume", pdf)
}

func (h *Handler) ExportPDFByID(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.svc.ExportPDFByID(c.UserContext(), id, c.Query("template"))
	if err != nil {
		return err
	}
	return h.sendPDF(c, "resume-"+id, pdf)
}

func (h *Handler) ExportJSON(c *fiber.Ctx) error {
	out, err := h.svc.ExportJSON(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *Handler) PrivacyInfo(c *fiber.Ctx) error {
	out, err := h.svc.PrivacyInfo(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *Handler) GetLocalMode(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"local_mode": h.svc.LocalMode()})
}

func (h *Handler) SetLocalMode(c *fiber.Ctx) error {
	var req usecase.LocalModeSettings
	if err := c.BodyParser(&req); err != nil {
		return badPayload()
	}
	out, err := h.svc.SetLocalMode(req)
	if err != nil {
		return err
	}
	h.log.Info(c.UserContext(), "local mode settings updated", "enabled", out.Enabled, "auto_clear_after_hours", out.AutoClearAfterHours)
	return c.JSON(fiber.Map{"local_mode": out})
}
