package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"qrattend/internal/attendance"
	"qrattend/internal/auth"
	"qrattend/internal/config"
	"qrattend/internal/observability"
	"qrattend/internal/queue"
	"qrattend/internal/report"
	"qrattend/internal/scanner"
	"qrattend/internal/session"
)

// Handler carries the wired pipeline and collaborators for all routes.
type Handler struct {
	cfg       config.App
	pipeline  *scanner.Pipeline
	client    *attendance.Client
	reports   *report.Client
	assembler *report.Assembler
	svc       *attendance.Service
	sessions  *session.Store
	queue     queue.Queue
	log       zerolog.Logger
}

// New wires a handler.
func New(cfg config.App, pipeline *scanner.Pipeline, client *attendance.Client,
	reports *report.Client, assembler *report.Assembler, svc *attendance.Service,
	sessions *session.Store, q queue.Queue, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		pipeline:  pipeline,
		client:    client,
		reports:   reports,
		assembler: assembler,
		svc:       svc,
		sessions:  sessions,
		queue:     q,
		log:       log,
	}
}

// ---------- Staff auth ----------

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies staff credentials and issues a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	if err := auth.CheckLogin(req.Username, req.Password, h.cfg.StaffUsername, h.cfg.StaffPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	h.issueTokens(c, req.Username)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a valid refresh token for a new pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	claims, err := auth.Parse(req.RefreshToken, h.cfg.JWTSigningKey, h.cfg.JWTIssuer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	h.issueTokens(c, claims.Subject)
}

func (h *Handler) issueTokens(c *gin.Context, subject string) {
	tokens, err := auth.Issue(subject, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// ---------- Upstream session ----------

type sessionRequest struct {
	Token    string `json:"token" binding:"required"`
	Remember bool   `json:"remember"`
}

// SetSession stores the upstream credential. Remember writes the persistent
// store, otherwise only this process holds it.
func (h *Handler) SetSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	if req.Remember {
		if err := h.sessions.SetPersistent(c.Request.Context(), req.Token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
			return
		}
	} else {
		h.sessions.SetEphemeral(req.Token)
	}
	c.Status(http.StatusNoContent)
}

// ---------- Scanning ----------

// ScanImage runs an uploaded QR image through the full pipeline and marks
// attendance. Expects multipart form field "file".
func (h *Handler) ScanImage(c *gin.Context) {
	start := time.Now()

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required", "code": "validation_error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
		return
	}

	id, err := h.pipeline.ScanImage(data)
	if err != nil {
		h.scanFailed(c, "upload", err)
		return
	}
	h.processScan(c, id, "upload", start)
}

type scanPayloadRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// ScanPayload marks attendance from QR text the browser camera already
// decoded.
func (h *Handler) ScanPayload(c *gin.Context) {
	start := time.Now()

	var req scanPayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	id, err := scanner.ParsePayload(req.Payload)
	if err != nil {
		h.scanFailed(c, "camera", err)
		return
	}
	h.processScan(c, id, "camera", start)
}

// processScan submits a parsed identity, normalizes the response, journals
// the event and queues its notification. The response is written only after
// every field has been resolved.
func (h *Handler) processScan(c *gin.Context, id scanner.StudentIdentity, source string, start time.Time) {
	if !id.Valid() {
		h.scanFailed(c, source, scanner.ErrUnrecognizedPayload)
		return
	}

	ctx := c.Request.Context()
	deviceInfo := c.Request.UserAgent()

	raw, err := h.client.MarkByQR(ctx, id, deviceInfo, h.cfg.ScanLocation)
	if err != nil {
		h.scanFailed(c, source, err)
		return
	}

	evt, err := attendance.Normalize(raw, id, time.Now().UTC())
	if err != nil {
		h.scanFailed(c, source, err)
		return
	}
	evt.DeviceInfo = deviceInfo
	evt.Location = h.cfg.ScanLocation

	stored, err := h.svc.Record(ctx, evt)
	if err != nil {
		// The upstream accepted the scan; losing the journal entry only
		// degrades the recent view.
		h.log.Error().Err(err).Str("index", evt.IndexNumber).Msg("journal write failed")
		stored = evt
	} else if err := h.queue.Publish(ctx, queue.Message{Type: queue.TypeScan, Body: []byte(stored.ID)}); err != nil {
		h.log.Error().Err(err).Str("event", stored.ID).Msg("notification enqueue failed")
	}

	observability.Scans().WithLabelValues(source, "ok").Inc()
	observability.ScanLatency().WithLabelValues(source).Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, gin.H{
		"event":         stored,
		"displayStatus": attendance.Classify(stored.Status),
		"message":       raw.Message,
	})
}

func (h *Handler) scanFailed(c *gin.Context, source string, err error) {
	observability.Scans().WithLabelValues(source, "error").Inc()
	h.writeError(c, err)
}

// ---------- Recent attendance ----------

// Recent returns today's scans with display statuses and summary stats.
func (h *Handler) Recent(c *gin.Context) {
	view, err := h.svc.Recent(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recent attendance"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// ---------- Student QR codes ----------

// StudentQR renders the QR code PNG for a registered student.
func (h *Handler) StudentQR(c *gin.Context) {
	studentID := c.Param("id")
	students, err := h.client.ListStudents(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	for _, st := range students {
		if st.ID == studentID || strings.EqualFold(st.IndexNumber, studentID) {
			png, err := scanner.GeneratePNG(scanner.StudentIdentity{
				IndexNumber:     st.IndexNumber,
				Name:            st.Name,
				ParentTelephone: st.ParentTelephone,
			}, 256)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "QR generation failed"})
				return
			}
			c.Data(http.StatusOK, "image/png", png)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
}

// ---------- Reports ----------

// ReportPreview assembles the tabular preview for a report query.
func (h *Handler) ReportPreview(c *gin.Context) {
	q, ok := h.parseReportQuery(c)
	if !ok {
		return
	}

	payload, err := h.reports.FetchPreview(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}

	observability.Reports().WithLabelValues(string(q.Type), "preview").Inc()
	c.JSON(http.StatusOK, h.assembler.Assemble(q, payload))
}

// ReportGenerate assembles the report and serves it as an xlsx download.
func (h *Handler) ReportGenerate(c *gin.Context) {
	q, ok := h.parseReportQuery(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	payload, err := h.reports.FetchPreview(ctx, q)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var studentName string
	if q.Type == report.TypeIndividual {
		if students, err := h.client.ListStudents(ctx); err == nil {
			for _, st := range students {
				if st.ID == q.StudentID {
					studentName = st.Name
					break
				}
			}
		}
	}

	book, err := report.WriteXLSX(h.assembler.Assemble(q, payload))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}

	observability.Reports().WithLabelValues(string(q.Type), "download").Inc()
	c.Header("Content-Disposition", `attachment; filename="`+q.Filename(studentName)+`"`)
	c.Data(http.StatusOK, report.XLSXMIME, book)
}

func (h *Handler) parseReportQuery(c *gin.Context) (report.Query, bool) {
	q, err := report.ParseQuery(
		c.Query("type"), c.Query("date"), c.Query("startDate"), c.Query("endDate"),
		c.Query("studentId"), time.Now().UTC())
	if err != nil {
		h.writeError(c, err)
		return report.Query{}, false
	}
	return q, true
}

// ---------- Error mapping ----------

// writeError maps pipeline errors onto the HTTP surface. Upstream 4xx
// messages pass through verbatim when present.
func (h *Handler) writeError(c *gin.Context, err error) {
	var serverErr *attendance.ServerError
	switch {
	case errors.Is(err, scanner.ErrUnsupportedType), errors.Is(err, scanner.ErrTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
	case errors.Is(err, scanner.ErrImageDecode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "decode_error"})
	case errors.Is(err, scanner.ErrNoQRCode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "decode_error"})
	case errors.Is(err, scanner.ErrUnrecognizedPayload):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "parse_error"})
	case errors.Is(err, attendance.ErrNetwork):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": "network_error"})
	case errors.Is(err, attendance.ErrInvalidServerResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": "invalid_server_response"})
	case errors.Is(err, report.ErrFutureDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "future_date"})
	case errors.Is(err, report.ErrDateRange), errors.Is(err, report.ErrRangeTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "date_range_invalid"})
	case errors.Is(err, report.ErrUnknownType), errors.Is(err, report.ErrInvalidDate),
		errors.Is(err, report.ErrStudentRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
	case errors.As(err, &serverErr):
		c.JSON(serverErr.StatusCode, gin.H{"error": serverErr.Error(), "code": "server_error"})
	default:
		h.log.Error().Err(err).Msg("unhandled pipeline error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
