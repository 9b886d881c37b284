package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/ShalunBdk/VirtexShortLink/pkg/detector"
	"github.com/ShalunBdk/VirtexShortLink/pkg/response"
	"github.com/ShalunBdk/VirtexShortLink/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ShortenerService interface {
	ShortenURL(ctx context.Context, req *domain.ShortenRequest, createdBy string) (*domain.ShortenResult, error)
	ResolveAndRecord(ctx context.Context, shortCode string, meta domain.ClickMeta) (*domain.Link, error)
	IsIPBlocked(ctx context.Context, ip string) bool
}

type ShortenerHandler struct {
	service ShortenerService
	baseURL string
}

func NewShortenerHandler(service ShortenerService, baseURL string) *ShortenerHandler {
	return &ShortenerHandler{service: service, baseURL: baseURL}
}

const maxHeaderCapture = 512

const notFoundPage = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>Link not found</title></head>
<body style="font-family: Arial; text-align: center; padding: 50px;">
<h1>404 - Link not found</h1>
<p>The requested short link does not exist or has been deactivated.</p>
</body></html>`

func (h *ShortenerHandler) ShortenURL(c *gin.Context) {
	var req domain.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		response.ValidationErrors(c, errs)
		return
	}

	clientIP := clientIP(c)

	if h.service.IsIPBlocked(c.Request.Context(), clientIP) {
		response.Forbidden(c, "Access denied. Your IP has been blocked.")
		return
	}

	result, err := h.service.ShortenURL(c.Request.Context(), &req, clientIP)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			response.BadRequest(c, vErr.Reason)
			return
		}

		var conflictErr *domain.AliasConflictError
		if errors.As(err, &conflictErr) {
			response.Conflict(c, conflictErr.Error())
			return
		}

		response.InternalServerError(c, "failed to shorten URL")
		return
	}

	status := http.StatusCreated
	if result.Existing {
		status = http.StatusOK
	}

	c.JSON(status, gin.H{
		"short_url":    fmt.Sprintf("%s/%s", h.baseURL, result.Link.ShortCode),
		"short_code":   result.Link.ShortCode,
		"original_url": result.Link.OriginalURL,
		"existing":     result.Existing,
	})
}

// Redirect resolves a short code and sends a 302. A temporary redirect keeps
// browsers and proxies coming back, which is what makes click counting work.
func (h *ShortenerHandler) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")

	userAgent := truncate(c.Request.UserAgent(), maxHeaderCapture)
	meta := domain.ClickMeta{
		IPAddress:  clientIP(c),
		UserAgent:  userAgent,
		Referer:    truncate(c.Request.Referer(), maxHeaderCapture),
		DeviceType: detector.DetectDeviceType(userAgent),
	}

	link, err := h.service.ResolveAndRecord(c.Request.Context(), shortCode, meta)
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))
			return
		}

		response.InternalServerError(c, "failed to resolve short link")
		return
	}

	c.Redirect(http.StatusFound, link.OriginalURL)
}

func clientIP(c *gin.Context) string {
	return detector.ClientIP(
		c.Request.RemoteAddr,
		c.GetHeader("X-Forwarded-For"),
		c.GetHeader("X-Real-IP"),
	)
}

// truncate caps a header value at max bytes without splitting a rune.
// Postgres rejects invalid UTF-8 in text columns, and a lost click is the
// price, so the captured value must stay valid after cutting.
func truncate(s string, max int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= max {
		return s
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
