package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/storesync/internal/errors"
	"github.com/allisson/storesync/internal/httputil"
	"github.com/allisson/storesync/internal/session"
)

// Session headers set by the trusted store gateway in front of the API.
const (
	HeaderStoreID = "X-Store-Id"
	HeaderUserID  = "X-User-Id"
	HeaderShiftID = "X-Shift-Id"
	HeaderRole    = "X-Role"
)

// CustomLoggerMiddleware logs every request with its request id.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		attrs := []any{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if query != "" {
			attrs = append(attrs, slog.String("query", query))
		}
		if sess, ok := session.FromContext(c.Request.Context()); ok {
			attrs = append(attrs, slog.String("store_id", sess.StoreID.String()))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		logger.Info("http request", attrs...)
	}
}

// SessionMiddleware builds the request session from the gateway headers. A missing or
// malformed store or user id aborts with 401. An absent role defaults to clerk.
func SessionMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessionFromHeaders(c)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}

// RequireRole aborts with 403 unless the session role is at least required.
func RequireRole(required session.Role, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := session.MustFromContext(c.Request.Context())
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if !sess.Role.AtLeast(required) {
			httputil.HandleErrorGin(
				c,
				apperrors.Wrapf(apperrors.ErrForbidden, "role %s required", required),
				logger,
			)
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionFromHeaders(c *gin.Context) (session.Session, error) {
	storeID, err := uuid.Parse(c.GetHeader(HeaderStoreID))
	if err != nil || storeID == uuid.Nil {
		return session.Session{}, apperrors.Wrap(session.ErrNoSession, "missing or invalid store id")
	}

	userID, err := uuid.Parse(c.GetHeader(HeaderUserID))
	if err != nil || userID == uuid.Nil {
		return session.Session{}, apperrors.Wrap(session.ErrNoSession, "missing or invalid user id")
	}

	var shiftID uuid.UUID
	if raw := c.GetHeader(HeaderShiftID); raw != "" {
		shiftID, err = uuid.Parse(raw)
		if err != nil {
			return session.Session{}, apperrors.Wrap(session.ErrNoSession, "invalid shift id")
		}
	}

	role := session.RoleClerk
	if raw := c.GetHeader(HeaderRole); raw != "" {
		role = session.Role(raw)
		if !role.Valid() {
			return session.Session{}, apperrors.Wrap(session.ErrNoSession, "invalid role")
		}
	}

	return session.Session{StoreID: storeID, UserID: userID, ShiftID: shiftID, Role: role}, nil
}
