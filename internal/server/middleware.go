package server

import (
	"net/http"
	"strings"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/i18n"
	apperrors "github.com/dermatocheck/dermatocheck-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	ctxUserID   = "userID"
	ctxLanguage = "language"
)

// LanguageMiddleware resolves the response language for the request.
// Priority: explicit query parameter, then the language cookie, then the
// Accept-Language header, then the default.
func LanguageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			if cookie, err := c.Cookie(constants.LanguageCookie); err == nil {
				lang = cookie
			}
		}
		if lang == "" {
			lang = c.GetHeader("Accept-Language")
		}
		c.Set(ctxLanguage, i18n.ResolveLanguage(lang))
		c.Next()
	}
}

func requestLanguage(c *gin.Context) string {
	if lang, ok := c.Get(ctxLanguage); ok {
		return lang.(string)
	}
	return constants.DefaultLanguage
}

// AuthMiddleware validates the Supabase HS256 bearer token and stores the
// subject as the user id.
func AuthMiddleware(secret string, translator *i18n.Translator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, secret)
		if err != nil {
			logger.Debug("Authentication rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			respondError(c, translator, apperrors.NewAuthError("errors.auth_required"))
			c.Abort()
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

func authenticate(c *gin.Context, secret string) (string, error) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return "", jwt.ErrTokenMalformed
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}

func currentUserID(c *gin.Context) string {
	if id, ok := c.Get(ctxUserID); ok {
		return id.(string)
	}
	return ""
}

// respondError maps a service error to a localized JSON body. Unknown
// errors become a generic 500.
func respondError(c *gin.Context, translator *i18n.Translator, err error) {
	lang := requestLanguage(c)

	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": translator.T(lang, "errors.generic"),
			},
		})
		return
	}

	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": translator.T(lang, appErr.MessageKey),
		},
	})
}
