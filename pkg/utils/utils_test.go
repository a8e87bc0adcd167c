package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyforge/pkg/apperrors"
)

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int
		limit     int
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"empty", 0, 1, 20, 1, false, false},
		{"exact fit", 40, 1, 20, 2, true, false},
		{"partial last page", 41, 3, 20, 3, false, true},
		{"zero limit treated as one", 3, 2, 0, 3, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeta(tt.total, tt.page, tt.limit)
			assert.Equal(t, tt.wantPages, m.TotalPages)
			assert.Equal(t, tt.wantNext, m.HasNext)
			assert.Equal(t, tt.wantPrev, m.HasPrev)
		})
	}
}

func TestServiceErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", apperrors.Validation("script content is empty"), 400, "VALIDATION_ERROR", "script content is empty"},
		{"not found", apperrors.NotFound("keyframe not found"), 404, "NOT_FOUND", "keyframe not found"},
		{"configuration hidden", apperrors.Configuration("jimeng", "missing AK/SK"), 500, ErrCodeInternalError, "service is not configured"},
		{"unknown hidden", errors.New("pq: connection refused"), 500, ErrCodeInternalError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return ServiceErrorResponse(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out Response
			require.NoError(t, json.Unmarshal(body, &out))
			assert.False(t, out.Success)
			require.NotNil(t, out.Error)
			assert.Equal(t, tt.wantCode, out.Error.Code)
			assert.Equal(t, tt.wantMsg, out.Error.Message)
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"frame.png":            "frame.png",
		"../../etc/passwd":     "passwd",
		`C:\Users\me\shot.jpg`: "shot.jpg",
		"a<b>c?.jpg":           "a_b_c_.jpg",
		"..":                   "file",
		"   ":                  "file",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFileName(in), in)
	}
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		ScriptID string `json:"scriptId" validate:"required,uuid"`
		Model    string `json:"model" validate:"omitempty,max=8"`
	}

	assert.Nil(t, ValidateStruct(&req{ScriptID: "7f0c2a1e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"}))

	errs := ValidateStruct(&req{ScriptID: "nope", Model: "much-too-long"})
	require.Len(t, errs, 2)
	assert.Equal(t, "scriptId", errs[0].Field)
	assert.Equal(t, "scriptId must be a valid UUID", errs[0].Message)
	assert.Equal(t, "model", errs[1].Field)
	assert.Equal(t, "8", errs[1].Param)
}

func signed(t *testing.T, secret string, claims JWTClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestValidateToken(t *testing.T) {
	const secret = "test-secret"
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("valid bearer", func(t *testing.T) {
		tok := signed(t, secret, JWTClaims{Email: "a@b.c", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}})
		user, err := ValidateToken("Bearer "+tok, secret)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.Subject)
		assert.Equal(t, "a@b.c", user.Email)
	})

	t.Run("expired", func(t *testing.T) {
		tok := signed(t, secret, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}})
		_, err := ValidateToken(tok, secret)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok := signed(t, "other", JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}})
		_, err := ValidateToken(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		tok := signed(t, secret, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}})
		_, err := ValidateToken(tok, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ValidateToken("", secret)
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader("Bearer"))
}

func TestDiskHelpers(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.50 KB", FormatBytes(1536))
	assert.Equal(t, "2.00 GB", FormatBytes(2<<30))

	info := newDiskInfo(200, 50, 150)
	assert.InDelta(t, 75.0, info.UsedPercent, 0.001)
	assert.Zero(t, newDiskInfo(0, 0, 0).UsedPercent)

	// path ที่ยังไม่มีใช้ directory แม่ที่มีอยู่
	dir := t.TempDir()
	assert.Equal(t, dir, existingDir(dir+"/not/yet/created"))

	got, err := GetDiskInfo(dir + "/missing")
	require.NoError(t, err)
	assert.Positive(t, got.Total)
}
