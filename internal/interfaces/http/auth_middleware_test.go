package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/agro-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/agro-ledger/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testFarmID    = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "agro-ledger-test"
	testTTL       = time.Hour
)

// signToken firma un token para la identidad indicada.
func signToken(t *testing.T, farmID, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, FarmID: farmID, Role: role}, testIssuer, ttl)
	require.NoError(t, err)
	return tok
}

// buildTestApp ruta protegida igual que /api: JWT, finca obligatoria y roles permitidos.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireFarm(),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id": apphttp.GetUserID(c),
				"farm_id": apphttp.GetFarmID(c),
				"role":    apphttp.GetRole(c),
			})
		},
	)
	return app
}

func TestAuthMiddleware_Politica(t *testing.T) {
	writers := []string{apphttp.RoleAdmin, apphttp.RoleOperador}

	tests := []struct {
		name    string
		allowed []string
		header  string
		status  int
		code    string
	}{
		{"admin en ruta de escritura", writers, "Bearer " + signToken(t, testFarmID, "admin", testTTL), http.StatusOK, ""},
		{"operador en ruta de escritura", writers, "Bearer " + signToken(t, testFarmID, "operador", testTTL), http.StatusOK, ""},
		{"consulta en ruta de escritura", writers, "Bearer " + signToken(t, testFarmID, "consulta", testTTL), http.StatusForbidden, "FORBIDDEN"},
		{"operador en ruta solo admin", []string{apphttp.RoleAdmin}, "Bearer " + signToken(t, testFarmID, "operador", testTTL), http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", writers, "Bearer " + signToken(t, testFarmID, "", testTTL), http.StatusUnauthorized, "MISSING_ROLE"},
		{"token sin finca", writers, "Bearer " + signToken(t, "", "admin", testTTL), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"token expirado", writers, "Bearer " + signToken(t, testFarmID, "admin", -time.Minute), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", writers, "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"esquema distinto de Bearer", writers, "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"Bearer sin token", writers, "Bearer ", http.StatusUnauthorized, ""},
		{"sin header", writers, "", http.StatusUnauthorized, "MISSING_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := buildTestApp(tt.allowed...).Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.code != "" {
				assert.Contains(t, string(body), `"code":"`+tt.code+`"`)
			}
		})
	}
}

func TestAuthMiddleware_CargaIdentidadEnLocals(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer "+signToken(t, testFarmID, "consulta", testTTL))
	resp, err := buildTestApp(apphttp.RoleConsulta).Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testFarmID, body["farm_id"])
	assert.Equal(t, "consulta", body["role"])
}
