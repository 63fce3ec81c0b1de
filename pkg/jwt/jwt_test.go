package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/pkg/jwt"
)

const secret = "test-secret"

var operador = jwt.Identity{UserID: "u1", FarmID: "farm-1", Role: "operador"}

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate(secret, operador, "agro-ledger", 5*time.Minute)
	require.NoError(t, err)

	id, err := jwt.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, operador, id)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := jwt.Generate(secret, operador, "agro-ledger", 5*time.Minute)
	require.NoError(t, err)
	expired, err := jwt.Generate(secret, operador, "agro-ledger", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"firma distinta", "otro-secret", valid},
		{"expirado", secret, expired},
		{"malformado", secret, "no-es-un-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwt.Parse(tt.secret, tt.token)
			assert.ErrorIs(t, err, jwt.ErrInvalidToken)
		})
	}
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", operador, "", time.Minute)
	assert.Error(t, err)
	_, err = jwt.Parse("", "x")
	assert.Error(t, err)
}
