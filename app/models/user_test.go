package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("testuser", "test@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "testuser", user.Name)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_INACTIVE, user.Status)
	assert.Equal(t, uint(InitialCredits), user.Credits)
	assert.False(t, user.IsVerified())

	// Password must be stored hashed
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "test@example.com", "secret123"},
		{"invalid email", "testuser", "not-an-email", "secret123"},
		{"short password", "testuser", "test@example.com", "123"},
		{"empty email", "testuser", "", "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateUser(tt.username, tt.email, tt.password)
			assert.Error(t, err)
		})
	}
}

func TestGenerateActivationToken(t *testing.T) {
	user, err := CreateUser("testuser", "test@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, user.GenerateActivationToken())
	assert.Len(t, user.ActivationToken, 32)
	require.NotNil(t, user.ActivationSentAt)

	first := user.ActivationToken
	require.NoError(t, user.GenerateActivationToken())
	assert.NotEqual(t, first, user.ActivationToken)
}

func TestDefaultCreditPackages(t *testing.T) {
	pkgs := DefaultCreditPackages()
	require.Len(t, pkgs, 3)

	byProduct := make(map[string]CreditPackage, len(pkgs))
	for _, p := range pkgs {
		assert.Equal(t, PaymentProviderDodo, p.Provider)
		assert.True(t, p.IsActive)
		byProduct[p.ProductID] = p
	}

	assert.Equal(t, uint(100), byProduct["pdt_pXCCBMDtusTUcsrB6KECY"].Credits)
	assert.Equal(t, uint(500), byProduct["pdt_QcERrcHmG3kzIBR0Su4Sc"].Credits)
	assert.Equal(t, uint(1000), byProduct["pdt_g1vldnHU4iWPsnPWuNfBF"].Credits)
}
