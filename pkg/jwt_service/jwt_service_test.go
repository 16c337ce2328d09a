package jwtservice

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/limbo/studytrack/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	s := New("secret", time.Hour)
	user := &entity.User{ID: uuid.New(), Name: "student"}

	token, err := s.GenerateToken(user)
	require.NoError(t, err)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Name, claims.Username)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestDefaultTTL(t *testing.T) {
	s := New("secret", 0)
	assert.Equal(t, DefaultTokenTTL, s.ttl)
}

func TestParseToken(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Name: "student"}
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := New("secret", time.Hour)
	signer.now = func() time.Time { return issued }
	token, err := signer.GenerateToken(user)
	require.NoError(t, err)

	testCases := []struct {
		Desc    string
		Secret  string
		Now     time.Time
		Token   string
		IsError bool
	}{
		{Desc: "valid", Secret: "secret", Now: issued.Add(time.Minute), Token: token},
		{Desc: "wrong secret", Secret: "other", Now: issued.Add(time.Minute), Token: token, IsError: true},
		{Desc: "expired", Secret: "secret", Now: issued.Add(2 * time.Hour), Token: token, IsError: true},
		{Desc: "garbage", Secret: "secret", Now: issued, Token: "not.a.token", IsError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			s := New(tc.Secret, time.Hour)
			s.now = func() time.Time { return tc.Now }
			_, err := s.ParseToken(tc.Token)
			if tc.IsError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	s := New("secret", time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.ParseToken(signed)
	assert.Error(t, err)
}

func TestGenerateTokenNilUser(t *testing.T) {
	_, err := New("secret", time.Hour).GenerateToken(nil)
	assert.Error(t, err)
}
