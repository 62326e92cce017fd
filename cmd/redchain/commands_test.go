package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chainsafe/red-crowdfund/pkg/auth"
	"github.com/chainsafe/red-crowdfund/pkg/config"
)

func TestIssueToken(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	cfg.Auth.JWTSecret = ""
	_, err = issueToken(cfg, "ops", time.Hour)
	require.Error(t, err)

	cfg.Auth.JWTSecret = "s3cret"
	token, err := issueToken(cfg, "ops", time.Hour)
	require.NoError(t, err)

	claims, err := auth.NewJWTValidator("s3cret", cfg.Auth.JWTIssuer).ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "ops", claims.Subject)
	require.Equal(t, auth.AdminScope, claims.Scope)
}
