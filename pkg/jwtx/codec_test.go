package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewEphemeralCodec(DefaultTokenTTL)
	require.NoError(t, err)

	now := time.Now().UTC()

	token, err := codec.Issue("alice", now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token, now)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	require.Equal(t, now.Add(DefaultTokenTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyExpiry(t *testing.T) {
	t.Parallel()

	codec, err := NewEphemeralCodec(time.Hour)
	require.NoError(t, err)

	issued := time.Now().UTC()
	token, err := codec.Issue("alice", issued)
	require.NoError(t, err)

	t.Run("valid anywhere inside the TTL", func(t *testing.T) {
		claims, err := codec.Verify(token, issued.Add(30*time.Minute))
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Subject)
	})

	t.Run("valid through the exact expiration instant", func(t *testing.T) {
		exp := time.Unix(issued.Add(time.Hour).Unix(), 0)
		_, err := codec.Verify(token, exp)
		require.NoError(t, err)
	})

	t.Run("expired strictly after exp, never a signature error", func(t *testing.T) {
		_, err := codec.Verify(token, issued.Add(time.Hour+time.Second))
		require.ErrorIs(t, err, ErrExpired)
		require.NotErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("full day TTL default matches the documented lifetime", func(t *testing.T) {
		require.Equal(t, 86_400_000*time.Millisecond, DefaultTokenTTL)
	})
}

func TestVerifySignatureFailures(t *testing.T) {
	t.Parallel()

	codec, err := NewEphemeralCodec(time.Hour)
	require.NoError(t, err)
	now := time.Now().UTC()

	token, err := codec.Issue("alice", now)
	require.NoError(t, err)

	t.Run("garbage input", func(t *testing.T) {
		_, err := codec.Verify("not-a-token", now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("tampered signature", func(t *testing.T) {
		// Corrupt a character in the middle of the signature segment. The
		// final base64url character only carries the top 2 bits of the last
		// byte, so flipping it does not always change the decoded signature;
		// every other character carries all 6 bits.
		dot := strings.LastIndexByte(token, '.')
		require.Positive(t, dot)
		i := dot + 1 + (len(token)-dot-1)/2

		flip := byte('A')
		if token[i] == flip {
			flip = 'B'
		}
		tampered := token[:i] + string(flip) + token[i+1:]

		_, err := codec.Verify(tampered, now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("token signed by a different key", func(t *testing.T) {
		other, err := NewEphemeralCodec(time.Hour)
		require.NoError(t, err)

		foreign, err := other.Issue("alice", now)
		require.NoError(t, err)

		_, err = codec.Verify(foreign, now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("expired foreign token is still a signature error", func(t *testing.T) {
		other, err := NewEphemeralCodec(time.Hour)
		require.NoError(t, err)

		foreign, err := other.Issue("alice", now.Add(-2*time.Hour))
		require.NoError(t, err)

		_, err = codec.Verify(foreign, now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("alg none is rejected", func(t *testing.T) {
		// Forged unsigned token: header {"alg":"none"} with our subject.
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		forged := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." + parts[1] + "."
		_, err := codec.Verify(forged, now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})
}

func TestNewCodecValidation(t *testing.T) {
	t.Parallel()

	t.Run("rejects short keys", func(t *testing.T) {
		_, err := NewCodec(make([]byte, 16), time.Hour)
		require.Error(t, err)
	})

	t.Run("zero ttl falls back to default", func(t *testing.T) {
		codec, err := NewCodec(make([]byte, SigningKeySize), 0)
		require.NoError(t, err)
		require.Equal(t, DefaultTokenTTL, codec.TTL())
	})
}
