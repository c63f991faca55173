package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromDBURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"with port", "postgresql://user:pw@db.local:6543/laps", "db.local:6543"},
		{"default port", "postgresql://user:pw@db.local/laps", "db.local:5432"},
		{"short scheme", "postgres://user@localhost:5432/laps?sslmode=disable", "localhost:5432"},
		{"no user", "postgresql://localhost/laps", "localhost:5432"},
		{"other scheme", "mysql://user@localhost/laps", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromDBURL(tt.url))
		})
	}
}

func TestExtractFromNatsURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"with port", "nats://broker:4333", "broker:4333"},
		{"default port", "nats://broker", "broker:4222"},
		{"credentials", "nats://u:p@broker:4222", "broker:4222"},
		{"server list", "nats://a:4222,nats://b:4222", "a:4222"},
		{"tls", "tls://broker", "broker:4222"},
		{"garbage", "broker", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromNatsURL(tt.url))
		})
	}
}

func TestWaitForTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	assert.NoError(t, WaitForTCP(context.Background(), ln.Addr().String(), time.Second))
}

func TestWaitForTCPUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	assert.Error(t, WaitForTCP(context.Background(), addr, 300*time.Millisecond))
}
