package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/migrate"
)

func TestCreateThenValidate(t *testing.T) {
	dir := t.TempDir()
	logg := logger.New(logger.Options{ServiceName: "migrate-test", Output: &bytes.Buffer{}})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), logg, []string{"create", "add shop hours"}, dir, &out))
	assert.Contains(t, out.String(), "_add_shop_hours.sql")

	out.Reset()
	require.NoError(t, run(context.Background(), logg, []string{"validate"}, dir, &out))
	assert.Equal(t, "migrations ok\n", out.String())
}

func TestCreateNeedsName(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "migrate-test", Output: &bytes.Buffer{}})
	err := run(context.Background(), logg, []string{"create"}, t.TempDir(), &bytes.Buffer{})
	require.Error(t, err)
}

func TestPrintStatus(t *testing.T) {
	var out bytes.Buffer
	printStatus(&out, []migrate.Applied{
		{Version: 20260302090000, Path: "20260302090000_create_user_profiles_and_shops.sql", Applied: true, AppliedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{Version: 20260302090100, Path: "20260302090100_create_products.sql"},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "applied")
	assert.Contains(t, lines[1], "2026-03-02 09:00:00")
	assert.Contains(t, lines[2], "pending")
}
