package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/switchboard/internal/profile"
	"github.com/hrygo/switchboard/plugin/ai/router"
	"github.com/hrygo/switchboard/plugin/ai/session"
)

func demoProfile() *profile.Profile {
	return &profile.Profile{
		Mode:                     "demo",
		Driver:                   "sqlite",
		ClassifierEnterThreshold: router.DefaultEnterThreshold,
		ClassifierStayThreshold:  router.DefaultStayThreshold,
		RegistrationThreshold:    router.DefaultRegistrationThreshold,
		HistoryCap:               session.DefaultHistoryCap,
	}
}

func TestRunReportsStartupFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *profile.Profile)
		wantErr string
	}{
		{
			name:    "unknown mode",
			mutate:  func(p *profile.Profile) { p.Mode = "production" },
			wantErr: "invalid configuration",
		},
		{
			name:    "unknown driver",
			mutate:  func(p *profile.Profile) { p.Driver = "mysql"; p.DSN = "x" },
			wantErr: "failed to create db driver",
		},
		{
			name:    "missing data directory",
			mutate:  func(p *profile.Profile) { p.Data = t.TempDir() + "/missing" },
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := demoProfile()
			tt.mutate(p)
			err := run(context.Background(), p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExecuteReturnsConfigurationError(t *testing.T) {
	rootCmd.SetArgs([]string{"--mode", "production"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `got "production"`)
}
