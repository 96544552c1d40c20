package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superclaims/pkg/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SERVER_PORT", "8000")
	t.Setenv("SERVER_READ_TIMEOUT", "30")
	t.Setenv("SERVER_WRITE_TIMEOUT", "120")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("GIGACHAT_API_KEY", "key")
	t.Setenv("GIGACHAT_MODEL", "GigaChat")
	t.Setenv("CLAIM_MAX_CONCURRENCY", "4")
	t.Setenv("CLAIM_REQUEST_TIMEOUT", "90")
	t.Setenv("CLAIM_MAX_FILE_SIZE_MB", "25")
	t.Setenv("CLAIM_POLICY_FILE", "")
}

func TestLoad(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CLAIM_MAX_CONCURRENCY", "8")
	t.Setenv("GIGACHAT_INSECURE_SKIP_VERIFY", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 8, cfg.Claims.MaxConcurrency)
	assert.Equal(t, 90*time.Second, cfg.Claims.RequestTimeout)
	assert.Equal(t, int64(25*1024*1024), cfg.Claims.MaxFileSize)
	assert.True(t, cfg.GigaChat.InsecureSkipVerify)
	assert.Equal(t, config.DefaultPolicy(), cfg.Policy)
}

func TestLoad_PolicyFile(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CLAIM_POLICY_FILE", writeFile(t, "policy.yaml", "required_types: [Bill, id_card]\ncheck_identifiers: true\n"))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"bill", "id_card"}, cfg.Policy.RequiredTypes)
	assert.Equal(t, 1, cfg.Policy.DateGraceDays)
	assert.True(t, cfg.Policy.CheckIdentifiers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero concurrency", "CLAIM_MAX_CONCURRENCY", "0"},
		{"non numeric concurrency", "CLAIM_MAX_CONCURRENCY", "many"},
		{"bad port", "SERVER_PORT", "http"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"missing policy file", "CLAIM_POLICY_FILE", "/does/not/exist.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadPolicyFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    config.PolicyConfig
		wantErr bool
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			want:    config.DefaultPolicy(),
		},
		{
			name:    "grace override",
			content: "date_grace_days: 3\n",
			want: config.PolicyConfig{
				RequiredTypes: []string{"bill", "discharge_summary", "id_card"},
				DateGraceDays: 3,
			},
		},
		{name: "unknown type", content: "required_types: [receipt]\n", wantErr: true},
		{name: "negative grace", content: "date_grace_days: -1\n", wantErr: true},
		{name: "not yaml", content: "required_types: [bill\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.LoadPolicyFile(writeFile(t, "policy.yaml", tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
