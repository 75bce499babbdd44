package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "valid sqlite config",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/helix"},
		},
		{
			name:   "zero levels and capacity mean defaults",
			config: Config{Backend: BackendSQLite},
		},
		{
			name:   "explicit levels and capacity",
			config: Config{Backend: BackendSQLite, Levels: 7, CacheCapacity: 64},
		},
		{
			name:    "empty backend rejected",
			config:  Config{},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend rejected",
			config:  Config{Backend: "postgres"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "negative levels rejected",
			config:  Config{Backend: BackendSQLite, Levels: -1},
			wantErr: ErrLevelsInvalid,
		},
		{
			name:    "negative cache capacity rejected",
			config:  Config{Backend: BackendSQLite, CacheCapacity: -8},
			wantErr: ErrCacheCapacityInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenVisibleAt(t *testing.T) {
	tok := &Token{Path: "name", Visibility: []int{1, 2, 3, 4, 5, 6}}
	assert.False(t, tok.VisibleAt(0))
	for level := 1; level <= 6; level++ {
		assert.True(t, tok.VisibleAt(level), "level %d", level)
	}
}
