package config

import (
	"os"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	unsetEnv(t, "STORE_DRIVER", "DELIVERY_LEAD_DAYS", "AUTO_MIGRATE_UP", "AUTO_MIGRATE_DOWN")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != "postgres" {
		t.Errorf("Expected default store driver postgres, got %q", cfg.StoreDriver)
	}
	if cfg.DeliveryLeadDays != 7 {
		t.Errorf("Expected default lead days 7, got %d", cfg.DeliveryLeadDays)
	}
	if !cfg.AutoMigrateUp || cfg.AutoMigrateDown {
		t.Errorf("Expected migrate up only by default, got up=%v down=%v", cfg.AutoMigrateUp, cfg.AutoMigrateDown)
	}
}

func TestNewConfigRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":     {"STORE_DRIVER": "mongo"},
		"negative lead days": {"STORE_DRIVER": "memory", "DELIVERY_LEAD_DAYS": "-1"},
		"non numeric days":   {"STORE_DRIVER": "memory", "DELIVERY_LEAD_DAYS": "week"},
	}

	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := NewConfig(); err == nil {
				t.Error("Expected config error")
			}
		})
	}
}

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
