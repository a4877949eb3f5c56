package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/team-events/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `other=1, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
		if cfg.ServiceName != "team-events-api" {
			t.Fatalf("unexpected default service name: %q", cfg.ServiceName)
		}
		if cfg.StorageDriver != StoragePostgres {
			t.Fatalf("unexpected default storage driver: %q", cfg.StorageDriver)
		}
		if cfg.LogLevel != logging.LevelInfo {
			t.Fatalf("unexpected default log level: %s", cfg.LogLevel)
		}
	})
}

func TestLoad_StorageDriver(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("memory", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", " Memory ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StorageMemory {
			t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "team-events-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "team-events-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})

	t.Run("only separators", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " , ,")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for empty CORS origins")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})

	t.Run("zero ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "0s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for zero CACHE_TTL")
		}
	})
}

func TestLoad_EmailRequiresKeyAndSender(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("EMAIL_ENABLED", "true")

	t.Run("missing key", func(t *testing.T) {
		t.Setenv("RESEND_API_KEY", "")
		t.Setenv("EMAIL_FROM", "events@example.com")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error without RESEND_API_KEY")
		}
	})

	t.Run("missing from", func(t *testing.T) {
		t.Setenv("RESEND_API_KEY", "re_123")
		t.Setenv("EMAIL_FROM", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error without EMAIL_FROM")
		}
	})

	t.Run("complete", func(t *testing.T) {
		t.Setenv("RESEND_API_KEY", "re_123")
		t.Setenv("EMAIL_FROM", "events@example.com")
		t.Setenv("EMAIL_TIMEOUT", "4s")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.EmailEnabled || cfg.ResendAPIKey != "re_123" || cfg.EmailTimeout != 4*time.Second {
			t.Fatalf("unexpected email config: %+v", cfg)
		}
	})
}

func TestLoad_PushRequiresGatewayURL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PUSH_ENABLED", "true")
	t.Setenv("PUSH_GATEWAY_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PUSH_ENABLED=true without PUSH_GATEWAY_URL")
	}
}

func TestLoad_NotifyConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.NotifyMaxWorkers != 8 {
			t.Fatalf("unexpected default notify workers: %d", cfg.NotifyMaxWorkers)
		}
		if !cfg.NotifyCircuit.Enabled || cfg.NotifyCircuit.FailureThreshold != 5 {
			t.Fatalf("unexpected default notify circuit: %+v", cfg.NotifyCircuit)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("NOTIFY_MAX_WORKERS", "3")
		t.Setenv("NOTIFY_CIRCUIT_ENABLED", "false")
		t.Setenv("NOTIFY_CIRCUIT_FAILURE_COUNT", "2")
		t.Setenv("NOTIFY_CIRCUIT_OPEN_TIMEOUT", "30s")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.NotifyMaxWorkers != 3 {
			t.Fatalf("unexpected notify workers: %d", cfg.NotifyMaxWorkers)
		}
		if cfg.NotifyCircuit.Enabled || cfg.NotifyCircuit.FailureThreshold != 2 || cfg.NotifyCircuit.OpenTimeout != 30*time.Second {
			t.Fatalf("unexpected notify circuit: %+v", cfg.NotifyCircuit)
		}
	})

	t.Run("invalid workers", func(t *testing.T) {
		t.Setenv("NOTIFY_MAX_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for NOTIFY_MAX_WORKERS=0")
		}
	})

	t.Run("invalid half open", func(t *testing.T) {
		t.Setenv("NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ=0")
		}
	})
}

func TestLoad_AnubisCacheTTLAllowsZero(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ANUBIS_CACHE_TTL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AnubisCacheTTL != 0 {
		t.Fatalf("unexpected anubis cache ttl: %s", cfg.AnubisCacheTTL)
	}

	t.Setenv("ANUBIS_CACHE_TTL", "-1s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative ANUBIS_CACHE_TTL")
	}
}
