package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/green-tasty/preorder-gateway/internal/config"
	"github.com/green-tasty/preorder-gateway/internal/storage"
	"github.com/hellofresh/health-go/v5"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

type Endpoints struct {
	Storage    storage.Storage
	HTTPClient *http.Client
}

func NewHealthHandler(cfg *config.Config, endpoints *Endpoints) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "upstream",
			Timeout:   5 * time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(cfg.Upstream.BaseURL, "/")+"/locations", nil)
				if err != nil {
					return fmt.Errorf("failed to build upstream probe: %w", err)
				}

				resp, err := endpoints.HTTPClient.Do(req)
				if err != nil {
					return fmt.Errorf("backend is unreachable: %w", err)
				}
				defer resp.Body.Close()

				if resp.StatusCode >= 500 {
					return fmt.Errorf("backend answered status %d", resp.StatusCode)
				}

				return nil
			},
		},
		{
			Name:      "storage",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				probe := time.Now().UnixNano()

				if err := endpoints.Storage.Set(ctx, "health:probe", probe); err != nil {
					return fmt.Errorf("storage write failed: %w", err)
				}

				var read int64
				if _, err := endpoints.Storage.Get(ctx, "health:probe", &read); err != nil {
					return fmt.Errorf("storage read failed: %w", err)
				}

				return nil
			},
		},
	}

	if cfg.Storage.Backend == "redis" {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: healthRedis.New(
				healthRedis.Config{
					DSN: cfg.RedisConnect.GetDSN(),
				},
			),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "preorder-gateway",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
