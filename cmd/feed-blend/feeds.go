package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/feed-blend/internal/blend"
	"github.com/iwvelando/feed-blend/internal/config"
	"github.com/iwvelando/feed-blend/pkg/client"
	"github.com/iwvelando/feed-blend/pkg/output"
	"github.com/iwvelando/feed-blend/pkg/pearson"
	"go.uber.org/zap"
)

// feedList collects repeated -feed "Name=percent" flags.
type feedList []config.Ingredient

func (f *feedList) String() string {
	parts := make([]string, len(*f))
	for i, ing := range *f {
		parts[i] = ing.Name + "=" + strconv.FormatFloat(ing.Percent, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (f *feedList) Set(value string) error {
	ing, err := parseFeed(value)
	if err != nil {
		return err
	}
	*f = append(*f, ing)
	return nil
}

// parseFeed splits "Name=percent" at the last '=' so names may contain one.
func parseFeed(value string) (config.Ingredient, error) {
	idx := strings.LastIndex(value, "=")
	if idx < 0 {
		return config.Ingredient{}, fmt.Errorf("expected Name=percent, got %q", value)
	}

	name := strings.TrimSpace(value[:idx])
	if name == "" {
		return config.Ingredient{}, fmt.Errorf("feed name cannot be empty in %q", value)
	}

	percent, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(value[idx+1:], "%")), 64)
	if err != nil {
		return config.Ingredient{}, fmt.Errorf("invalid percent in %q: %w", value, err)
	}

	return config.Ingredient{Name: name, Percent: percent}, nil
}

// adHocConfiguration builds a single-blend configuration from command line
// flags, keeping the logging and output settings of base when given.
func adHocConfiguration(base *config.Configuration, feeds feedList, target, finalWeight float64, unit string) *config.Configuration {
	conf := &config.Configuration{}
	if base != nil {
		conf.Logging = base.Logging
		conf.Output = base.Output
		conf.Unit = base.Unit
	}
	if unit != "" {
		conf.Unit = unit
	}
	conf.Blends = []config.Blend{{
		Name:        "command line",
		Target:      target,
		FinalWeight: finalWeight,
		Ingredients: append([]config.Ingredient(nil), feeds...),
	}}
	return conf
}

// getRemoteBlends solves every configured blend on a server. Solver errors
// stay on their blend like in blend.GetBlends; transport errors abort.
func getRemoteBlends(ctx context.Context, logger *zap.Logger, c *client.Client, conf config.Configuration) ([]blend.Blend, error) {
	version, err := c.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote server unavailable: %w", err)
	}
	logger.Debug("solving blends remotely",
		zap.String("op", "main.getRemoteBlends"),
		zap.String("serverVersion", version),
		zap.Int("blends", len(conf.Blends)),
	)

	results := make([]blend.Blend, 0, len(conf.Blends))
	for i, b := range conf.Blends {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("blend %d", i+1)
		}

		result := blend.Blend{
			Name:        name,
			Unit:        conf.UnitFor(b),
			Target:      b.Target,
			FinalWeight: b.FinalWeight,
			Ingredients: b.ToIngredients(),
		}

		resp, err := c.Blend(ctx, client.Request{
			Ingredients: result.Ingredients,
			Target:      b.Target,
			FinalWeight: b.FinalWeight,
			Unit:        result.Unit,
		})
		if err != nil {
			if !isBlendError(err) {
				return nil, fmt.Errorf("blend %s: %w", name, err)
			}
			logger.Warn(fmt.Sprintf("blend %s could not be solved", name),
				zap.String("op", "main.getRemoteBlends"),
				zap.Error(err),
			)
			result.Err = err
		} else {
			result.Result = resp.Result()
		}

		results = append(results, result)
	}
	return results, nil
}

// isBlendError reports whether the server rejected the blend itself rather
// than the request failing.
func isBlendError(err error) bool {
	if errors.Is(err, pearson.ErrUnsolvableBlend) || errors.Is(err, pearson.ErrDegenerateInput) {
		return true
	}
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Kind == output.KindInvalidInput
}
